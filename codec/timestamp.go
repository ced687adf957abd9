package codec

import (
	"time"

	"github.com/fsvxavier/pgengine/oid"
)

// pgEpoch is PostgreSQL's reference instant for timestamp/date binary
// encoding: 2000-01-01, matching the backend's definitions.h epoch.
var pgEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

var (
	keyTimestamp   = oid.Global().Register(oid.TypeDescriptor{Name: "timestamp", BuiltinOID: oid.TTimestamp, ArrayName: "_timestamp", ArrayBuiltinOID: oid.TTimestampArr, SizeClass: oid.FixedSize(8)})
	keyTimestamptz = oid.Global().Register(oid.TypeDescriptor{Name: "timestamptz", BuiltinOID: oid.TTimestamptz, SizeClass: oid.FixedSize(8)})
	keyDate        = oid.Global().Register(oid.TypeDescriptor{Name: "date", BuiltinOID: oid.TDate, SizeClass: oid.FixedSize(4)})
)

// Timestamp binds Go time.Time (UTC, microsecond precision) to
// PostgreSQL's timestamp (without time zone).
type Timestamp struct {
	Time  time.Time
	Valid bool
}

func NewTimestamp(t time.Time) Timestamp { return Timestamp{Time: t, Valid: true} }

func (v Timestamp) TypeKey() oid.TypeKey { return keyTimestamp }
func (v Timestamp) IsNull() bool         { return !v.Valid }
func (v Timestamp) Encode(buf []byte, _ *oid.Map) ([]byte, error) {
	micros := v.Time.UTC().Sub(pgEpoch).Microseconds()
	return putInt64(buf, micros), nil
}
func (v *Timestamp) SetNull() error { v.Valid = false; v.Time = time.Time{}; return nil }
func (v *Timestamp) Decode(wireOID oid.OID, data []byte, m *oid.Map) error {
	if err := CheckOID(v, wireOID, m); err != nil {
		return err
	}
	if err := RequireFixedSize(m.Descriptor(v.TypeKey()).SizeClass, len(data)); err != nil {
		return err
	}
	micros := getInt64(data)
	v.Time = pgEpoch.Add(time.Duration(micros) * time.Microsecond)
	v.Valid = true
	return nil
}

// Timestamptz binds Go time.Time to PostgreSQL's timestamptz. Wire layout
// is identical to Timestamp (PostgreSQL always stores/transmits UTC); the
// distinction is only which OID the session expects.
type Timestamptz struct {
	Time  time.Time
	Valid bool
}

func NewTimestamptz(t time.Time) Timestamptz { return Timestamptz{Time: t, Valid: true} }

func (v Timestamptz) TypeKey() oid.TypeKey { return keyTimestamptz }
func (v Timestamptz) IsNull() bool         { return !v.Valid }
func (v Timestamptz) Encode(buf []byte, _ *oid.Map) ([]byte, error) {
	micros := v.Time.UTC().Sub(pgEpoch).Microseconds()
	return putInt64(buf, micros), nil
}
func (v *Timestamptz) SetNull() error { v.Valid = false; v.Time = time.Time{}; return nil }
func (v *Timestamptz) Decode(wireOID oid.OID, data []byte, m *oid.Map) error {
	if err := CheckOID(v, wireOID, m); err != nil {
		return err
	}
	if err := RequireFixedSize(m.Descriptor(v.TypeKey()).SizeClass, len(data)); err != nil {
		return err
	}
	micros := getInt64(data)
	v.Time = pgEpoch.Add(time.Duration(micros) * time.Microsecond)
	v.Valid = true
	return nil
}

// Date binds Go time.Time (truncated to a day) to PostgreSQL's date.
type Date struct {
	Time  time.Time
	Valid bool
}

func NewDate(t time.Time) Date { return Date{Time: t, Valid: true} }

func (v Date) TypeKey() oid.TypeKey { return keyDate }
func (v Date) IsNull() bool         { return !v.Valid }
func (v Date) Encode(buf []byte, _ *oid.Map) ([]byte, error) {
	days := int32(v.Time.UTC().Sub(pgEpoch).Hours() / 24)
	return putInt32(buf, days), nil
}
func (v *Date) SetNull() error { v.Valid = false; v.Time = time.Time{}; return nil }
func (v *Date) Decode(wireOID oid.OID, data []byte, m *oid.Map) error {
	if err := CheckOID(v, wireOID, m); err != nil {
		return err
	}
	if err := RequireFixedSize(m.Descriptor(v.TypeKey()).SizeClass, len(data)); err != nil {
		return err
	}
	days := getInt32(data)
	v.Time = pgEpoch.Add(time.Duration(days) * 24 * time.Hour)
	v.Valid = true
	return nil
}
