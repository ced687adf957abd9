package codec

import (
	guuid "github.com/google/uuid"

	"github.com/fsvxavier/pgengine/oid"
)

var keyUUID = oid.Global().Register(oid.TypeDescriptor{Name: "uuid", BuiltinOID: oid.TUUID, ArrayName: "_uuid", ArrayBuiltinOID: oid.TUUIDArray, SizeClass: oid.FixedSize(16)})

// UUID binds google/uuid.UUID (a fixed 16-byte value) to PostgreSQL's uuid.
type UUID struct {
	UUID  guuid.UUID
	Valid bool
}

func NewUUID(u guuid.UUID) UUID { return UUID{UUID: u, Valid: true} }

func (v UUID) TypeKey() oid.TypeKey { return keyUUID }
func (v UUID) IsNull() bool         { return !v.Valid }
func (v UUID) Encode(buf []byte, _ *oid.Map) ([]byte, error) {
	return append(buf, v.UUID[:]...), nil
}
func (v *UUID) SetNull() error { v.Valid = false; v.UUID = guuid.UUID{}; return nil }
func (v *UUID) Decode(wireOID oid.OID, data []byte, m *oid.Map) error {
	if err := CheckOID(v, wireOID, m); err != nil {
		return err
	}
	if err := RequireFixedSize(m.Descriptor(v.TypeKey()).SizeClass, len(data)); err != nil {
		return err
	}
	copy(v.UUID[:], data)
	v.Valid = true
	return nil
}
