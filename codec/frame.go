// Package codec implements the binary wire-protocol codec: size_of and the
// send/recv pair for every supported application type, parameterized by a
// per-connection OID map.
package codec

import (
	"encoding/binary"

	"github.com/fsvxavier/pgengine/oid"
	"github.com/fsvxavier/pgengine/pgerr"
)

// NullSize is the wire sentinel for a SQL NULL data frame.
const NullSize int32 = -1

// Value is anything the engine can send as a query parameter.
type Value interface {
	// TypeKey identifies the registered type descriptor for this value.
	TypeKey() oid.TypeKey
	// IsNull reports whether this value is in null state.
	IsNull() bool
	// Encode appends this value's payload (not including any length
	// prefix) to buf and returns the extended slice. Never called when
	// IsNull() is true.
	Encode(buf []byte, m *oid.Map) ([]byte, error)
}

// Scanner is anything the engine can decode a result cell into.
type Scanner interface {
	// TypeKey identifies the registered type descriptor for this target.
	TypeKey() oid.TypeKey
	// SetNull puts the target into its null representation. Returns
	// pgerr.KindUnexpectedNull if the target is not nullable.
	SetNull() error
	// Decode reads size bytes of payload (already read by the caller)
	// for the given wire OID into the target.
	Decode(wireOID oid.OID, data []byte, m *oid.Map) error
}

// AnyOIDScanner is implemented by sinks that accept any wire OID (spec
// §4.1 recv: "unless the type declares it accepts any OID").
type AnyOIDScanner interface {
	Scanner
	AcceptsAnyOID() bool
}

// SizeOf returns the wire size_of a Value: NullSize if null, otherwise the
// byte length its Encode would produce.
func SizeOf(v Value, m *oid.Map) (int32, error) {
	if v.IsNull() {
		return NullSize, nil
	}
	buf, err := v.Encode(nil, m)
	if err != nil {
		return 0, err
	}
	return int32(len(buf)), nil
}

// CheckOID validates that wireOID is acceptable for a Scanner's registered
// type, rejecting a mismatched oid with oid-type-mismatch unless the type
// declares it accepts any OID.
func CheckOID(s Scanner, wireOID oid.OID, m *oid.Map) error {
	if any, ok := s.(AnyOIDScanner); ok && any.AcceptsAnyOID() {
		return nil
	}
	want := m.OIDFor(s.TypeKey())
	if wireOID == want {
		return nil
	}
	d := m.Descriptor(s.TypeKey())
	return pgerr.Newf(pgerr.KindOIDTypeMismatch, "wire oid %d does not match expected oid %d for %q", wireOID, want, d.Name)
}

// RequireFixedSize validates a fixed-size type's received length (spec
// §4.1 recv: "for fixed-size types: require size equal to the declared
// size, else fail with bad-object-size").
func RequireFixedSize(size oid.Size, got int) error {
	n := int(size)
	if n != got {
		return pgerr.Newf(pgerr.KindBadObjectSize, "expected %d bytes, got %d", n, got)
	}
	return nil
}

// --- low level big-endian frame helpers ---

func putInt16(buf []byte, v int16) []byte {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], uint16(v))
	return append(buf, tmp[:]...)
}

func putInt32(buf []byte, v int32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(v))
	return append(buf, tmp[:]...)
}

func putUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func putInt64(buf []byte, v int64) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], uint64(v))
	return append(buf, tmp[:]...)
}

func getInt16(b []byte) int16  { return int16(binary.BigEndian.Uint16(b)) }
func getInt32(b []byte) int32  { return int32(binary.BigEndian.Uint32(b)) }
func getUint32(b []byte) uint32 { return binary.BigEndian.Uint32(b) }
func getInt64(b []byte) int64  { return int64(binary.BigEndian.Uint64(b)) }

// TypedFrame is one field of a composite or array-of-records: an OID, a
// size, and (unless size == -1) the payload.
type TypedFrame struct {
	OID  oid.OID
	Data []byte // nil when null
}

func putTypedFrame(buf []byte, f TypedFrame) []byte {
	buf = putUint32(buf, uint32(f.OID))
	if f.Data == nil {
		return putInt32(buf, NullSize)
	}
	buf = putInt32(buf, int32(len(f.Data)))
	return append(buf, f.Data...)
}

func readTypedFrame(b []byte) (f TypedFrame, rest []byte, err error) {
	if len(b) < 8 {
		return f, nil, pgerr.Newf(pgerr.KindBadResponse, "truncated typed frame")
	}
	f.OID = oid.OID(getUint32(b))
	size := getInt32(b[4:])
	b = b[8:]
	if size == NullSize {
		return f, b, nil
	}
	if int(size) > len(b) {
		return f, nil, pgerr.Newf(pgerr.KindBadResponse, "truncated typed frame payload")
	}
	f.Data = b[:size]
	return f, b[size:], nil
}

// putDataFrame writes a plain data frame (int32 size; size bytes) used
// inside array encodings.
func putDataFrame(buf []byte, data []byte) []byte {
	if data == nil {
		return putInt32(buf, NullSize)
	}
	buf = putInt32(buf, int32(len(data)))
	return append(buf, data...)
}

func readDataFrame(b []byte) (data []byte, rest []byte, err error) {
	if len(b) < 4 {
		return nil, nil, pgerr.Newf(pgerr.KindBadResponse, "truncated data frame")
	}
	size := getInt32(b)
	b = b[4:]
	if size == NullSize {
		return nil, b, nil
	}
	if int(size) > len(b) {
		return nil, nil, pgerr.Newf(pgerr.KindBadResponse, "truncated data frame payload")
	}
	return b[:size], b[size:], nil
}
