package codec

import "github.com/fsvxavier/pgengine/oid"

var keyRaw = oid.Global().Register(oid.TypeDescriptor{Name: "", SizeClass: oid.SizeDynamic, AcceptsAnyOID: true})

// Raw is the generic any-OID sink: it records the wire OID and the raw
// payload bytes verbatim, null-safe, with no type-specific decoding. Useful
// for columns whose type isn't known to the codec ahead of time, or for
// building a one-off type registry entry from inspection.
type Raw struct {
	OID   oid.OID
	Data  []byte
	Valid bool
}

func (v Raw) TypeKey() oid.TypeKey    { return keyRaw }
func (v Raw) IsNull() bool            { return !v.Valid }
func (v Raw) AcceptsAnyOID() bool     { return true }
func (v Raw) Encode(buf []byte, _ *oid.Map) ([]byte, error) {
	return append(buf, v.Data...), nil
}
func (v *Raw) SetNull() error { v.Valid = false; v.OID = oid.Invalid; v.Data = nil; return nil }
func (v *Raw) Decode(wireOID oid.OID, data []byte, _ *oid.Map) error {
	v.OID = wireOID
	v.Data = append([]byte(nil), data...)
	v.Valid = true
	return nil
}
