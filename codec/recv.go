package codec

import "github.com/fsvxavier/pgengine/oid"

// Recv is the top-level recv(stream, oid, size, oid_map, out) entry
// point. The caller has already split the wire frame into wireOID
// and data (data == nil meaning size == -1, SQL NULL); Recv dispatches to
// out.SetNull or out.Decode accordingly.
func Recv(wireOID oid.OID, data []byte, m *oid.Map, out Scanner) error {
	if data == nil {
		return out.SetNull()
	}
	return out.Decode(wireOID, data, m)
}

// Send is the top-level send(stream, oid_map, value) entry point (spec
// §4.1). It returns the frame payload bytes, or nil to signal the caller
// should write the NULL size marker instead.
func Send(v Value, m *oid.Map) ([]byte, error) {
	if v.IsNull() {
		return nil, nil
	}
	data, err := v.Encode(nil, m)
	if err == nil && data == nil {
		data = []byte{} // non-null empty value: zero-length frame, not NULL
	}
	return data, err
}
