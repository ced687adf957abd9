package codec

import (
	"encoding/json"

	"github.com/fsvxavier/pgengine/oid"
	"github.com/fsvxavier/pgengine/pgerr"
)

var keyJSONB = oid.Global().Register(oid.TypeDescriptor{Name: "jsonb", BuiltinOID: oid.TJSONB, ArrayName: "_jsonb", ArrayBuiltinOID: oid.TJSONBArray, SizeClass: oid.SizeDynamic})

// jsonbVersion is the single version byte jsonb's binary format has ever
// used (PostgreSQL's send/recv reject any other value).
const jsonbVersion = 1

// JSONB carries already-marshaled JSON bytes bound to PostgreSQL's jsonb.
// Callers that want struct<->jsonb marshaling build it with NewJSONB, which
// encodes via encoding/json; Raw is exposed directly for callers holding
// pre-serialized bytes.
type JSONB struct {
	Raw   []byte
	Valid bool
}

// NewJSONB marshals v with encoding/json and wraps the result.
func NewJSONB(v any) (JSONB, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return JSONB{}, err
	}
	return JSONB{Raw: b, Valid: true}, nil
}

func (v JSONB) TypeKey() oid.TypeKey { return keyJSONB }
func (v JSONB) IsNull() bool         { return !v.Valid }
func (v JSONB) Encode(buf []byte, _ *oid.Map) ([]byte, error) {
	buf = append(buf, jsonbVersion)
	return append(buf, v.Raw...), nil
}
func (v *JSONB) SetNull() error { v.Valid = false; v.Raw = nil; return nil }
func (v *JSONB) Decode(wireOID oid.OID, data []byte, m *oid.Map) error {
	if err := CheckOID(v, wireOID, m); err != nil {
		return err
	}
	if len(data) < 1 {
		return pgerr.Newf(pgerr.KindBadResponse, "truncated jsonb header")
	}
	if data[0] != jsonbVersion {
		return pgerr.Newf(pgerr.KindBadResultProcess, "unsupported jsonb version %d", data[0])
	}
	v.Raw = append([]byte(nil), data[1:]...)
	v.Valid = true
	return nil
}

// Unmarshal decodes the stored JSON into v via encoding/json.
func (v JSONB) Unmarshal(out any) error {
	return json.Unmarshal(v.Raw, out)
}
