package codec

import (
	"github.com/fsvxavier/pgengine/oid"
	"github.com/fsvxavier/pgengine/pgerr"
)

// Arrays are encoded as:
//   int32 ndim; int32 has_nulls; int32 element_oid;
//   (int32 dim_size, int32 lower_bound) × ndim;
//   data frames × element count
//
// Only one-dimensional arrays are accepted on receive; multi-dimensional
// input fails with oid-type-mismatch.

const arrayLowerBound = 1

// encodeArrayPayload builds the full array payload given the element OID
// and one data-frame cell per element (a nil cell encodes a NULL element).
func encodeArrayPayload(elemOID oid.OID, cells [][]byte) []byte {
	hasNulls := int32(0)
	for _, c := range cells {
		if c == nil {
			hasNulls = 1
			break
		}
	}
	buf := make([]byte, 0, 20+len(cells)*8)
	buf = putInt32(buf, 1) // ndim
	buf = putInt32(buf, hasNulls)
	buf = putUint32(buf, uint32(elemOID))
	buf = putInt32(buf, int32(len(cells))) // dim_size
	buf = putInt32(buf, arrayLowerBound)    // lower_bound
	for _, c := range cells {
		buf = putDataFrame(buf, c)
	}
	return buf
}

// decodeArrayPayload parses an array payload, requiring ndim == 1 (spec
// §3: "Only one-dimensional arrays are accepted on receive").
func decodeArrayPayload(data []byte) (elemOID oid.OID, cells [][]byte, err error) {
	if len(data) < 12 {
		return 0, nil, pgerr.Newf(pgerr.KindBadResponse, "truncated array header")
	}
	ndim := getInt32(data)
	if ndim != 1 {
		if ndim == 0 {
			return 0, nil, nil // empty array
		}
		return 0, nil, pgerr.Newf(pgerr.KindOIDTypeMismatch, "multi-dimensional array (ndim=%d) not accepted", ndim)
	}
	elemOID = oid.OID(getUint32(data[8:]))
	rest := data[12:]
	if len(rest) < 8 {
		return 0, nil, pgerr.Newf(pgerr.KindBadResponse, "truncated array dimension")
	}
	dimSize := getInt32(rest)
	rest = rest[8:] // skip dim_size, lower_bound
	cells = make([][]byte, 0, dimSize)
	for i := int32(0); i < dimSize; i++ {
		var cell []byte
		cell, rest, err = readDataFrame(rest)
		if err != nil {
			return 0, nil, err
		}
		cells = append(cells, cell)
	}
	return elemOID, cells, nil
}

var (
	keyInt4Array = oid.Global().Register(oid.TypeDescriptor{Name: "_int4", BuiltinOID: oid.TInt4Array, SizeClass: oid.SizeDynamic})
	keyInt2Array = oid.Global().Register(oid.TypeDescriptor{Name: "_int2", BuiltinOID: oid.TInt2Array, SizeClass: oid.SizeDynamic})
	keyTextArray = oid.Global().Register(oid.TypeDescriptor{Name: "_text", BuiltinOID: oid.TTextArray, SizeClass: oid.SizeDynamic})
)

// Int4Array binds a one-dimensional array of nullable int4 elements.
type Int4Array struct {
	Elements []Int4
	Valid    bool
}

func NewInt4Array(vs []int32) Int4Array {
	els := make([]Int4, len(vs))
	for i, v := range vs {
		els[i] = NewInt4(v)
	}
	return Int4Array{Elements: els, Valid: true}
}

func (a Int4Array) TypeKey() oid.TypeKey { return keyInt4Array }
func (a Int4Array) IsNull() bool         { return !a.Valid }
func (a Int4Array) Encode(buf []byte, m *oid.Map) ([]byte, error) {
	elemOID := m.OIDFor(keyInt4)
	cells := make([][]byte, len(a.Elements))
	for i, el := range a.Elements {
		if el.IsNull() {
			continue
		}
		data, err := el.Encode(nil, m)
		if err != nil {
			return nil, err
		}
		cells[i] = data
	}
	return append(buf, encodeArrayPayload(elemOID, cells)...), nil
}
func (a *Int4Array) SetNull() error { a.Valid = false; a.Elements = nil; return nil }
func (a *Int4Array) Decode(wireOID oid.OID, data []byte, m *oid.Map) error {
	if err := CheckOID(a, wireOID, m); err != nil {
		return err
	}
	elemOID, cells, err := decodeArrayPayload(data)
	if err != nil {
		return err
	}
	expected := m.OIDFor(keyInt4)
	if len(cells) > 0 && elemOID != expected {
		return pgerr.Newf(pgerr.KindOIDTypeMismatch, "array element oid %d does not match expected %d", elemOID, expected)
	}
	els := make([]Int4, len(cells))
	for i, c := range cells {
		if c == nil {
			continue
		}
		if err := els[i].Decode(expected, c, m); err != nil {
			return err
		}
	}
	a.Elements = els
	a.Valid = true
	return nil
}

// Int2Array binds a one-dimensional array of nullable int2 elements.
type Int2Array struct {
	Elements []Int2
	Valid    bool
}

func (a Int2Array) TypeKey() oid.TypeKey { return keyInt2Array }
func (a Int2Array) IsNull() bool         { return !a.Valid }
func (a Int2Array) Encode(buf []byte, m *oid.Map) ([]byte, error) {
	elemOID := m.OIDFor(keyInt2)
	cells := make([][]byte, len(a.Elements))
	for i, el := range a.Elements {
		if el.IsNull() {
			continue
		}
		data, err := el.Encode(nil, m)
		if err != nil {
			return nil, err
		}
		cells[i] = data
	}
	return append(buf, encodeArrayPayload(elemOID, cells)...), nil
}
func (a *Int2Array) SetNull() error { a.Valid = false; a.Elements = nil; return nil }
func (a *Int2Array) Decode(wireOID oid.OID, data []byte, m *oid.Map) error {
	if err := CheckOID(a, wireOID, m); err != nil {
		return err
	}
	elemOID, cells, err := decodeArrayPayload(data)
	if err != nil {
		return err
	}
	expected := m.OIDFor(keyInt2)
	if len(cells) > 0 && elemOID != expected {
		return pgerr.Newf(pgerr.KindOIDTypeMismatch, "array element oid %d does not match expected %d", elemOID, expected)
	}
	els := make([]Int2, len(cells))
	for i, c := range cells {
		if c == nil {
			continue
		}
		if err := els[i].Decode(expected, c, m); err != nil {
			return err
		}
	}
	a.Elements = els
	a.Valid = true
	return nil
}

// TextArray binds a one-dimensional array of nullable text elements (spec
// §8 test 2: "Text array... round-trips to the same three-element
// sequence in order").
type TextArray struct {
	Elements []Text
	Valid    bool
}

func NewTextArray(vs []string) TextArray {
	els := make([]Text, len(vs))
	for i, v := range vs {
		els[i] = NewText(v)
	}
	return TextArray{Elements: els, Valid: true}
}

func (a TextArray) TypeKey() oid.TypeKey { return keyTextArray }
func (a TextArray) IsNull() bool         { return !a.Valid }
func (a TextArray) Encode(buf []byte, m *oid.Map) ([]byte, error) {
	elemOID := m.OIDFor(keyText)
	cells := make([][]byte, len(a.Elements))
	for i, el := range a.Elements {
		if el.IsNull() {
			continue
		}
		data, err := el.Encode([]byte{}, m)
		if err != nil {
			return nil, err
		}
		cells[i] = data
	}
	return append(buf, encodeArrayPayload(elemOID, cells)...), nil
}
func (a *TextArray) SetNull() error { a.Valid = false; a.Elements = nil; return nil }
func (a *TextArray) Decode(wireOID oid.OID, data []byte, m *oid.Map) error {
	if err := CheckOID(a, wireOID, m); err != nil {
		return err
	}
	elemOID, cells, err := decodeArrayPayload(data)
	if err != nil {
		return err
	}
	expected := m.OIDFor(keyText)
	if len(cells) > 0 && elemOID != expected {
		return pgerr.Newf(pgerr.KindOIDTypeMismatch, "array element oid %d does not match expected %d", elemOID, expected)
	}
	els := make([]Text, len(cells))
	for i, c := range cells {
		if c == nil {
			continue
		}
		if err := els[i].Decode(expected, c, m); err != nil {
			return err
		}
	}
	a.Elements = els
	a.Valid = true
	return nil
}

// Strings is a convenience accessor returning the array's values as a
// plain []string. A NULL element yields "", indistinguishable from an
// empty string — use Elements directly when NULL elements are possible.
func (a TextArray) Strings() []string {
	out := make([]string, len(a.Elements))
	for i, el := range a.Elements {
		out[i] = el.String
	}
	return out
}
