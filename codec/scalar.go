package codec

import (
	"math"

	"github.com/fsvxavier/pgengine/oid"
)

// Every scalar wrapper follows the same nullable-wrapper shape: a Valid
// flag plus the Go-native value, matching database/sql's sql.NullXxx
// convention.

var (
	keyInt2   = oid.Global().Register(oid.TypeDescriptor{Name: "int2", BuiltinOID: oid.TInt2, ArrayName: "_int2", ArrayBuiltinOID: oid.TInt2Array, SizeClass: oid.FixedSize(2)})
	keyInt4   = oid.Global().Register(oid.TypeDescriptor{Name: "int4", BuiltinOID: oid.TInt4, ArrayName: "_int4", ArrayBuiltinOID: oid.TInt4Array, SizeClass: oid.FixedSize(4)})
	keyInt8   = oid.Global().Register(oid.TypeDescriptor{Name: "int8", BuiltinOID: oid.TInt8, ArrayName: "_int8", ArrayBuiltinOID: oid.TInt8Array, SizeClass: oid.FixedSize(8)})
	keyFloat4 = oid.Global().Register(oid.TypeDescriptor{Name: "float4", BuiltinOID: oid.TFloat4, ArrayName: "_float4", ArrayBuiltinOID: oid.TFloat4Array, SizeClass: oid.FixedSize(4)})
	keyFloat8 = oid.Global().Register(oid.TypeDescriptor{Name: "float8", BuiltinOID: oid.TFloat8, ArrayName: "_float8", ArrayBuiltinOID: oid.TFloat8Array, SizeClass: oid.FixedSize(8)})
	keyBool   = oid.Global().Register(oid.TypeDescriptor{Name: "bool", BuiltinOID: oid.TBool, ArrayName: "_bool", ArrayBuiltinOID: oid.TBoolArray, SizeClass: oid.FixedSize(1)})
	keyText   = oid.Global().Register(oid.TypeDescriptor{Name: "text", BuiltinOID: oid.TText, ArrayName: "_text", ArrayBuiltinOID: oid.TTextArray, SizeClass: oid.SizeDynamic})
	keyBytea  = oid.Global().Register(oid.TypeDescriptor{Name: "bytea", BuiltinOID: oid.TBytea, SizeClass: oid.SizeDynamic})
)

// Int2 binds Go int16 to PostgreSQL's int2.
type Int2 struct {
	Int16 int16
	Valid bool
}

func NewInt2(v int16) Int2 { return Int2{Int16: v, Valid: true} }

func (v Int2) TypeKey() oid.TypeKey { return keyInt2 }
func (v Int2) IsNull() bool         { return !v.Valid }
func (v Int2) Encode(buf []byte, _ *oid.Map) ([]byte, error) {
	return putInt16(buf, v.Int16), nil
}
func (v *Int2) SetNull() error { v.Valid = false; v.Int16 = 0; return nil }
func (v *Int2) Decode(wireOID oid.OID, data []byte, m *oid.Map) error {
	if err := CheckOID(v, wireOID, m); err != nil {
		return err
	}
	if err := RequireFixedSize(m.Descriptor(v.TypeKey()).SizeClass, len(data)); err != nil {
		return err
	}
	v.Int16 = getInt16(data)
	v.Valid = true
	return nil
}

// Int4 binds Go int32 to PostgreSQL's int4.
type Int4 struct {
	Int32 int32
	Valid bool
}

func NewInt4(v int32) Int4 { return Int4{Int32: v, Valid: true} }

func (v Int4) TypeKey() oid.TypeKey { return keyInt4 }
func (v Int4) IsNull() bool         { return !v.Valid }
func (v Int4) Encode(buf []byte, _ *oid.Map) ([]byte, error) {
	return putInt32(buf, v.Int32), nil
}
func (v *Int4) SetNull() error { v.Valid = false; v.Int32 = 0; return nil }
func (v *Int4) Decode(wireOID oid.OID, data []byte, m *oid.Map) error {
	if err := CheckOID(v, wireOID, m); err != nil {
		return err
	}
	if err := RequireFixedSize(m.Descriptor(v.TypeKey()).SizeClass, len(data)); err != nil {
		return err
	}
	v.Int32 = getInt32(data)
	v.Valid = true
	return nil
}

// Int8 binds Go int64 to PostgreSQL's int8.
type Int8 struct {
	Int64 int64
	Valid bool
}

func NewInt8(v int64) Int8 { return Int8{Int64: v, Valid: true} }

func (v Int8) TypeKey() oid.TypeKey { return keyInt8 }
func (v Int8) IsNull() bool         { return !v.Valid }
func (v Int8) Encode(buf []byte, _ *oid.Map) ([]byte, error) {
	return putInt64(buf, v.Int64), nil
}
func (v *Int8) SetNull() error { v.Valid = false; v.Int64 = 0; return nil }
func (v *Int8) Decode(wireOID oid.OID, data []byte, m *oid.Map) error {
	if err := CheckOID(v, wireOID, m); err != nil {
		return err
	}
	if err := RequireFixedSize(m.Descriptor(v.TypeKey()).SizeClass, len(data)); err != nil {
		return err
	}
	v.Int64 = getInt64(data)
	v.Valid = true
	return nil
}

// Float4 binds Go float32 to PostgreSQL's float4, wire order IEEE-754.
type Float4 struct {
	Float32 float32
	Valid   bool
}

func NewFloat4(v float32) Float4 { return Float4{Float32: v, Valid: true} }

func (v Float4) TypeKey() oid.TypeKey { return keyFloat4 }
func (v Float4) IsNull() bool         { return !v.Valid }
func (v Float4) Encode(buf []byte, _ *oid.Map) ([]byte, error) {
	return putInt32(buf, int32(math.Float32bits(v.Float32))), nil
}
func (v *Float4) SetNull() error { v.Valid = false; v.Float32 = 0; return nil }
func (v *Float4) Decode(wireOID oid.OID, data []byte, m *oid.Map) error {
	if err := CheckOID(v, wireOID, m); err != nil {
		return err
	}
	if err := RequireFixedSize(m.Descriptor(v.TypeKey()).SizeClass, len(data)); err != nil {
		return err
	}
	v.Float32 = math.Float32frombits(uint32(getInt32(data)))
	v.Valid = true
	return nil
}

// Float8 binds Go float64 to PostgreSQL's float8.
type Float8 struct {
	Float64 float64
	Valid   bool
}

func NewFloat8(v float64) Float8 { return Float8{Float64: v, Valid: true} }

func (v Float8) TypeKey() oid.TypeKey { return keyFloat8 }
func (v Float8) IsNull() bool         { return !v.Valid }
func (v Float8) Encode(buf []byte, _ *oid.Map) ([]byte, error) {
	return putInt64(buf, int64(math.Float64bits(v.Float64))), nil
}
func (v *Float8) SetNull() error { v.Valid = false; v.Float64 = 0; return nil }
func (v *Float8) Decode(wireOID oid.OID, data []byte, m *oid.Map) error {
	if err := CheckOID(v, wireOID, m); err != nil {
		return err
	}
	if err := RequireFixedSize(m.Descriptor(v.TypeKey()).SizeClass, len(data)); err != nil {
		return err
	}
	v.Float64 = math.Float64frombits(uint64(getInt64(data)))
	v.Valid = true
	return nil
}

// Bool binds Go bool to PostgreSQL's bool.
type Bool struct {
	Bool  bool
	Valid bool
}

func NewBool(v bool) Bool { return Bool{Bool: v, Valid: true} }

func (v Bool) TypeKey() oid.TypeKey { return keyBool }
func (v Bool) IsNull() bool         { return !v.Valid }
func (v Bool) Encode(buf []byte, _ *oid.Map) ([]byte, error) {
	if v.Bool {
		return append(buf, 1), nil
	}
	return append(buf, 0), nil
}
func (v *Bool) SetNull() error { v.Valid = false; v.Bool = false; return nil }
func (v *Bool) Decode(wireOID oid.OID, data []byte, m *oid.Map) error {
	if err := CheckOID(v, wireOID, m); err != nil {
		return err
	}
	if err := RequireFixedSize(m.Descriptor(v.TypeKey()).SizeClass, len(data)); err != nil {
		return err
	}
	v.Bool = data[0] != 0
	v.Valid = true
	return nil
}

// Text binds Go string to PostgreSQL's text: dynamic size, raw bytes.
type Text struct {
	String string
	Valid  bool
}

func NewText(v string) Text { return Text{String: v, Valid: true} }

func (v Text) TypeKey() oid.TypeKey { return keyText }
func (v Text) IsNull() bool         { return !v.Valid }
func (v Text) Encode(buf []byte, _ *oid.Map) ([]byte, error) {
	return append(buf, v.String...), nil
}
func (v *Text) SetNull() error { v.Valid = false; v.String = ""; return nil }
func (v *Text) Decode(wireOID oid.OID, data []byte, m *oid.Map) error {
	if err := CheckOID(v, wireOID, m); err != nil {
		return err
	}
	v.String = string(data)
	v.Valid = true
	return nil
}

// Bytea binds Go []byte to PostgreSQL's bytea.
type Bytea struct {
	Bytes []byte
	Valid bool
}

func NewBytea(v []byte) Bytea { return Bytea{Bytes: v, Valid: true} }

func (v Bytea) TypeKey() oid.TypeKey { return keyBytea }
func (v Bytea) IsNull() bool         { return !v.Valid }
func (v Bytea) Encode(buf []byte, _ *oid.Map) ([]byte, error) {
	return append(buf, v.Bytes...), nil
}
func (v *Bytea) SetNull() error { v.Valid = false; v.Bytes = nil; return nil }
func (v *Bytea) Decode(wireOID oid.OID, data []byte, m *oid.Map) error {
	if err := CheckOID(v, wireOID, m); err != nil {
		return err
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	v.Bytes = buf
	v.Valid = true
	return nil
}
