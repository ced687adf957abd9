package codec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsvxavier/pgengine/codec"
	"github.com/fsvxavier/pgengine/oid"
)

func roundTrip(t *testing.T, m *oid.Map, v codec.Value, wireOID oid.OID, out codec.Scanner) {
	t.Helper()
	data, err := v.Encode(nil, m)
	require.NoError(t, err)
	require.NoError(t, out.Decode(wireOID, data, m))
}

func TestScalarRoundTrips(t *testing.T) {
	m := oid.NewMap(oid.Global())

	var i2 codec.Int2
	roundTrip(t, m, codec.NewInt2(-7), oid.TInt2, &i2)
	assert.Equal(t, codec.NewInt2(-7), i2)

	var i4 codec.Int4
	roundTrip(t, m, codec.NewInt4(123456), oid.TInt4, &i4)
	assert.Equal(t, codec.NewInt4(123456), i4)

	var i8 codec.Int8
	roundTrip(t, m, codec.NewInt8(-987654321), oid.TInt8, &i8)
	assert.Equal(t, codec.NewInt8(-987654321), i8)

	var f4 codec.Float4
	roundTrip(t, m, codec.NewFloat4(3.5), oid.TFloat4, &f4)
	assert.Equal(t, codec.NewFloat4(3.5), f4)

	var f8 codec.Float8
	roundTrip(t, m, codec.NewFloat8(2.718281828), oid.TFloat8, &f8)
	assert.Equal(t, codec.NewFloat8(2.718281828), f8)

	var b codec.Bool
	roundTrip(t, m, codec.NewBool(true), oid.TBool, &b)
	assert.Equal(t, codec.NewBool(true), b)

	var txt codec.Text
	roundTrip(t, m, codec.NewText("hello"), oid.TText, &txt)
	assert.Equal(t, codec.NewText("hello"), txt)

	var by codec.Bytea
	roundTrip(t, m, codec.NewBytea([]byte{1, 2, 3}), oid.TBytea, &by)
	assert.Equal(t, codec.NewBytea([]byte{1, 2, 3}), by)
}

func TestScalarNullDiscipline(t *testing.T) {
	var i4 codec.Int4
	require.NoError(t, i4.SetNull())
	assert.True(t, i4.IsNull())
	assert.Zero(t, i4.Int32)
}

func TestByteaDecodeIsDefensiveCopy(t *testing.T) {
	m := oid.NewMap(oid.Global())
	src := []byte{1, 2, 3}
	var by codec.Bytea
	require.NoError(t, by.Decode(oid.TBytea, src, m))
	src[0] = 99
	assert.Equal(t, byte(1), by.Bytes[0])
}

func TestFixedSizeMismatchOnDecode(t *testing.T) {
	m := oid.NewMap(oid.Global())
	var i4 codec.Int4
	err := i4.Decode(oid.TInt4, []byte{1, 2, 3}, m)
	assert.Error(t, err)
}
