package codec_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsvxavier/pgengine/codec"
	"github.com/fsvxavier/pgengine/oid"
)

func TestNumericRoundTrip(t *testing.T) {
	m := oid.NewMap(oid.Global())

	cases := []string{"0", "1", "-1", "123.456", "-123.456", "99999999999999999999", "0.0001"}
	for _, s := range cases {
		d, err := decimal.NewFromString(s)
		require.NoError(t, err)

		src := codec.NewNumeric(d)
		data, err := src.Encode(nil, m)
		require.NoError(t, err)

		var dst codec.Numeric
		require.NoError(t, dst.Decode(oid.TNumeric, data, m))
		assert.True(t, d.Equal(dst.Decimal), "case %s: want %s got %s", s, d, dst.Decimal)
	}
}

func TestNumericZeroHasNoDigits(t *testing.T) {
	m := oid.NewMap(oid.Global())
	src := codec.NewNumeric(decimal.NewFromInt(0))
	data, err := src.Encode(nil, m)
	require.NoError(t, err)

	var dst codec.Numeric
	require.NoError(t, dst.Decode(oid.TNumeric, data, m))
	assert.True(t, decimal.NewFromInt(0).Equal(dst.Decimal))
}

func TestNumericNaNRejected(t *testing.T) {
	m := oid.NewMap(oid.Global())
	// ndigits=0 weight=0 sign=NaN(0xC000) dscale=0
	buf := []byte{0, 0, 0, 0, 0xC0, 0x00, 0, 0}
	var dst codec.Numeric
	err := dst.Decode(oid.TNumeric, buf, m)
	assert.Error(t, err)
}
