package codec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsvxavier/pgengine/codec"
	"github.com/fsvxavier/pgengine/oid"
)

func TestRawAcceptsAnyOID(t *testing.T) {
	m := oid.NewMap(oid.Global())
	var dst codec.Raw
	err := codec.CheckOID(&dst, oid.OID(123456), m)
	require.NoError(t, err)

	require.NoError(t, dst.Decode(oid.OID(123456), []byte{1, 2, 3}, m))
	assert.Equal(t, oid.OID(123456), dst.OID)
	assert.Equal(t, []byte{1, 2, 3}, dst.Data)
}

func TestRawDecodeIsDefensiveCopy(t *testing.T) {
	src := []byte{1, 2, 3}
	var dst codec.Raw
	require.NoError(t, dst.Decode(oid.OID(1), src, nil))
	src[0] = 99
	assert.Equal(t, byte(1), dst.Data[0])
}

func TestRawSetNull(t *testing.T) {
	dst := codec.Raw{OID: oid.OID(1), Data: []byte{1}, Valid: true}
	require.NoError(t, dst.SetNull())
	assert.True(t, dst.IsNull())
	assert.Equal(t, oid.Invalid, dst.OID)
	assert.Nil(t, dst.Data)
}
