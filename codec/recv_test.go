package codec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsvxavier/pgengine/codec"
	"github.com/fsvxavier/pgengine/oid"
)

func TestSendReturnsNilForNullValue(t *testing.T) {
	m := oid.NewMap(oid.Global())
	var null codec.Int4
	data, err := codec.Send(null, m)
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestSendEncodesNonNullValue(t *testing.T) {
	m := oid.NewMap(oid.Global())
	data, err := codec.Send(codec.NewInt4(42), m)
	require.NoError(t, err)
	assert.Len(t, data, 4)
}

func TestRecvDispatchesNullAndData(t *testing.T) {
	m := oid.NewMap(oid.Global())
	var dst codec.Int4

	require.NoError(t, codec.Recv(oid.TInt4, nil, m, &dst))
	assert.True(t, dst.IsNull())

	data, _ := codec.NewInt4(7).Encode(nil, m)
	require.NoError(t, codec.Recv(oid.TInt4, data, m, &dst))
	assert.Equal(t, int32(7), dst.Int32)
}
