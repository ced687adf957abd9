package codec_test

import (
	"testing"

	guuid "github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsvxavier/pgengine/codec"
	"github.com/fsvxavier/pgengine/oid"
)

func TestUUIDRoundTrip(t *testing.T) {
	m := oid.NewMap(oid.Global())
	u := guuid.New()
	src := codec.NewUUID(u)

	data, err := src.Encode(nil, m)
	require.NoError(t, err)
	assert.Len(t, data, 16)

	var dst codec.UUID
	require.NoError(t, dst.Decode(oid.TUUID, data, m))
	assert.Equal(t, u, dst.UUID)
}

func TestUUIDFixedSizeMismatch(t *testing.T) {
	m := oid.NewMap(oid.Global())
	var dst codec.UUID
	err := dst.Decode(oid.TUUID, make([]byte, 15), m)
	assert.Error(t, err)
}
