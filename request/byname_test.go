package request_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsvxavier/pgengine/codec"
	"github.com/fsvxavier/pgengine/oid"
	"github.com/fsvxavier/pgengine/request"
	"github.com/fsvxavier/pgengine/transport"
)

type person struct {
	UserID    codec.Int4 `db:"user_id"`
	FullName  codec.Text
	Ignored   string `db:"-"`
	unexpSkip codec.Int4
}

func TestByNameMapsColumnsByTagAndSnakeCaseFallback(t *testing.T) {
	m := oid.NewMap(oid.Global())
	idData, err := codec.NewInt4(7).Encode(nil, m)
	require.NoError(t, err)
	nameData, err := codec.NewText("ada").Encode(nil, m)
	require.NoError(t, err)

	fields := []transport.FieldDescription{
		{Name: "user_id", DataTypeOID: uint32(oid.TInt4)},
		{Name: "full_name", DataTypeOID: uint32(oid.TText)},
		{Name: "unrecognized_column", DataTypeOID: uint32(oid.TInt4)},
	}

	var out []*person
	sink := request.NewByName(m, func() *person { return &person{} }, &out)

	require.NoError(t, sink.Row(fields, [][]byte{idData, nameData, {0, 0, 0, 1}}))

	require.Len(t, out, 1)
	assert.Equal(t, int32(7), out[0].UserID.Int32)
	assert.Equal(t, "ada", out[0].FullName.String)
}

func TestByNameSkipsNullCellViaSetNull(t *testing.T) {
	m := oid.NewMap(oid.Global())

	fields := []transport.FieldDescription{
		{Name: "user_id", DataTypeOID: uint32(oid.TInt4)},
	}

	var out []*person
	sink := request.NewByName(m, func() *person { return &person{} }, &out)
	require.NoError(t, sink.Row(fields, [][]byte{nil}))

	require.Len(t, out, 1)
	assert.False(t, out[0].UserID.Valid)
}
