package codec_test

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsvxavier/pgengine/codec"
	"github.com/fsvxavier/pgengine/oid"
)

func TestInetRoundTripV4(t *testing.T) {
	m := oid.NewMap(oid.Global())
	p := netip.MustParsePrefix("192.168.1.0/24")
	src := codec.NewInet(p)

	data, err := src.Encode(nil, m)
	require.NoError(t, err)

	var dst codec.Inet
	require.NoError(t, dst.Decode(oid.TInet, data, m))
	assert.Equal(t, p, dst.Addr)
}

func TestInetRoundTripV6(t *testing.T) {
	m := oid.NewMap(oid.Global())
	p := netip.MustParsePrefix("2001:db8::/32")
	src := codec.NewInet(p)

	data, err := src.Encode(nil, m)
	require.NoError(t, err)

	var dst codec.Inet
	require.NoError(t, dst.Decode(oid.TInet, data, m))
	assert.Equal(t, p, dst.Addr)
}

func TestCIDRRoundTrip(t *testing.T) {
	m := oid.NewMap(oid.Global())
	p := netip.MustParsePrefix("10.0.0.0/8")
	src := codec.NewCIDR(p)

	data, err := src.Encode(nil, m)
	require.NoError(t, err)

	var dst codec.CIDR
	require.NoError(t, dst.Decode(oid.TCIDR, data, m))
	assert.Equal(t, p, dst.Addr)
}

func TestInetTruncatedHeaderRejected(t *testing.T) {
	m := oid.NewMap(oid.Global())
	var dst codec.Inet
	err := dst.Decode(oid.TInet, []byte{1, 2}, m)
	assert.Error(t, err)
}
