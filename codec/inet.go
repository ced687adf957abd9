package codec

import (
	"net"
	"net/netip"

	"github.com/fsvxavier/pgengine/oid"
	"github.com/fsvxavier/pgengine/pgerr"
)

// PostgreSQL's inet/cidr family bytes (src/include/utils/inet.h).
const (
	pgAFInet  = 2
	pgAFInet6 = 3
)

var (
	keyInet = oid.Global().Register(oid.TypeDescriptor{Name: "inet", BuiltinOID: oid.TInet, SizeClass: oid.SizeDynamic})
	keyCIDR = oid.Global().Register(oid.TypeDescriptor{Name: "cidr", BuiltinOID: oid.TCIDR, SizeClass: oid.SizeDynamic})
)

// Inet binds netip.Prefix to PostgreSQL's inet. Wire layout is
// 1-byte family, 1-byte netmask bits, 1-byte is_cidr flag, 1-byte address
// length, then the raw address bytes.
type Inet struct {
	Addr  netip.Prefix
	Valid bool
}

func NewInet(addr netip.Prefix) Inet { return Inet{Addr: addr, Valid: true} }

func (v Inet) TypeKey() oid.TypeKey { return keyInet }
func (v Inet) IsNull() bool         { return !v.Valid }
func (v Inet) Encode(buf []byte, _ *oid.Map) ([]byte, error) {
	return encodeInetPayload(buf, v.Addr, false)
}
func (v *Inet) SetNull() error { v.Valid = false; v.Addr = netip.Prefix{}; return nil }
func (v *Inet) Decode(wireOID oid.OID, data []byte, m *oid.Map) error {
	if err := CheckOID(v, wireOID, m); err != nil {
		return err
	}
	p, _, err := decodeInetPayload(data)
	if err != nil {
		return err
	}
	v.Addr = p
	v.Valid = true
	return nil
}

// CIDR binds netip.Prefix to PostgreSQL's cidr, identical wire
// layout to Inet save the is_cidr flag.
type CIDR struct {
	Addr  netip.Prefix
	Valid bool
}

func NewCIDR(addr netip.Prefix) CIDR { return CIDR{Addr: addr, Valid: true} }

func (v CIDR) TypeKey() oid.TypeKey { return keyCIDR }
func (v CIDR) IsNull() bool         { return !v.Valid }
func (v CIDR) Encode(buf []byte, _ *oid.Map) ([]byte, error) {
	return encodeInetPayload(buf, v.Addr, true)
}
func (v *CIDR) SetNull() error { v.Valid = false; v.Addr = netip.Prefix{}; return nil }
func (v *CIDR) Decode(wireOID oid.OID, data []byte, m *oid.Map) error {
	if err := CheckOID(v, wireOID, m); err != nil {
		return err
	}
	p, _, err := decodeInetPayload(data)
	if err != nil {
		return err
	}
	v.Addr = p
	v.Valid = true
	return nil
}

func encodeInetPayload(buf []byte, p netip.Prefix, isCIDR bool) ([]byte, error) {
	addr := p.Addr()
	family := byte(pgAFInet)
	if addr.Is6() {
		family = pgAFInet6
	}
	bits := byte(p.Bits())
	if p.Bits() < 0 {
		if addr.Is6() {
			bits = 128
		} else {
			bits = 32
		}
	}
	cidrFlag := byte(0)
	if isCIDR {
		cidrFlag = 1
	}
	raw := addr.AsSlice()
	buf = append(buf, family, bits, cidrFlag, byte(len(raw)))
	return append(buf, raw...), nil
}

func decodeInetPayload(data []byte) (netip.Prefix, bool, error) {
	if len(data) < 4 {
		return netip.Prefix{}, false, pgerr.Newf(pgerr.KindBadResponse, "truncated inet header")
	}
	family, bits, isCIDR, addrLen := data[0], data[1], data[2] != 0, int(data[3])
	data = data[4:]
	if len(data) != addrLen {
		return netip.Prefix{}, false, pgerr.Newf(pgerr.KindBadResponse, "inet address length mismatch: header says %d, got %d", addrLen, len(data))
	}
	var addr netip.Addr
	switch family {
	case pgAFInet:
		if addrLen != net.IPv4len {
			return netip.Prefix{}, false, pgerr.Newf(pgerr.KindBadResponse, "bad inet v4 address length %d", addrLen)
		}
		addr = netip.AddrFrom4([4]byte(data))
	case pgAFInet6:
		if addrLen != net.IPv6len {
			return netip.Prefix{}, false, pgerr.Newf(pgerr.KindBadResponse, "bad inet v6 address length %d", addrLen)
		}
		addr = netip.AddrFrom16([16]byte(data))
	default:
		return netip.Prefix{}, false, pgerr.Newf(pgerr.KindBadResultProcess, "unknown inet address family %d", family)
	}
	return netip.PrefixFrom(addr, int(bits)), isCIDR, nil
}
