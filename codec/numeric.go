package codec

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/fsvxavier/pgengine/oid"
	"github.com/fsvxavier/pgengine/pgerr"
)

var keyNumeric = oid.Global().Register(oid.TypeDescriptor{Name: "numeric", BuiltinOID: oid.TNumeric, ArrayName: "_numeric", ArrayBuiltinOID: oid.TNumericArr, SizeClass: oid.SizeDynamic})

const (
	numericPosSign = 0x0000
	numericNegSign = 0x4000
	numericNaNSign = 0xC000
)

var pow10Small = [4]int64{1, 10, 100, 1000}

// Numeric binds github.com/shopspring/decimal.Decimal to PostgreSQL's
// numeric, PostgreSQL's base-10000 arbitrary-precision binary format.
type Numeric struct {
	Decimal decimal.Decimal
	Valid   bool
}

func NewNumeric(d decimal.Decimal) Numeric { return Numeric{Decimal: d, Valid: true} }

func (v Numeric) TypeKey() oid.TypeKey { return keyNumeric }
func (v Numeric) IsNull() bool         { return !v.Valid }

func (v Numeric) Encode(buf []byte, _ *oid.Map) ([]byte, error) {
	coeff := v.Decimal.Coefficient()
	exp := v.Decimal.Exponent()

	sign := int16(numericPosSign)
	abs := new(big.Int).Abs(coeff)
	if coeff.Sign() < 0 {
		sign = numericNegSign
	}

	dscale := int16(0)
	if exp < 0 {
		dscale = int16(-exp)
	}

	rem := int32(((exp % 4) + 4) % 4)
	alignedExp := exp - rem
	if rem != 0 && abs.Sign() != 0 {
		abs.Mul(abs, big.NewInt(pow10Small[rem]))
	}

	var digits []int16
	if abs.Sign() == 0 {
		digits = nil
	} else {
		base := big.NewInt(10000)
		mod := new(big.Int)
		rest := new(big.Int).Set(abs)
		for rest.Sign() != 0 {
			rest.DivMod(rest, base, mod)
			digits = append(digits, int16(mod.Int64()))
		}
		// digits currently least-significant-first; reverse.
		for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
			digits[i], digits[j] = digits[j], digits[i]
		}
	}

	ndigits := int16(len(digits))
	weight := int16(0)
	if ndigits > 0 {
		weight = ndigits - 1 + int16(alignedExp/4)
	}

	buf = putInt16(buf, ndigits)
	buf = putInt16(buf, weight)
	buf = putInt16(buf, sign)
	buf = putInt16(buf, dscale)
	for _, d := range digits {
		buf = putInt16(buf, d)
	}
	return buf, nil
}

func (v *Numeric) SetNull() error { v.Valid = false; v.Decimal = decimal.Decimal{}; return nil }

func (v *Numeric) Decode(wireOID oid.OID, data []byte, m *oid.Map) error {
	if err := CheckOID(v, wireOID, m); err != nil {
		return err
	}
	if len(data) < 8 {
		return pgerr.Newf(pgerr.KindBadResponse, "truncated numeric header")
	}
	ndigits := getInt16(data)
	weight := getInt16(data[2:])
	sign := getInt16(data[4:])
	data = data[8:]

	if uint16(sign) == numericNaNSign {
		return pgerr.Newf(pgerr.KindBadResultProcess, "numeric NaN has no decimal.Decimal representation")
	}
	if len(data) < int(ndigits)*2 {
		return pgerr.Newf(pgerr.KindBadResponse, "truncated numeric digits")
	}

	acc := new(big.Int)
	base := big.NewInt(10000)
	for i := 0; i < int(ndigits); i++ {
		d := getInt16(data[i*2:])
		acc.Mul(acc, base)
		acc.Add(acc, big.NewInt(int64(d)))
	}
	if sign == numericNegSign {
		acc.Neg(acc)
	}

	exp := int32(0)
	if ndigits > 0 {
		exp = (int32(weight) - int32(ndigits) + 1) * 4
	}

	v.Decimal = decimal.NewFromBigInt(acc, exp)
	v.Valid = true
	return nil
}
