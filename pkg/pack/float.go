package pack

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	ErrNegative  = errors.New("negative value")
	ErrTooBig    = errors.New("value exceeds representable range")
	ErrOverflow  = errors.New("unpacked value exceeds 128 bits")
	ErrBadLength = errors.New("packed data has wrong length")
)

var (
	ten     = big.NewInt(10)
	maxU128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
)

// MaxUint128 returns 2^128-1.
func MaxUint128() *big.Int { return new(big.Int).Set(maxU128) }

// Format is a decimal floating point layout: mantissa in the high bits,
// exponent (base 10) in the low bits, stored big-endian.
type Format struct {
	ExponentBits int
	MantissaBits int
}

// Len is the packed length in bytes.
func (f Format) Len() int { return (f.ExponentBits + f.MantissaBits) / 8 }

func (f Format) maxMantissa() *big.Int {
	return new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(f.MantissaBits)), big.NewInt(1))
}

func (f Format) maxExponent() int { return 1<<f.ExponentBits - 1 }

// Pack encodes v, rounding down to the nearest representable value.
func (f Format) Pack(v *big.Int) ([]byte, error) {
	if v.Sign() < 0 {
		return nil, ErrNegative
	}
	if v.Cmp(maxU128) > 0 {
		return nil, fmt.Errorf("%w: %s is above 2^128-1", ErrTooBig, v)
	}
	maxM := f.maxMantissa()
	limit := new(big.Int).Mul(maxM, new(big.Int).Exp(ten, big.NewInt(int64(f.maxExponent())), nil))
	if v.Cmp(limit) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrTooBig, v)
	}

	exp := 0
	pow := big.NewInt(1)
	bound := new(big.Int).Set(maxM)
	for v.Cmp(bound) > 0 {
		pow.Mul(pow, ten)
		bound.Mul(maxM, pow)
		exp++
	}

	mantissa := new(big.Int).Set(v)
	if exp > 0 {
		mantissa.Quo(v, pow)
		variant1 := new(big.Int).Mul(mantissa, pow)
		variant2 := new(big.Int).Mul(maxM, new(big.Int).Quo(pow, ten))
		// both variants are <= v, keep the one closer to it
		if variant1.Cmp(variant2) <= 0 {
			exp--
			mantissa.Set(maxM)
		}
	}

	word := new(big.Int).Lsh(mantissa, uint(f.ExponentBits))
	word.Or(word, big.NewInt(int64(exp)))
	return word.FillBytes(make([]byte, f.Len())), nil
}

// Unpack decodes data produced by Pack.
func (f Format) Unpack(data []byte) (*big.Int, error) {
	if len(data)*8 != f.ExponentBits+f.MantissaBits {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrBadLength, len(data), f.Len())
	}
	word := new(big.Int).SetBytes(data)
	expMask := big.NewInt(int64(1<<f.ExponentBits - 1))
	exp := new(big.Int).And(word, expMask)
	mantissa := new(big.Int).Rsh(word, uint(f.ExponentBits))

	out := new(big.Int).Mul(mantissa, new(big.Int).Exp(ten, exp, nil))
	if out.Cmp(maxU128) > 0 {
		return nil, ErrOverflow
	}
	return out, nil
}

// Closest returns the representable value Pack rounds v to.
func (f Format) Closest(v *big.Int) (*big.Int, error) {
	packed, err := f.Pack(v)
	if err != nil {
		return nil, err
	}
	return f.Unpack(packed)
}
