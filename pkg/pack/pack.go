// Package pack implements the compact decimal floating point encoding used
// for token amounts and fees inside layer-2 transactions.
package pack

import (
	"fmt"
	"math/big"
)

const (
	AmountExponentBits = 5
	AmountMantissaBits = 35
	FeeExponentBits    = 5
	FeeMantissaBits    = 11

	AmountBytes = (AmountExponentBits + AmountMantissaBits) / 8
	FeeBytes    = (FeeExponentBits + FeeMantissaBits) / 8
)

var (
	Amount = Format{ExponentBits: AmountExponentBits, MantissaBits: AmountMantissaBits}
	Fee    = Format{ExponentBits: FeeExponentBits, MantissaBits: FeeMantissaBits}
)

var (
	// 34359738367 * 10^27
	maxPackableAmount, _ = new(big.Int).SetString("34359738367000000000000000000000000000", 10)
	// 2047 * 10^31
	maxPackableFee, _ = new(big.Int).SetString("20470000000000000000000000000000000", 10)
)

func PackAmount(v *big.Int) ([]byte, error) { return Amount.Pack(v) }

func PackFee(v *big.Int) ([]byte, error) { return Fee.Pack(v) }

func UnpackAmount(data []byte) (*big.Int, error) { return Amount.Unpack(data) }

func UnpackFee(data []byte) (*big.Int, error) { return Fee.Unpack(data) }

// IsAmountPackable reports whether v survives an amount pack/unpack round
// trip unchanged.
func IsAmountPackable(v *big.Int) bool {
	return isPackable(Amount, maxPackableAmount, v)
}

// IsFeePackable reports whether v survives a fee pack/unpack round trip
// unchanged.
func IsFeePackable(v *big.Int) bool {
	return isPackable(Fee, maxPackableFee, v)
}

func isPackable(f Format, limit, v *big.Int) bool {
	if v == nil || v.Sign() < 0 || v.Cmp(limit) > 0 {
		return false
	}
	out, err := f.Closest(v)
	if err != nil {
		return false
	}
	return out.Cmp(v) == 0
}

// ClosestPackableAmount rounds v down to the nearest packable amount.
func ClosestPackableAmount(v *big.Int) (*big.Int, error) {
	return closest(Amount, maxPackableAmount, v)
}

// ClosestPackableFee rounds v down to the nearest packable fee.
func ClosestPackableFee(v *big.Int) (*big.Int, error) {
	return closest(Fee, maxPackableFee, v)
}

func closest(f Format, limit, v *big.Int) (*big.Int, error) {
	if v == nil {
		return nil, ErrNegative
	}
	out, err := f.Closest(v)
	if err != nil {
		return nil, err
	}
	if out.Cmp(limit) > 0 {
		return nil, fmt.Errorf("%w: %s rounds above %s", ErrTooBig, v, limit)
	}
	return out, nil
}
