package types

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// BigUint is an immutable non-negative integer. It travels as a base-10
// string in JSON so no precision is lost at the boundary.
type BigUint struct {
	v *big.Int
}

func NewBigUint(x uint64) BigUint {
	return BigUint{v: new(big.Int).SetUint64(x)}
}

// BigUintFromInt copies x; negative values are rejected.
func BigUintFromInt(x *big.Int) (BigUint, error) {
	if x == nil {
		return BigUint{}, nil
	}
	if x.Sign() < 0 {
		return BigUint{}, fmt.Errorf("negative value %s", x)
	}
	return BigUint{v: new(big.Int).Set(x)}, nil
}

// ParseBigUint accepts plain base-10 digits only: no sign, no exponent.
func ParseBigUint(s string) (BigUint, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return BigUint{}, fmt.Errorf("empty number")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return BigUint{}, fmt.Errorf("invalid decimal number %q", s)
		}
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return BigUint{}, fmt.Errorf("invalid decimal number %q", s)
	}
	return BigUint{v: v}, nil
}

func MustParseBigUint(s string) BigUint {
	u, err := ParseBigUint(s)
	if err != nil {
		panic(err)
	}
	return u
}

// Int returns a copy of the value; the zero BigUint yields 0.
func (u BigUint) Int() *big.Int {
	if u.v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(u.v)
}

func (u BigUint) IsZero() bool { return u.v == nil || u.v.Sign() == 0 }

func (u BigUint) Cmp(o BigUint) int { return u.Int().Cmp(o.Int()) }

func (u BigUint) String() string {
	if u.v == nil {
		return "0"
	}
	return u.v.String()
}

func (u BigUint) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

func (u *BigUint) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("big uint must be a decimal string: %w", err)
	}
	parsed, err := ParseBigUint(s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// FormatUnits renders v as a decimal with the given number of fractional
// digits, trimming trailing zeros but always keeping one: 1.0, 0.05, 12.5.
func FormatUnits(v BigUint, decimals uint8) string {
	digits := v.String()
	n := int(decimals)
	if len(digits) < n {
		digits = strings.Repeat("0", n-len(digits)) + digits
	}
	whole, frac := digits[:len(digits)-n], digits[len(digits)-n:]
	if whole == "" {
		whole = "0"
	}
	frac = strings.TrimRight(frac, "0")
	if frac == "" {
		frac = "0"
	}
	return whole + "." + frac
}
