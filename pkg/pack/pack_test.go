package pack

import (
	"encoding/hex"
	"math/big"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBig(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad integer " + s)
	}
	return v
}

func TestPackFixtures(t *testing.T) {
	cases := []struct {
		name   string
		format Format
		input  string
		result string
	}{
		{name: "amount zero", format: Amount, input: "0", result: "0000000000"},
		{name: "amount 10000", format: Amount, input: "10000", result: "000004e200"},
		{name: "amount max mantissa", format: Amount, input: "34359738367", result: "ffffffffe0"},
		{name: "fee 3", format: Fee, input: "3", result: "0060"},
		{name: "fee max", format: Fee, input: "20470000000000000000000000000000000", result: "ffff"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			packed, err := c.format.Pack(mustBig(c.input))
			require.NoError(t, err)
			assert.Equal(t, c.result, hex.EncodeToString(packed))

			unpacked, err := c.format.Unpack(packed)
			require.NoError(t, err)
			assert.Equal(t, c.input, unpacked.String())
		})
	}
}

func TestPackabilityScenarios(t *testing.T) {
	amount := mustBig("1234567899808787")
	assert.False(t, IsAmountPackable(amount))

	closestAmount, err := ClosestPackableAmount(amount)
	require.NoError(t, err)
	assert.Equal(t, "1234567899800000", closestAmount.String())
	assert.True(t, IsAmountPackable(closestAmount))
	assert.True(t, closestAmount.Cmp(amount) <= 0)

	closestFee, err := ClosestPackableFee(amount)
	require.NoError(t, err)
	assert.Equal(t, "1234000000000000", closestFee.String())
	assert.NotEqual(t, closestAmount.String(), closestFee.String())
	assert.False(t, IsFeePackable(closestAmount))

	fee := mustBig("10000567777")
	assert.False(t, IsFeePackable(fee))
	closestFee, err = ClosestPackableFee(fee)
	require.NoError(t, err)
	assert.Equal(t, "10000000000", closestFee.String())
	assert.True(t, IsFeePackable(closestFee))
	assert.True(t, closestFee.Cmp(fee) <= 0)
}

func TestPackPrefersMaxMantissa(t *testing.T) {
	// maxMantissa+1 is closer to maxMantissa*10^0 than to 3435973836*10^1
	v := mustBig("34359738368")
	out, err := ClosestPackableAmount(v)
	require.NoError(t, err)
	assert.Equal(t, "34359738367", out.String())

	out, err = ClosestPackableFee(big.NewInt(2048))
	require.NoError(t, err)
	assert.Equal(t, "2047", out.String())
}

func TestPackErrors(t *testing.T) {
	_, err := PackAmount(big.NewInt(-1))
	assert.ErrorIs(t, err, ErrNegative)

	_, err = PackFee(mustBig("20480000000000000000000000000000000"))
	assert.ErrorIs(t, err, ErrTooBig)

	_, err = PackAmount(new(big.Int).Lsh(big.NewInt(1), 128))
	assert.ErrorIs(t, err, ErrTooBig)

	_, err = ClosestPackableAmount(mustBig("100000000000000000000000000000000000000"))
	assert.ErrorIs(t, err, ErrTooBig)

	_, err = UnpackFee([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrBadLength)

	_, err = UnpackAmount([]byte{0xff, 0xff, 0xff, 0xff, 0xff})
	assert.ErrorIs(t, err, ErrOverflow)

	assert.False(t, IsAmountPackable(big.NewInt(-5)))
	assert.False(t, IsFeePackable(nil))
}

func randomDecimal(r *rand.Rand, maxDigits int) *big.Int {
	n := 1 + r.Intn(maxDigits)
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteByte(byte('0' + r.Intn(10)))
	}
	return mustBig(sb.String())
}

func TestClosestPackableProperties(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	classes := []struct {
		name      string
		closest   func(*big.Int) (*big.Int, error)
		packable  func(*big.Int) bool
		maxDigits int
	}{
		{name: "amount", closest: ClosestPackableAmount, packable: IsAmountPackable, maxDigits: 37},
		{name: "fee", closest: ClosestPackableFee, packable: IsFeePackable, maxDigits: 34},
	}
	for _, c := range classes {
		t.Run(c.name, func(t *testing.T) {
			for i := 0; i < 500; i++ {
				v := randomDecimal(r, c.maxDigits)
				once, err := c.closest(v)
				require.NoError(t, err, "value %s", v)
				assert.True(t, c.packable(once), "closest(%s) = %s is not packable", v, once)
				assert.True(t, once.Cmp(v) <= 0, "closest(%s) = %s rounds up", v, once)

				twice, err := c.closest(once)
				require.NoError(t, err)
				assert.Equal(t, once.String(), twice.String(), "closest is not idempotent for %s", v)
			}
		})
	}
}

func TestRoundTripDecode(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		mantissa := r.Int63n(1 << AmountMantissaBits)
		exp := r.Intn(28)
		v := new(big.Int).Mul(big.NewInt(mantissa), new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil))
		if !IsAmountPackable(v) {
			continue
		}
		packed, err := PackAmount(v)
		require.NoError(t, err)
		require.Len(t, packed, AmountBytes)
		out, err := UnpackAmount(packed)
		require.NoError(t, err)
		assert.Equal(t, v.String(), out.String())
	}
}
