package types

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatUnits(t *testing.T) {
	cases := []struct {
		input    string
		decimals uint8
		result   string
	}{
		{input: "0", decimals: 18, result: "0.0"},
		{input: "1000000000000000000", decimals: 18, result: "1.0"},
		{input: "1500000000000000000", decimals: 18, result: "1.5"},
		{input: "10000", decimals: 18, result: "0.00000000000001"},
		{input: "3", decimals: 18, result: "0.000000000000000003"},
		{input: "100", decimals: 0, result: "100.0"},
		{input: "100", decimals: 1, result: "10.0"},
		{input: "123456", decimals: 6, result: "0.123456"},
	}
	for _, c := range cases {
		assert.Equal(t, c.result, FormatUnits(MustParseBigUint(c.input), c.decimals), "input %s", c.input)
	}
}

func TestParseBigUint(t *testing.T) {
	v, err := ParseBigUint("1234567899808787")
	require.NoError(t, err)
	assert.Equal(t, "1234567899808787", v.String())

	for _, bad := range []string{"", "-1", "1e5", "0x10", "1.5"} {
		_, err := ParseBigUint(bad)
		assert.Error(t, err, "input %q", bad)
	}

	var zero BigUint
	assert.True(t, zero.IsZero())
	assert.Equal(t, "0", zero.String())
}

func TestBigUintJSON(t *testing.T) {
	in := struct {
		Amount BigUint `json:"amount"`
	}{Amount: MustParseBigUint("340282366920938463463374607431768211455")}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"340282366920938463463374607431768211455"}`, string(data))

	var out struct {
		Amount BigUint `json:"amount"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, 0, in.Amount.Cmp(out.Amount))

	assert.Error(t, json.Unmarshal([]byte(`{"amount":12}`), &out))
}

func TestParseAddress(t *testing.T) {
	a, err := ParseAddress("0xAFAFf3aD1a0425D792432D9eCD1c3e26Ef2C42E9")
	require.NoError(t, err)
	assert.Equal(t, "0xafaff3ad1a0425d792432d9ecd1c3e26ef2c42e9", a.String())
	fixed := a.Fixed()
	assert.Equal(t, make([]byte, 12), fixed[:12])
	assert.Equal(t, a.Bytes(), fixed[12:])

	_, err = ParseAddress("AFAFf3aD1a0425D792432D9eCD1c3e26Ef2C42E9")
	assert.Error(t, err, "missing prefix")
	_, err = ParseAddress("0xAFAFf3aD1a0425D792432D9eCD1c3e26Ef2C42")
	assert.Error(t, err, "wrong length")

	global := MustParseAddress("0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")
	assert.True(t, global.IsGlobalAccount())
}

func TestValidatorFirstFailureWins(t *testing.T) {
	var v Validator
	v.AccountID("account_id", 10)
	v.TokenID("token", 5)
	v.SubAccountID("sub_account_id", 40)
	err := v.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "token", ve.Field)
}

func TestValidatorRules(t *testing.T) {
	cases := []struct {
		name  string
		check func(v *Validator)
		ok    bool
	}{
		{"account max", func(v *Validator) { v.AccountID("a", MaxAccountID) }, true},
		{"account over", func(v *Validator) { v.AccountID("a", MaxAccountID+1) }, false},
		{"global account", func(v *Validator) { v.AccountID("a", GlobalAssetAccount) }, false},
		{"sub account", func(v *Validator) { v.SubAccountID("s", 31) }, true},
		{"sub account over", func(v *Validator) { v.SubAccountID("s", 32) }, false},
		{"chain over", func(v *Validator) { v.ChainID("c", 32) }, false},
		{"token usd", func(v *Validator) { v.TokenID("t", 1) }, true},
		{"token usdx", func(v *Validator) { v.TokenID("t", 16) }, false},
		{"token 17", func(v *Validator) { v.TokenID("t", 17) }, true},
		{"token over", func(v *Validator) { v.TokenID("t", 65536) }, false},
		{"pair 3", func(v *Validator) { v.PairID("p", 3) }, true},
		{"pair 4", func(v *Validator) { v.PairID("p", 4) }, false},
		{"slot over", func(v *Validator) { v.SlotID("s", 65536) }, false},
		{"nonce max", func(v *Validator) { v.Nonce("n", MaxNonce) }, false},
		{"order nonce max", func(v *Validator) { v.OrderNonce("n", MaxOrderNonce) }, false},
		{"order nonce", func(v *Validator) { v.OrderNonce("n", MaxOrderNonce-1) }, true},
		{"price min", func(v *Validator) { v.Price("p", NewBigUint(1)) }, false},
		{"price", func(v *Validator) { v.Price("p", NewBigUint(2)) }, true},
		{"price max", func(v *Validator) { v.Price("p", BigUint{v: MaxPrice}) }, false},
		{"external price zero", func(v *Validator) { v.ExternalPrice("p", NewBigUint(0)) }, true},
		{"fee ratio", func(v *Validator) { v.WithdrawFeeRatio("r", 10000) }, true},
		{"fee ratio over", func(v *Validator) { v.WithdrawFeeRatio("r", 10001) }, false},
		{"amount packable", func(v *Validator) { v.AmountPackable("a", MustParseBigUint("1234567899800000")) }, true},
		{"amount unpackable", func(v *Validator) { v.AmountPackable("a", MustParseBigUint("1234567899808787")) }, false},
		{"fee unpackable", func(v *Validator) { v.FeePackable("f", MustParseBigUint("10000567777")) }, false},
		{"u128 over", func(v *Validator) { v.Uint128("a", MustParseBigUint("340282366920938463463374607431768211456")) }, false},
		{"recipient zero", func(v *Validator) { v.Recipient("to", MustParseAddress("0x0000000000000000000000000000000000000000")) }, false},
		{"recipient missing", func(v *Validator) { v.Recipient("to", ZkLinkAddress{}) }, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var v Validator
			c.check(&v)
			if c.ok {
				assert.NoError(t, v.Err())
			} else {
				assert.ErrorIs(t, v.Err(), ErrValidation)
			}
		})
	}
}

func TestParsePubKeyHash(t *testing.T) {
	h, err := ParsePubKeyHash("0xd8d5fb6a6caef06aa3dc2abdcdc240987e5330fe")
	require.NoError(t, err)
	assert.Equal(t, "0xd8d5fb6a6caef06aa3dc2abdcdc240987e5330fe", h.String())

	again, err := ParsePubKeyHash(h.String())
	require.NoError(t, err)
	assert.Equal(t, h, again)

	var decoded PubKeyHash
	require.NoError(t, json.Unmarshal([]byte(`"0xd8d5fb6a6caef06aa3dc2abdcdc240987e5330fe"`), &decoded))
	assert.Equal(t, h, decoded)

	_, err = ParsePubKeyHash("d8d5fb6a6caef06aa3dc2abdcdc240987e5330fe")
	assert.Error(t, err, "missing prefix")
	_, err = ParsePubKeyHash("0xd8d5fb6a6caef06aa3dc2abdcdc240987e5330")
	assert.Error(t, err, "short")
	_, err = ParsePubKeyHash("0xzz")
	assert.Error(t, err, "not hex")
}
