package tx

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uhyunpark/zklink-signer/pkg/types"
)

func sampleOrderBuilder(isSell bool) OrderBuilder {
	return OrderBuilder{
		AccountID:    5,
		SubAccountID: 1,
		SlotID:       1,
		Nonce:        1,
		BaseTokenID:  18,
		QuoteTokenID: 145,
		Amount:       types.NewBigUint(10000),
		Price:        types.MustParseBigUint("1000000000000000000"),
		IsSell:       isSell,
		MakerFeeRate: 5,
		TakerFeeRate: 10,
	}
}

func sampleContractPrices(n int) []ContractPrice {
	out := make([]ContractPrice, n)
	for i := range out {
		out[i] = ContractPrice{PairID: types.PairID(i), MarketPrice: types.MustParseBigUint("1000000000000000000")}
	}
	return out
}

func sampleMarginPrices() []SpotPriceInfo {
	return []SpotPriceInfo{
		{TokenID: 17, Price: types.MustParseBigUint("1000000000000000000")},
		{TokenID: 18, Price: types.MustParseBigUint("1000000000000000000")},
		{TokenID: 145, Price: types.MustParseBigUint("1000000000000000000")},
	}
}

func signedOrder(t *testing.T, isSell bool, fill byte) Order {
	t.Helper()
	order, err := NewOrder(sampleOrderBuilder(isSell))
	require.NoError(t, err)
	signed, err := order.CreateSignedOrder(testL2Signer(t, fill))
	require.NoError(t, err)
	return signed
}

func sampleMatchingBuilder(t *testing.T) OrderMatchingBuilder {
	return OrderMatchingBuilder{
		AccountID:         10,
		SubAccountID:      1,
		Taker:             signedOrder(t, true, 1),
		Maker:             signedOrder(t, false, 2),
		Fee:               types.NewBigUint(3),
		FeeToken:          18,
		ContractPrices:    sampleContractPrices(types.UsedPositionNumber),
		MarginPrices:      sampleMarginPrices(),
		ExpectBaseAmount:  types.NewBigUint(10000),
		ExpectQuoteAmount: types.NewBigUint(20000),
	}
}

func TestOrderBytes(t *testing.T) {
	order, err := NewOrder(sampleOrderBuilder(true))
	require.NoError(t, err)

	out := order.Bytes()
	require.Len(t, out, orderBytesLen)
	assert.Equal(t, "ff"+"00000005"+"01"+"0001"+"000001"+"0012"+"0091", hex.EncodeToString(out[:15]))
	assert.Equal(t, "00000000000000000de0b6b3a7640000", "00"+hex.EncodeToString(out[15:30]))
	assert.Equal(t, "01"+"050a"+"00"+"000004e200", hex.EncodeToString(out[30:]))
}

func TestOrderValidation(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(b *OrderBuilder)
		field string
	}{
		{"nonce above 24 bits", func(b *OrderBuilder) { b.Nonce = types.MaxOrderNonce }, "nonce"},
		{"slot too large", func(b *OrderBuilder) { b.SlotID = 1 << 16 }, "slotId"},
		{"price too small", func(b *OrderBuilder) { b.Price = types.NewBigUint(1) }, "price"},
		{"price too large", func(b *OrderBuilder) {
			b.Price = types.MustParseBigUint("1329227995784915872000000000000000000")
		}, "price"},
		{"amount not packable", func(b *OrderBuilder) { b.Amount = types.MustParseBigUint("1234567899808787") }, "amount"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b := sampleOrderBuilder(false)
			c.edit(&b)
			_, err := NewOrder(b)
			requireField(t, err, c.field)
		})
	}
}

func TestCreateSignedOrder(t *testing.T) {
	order, err := NewOrder(sampleOrderBuilder(true))
	require.NoError(t, err)
	assert.False(t, order.IsSigned())

	signer := testL2Signer(t, 9)
	signed, err := order.CreateSignedOrder(signer)
	require.NoError(t, err)

	assert.False(t, order.IsSigned(), "original order must stay unsigned")
	assert.True(t, signed.IsSigned())
	assert.True(t, signed.Signature.Verify(signed.Bytes()))
	assert.Equal(t, signer.PubKeyHash(), signed.Signature.PubKeyHash())
	assert.Equal(t, order.Bytes(), signed.Bytes(), "signature is not part of the canonical bytes")
}

func TestOrderEthSignMessage(t *testing.T) {
	order, err := NewOrder(sampleOrderBuilder(true))
	require.NoError(t, err)
	assert.Equal(t, "Order for 0.00000000000001 USDC -> BTC\nprice: 1000000000000000000\nNonce: 1",
		order.EthSignMessage("USDC", "BTC"))

	b := sampleOrderBuilder(true)
	b.Amount = types.NewBigUint(0)
	limit, err := NewOrder(b)
	require.NoError(t, err)
	assert.Equal(t, "Limit order for USDC -> BTC\nprice: 1000000000000000000\nNonce: 1",
		limit.EthSignMessage("USDC", "BTC"))
}

func TestOrderMatching(t *testing.T) {
	m, err := NewOrderMatching(sampleMatchingBuilder(t))
	require.NoError(t, err)

	out := m.Bytes()
	require.Len(t, out, orderMatchingBytesLen)
	assert.Equal(t, []byte{8, 0, 0, 0, 10, 1}, out[:6])

	ordersHash, err := m.OrdersHash()
	require.NoError(t, err)
	require.Len(t, ordersHash, types.FrBytes)
	assert.Equal(t, ordersHash, out[6:37])
	assert.Equal(t, []byte{0, 18, 0, 96}, out[37:41])
	assert.Equal(t, out, m.Bytes())

	assert.Equal(t, "OrderMatching fee: 0.000000000000000003 18\n", m.EthSignMessage())
	assert.True(t, m.IsExpectMode())
	assert.Equal(t, "10000", m.TakerExpectAmount().String(), "taker sells base")
	assert.Equal(t, "20000", m.MakerExpectAmount().String(), "maker buys with quote")
}

func TestOrderMatchingHashCoversPrices(t *testing.T) {
	b := sampleMatchingBuilder(t)
	first, err := NewOrderMatching(b)
	require.NoError(t, err)

	b.ContractPrices = sampleContractPrices(types.UsedPositionNumber)
	b.ContractPrices[2].MarketPrice = types.MustParseBigUint("2000000000000000000")
	second, err := NewOrderMatching(b)
	require.NoError(t, err)

	assert.NotEqual(t, first.Bytes(), second.Bytes())
}

func TestOrderMatchingValidation(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(t *testing.T, b *OrderMatchingBuilder)
		field string
	}{
		{"unsigned taker", func(t *testing.T, b *OrderMatchingBuilder) {
			order, err := NewOrder(sampleOrderBuilder(true))
			require.NoError(t, err)
			b.Taker = order
		}, "taker.signature"},
		{"unsigned maker", func(t *testing.T, b *OrderMatchingBuilder) {
			order, err := NewOrder(sampleOrderBuilder(false))
			require.NoError(t, err)
			b.Maker = order
		}, "maker.signature"},
		{"same side", func(t *testing.T, b *OrderMatchingBuilder) {
			b.Maker = signedOrder(t, true, 2)
		}, "maker.isSell"},
		{"base token mismatch", func(t *testing.T, b *OrderMatchingBuilder) {
			ob := sampleOrderBuilder(false)
			ob.BaseTokenID = 17
			order, err := NewOrder(ob)
			require.NoError(t, err)
			b.Maker, err = order.CreateSignedOrder(testL2Signer(t, 2))
			require.NoError(t, err)
		}, "maker.baseTokenId"},
		{"five contract prices", func(t *testing.T, b *OrderMatchingBuilder) {
			b.ContractPrices = sampleContractPrices(types.UsedPositionNumber + 1)
		}, "oraclePrices.contractPrices"},
		{"unordered contract prices", func(t *testing.T, b *OrderMatchingBuilder) {
			b.ContractPrices[0], b.ContractPrices[1] = b.ContractPrices[1], b.ContractPrices[0]
		}, "oraclePrices.contractPrices[0].pairId"},
		{"two margin prices", func(t *testing.T, b *OrderMatchingBuilder) {
			b.MarginPrices = b.MarginPrices[:2]
		}, "oraclePrices.marginPrices"},
		{"oracle price too large", func(t *testing.T, b *OrderMatchingBuilder) {
			b.MarginPrices[1].Price = types.MustParseBigUint("1329227995784915872000000000000000000")
		}, "oraclePrices.marginPrices[1].price"},
		{"fee not packable", func(t *testing.T, b *OrderMatchingBuilder) {
			b.Fee = types.MustParseBigUint("10000567777")
		}, "fee"},
		{"expect amount above 128 bits", func(t *testing.T, b *OrderMatchingBuilder) {
			b.ExpectQuoteAmount = types.MustParseBigUint("340282366920938463463374607431768211456")
		}, "expectQuoteAmount"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b := sampleMatchingBuilder(t)
			c.edit(t, &b)
			_, err := NewOrderMatching(b)
			requireField(t, err, c.field)
		})
	}
}

func TestOrderMatchingCopiesInputs(t *testing.T) {
	b := sampleMatchingBuilder(t)
	m, err := NewOrderMatching(b)
	require.NoError(t, err)
	before := m.Bytes()

	b.ContractPrices[0].MarketPrice = types.NewBigUint(7)
	b.Taker.Signature.Signature[0] ^= 0xff
	assert.Equal(t, before, m.Bytes())
	assert.True(t, m.Taker.Signature.Verify(m.Taker.Bytes()))
}

func TestOraclePricesHash(t *testing.T) {
	prices, err := NewOraclePrices(sampleContractPrices(types.UsedPositionNumber), sampleMarginPrices())
	require.NoError(t, err)

	h, err := prices.Hash()
	require.NoError(t, err)
	assert.Len(t, h, 2*types.FrBytes)

	p := prices.PairPrice(3)
	require.NotNil(t, p)
	assert.Equal(t, "1000000000000000000", p.String())
	assert.Nil(t, prices.PairPrice(4))

	_, ok := prices.SpotPrice(145)
	assert.True(t, ok)
	_, ok = prices.SpotPrice(99)
	assert.False(t, ok)
}
