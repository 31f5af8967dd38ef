package tx

import (
	"fmt"

	"github.com/uhyunpark/zklink-signer/pkg/codec"
	"github.com/uhyunpark/zklink-signer/pkg/crypto"
	"github.com/uhyunpark/zklink-signer/pkg/types"
)

// OrderMatchingBuilder combines two signed orders with the oracle price
// snapshot and the settlement fee.
type OrderMatchingBuilder struct {
	AccountID         types.AccountID
	SubAccountID      types.SubAccountID
	Taker             Order
	Maker             Order
	Fee               types.BigUint
	FeeToken          types.TokenID
	ContractPrices    []ContractPrice
	MarginPrices      []SpotPriceInfo
	ExpectBaseAmount  types.BigUint
	ExpectQuoteAmount types.BigUint
}

// OrderMatching settles a taker order against a maker order.
type OrderMatching struct {
	AccountID         types.AccountID        `json:"accountId"`
	SubAccountID      types.SubAccountID     `json:"subAccountId"`
	Taker             Order                  `json:"taker"`
	Maker             Order                  `json:"maker"`
	OraclePrices      OraclePrices           `json:"oraclePrices"`
	Fee               types.BigUint          `json:"fee"`
	FeeToken          types.TokenID          `json:"feeToken"`
	ExpectBaseAmount  types.BigUint          `json:"expectBaseAmount"`
	ExpectQuoteAmount types.BigUint          `json:"expectQuoteAmount"`
	Signature         crypto.ZkLinkSignature `json:"signature"`
}

func NewOrderMatching(b OrderMatchingBuilder) (OrderMatching, error) {
	m := OrderMatching{
		AccountID:    b.AccountID,
		SubAccountID: b.SubAccountID,
		Taker:        b.Taker.clone(),
		Maker:        b.Maker.clone(),
		OraclePrices: OraclePrices{
			ContractPrices: b.ContractPrices,
			MarginPrices:   b.MarginPrices,
		}.clone(),
		Fee:               b.Fee,
		FeeToken:          b.FeeToken,
		ExpectBaseAmount:  b.ExpectBaseAmount,
		ExpectQuoteAmount: b.ExpectQuoteAmount,
	}
	if err := m.Validate(); err != nil {
		return OrderMatching{}, err
	}
	return m, nil
}

func (m OrderMatching) TxType() TxType { return TxTypeOrderMatching }

// Validate checks the settlement fields and cross-checks the two orders.
// Order signatures must be present; they are not verified here.
func (m OrderMatching) Validate() error {
	var v types.Validator
	v.AccountID("accountId", m.AccountID)
	v.SubAccountID("subAccountId", m.SubAccountID)

	v.Check("taker.signature", m.Taker.IsSigned(), "taker order is not signed")
	v.Check("maker.signature", m.Maker.IsSigned(), "maker order is not signed")
	v.Merge("taker", m.Taker.Validate())
	v.Merge("maker", m.Maker.Validate())

	v.Check("maker.baseTokenId", m.Maker.BaseTokenID == m.Taker.BaseTokenID,
		fmt.Sprintf("base token mismatch: maker %d, taker %d", m.Maker.BaseTokenID, m.Taker.BaseTokenID))
	v.Check("maker.quoteTokenId", m.Maker.QuoteTokenID == m.Taker.QuoteTokenID,
		fmt.Sprintf("quote token mismatch: maker %d, taker %d", m.Maker.QuoteTokenID, m.Taker.QuoteTokenID))
	v.Check("taker.quoteTokenId", m.Taker.BaseTokenID != m.Taker.QuoteTokenID, "base and quote token must differ")
	v.Check("maker.isSell", m.Maker.IsSell != m.Taker.IsSell, "maker and taker must be on opposite sides")

	v.Merge("oraclePrices", m.OraclePrices.Validate())

	v.FeePackable("fee", m.Fee)
	v.TokenID("feeToken", m.FeeToken)
	v.Uint128("expectBaseAmount", m.ExpectBaseAmount)
	v.Uint128("expectQuoteAmount", m.ExpectQuoteAmount)
	return v.Err()
}

// OrdersHash commits to maker bytes || taker bytes || oracle price hash,
// zero padded to OrdersBytes.
func (m OrderMatching) OrdersHash() ([]byte, error) {
	maker, taker := m.Maker.Bytes(), m.Taker.Bytes()
	if maker == nil || taker == nil {
		return nil, fmt.Errorf("orders cannot be encoded")
	}
	prices, err := m.OraclePrices.Hash()
	if err != nil {
		return nil, err
	}
	n := len(maker) + len(taker) + len(prices)
	if n > types.OrdersBytes {
		return nil, fmt.Errorf("orders preimage is %d bytes, limit %d", n, types.OrdersBytes)
	}
	preimage := make([]byte, types.OrdersBytes)
	copy(preimage, maker)
	copy(preimage[len(maker):], taker)
	copy(preimage[len(maker)+len(taker):], prices)
	return hash31(preimage), nil
}

func (m OrderMatching) Bytes() []byte {
	ordersHash, err := m.OrdersHash()
	if err != nil {
		return nil
	}
	out, err := codec.NewWriter(orderMatchingBytesLen).
		U8(uint8(TxTypeOrderMatching)).
		U32(uint32(m.AccountID)).
		U8(uint8(m.SubAccountID)).
		Raw(ordersHash).
		Narrow16(uint32(m.FeeToken)).
		PackedFee(m.Fee).
		U128(m.ExpectBaseAmount).
		U128(m.ExpectQuoteAmount).
		Bytes()
	if err != nil {
		return nil
	}
	return out
}

// EthSignMessage names the fee token by id; no symbol is involved.
func (m OrderMatching) EthSignMessage() string {
	return fmt.Sprintf("OrderMatching fee: %s %d\n",
		types.FormatUnits(m.Fee, types.TokenMaxPrecision), m.FeeToken)
}

// MakerExpectAmount is what the maker expects to give up.
func (m OrderMatching) MakerExpectAmount() types.BigUint {
	if m.Maker.IsSell {
		return m.ExpectBaseAmount
	}
	return m.ExpectQuoteAmount
}

func (m OrderMatching) TakerExpectAmount() types.BigUint {
	if m.Taker.IsSell {
		return m.ExpectBaseAmount
	}
	return m.ExpectQuoteAmount
}

// IsExpectMode reports whether both expected amounts pin the fill.
func (m OrderMatching) IsExpectMode() bool {
	return !m.ExpectBaseAmount.IsZero() && !m.ExpectQuoteAmount.IsZero()
}

// ToZkLinkTx wraps a copy of m in the submission envelope.
func (m OrderMatching) ToZkLinkTx() ZkLinkTx {
	return NewZkLinkTx(m.clone())
}

func (m OrderMatching) WithSignature(sig crypto.ZkLinkSignature) OrderMatching {
	m = m.clone()
	m.Signature = sig.Clone()
	return m
}

func (m OrderMatching) clone() OrderMatching {
	m.Taker = m.Taker.clone()
	m.Maker = m.Maker.clone()
	m.OraclePrices = m.OraclePrices.clone()
	m.Signature = m.Signature.Clone()
	return m
}
