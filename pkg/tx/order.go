package tx

import (
	"fmt"

	"github.com/uhyunpark/zklink-signer/pkg/codec"
	"github.com/uhyunpark/zklink-signer/pkg/crypto"
	"github.com/uhyunpark/zklink-signer/pkg/types"
)

type OrderBuilder struct {
	AccountID    types.AccountID
	SubAccountID types.SubAccountID
	SlotID       types.SlotID
	Nonce        types.Nonce
	BaseTokenID  types.TokenID
	QuoteTokenID types.TokenID
	Amount       types.BigUint
	Price        types.BigUint
	IsSell       bool
	HasSubsidy   bool
	MakerFeeRate uint8
	TakerFeeRate uint8
}

// Order is one side of a trade. It is signed on its own and later embedded
// in an OrderMatching.
type Order struct {
	AccountID    types.AccountID        `json:"accountId"`
	SubAccountID types.SubAccountID     `json:"subAccountId"`
	SlotID       types.SlotID           `json:"slotId"`
	Nonce        types.Nonce            `json:"nonce"`
	BaseTokenID  types.TokenID          `json:"baseTokenId"`
	QuoteTokenID types.TokenID          `json:"quoteTokenId"`
	Amount       types.BigUint          `json:"amount"`
	Price        types.BigUint          `json:"price"`
	IsSell       bool                   `json:"isSell"`
	HasSubsidy   bool                   `json:"hasSubsidy"`
	FeeRates     [2]uint8               `json:"feeRates"` // maker, taker
	Signature    crypto.ZkLinkSignature `json:"signature"`
}

func NewOrder(b OrderBuilder) (Order, error) {
	o := Order{
		AccountID:    b.AccountID,
		SubAccountID: b.SubAccountID,
		SlotID:       b.SlotID,
		Nonce:        b.Nonce,
		BaseTokenID:  b.BaseTokenID,
		QuoteTokenID: b.QuoteTokenID,
		Amount:       b.Amount,
		Price:        b.Price,
		IsSell:       b.IsSell,
		HasSubsidy:   b.HasSubsidy,
		FeeRates:     [2]uint8{b.MakerFeeRate, b.TakerFeeRate},
	}
	if err := o.Validate(); err != nil {
		return Order{}, err
	}
	return o, nil
}

func (o Order) TxType() TxType { return TxTypeOrder }

func (o Order) Validate() error {
	var v types.Validator
	v.AccountID("accountId", o.AccountID)
	v.SubAccountID("subAccountId", o.SubAccountID)
	v.SlotID("slotId", o.SlotID)
	v.OrderNonce("nonce", o.Nonce)
	v.TokenID("baseTokenId", o.BaseTokenID)
	v.TokenID("quoteTokenId", o.QuoteTokenID)
	v.AmountPackable("amount", o.Amount)
	v.Price("price", o.Price)
	return v.Err()
}

func (o Order) Bytes() []byte {
	out, err := codec.NewWriter(orderBytesLen).
		U8(uint8(TxTypeOrder)).
		U32(uint32(o.AccountID)).
		U8(uint8(o.SubAccountID)).
		Narrow16(uint32(o.SlotID)).
		U24(uint32(o.Nonce)).
		Narrow16(uint32(o.BaseTokenID)).
		Narrow16(uint32(o.QuoteTokenID)).
		BigPadded(o.Price.Int(), types.PriceBytes).
		U8(boolByte(o.IsSell)).
		U8(o.FeeRates[0]).
		U8(o.FeeRates[1]).
		U8(boolByte(o.HasSubsidy)).
		PackedAmount(o.Amount).
		Bytes()
	if err != nil {
		return nil
	}
	return out
}

func (o Order) IsSigned() bool { return !o.Signature.IsEmpty() }

// CreateSignedOrder returns a copy of the order carrying its own layer-two
// signature.
func (o Order) CreateSignedOrder(signer L2Signer) (Order, error) {
	if err := o.Validate(); err != nil {
		return Order{}, err
	}
	sig, err := signer.Sign(o.Bytes())
	if err != nil {
		return Order{}, fmt.Errorf("failed to sign order: %w", err)
	}
	o.Signature = sig.Clone()
	return o, nil
}

// EthSignMessage describes the order for a wallet. Price is shown raw.
func (o Order) EthSignMessage(quoteTokenSymbol, baseTokenSymbol string) string {
	var head string
	if o.Amount.IsZero() {
		head = fmt.Sprintf("Limit order for %s -> %s\n", quoteTokenSymbol, baseTokenSymbol)
	} else {
		head = fmt.Sprintf("Order for %s %s -> %s\n",
			types.FormatUnits(o.Amount, types.TokenMaxPrecision), quoteTokenSymbol, baseTokenSymbol)
	}
	return head + fmt.Sprintf("price: %s\nNonce: %d", o.Price, o.Nonce)
}

func (o Order) clone() Order {
	o.Signature = o.Signature.Clone()
	return o
}
