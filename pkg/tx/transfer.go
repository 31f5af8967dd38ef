package tx

import (
	"github.com/uhyunpark/zklink-signer/pkg/codec"
	"github.com/uhyunpark/zklink-signer/pkg/crypto"
	"github.com/uhyunpark/zklink-signer/pkg/types"
)

// TransferBuilder holds the raw inputs of a Transfer.
type TransferBuilder struct {
	AccountID        types.AccountID
	ToAddress        types.ZkLinkAddress
	FromSubAccountID types.SubAccountID
	ToSubAccountID   types.SubAccountID
	Token            types.TokenID
	Amount           types.BigUint
	Fee              types.BigUint
	Nonce            types.Nonce
	Timestamp        types.TimeStamp
}

// Transfer moves funds between layer-two accounts.
type Transfer struct {
	AccountID        types.AccountID        `json:"accountId"`
	FromSubAccountID types.SubAccountID     `json:"fromSubAccountId"`
	To               types.ZkLinkAddress    `json:"to"`
	ToSubAccountID   types.SubAccountID     `json:"toSubAccountId"`
	Token            types.TokenID          `json:"token"`
	Amount           types.BigUint          `json:"amount"`
	Fee              types.BigUint          `json:"fee"`
	Nonce            types.Nonce            `json:"nonce"`
	Signature        crypto.ZkLinkSignature `json:"signature"`
	Ts               types.TimeStamp        `json:"ts"`
}

func NewTransfer(b TransferBuilder) (Transfer, error) {
	t := Transfer{
		AccountID:        b.AccountID,
		FromSubAccountID: b.FromSubAccountID,
		To:               b.ToAddress,
		ToSubAccountID:   b.ToSubAccountID,
		Token:            b.Token,
		Amount:           b.Amount,
		Fee:              b.Fee,
		Nonce:            b.Nonce,
		Ts:               b.Timestamp,
	}
	if err := t.Validate(); err != nil {
		return Transfer{}, err
	}
	return t, nil
}

func (t Transfer) TxType() TxType { return TxTypeTransfer }

func (t Transfer) Validate() error {
	var v types.Validator
	v.AccountID("accountId", t.AccountID)
	v.SubAccountID("fromSubAccountId", t.FromSubAccountID)
	v.Recipient("to", t.To)
	v.SubAccountID("toSubAccountId", t.ToSubAccountID)
	v.TokenID("token", t.Token)
	v.AmountPackable("amount", t.Amount)
	v.FeePackable("fee", t.Fee)
	v.Nonce("nonce", t.Nonce)
	return v.Err()
}

func (t Transfer) Bytes() []byte {
	out, err := codec.NewWriter(transferBytesLen).
		U8(uint8(TxTypeTransfer)).
		U32(uint32(t.AccountID)).
		U8(uint8(t.FromSubAccountID)).
		Address(t.To).
		U8(uint8(t.ToSubAccountID)).
		Narrow16(uint32(t.Token)).
		PackedAmount(t.Amount).
		PackedFee(t.Fee).
		U32(uint32(t.Nonce)).
		U32(uint32(t.Ts)).
		Bytes()
	if err != nil {
		return nil
	}
	return out
}

// EthSignMessage is the text the layer-one key signs. tokenSymbol is
// resolved by the caller.
func (t Transfer) EthSignMessage(tokenSymbol string) string {
	return appendNonceLine(ethSignMessagePart("Transfer", tokenSymbol, t.Amount, t.Fee, t.To), t.Nonce)
}

// WithSignature returns a copy carrying sig.
func (t Transfer) WithSignature(sig crypto.ZkLinkSignature) Transfer {
	t.Signature = sig.Clone()
	return t
}
