package tx

import (
	"bytes"
	"fmt"
	"math"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/uhyunpark/zklink-signer/pkg/codec"
	"github.com/uhyunpark/zklink-signer/pkg/crypto"
	"github.com/uhyunpark/zklink-signer/pkg/types"
)

// WithdrawBuilder fields are listed in the canonical argument order used by
// every Withdraw entry point.
type WithdrawBuilder struct {
	AccountID        types.AccountID
	SubAccountID     types.SubAccountID
	ToChainID        types.ChainID
	ToAddress        types.ZkLinkAddress
	L2SourceToken    types.TokenID
	L1TargetToken    types.TokenID
	Amount           types.BigUint
	CallData         []byte // optional
	Fee              types.BigUint
	Nonce            types.Nonce
	FastWithdraw     bool
	WithdrawFeeRatio uint16
	Timestamp        types.TimeStamp
}

// Withdraw moves funds from a layer-two account to a layer-one address.
type Withdraw struct {
	ToChainID        types.ChainID          `json:"toChainId"`
	AccountID        types.AccountID        `json:"accountId"`
	SubAccountID     types.SubAccountID     `json:"subAccountId"`
	To               types.ZkLinkAddress    `json:"to"`
	L2SourceToken    types.TokenID          `json:"l2SourceToken"`
	L1TargetToken    types.TokenID          `json:"l1TargetToken"`
	Amount           types.BigUint          `json:"amount"`
	CallData         hexutil.Bytes          `json:"callData,omitempty"`
	Fee              types.BigUint          `json:"fee"`
	Nonce            types.Nonce            `json:"nonce"`
	Signature        crypto.ZkLinkSignature `json:"signature"`
	FastWithdraw     bool                   `json:"fastWithdraw"`
	WithdrawFeeRatio uint16                 `json:"withdrawFeeRatio"`
	Ts               types.TimeStamp        `json:"ts"`
}

func NewWithdraw(b WithdrawBuilder) (Withdraw, error) {
	w := Withdraw{
		ToChainID:        b.ToChainID,
		AccountID:        b.AccountID,
		SubAccountID:     b.SubAccountID,
		To:               b.ToAddress,
		L2SourceToken:    b.L2SourceToken,
		L1TargetToken:    b.L1TargetToken,
		Amount:           b.Amount,
		Fee:              b.Fee,
		Nonce:            b.Nonce,
		FastWithdraw:     b.FastWithdraw,
		WithdrawFeeRatio: b.WithdrawFeeRatio,
		Ts:               b.Timestamp,
	}
	if len(b.CallData) > 0 {
		w.CallData = bytes.Clone(b.CallData)
	}
	if err := w.Validate(); err != nil {
		return Withdraw{}, err
	}
	return w, nil
}

func (w Withdraw) TxType() TxType { return TxTypeWithdraw }

func (w Withdraw) Validate() error {
	var v types.Validator
	v.ChainID("toChainId", w.ToChainID)
	v.AccountID("accountId", w.AccountID)
	v.SubAccountID("subAccountId", w.SubAccountID)
	v.Recipient("to", w.To)
	v.TokenID("l2SourceToken", w.L2SourceToken)
	v.TokenID("l1TargetToken", w.L1TargetToken)
	v.Uint128("amount", w.Amount)
	v.Check("callData", len(w.CallData) <= math.MaxUint16, "call data too long")
	v.FeePackable("fee", w.Fee)
	v.Nonce("nonce", w.Nonce)
	v.WithdrawFeeRatio("withdrawFeeRatio", w.WithdrawFeeRatio)
	return v.Err()
}

// Bytes is the fixed 72-byte layout, followed by the length-prefixed call
// data when the withdrawal carries any.
func (w Withdraw) Bytes() []byte {
	wr := codec.NewWriter(withdrawBytesLen+2+len(w.CallData)).
		U8(uint8(TxTypeWithdraw)).
		U8(uint8(w.ToChainID)).
		U32(uint32(w.AccountID)).
		U8(uint8(w.SubAccountID)).
		Address(w.To).
		Narrow16(uint32(w.L2SourceToken)).
		Narrow16(uint32(w.L1TargetToken)).
		U128(w.Amount).
		PackedFee(w.Fee).
		U32(uint32(w.Nonce)).
		U8(boolByte(w.FastWithdraw)).
		U16(w.WithdrawFeeRatio).
		U32(uint32(w.Ts))
	if w.HasCallData() {
		wr.VarBytes(w.CallData)
	}
	out, err := wr.Bytes()
	if err != nil {
		return nil
	}
	return out
}

func (w Withdraw) HasCallData() bool { return len(w.CallData) > 0 }

// EthSignMessage is the text the layer-one key signs. Fast withdrawals
// disclose their fee ratio before the nonce line.
func (w Withdraw) EthSignMessage(l2SourceTokenSymbol string) string {
	message := ethSignMessagePart("Withdraw", l2SourceTokenSymbol, w.Amount, w.Fee, w.To)
	if w.FastWithdraw {
		if message != "" {
			message += "\n"
		}
		message += fmt.Sprintf("Fast withdraw fee ratio: %d", w.WithdrawFeeRatio)
	}
	return appendNonceLine(message, w.Nonce)
}

func (w Withdraw) WithSignature(sig crypto.ZkLinkSignature) Withdraw {
	w.Signature = sig.Clone()
	w.CallData = bytes.Clone(w.CallData)
	return w
}
