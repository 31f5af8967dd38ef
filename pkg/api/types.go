package api

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"

	"github.com/uhyunpark/zklink-signer/pkg/signer"
	"github.com/uhyunpark/zklink-signer/pkg/tx"
	"github.com/uhyunpark/zklink-signer/pkg/types"
)

// API request and response types for the local signing service.

// PackRequest carries a decimal amount or fee.
type PackRequest struct {
	Value types.BigUint `json:"value"`
}

// PackResponse reports the closest packable value at or below the input.
type PackResponse struct {
	Value    types.BigUint `json:"value"`
	Closest  types.BigUint `json:"closest"`
	Packable bool          `json:"packable"` // input is exactly representable
	Packed   string        `json:"packed"`   // hex of the packed closest value
}

type SignTransferRequest struct {
	Tx          tx.Transfer `json:"tx"`
	TokenSymbol string      `json:"tokenSymbol"`
}

type SignWithdrawRequest struct {
	Tx          tx.Withdraw `json:"tx"`
	TokenSymbol string      `json:"tokenSymbol"`
}

type SignChangePubKeyRequest struct {
	Tx          tx.ChangePubKey `json:"tx"`
	AuthType    tx.AuthType     `json:"authType"`
	Create2Data *tx.Create2Data `json:"create2Data,omitempty"`
}

type SignOrderRequest struct {
	Order tx.Order `json:"order"`
}

type SignOrderMatchingRequest struct {
	Tx tx.OrderMatching `json:"tx"`
}

// SignResponse is returned by every endpoint that produces a bundle.
type SignResponse struct {
	Hash   types.TxHash        `json:"hash"`
	Bundle *signer.TxSignature `json:"bundle"`
	Stored bool                `json:"stored"`
}

type SignOrderResponse struct {
	Order tx.Order `json:"order"`
}

// VerifyRequest checks a bundle. Without Owner the recovered layer-one
// signer is reported instead of compared.
type VerifyRequest struct {
	Bundle      signer.TxSignature `json:"bundle"`
	Owner       *common.Address    `json:"owner,omitempty"`
	TokenSymbol string             `json:"tokenSymbol"`
}

type VerifyResponse struct {
	Valid  bool         `json:"valid"`
	Hash   types.TxHash `json:"hash"`
	Signer string       `json:"signer,omitempty"`
	Reason string       `json:"reason,omitempty"`
}

// OutboxEntry is one stored bundle as listed by the outbox endpoints.
type OutboxEntry struct {
	Seq       uint64          `json:"seq"`
	Hash      types.TxHash    `json:"hash"`
	Type      string          `json:"type"`
	AccountID types.AccountID `json:"accountId"`
	Nonce     types.Nonce     `json:"nonce"`
	SavedAt   int64           `json:"savedAt"` // Unix milliseconds
	Bundle    json.RawMessage `json:"bundle"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Address string `json:"address"`
	Outbox  bool   `json:"outbox"`
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message,omitempty"`
}
