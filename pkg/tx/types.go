// Package tx builds the layer-two transactions and produces the canonical
// bytes and wallet messages they are signed over.
package tx

import (
	"fmt"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/uhyunpark/zklink-signer/pkg/crypto"
	"github.com/uhyunpark/zklink-signer/pkg/types"
)

// TxType is the one-byte discriminator leading the canonical bytes.
type TxType uint8

const (
	TxTypeWithdraw      TxType = 0x03
	TxTypeTransfer      TxType = 0x04
	TxTypeChangePubKey  TxType = 0x06
	TxTypeOrderMatching TxType = 0x08
	TxTypeOrder         TxType = 0xff // message type, never submitted alone
)

func (t TxType) String() string {
	switch t {
	case TxTypeWithdraw:
		return "Withdraw"
	case TxTypeTransfer:
		return "Transfer"
	case TxTypeChangePubKey:
		return "ChangePubKey"
	case TxTypeOrderMatching:
		return "OrderMatching"
	case TxTypeOrder:
		return "Order"
	default:
		return fmt.Sprintf("TxType(0x%02x)", uint8(t))
	}
}

// Tx is implemented by every value that carries canonical bytes.
type Tx interface {
	TxType() TxType
	// Bytes returns the canonical layout, or nil when the value does not
	// pass Validate.
	Bytes() []byte
	Validate() error
}

// L2Signer produces native layer-two signatures over canonical bytes.
type L2Signer interface {
	Sign(msg []byte) (crypto.ZkLinkSignature, error)
}

var _ L2Signer = (*crypto.ZkLinkSigner)(nil)

// Byte lengths of the fixed layouts.
const (
	transferBytesLen      = 56
	withdrawBytesLen      = 72
	changePubKeyBytesLen  = 39
	orderBytesLen         = 39
	orderMatchingBytesLen = 73
)

// hash31 is keccak256 cut to the 31-byte field element width used for
// in-circuit commitments.
func hash31(data []byte) []byte {
	return ethcrypto.Keccak256(data)[:types.FrBytes]
}

// ethSignMessagePart renders the optional amount and fee lines shared by
// Transfer and Withdraw.
func ethSignMessagePart(action, tokenSymbol string, amount, fee types.BigUint, to types.ZkLinkAddress) string {
	var lines []string
	if !amount.IsZero() {
		lines = append(lines, fmt.Sprintf("%s %s %s to: %s",
			action, types.FormatUnits(amount, types.TokenMaxPrecision), tokenSymbol, to))
	}
	if !fee.IsZero() {
		lines = append(lines, fmt.Sprintf("Fee: %s %s",
			types.FormatUnits(fee, types.TokenMaxPrecision), tokenSymbol))
	}
	return strings.Join(lines, "\n")
}

func appendNonceLine(message string, nonce types.Nonce) string {
	if message != "" {
		message += "\n"
	}
	return message + fmt.Sprintf("Nonce: %d", nonce)
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
