package crypto

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

type Layer1SignatureType string

const (
	EthereumSignature Layer1SignatureType = "EthereumSignature"
	EIP1271Signature  Layer1SignatureType = "EIP1271Signature"
)

// Layer1Signature is an L1 signature tagged with the scheme that made it.
type Layer1Signature struct {
	Type      Layer1SignatureType `json:"type"`
	Signature hexutil.Bytes       `json:"signature"`
}

func NewEthereumSignature(sig []byte) (Layer1Signature, error) {
	if len(sig) != 65 {
		return Layer1Signature{}, fmt.Errorf("ethereum signature must be 65 bytes, got %d", len(sig))
	}
	return Layer1Signature{Type: EthereumSignature, Signature: bytes.Clone(sig)}, nil
}

// NewEIP1271Signature wraps an opaque contract-wallet signature.
func NewEIP1271Signature(sig []byte) (Layer1Signature, error) {
	if len(sig) == 0 {
		return Layer1Signature{}, fmt.Errorf("empty EIP-1271 signature")
	}
	return Layer1Signature{Type: EIP1271Signature, Signature: bytes.Clone(sig)}, nil
}

func (s Layer1Signature) Clone() Layer1Signature {
	return Layer1Signature{Type: s.Type, Signature: bytes.Clone(s.Signature)}
}
