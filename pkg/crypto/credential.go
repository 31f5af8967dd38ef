package crypto

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

// ErrUnsupportedOperation is returned when a credential cannot produce the
// requested kind of signature.
var ErrUnsupportedOperation = errors.New("credential does not support this signing operation")

type L1SignerType string

const (
	L1SignerEth     L1SignerType = "Eth"
	L1SignerEIP1271 L1SignerType = "EIP1271"
)

// L1Signer is a layer-one credential. Implementations: *EthSigner and
// *EIP1271Signer.
type L1Signer interface {
	Type() L1SignerType
	Address() common.Address
	// SignMessage signs msg as an EIP-191 personal message.
	SignMessage(msg []byte) ([]byte, error)
	// SignTypedData signs an EIP-712 digest.
	SignTypedData(digest []byte) ([]byte, error)
}

// EIP1271Signer stands for a contract wallet. Its signatures are produced by
// the wallet's owners off this process, so every signing call fails.
type EIP1271Signer struct {
	address common.Address
}

func NewEIP1271Signer(address common.Address) *EIP1271Signer {
	return &EIP1271Signer{address: address}
}

func (s *EIP1271Signer) Type() L1SignerType { return L1SignerEIP1271 }

func (s *EIP1271Signer) Address() common.Address { return s.address }

func (s *EIP1271Signer) SignMessage([]byte) ([]byte, error) {
	return nil, ErrUnsupportedOperation
}

func (s *EIP1271Signer) SignTypedData([]byte) ([]byte, error) {
	return nil, ErrUnsupportedOperation
}

var (
	_ L1Signer = (*EthSigner)(nil)
	_ L1Signer = (*EIP1271Signer)(nil)
)
