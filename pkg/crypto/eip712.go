package crypto

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/uhyunpark/zklink-signer/pkg/types"
)

// EIP712Domain represents the domain separator for EIP-712 typed data
type EIP712Domain struct {
	Name              string
	Version           string
	ChainID           *big.Int       // layer-one chain id
	VerifyingContract common.Address // zkLink main contract on that chain
}

// ZkLinkDomain is the domain ChangePubKey authorizations are signed under.
func ZkLinkDomain(layerOneChainID uint32, mainContract common.Address) EIP712Domain {
	return EIP712Domain{
		Name:              "ZkLink",
		Version:           "1",
		ChainID:           new(big.Int).SetUint64(uint64(layerOneChainID)),
		VerifyingContract: mainContract,
	}
}

// ChangePubKeyEIP712 is what the L1 key signs to authorize a new L2 key.
type ChangePubKeyEIP712 struct {
	PubKeyHash types.PubKeyHash
	Nonce      uint32
	AccountID  uint32
}

var changePubKeyTypes = apitypes.Types{
	"EIP712Domain": []apitypes.Type{
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
	"ChangePubKey": []apitypes.Type{
		{Name: "pubKeyHash", Type: "bytes20"},
		{Name: "nonce", Type: "uint32"},
		{Name: "accountId", Type: "uint32"},
	},
}

// EIP712Signer hashes typed data under a fixed domain.
type EIP712Signer struct {
	domain EIP712Domain
}

func NewEIP712Signer(domain EIP712Domain) *EIP712Signer {
	return &EIP712Signer{domain: domain}
}

func (e *EIP712Signer) Domain() EIP712Domain { return e.domain }

func (e *EIP712Signer) typedData(msg *ChangePubKeyEIP712) apitypes.TypedData {
	return apitypes.TypedData{
		Types:       changePubKeyTypes,
		PrimaryType: "ChangePubKey",
		Domain: apitypes.TypedDataDomain{
			Name:              e.domain.Name,
			Version:           e.domain.Version,
			ChainId:           (*math.HexOrDecimal256)(e.domain.ChainID),
			VerifyingContract: e.domain.VerifyingContract.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"pubKeyHash": msg.PubKeyHash.String(),
			"nonce":      fmt.Sprintf("%d", msg.Nonce),
			"accountId":  fmt.Sprintf("%d", msg.AccountID),
		},
	}
}

// HashChangePubKey returns the EIP-712 digest to be signed.
func (e *EIP712Signer) HashChangePubKey(msg *ChangePubKeyEIP712) ([]byte, error) {
	typedData := e.typedData(msg)

	domainSeparator, err := typedData.HashStruct("EIP712Domain", typedData.Domain.Map())
	if err != nil {
		return nil, fmt.Errorf("failed to hash domain: %w", err)
	}

	typedDataHash, err := typedData.HashStruct(typedData.PrimaryType, typedData.Message)
	if err != nil {
		return nil, fmt.Errorf("failed to hash message: %w", err)
	}

	// keccak256("\x19\x01" || domainSeparator || typedDataHash)
	rawData := []byte(fmt.Sprintf("\x19\x01%s%s", string(domainSeparator), string(typedDataHash)))
	return crypto.Keccak256(rawData), nil
}

// SignChangePubKey produces the authorization with an L1 credential.
func (e *EIP712Signer) SignChangePubKey(signer L1Signer, msg *ChangePubKeyEIP712) ([]byte, error) {
	hash, err := e.HashChangePubKey(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to hash change pubkey: %w", err)
	}

	signature, err := signer.SignTypedData(hash)
	if err != nil {
		return nil, fmt.Errorf("failed to sign change pubkey: %w", err)
	}
	return signature, nil
}

// RecoverChangePubKeySigner recovers the L1 address that authorized msg.
func (e *EIP712Signer) RecoverChangePubKeySigner(msg *ChangePubKeyEIP712, signature []byte) (common.Address, error) {
	hash, err := e.HashChangePubKey(msg)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to hash change pubkey: %w", err)
	}
	return RecoverAddress(hash, signature)
}

// ChangePubKeyToJSON renders the eth_signTypedData_v4 payload for wallets
// that authorize the key change themselves.
func (e *EIP712Signer) ChangePubKeyToJSON(msg *ChangePubKeyEIP712) (string, error) {
	typedData := map[string]interface{}{
		"types": map[string]interface{}{
			"EIP712Domain": []map[string]string{
				{"name": "name", "type": "string"},
				{"name": "version", "type": "string"},
				{"name": "chainId", "type": "uint256"},
				{"name": "verifyingContract", "type": "address"},
			},
			"ChangePubKey": []map[string]string{
				{"name": "pubKeyHash", "type": "bytes20"},
				{"name": "nonce", "type": "uint32"},
				{"name": "accountId", "type": "uint32"},
			},
		},
		"primaryType": "ChangePubKey",
		"domain": map[string]interface{}{
			"name":              e.domain.Name,
			"version":           e.domain.Version,
			"chainId":           e.domain.ChainID.String(),
			"verifyingContract": e.domain.VerifyingContract.Hex(),
		},
		"message": map[string]interface{}{
			"pubKeyHash": msg.PubKeyHash.String(),
			"nonce":      msg.Nonce,
			"accountId":  msg.AccountID,
		},
	}

	jsonBytes, err := json.MarshalIndent(typedData, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(jsonBytes), nil
}
