package tx

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/uhyunpark/zklink-signer/pkg/codec"
	"github.com/uhyunpark/zklink-signer/pkg/crypto"
	"github.com/uhyunpark/zklink-signer/pkg/types"
)

// AuthType says how the layer-one owner approved a key change.
type AuthType string

const (
	AuthOnchain    AuthType = "Onchain"
	AuthEthECDSA   AuthType = "EthECDSA"
	AuthEthCreate2 AuthType = "EthCreate2"
)

// Create2Data describes a counterfactual contract wallet whose address is
// bound to the new public key hash through the CREATE2 salt.
type Create2Data struct {
	CreatorAddress types.ZkLinkAddress `json:"creatorAddress"`
	SaltArg        common.Hash         `json:"saltArg"`
	CodeHash       common.Hash         `json:"codeHash"`
}

// Salt is keccak256(saltArg || pubKeyHash).
func (d Create2Data) Salt(pkHash types.PubKeyHash) common.Hash {
	return common.BytesToHash(ethcrypto.Keccak256(d.SaltArg[:], pkHash[:]))
}

// Address is the CREATE2 deployment address for the given key hash.
func (d Create2Data) Address(pkHash types.PubKeyHash) types.ZkLinkAddress {
	salt := d.Salt(pkHash)
	sum := ethcrypto.Keccak256([]byte{0xff}, d.CreatorAddress.Bytes(), salt[:], d.CodeHash[:])
	addr, _ := types.AddressFromBytes(sum[12:])
	return addr
}

// ChangePubKeyAuthData is a tagged union; the zero value means Onchain.
type ChangePubKeyAuthData struct {
	Type         AuthType      `json:"type"`
	EthSignature hexutil.Bytes `json:"ethSignature,omitempty"`
	Data         *Create2Data  `json:"data,omitempty"`
}

func OnchainAuth() ChangePubKeyAuthData {
	return ChangePubKeyAuthData{Type: AuthOnchain}
}

func EthECDSAAuth(signature []byte) ChangePubKeyAuthData {
	return ChangePubKeyAuthData{Type: AuthEthECDSA, EthSignature: bytes.Clone(signature)}
}

func EthCreate2Auth(data Create2Data) ChangePubKeyAuthData {
	return ChangePubKeyAuthData{Type: AuthEthCreate2, Data: &data}
}

func (a ChangePubKeyAuthData) IsOnchain() bool { return a.Type == "" || a.Type == AuthOnchain }

func (a ChangePubKeyAuthData) IsEthECDSA() bool { return a.Type == AuthEthECDSA }

func (a ChangePubKeyAuthData) IsCreate2() bool { return a.Type == AuthEthCreate2 }

func (a ChangePubKeyAuthData) Validate() error {
	switch {
	case a.IsOnchain():
		return nil
	case a.IsEthECDSA():
		if len(a.EthSignature) != 65 {
			return types.Invalid("ethAuthData.ethSignature", fmt.Sprintf("must be 65 bytes, got %d", len(a.EthSignature)))
		}
		return nil
	case a.IsCreate2():
		if a.Data == nil {
			return types.Invalid("ethAuthData.data", "create2 data is missing")
		}
		if n := len(a.Data.CreatorAddress.Bytes()); n != types.L1AddressBytes {
			return types.Invalid("ethAuthData.data.creatorAddress", fmt.Sprintf("must be %d bytes, got %d", types.L1AddressBytes, n))
		}
		return nil
	default:
		return types.Invalid("ethAuthData.type", fmt.Sprintf("unknown auth type %q", a.Type))
	}
}

// EthWitness is the proof the layer-one contract checks: 0x00 || r || s || v
// for an ECDSA signature, 0x01 || creator || saltArg || codeHash for CREATE2.
// Onchain authorization has no witness.
func (a ChangePubKeyAuthData) EthWitness() ([]byte, bool) {
	switch {
	case a.IsEthECDSA() && len(a.EthSignature) == 65:
		out := make([]byte, 0, 66)
		out = append(out, 0x00)
		out = append(out, a.EthSignature[:64]...)
		v := a.EthSignature[64]
		if v == 0 || v == 1 {
			v += 27
		}
		return append(out, v), true
	case a.IsCreate2() && a.Data != nil:
		out := make([]byte, 0, 1+types.L1AddressBytes+64)
		out = append(out, 0x01)
		out = append(out, a.Data.CreatorAddress.Bytes()...)
		out = append(out, a.Data.SaltArg[:]...)
		return append(out, a.Data.CodeHash[:]...), true
	default:
		return nil, false
	}
}

func (a ChangePubKeyAuthData) clone() ChangePubKeyAuthData {
	out := ChangePubKeyAuthData{Type: a.Type, EthSignature: bytes.Clone(a.EthSignature)}
	if a.Data != nil {
		d := *a.Data
		out.Data = &d
	}
	return out
}

// ChangePubKeyBuilder holds the raw inputs of a ChangePubKey. EthSignature
// is an optional, externally produced EIP-712 authorization; without it the
// change is authorized on chain.
type ChangePubKeyBuilder struct {
	ChainID       types.ChainID
	AccountID     types.AccountID
	SubAccountID  types.SubAccountID
	NewPubKeyHash types.PubKeyHash
	FeeToken      types.TokenID
	Fee           types.BigUint
	Nonce         types.Nonce
	EthSignature  []byte
	Timestamp     types.TimeStamp
}

// ChangePubKey sets the layer-two key an account signs with.
type ChangePubKey struct {
	ChainID      types.ChainID          `json:"chainId"`
	AccountID    types.AccountID        `json:"accountId"`
	SubAccountID types.SubAccountID     `json:"subAccountId"`
	NewPkHash    types.PubKeyHash       `json:"newPkHash"`
	FeeToken     types.TokenID          `json:"feeToken"`
	Fee          types.BigUint          `json:"fee"`
	Nonce        types.Nonce            `json:"nonce"`
	Signature    crypto.ZkLinkSignature `json:"signature"`
	EthAuthData  ChangePubKeyAuthData   `json:"ethAuthData"`
	Ts           types.TimeStamp        `json:"ts"`
}

func NewChangePubKey(b ChangePubKeyBuilder) (ChangePubKey, error) {
	auth := OnchainAuth()
	if b.EthSignature != nil {
		auth = EthECDSAAuth(b.EthSignature)
	}
	c := ChangePubKey{
		ChainID:      b.ChainID,
		AccountID:    b.AccountID,
		SubAccountID: b.SubAccountID,
		NewPkHash:    b.NewPubKeyHash,
		FeeToken:     b.FeeToken,
		Fee:          b.Fee,
		Nonce:        b.Nonce,
		EthAuthData:  auth,
		Ts:           b.Timestamp,
	}
	if err := c.Validate(); err != nil {
		return ChangePubKey{}, err
	}
	return c, nil
}

func (c ChangePubKey) TxType() TxType { return TxTypeChangePubKey }

func (c ChangePubKey) Validate() error {
	var v types.Validator
	v.ChainID("chainId", c.ChainID)
	v.AccountID("accountId", c.AccountID)
	v.SubAccountID("subAccountId", c.SubAccountID)
	v.Check("newPkHash", c.NewPkHash != types.PubKeyHash{}, "must not be zero")
	v.TokenID("feeToken", c.FeeToken)
	v.FeePackable("fee", c.Fee)
	v.Nonce("nonce", c.Nonce)
	if err := v.Err(); err != nil {
		return err
	}
	return c.EthAuthData.Validate()
}

// Bytes excludes the authorization data: the layer-two signature only
// binds the key hash and the fee.
func (c ChangePubKey) Bytes() []byte {
	out, err := codec.NewWriter(changePubKeyBytesLen).
		U8(uint8(TxTypeChangePubKey)).
		U8(uint8(c.ChainID)).
		U32(uint32(c.AccountID)).
		U8(uint8(c.SubAccountID)).
		Raw(c.NewPkHash[:]).
		Narrow16(uint32(c.FeeToken)).
		PackedFee(c.Fee).
		U32(uint32(c.Nonce)).
		U32(uint32(c.Ts)).
		Bytes()
	if err != nil {
		return nil
	}
	return out
}

// EthSignMessagePart is the wallet-facing description of the change.
func (c ChangePubKey) EthSignMessagePart(feeTokenSymbol string) string {
	message := "Set signing key: " + c.NewPkHash.Hex()
	if !c.Fee.IsZero() {
		message += fmt.Sprintf("\nFee: %s %s", types.FormatUnits(c.Fee, types.TokenMaxPrecision), feeTokenSymbol)
	}
	return message
}

// EIP712Message is the typed struct an ECDSA authorization signs.
func (c ChangePubKey) EIP712Message() *crypto.ChangePubKeyEIP712 {
	return &crypto.ChangePubKeyEIP712{
		PubKeyHash: c.NewPkHash,
		Nonce:      uint32(c.Nonce),
		AccountID:  uint32(c.AccountID),
	}
}

// WithEthAuthData returns a copy authorized by auth.
func (c ChangePubKey) WithEthAuthData(auth ChangePubKeyAuthData) (ChangePubKey, error) {
	if err := auth.Validate(); err != nil {
		return ChangePubKey{}, err
	}
	c.EthAuthData = auth.clone()
	return c, nil
}

func (c ChangePubKey) WithSignature(sig crypto.ZkLinkSignature) ChangePubKey {
	c.Signature = sig.Clone()
	c.EthAuthData = c.EthAuthData.clone()
	return c
}
