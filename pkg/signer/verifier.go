package signer

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/uhyunpark/zklink-signer/pkg/crypto"
	"github.com/uhyunpark/zklink-signer/pkg/tx"
)

var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrMissingSignature = errors.New("missing signature")
)

// Verifier checks signature bundles without any private key material.
type Verifier struct {
	eip712 *crypto.EIP712Signer
}

func NewVerifier(domain crypto.EIP712Domain) *Verifier {
	return &Verifier{eip712: crypto.NewEIP712Signer(domain)}
}

// VerifyBundle checks the layer-two, submitter and layer-one signatures of
// b. tokenSymbol rebuilds the wallet message of Transfer and Withdraw and is
// ignored for the other types. owner is the expected layer-one address.
func (v *Verifier) VerifyBundle(b *TxSignature, owner common.Address, tokenSymbol string) error {
	if b == nil {
		return fmt.Errorf("%w: empty bundle", ErrMissingSignature)
	}
	if err := b.Tx.Validate(); err != nil {
		return err
	}
	canonical := b.Tx.Bytes()

	if err := verifyL2("layer-two", b.Tx.Signature(), canonical); err != nil {
		return err
	}
	// A key change must be signed by the key it installs.
	if c, ok := b.Tx.Inner().(tx.ChangePubKey); ok {
		if got := b.Tx.Signature().PubKeyHash(); got != c.NewPkHash {
			return fmt.Errorf("%w: layer-two signer %s, expected newPkHash %s", ErrInvalidSignature, got, c.NewPkHash)
		}
	}
	hash := sha256.Sum256(canonical)
	if err := verifyL2("submitter", b.SubmitterSignature, hash[:]); err != nil {
		return err
	}

	signer, err := v.RecoverSigner(b, tokenSymbol)
	if err != nil {
		return err
	}
	if signer != owner {
		return fmt.Errorf("%w: layer-one signer %s, expected %s", ErrInvalidSignature, signer.Hex(), owner.Hex())
	}
	return nil
}

// VerifyOrder checks an order's own layer-two signature.
func (v *Verifier) VerifyOrder(o tx.Order) error {
	if err := o.Validate(); err != nil {
		return err
	}
	return verifyL2("order", o.Signature, o.Bytes())
}

// RecoverSigner returns the layer-one address that approved the bundle.
// For CREATE2 authorizations that is the derived wallet address.
func (v *Verifier) RecoverSigner(b *TxSignature, tokenSymbol string) (common.Address, error) {
	switch t := b.Tx.Inner().(type) {
	case tx.Transfer:
		return recoverLayerOne(b.Layer1Signature, t.EthSignMessage(tokenSymbol))
	case tx.Withdraw:
		return recoverLayerOne(b.Layer1Signature, t.EthSignMessage(tokenSymbol))
	case tx.OrderMatching:
		return recoverLayerOne(b.Layer1Signature, t.EthSignMessage())
	case tx.ChangePubKey:
		return v.recoverChangePubKey(t)
	default:
		return common.Address{}, fmt.Errorf("unsupported transaction type: %s", b.Tx.TxType())
	}
}

func (v *Verifier) recoverChangePubKey(c tx.ChangePubKey) (common.Address, error) {
	auth := c.EthAuthData
	switch {
	case auth.IsEthECDSA():
		return v.eip712.RecoverChangePubKeySigner(c.EIP712Message(), auth.EthSignature)
	case auth.IsCreate2():
		return auth.Data.Address(c.NewPkHash).Eth(), nil
	default:
		return common.Address{}, fmt.Errorf("%w: onchain authorization is checked by the layer-one contract", crypto.ErrUnsupportedOperation)
	}
}

func recoverLayerOne(sig *crypto.Layer1Signature, message string) (common.Address, error) {
	if sig == nil {
		return common.Address{}, fmt.Errorf("%w: layer-one signature", ErrMissingSignature)
	}
	if sig.Type != crypto.EthereumSignature {
		// EIP-1271 signatures are checked by calling the wallet contract.
		return common.Address{}, fmt.Errorf("%w: cannot recover %s", crypto.ErrUnsupportedOperation, sig.Type)
	}
	addr, err := crypto.RecoverMessageSigner([]byte(message), sig.Signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return addr, nil
}

func verifyL2(what string, sig crypto.ZkLinkSignature, msg []byte) error {
	if sig.IsEmpty() {
		return fmt.Errorf("%w: %s signature", ErrMissingSignature, what)
	}
	if !sig.Verify(msg) {
		return fmt.Errorf("%w: %s signature does not match", ErrInvalidSignature, what)
	}
	return nil
}
