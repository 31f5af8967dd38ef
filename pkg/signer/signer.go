// Package signer turns validated transactions into signature bundles: the
// layer-two signature over canonical bytes, the layer-one signature over the
// wallet message, and the submitter signature over the transaction hash.
package signer

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/uhyunpark/zklink-signer/pkg/crypto"
	"github.com/uhyunpark/zklink-signer/pkg/tx"
	"github.com/uhyunpark/zklink-signer/pkg/types"
)

// ErrSubmitterNotRequired is returned when a submitter signature is asked
// for an Order, which is never submitted on its own.
var ErrSubmitterNotRequired = errors.New("order does not take a submitter signature")

type Config struct {
	L1 crypto.L1Signer
	// L2 is derived from L1 when nil. Contract-wallet credentials cannot
	// derive and must supply it.
	L2     *crypto.ZkLinkSigner
	Domain crypto.EIP712Domain
	Logger *zap.SugaredLogger
}

// Signer holds read-only key material and is safe for concurrent use.
type Signer struct {
	l1     crypto.L1Signer
	l2     *crypto.ZkLinkSigner
	eip712 *crypto.EIP712Signer
	log    *zap.SugaredLogger
}

func New(cfg Config) (*Signer, error) {
	if cfg.L1 == nil {
		return nil, fmt.Errorf("layer-one credential is required")
	}
	l2 := cfg.L2
	if l2 == nil {
		derived, err := crypto.NewZkLinkSignerFromL1(cfg.L1)
		if err != nil {
			return nil, fmt.Errorf("derive layer-two key: %w", err)
		}
		l2 = derived
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Signer{
		l1:     cfg.L1,
		l2:     l2,
		eip712: crypto.NewEIP712Signer(cfg.Domain),
		log:    log,
	}, nil
}

func (s *Signer) Address() common.Address { return s.l1.Address() }

func (s *Signer) PubKeyHash() types.PubKeyHash { return s.l2.PubKeyHash() }

func (s *Signer) PublicKey() []byte { return s.l2.PublicKey() }

func (s *Signer) Domain() crypto.EIP712Domain { return s.eip712.Domain() }

func (s *Signer) SignTransfer(t tx.Transfer, tokenSymbol string) (*TxSignature, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	sig, err := s.l2.Sign(t.Bytes())
	if err != nil {
		return nil, fmt.Errorf("sign transfer: %w", err)
	}
	return s.bundle(tx.NewZkLinkTx(t.WithSignature(sig)), t.EthSignMessage(tokenSymbol))
}

func (s *Signer) SignWithdraw(w tx.Withdraw, l2SourceTokenSymbol string) (*TxSignature, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	sig, err := s.l2.Sign(w.Bytes())
	if err != nil {
		return nil, fmt.Errorf("sign withdraw: %w", err)
	}
	return s.bundle(tx.NewZkLinkTx(w.WithSignature(sig)), w.EthSignMessage(l2SourceTokenSymbol))
}

func (s *Signer) SignOrderMatching(m tx.OrderMatching) (*TxSignature, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	sig, err := s.l2.Sign(m.Bytes())
	if err != nil {
		return nil, fmt.Errorf("sign order matching: %w", err)
	}
	return s.bundle(m.WithSignature(sig).ToZkLinkTx(), m.EthSignMessage())
}

// SignOrder returns a copy of o carrying this signer's layer-two signature.
func (s *Signer) SignOrder(o tx.Order) (tx.Order, error) {
	signed, err := o.CreateSignedOrder(s.l2)
	if err != nil {
		return tx.Order{}, err
	}
	s.log.Debugw("order_signed", "account", o.AccountID, "nonce", o.Nonce, "slot", o.SlotID)
	return signed, nil
}

// SignChangePubKeyWithEthEcdsaAuth authorizes the key change with an
// EIP-712 signature of the layer-one key.
func (s *Signer) SignChangePubKeyWithEthEcdsaAuth(c tx.ChangePubKey) (*TxSignature, error) {
	if err := s.checkChangePubKey(c); err != nil {
		return nil, err
	}
	ethSig, err := s.eip712.SignChangePubKey(s.l1, c.EIP712Message())
	if err != nil {
		return nil, err
	}
	authorized, err := c.WithEthAuthData(tx.EthECDSAAuth(ethSig))
	if err != nil {
		return nil, err
	}
	return s.signChangePubKey(authorized)
}

// SignChangePubKeyWithOnchainAuth is for accounts that approved the key on
// the layer-one contract beforehand.
func (s *Signer) SignChangePubKeyWithOnchainAuth(c tx.ChangePubKey) (*TxSignature, error) {
	if err := s.checkChangePubKey(c); err != nil {
		return nil, err
	}
	authorized, err := c.WithEthAuthData(tx.OnchainAuth())
	if err != nil {
		return nil, err
	}
	return s.signChangePubKey(authorized)
}

// SignChangePubKeyWithCreate2Auth is for counterfactual wallets: the CREATE2
// address derived from the new key hash must be the credential's address.
func (s *Signer) SignChangePubKeyWithCreate2Auth(c tx.ChangePubKey, data tx.Create2Data) (*TxSignature, error) {
	if err := s.checkChangePubKey(c); err != nil {
		return nil, err
	}
	derived := data.Address(c.NewPkHash)
	if derived.Eth() != s.l1.Address() {
		return nil, types.Invalid("ethAuthData.data",
			fmt.Sprintf("create2 address %s does not match account address %s", derived, s.l1.Address().Hex()))
	}
	authorized, err := c.WithEthAuthData(tx.EthCreate2Auth(data))
	if err != nil {
		return nil, err
	}
	return s.signChangePubKey(authorized)
}

// SubmitterSignature signs sha256 of the canonical bytes.
func (s *Signer) SubmitterSignature(t tx.Tx) (crypto.ZkLinkSignature, error) {
	if _, ok := t.(tx.Order); ok {
		return crypto.ZkLinkSignature{}, ErrSubmitterNotRequired
	}
	if err := t.Validate(); err != nil {
		return crypto.ZkLinkSignature{}, err
	}
	hash := sha256.Sum256(t.Bytes())
	sig, err := s.l2.Sign(hash[:])
	if err != nil {
		return crypto.ZkLinkSignature{}, fmt.Errorf("submitter signature: %w", err)
	}
	return sig, nil
}

func (s *Signer) checkChangePubKey(c tx.ChangePubKey) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.NewPkHash != s.l2.PubKeyHash() {
		return types.Invalid("newPkHash", "does not match the signer's layer-two key")
	}
	return nil
}

func (s *Signer) signChangePubKey(c tx.ChangePubKey) (*TxSignature, error) {
	sig, err := s.l2.Sign(c.Bytes())
	if err != nil {
		return nil, fmt.Errorf("sign change pubkey: %w", err)
	}
	return s.bundle(tx.NewZkLinkTx(c.WithSignature(sig)), "")
}

// bundle adds the layer-one signature over message, when there is one, and
// the submitter signature. Nothing is returned unless every step succeeds.
func (s *Signer) bundle(env tx.ZkLinkTx, message string) (*TxSignature, error) {
	out := &TxSignature{Tx: env}

	if message != "" {
		l1Sig, err := s.signLayerOne([]byte(message))
		if err != nil {
			return nil, err
		}
		out.Layer1Signature = &l1Sig
	}

	submitter, err := s.SubmitterSignature(env.Inner())
	if err != nil {
		return nil, err
	}
	out.SubmitterSignature = submitter

	if hash, err := env.Hash(); err == nil {
		s.log.Debugw("tx_signed",
			"type", env.TxType().String(),
			"hash", hash.String(),
			"account", env.AccountID(),
			"nonce", env.Nonce(),
			"layer1", out.Layer1Signature != nil,
		)
	}
	return out, nil
}

func (s *Signer) signLayerOne(message []byte) (crypto.Layer1Signature, error) {
	raw, err := s.l1.SignMessage(message)
	if err != nil {
		return crypto.Layer1Signature{}, fmt.Errorf("layer-one signature: %w", err)
	}
	switch s.l1.Type() {
	case crypto.L1SignerEth:
		return crypto.NewEthereumSignature(raw)
	case crypto.L1SignerEIP1271:
		// Reached by L1Signer implementations that front a contract wallet's
		// owners; the local EIP1271Signer fails before this point.
		return crypto.NewEIP1271Signature(raw)
	default:
		return crypto.Layer1Signature{}, fmt.Errorf("%w: credential type %s", crypto.ErrUnsupportedOperation, s.l1.Type())
	}
}
