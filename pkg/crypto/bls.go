package crypto

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	bls "github.com/cloudflare/circl/sign/bls"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/sha3"

	"github.com/uhyunpark/zklink-signer/pkg/types"
)

// L2 keys live in G1, signatures in G2.
type scheme = bls.KeyG1SigG2

type BLSPubKey = bls.PublicKey[scheme]

// KeyDerivationMessage is signed by the layer-one key; the hash of that
// signature seeds the layer-two key.
const KeyDerivationMessage = "Sign this message to create a key to interact with zkLink's layer2 services.\n" +
	"NOTE: This application is powered by zkLink protocol.\n\n" +
	"Only sign this message for a trusted client!"

var ErrEmptySignature = errors.New("empty zklink signature")

// ZkLinkSigner produces native layer-two signatures.
type ZkLinkSigner struct {
	sk      *bls.PrivateKey[scheme]
	pk      *BLSPubKey
	pkBytes []byte
}

// NewZkLinkSignerFromSeed derives a key from at least 32 bytes of seed.
func NewZkLinkSignerFromSeed(seed []byte) (*ZkLinkSigner, error) {
	sk, err := bls.KeyGen[scheme](seed, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to derive l2 key: %w", err)
	}
	pk := sk.PublicKey()
	pkBytes, err := pk.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to encode l2 public key: %w", err)
	}
	return &ZkLinkSigner{sk: sk, pk: pk, pkBytes: pkBytes}, nil
}

// NewZkLinkSignerFromL1 derives the layer-two key of an L1 credential, so the
// same wallet always controls the same L2 key.
func NewZkLinkSignerFromL1(l1 L1Signer) (*ZkLinkSigner, error) {
	sig, err := l1.SignMessage([]byte(KeyDerivationMessage))
	if err != nil {
		return nil, fmt.Errorf("failed to sign key derivation message: %w", err)
	}
	seed := sha256.Sum256(sig)
	return NewZkLinkSignerFromSeed(seed[:])
}

func (s *ZkLinkSigner) PublicKey() []byte { return bytes.Clone(s.pkBytes) }

// PubKeyHash is the trailing 20 bytes of keccak256(public key).
func (s *ZkLinkSigner) PubKeyHash() types.PubKeyHash {
	return PubKeyHashOf(s.pkBytes)
}

func (s *ZkLinkSigner) Sign(msg []byte) (ZkLinkSignature, error) {
	sig := bls.Sign(s.sk, msg)
	if len(sig) == 0 {
		return ZkLinkSignature{}, ErrEmptySignature
	}
	return ZkLinkSignature{PubKey: s.PublicKey(), Signature: hexutil.Bytes(sig)}, nil
}

func PubKeyHashOf(pubKey []byte) types.PubKeyHash {
	h := sha3.NewLegacyKeccak256()
	h.Write(pubKey)
	sum := h.Sum(nil)
	var out types.PubKeyHash
	copy(out[:], sum[len(sum)-types.PubKeyHashBytes:])
	return out
}

// ZkLinkSignature carries the signer's public key so a verifier needs
// nothing else.
type ZkLinkSignature struct {
	PubKey    hexutil.Bytes `json:"pubKey"`
	Signature hexutil.Bytes `json:"signature"`
}

func (z ZkLinkSignature) IsEmpty() bool { return len(z.Signature) == 0 }

func (z ZkLinkSignature) Clone() ZkLinkSignature {
	return ZkLinkSignature{PubKey: bytes.Clone(z.PubKey), Signature: bytes.Clone(z.Signature)}
}

func (z ZkLinkSignature) PubKeyHash() types.PubKeyHash { return PubKeyHashOf(z.PubKey) }

// Verify checks the signature over msg against the embedded public key.
func (z ZkLinkSignature) Verify(msg []byte) bool {
	if z.IsEmpty() {
		return false
	}
	pk := new(BLSPubKey)
	if err := pk.UnmarshalBinary(z.PubKey); err != nil {
		return false
	}
	return bls.Verify(pk, msg, bls.Signature(z.Signature))
}
