package tx

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/uhyunpark/zklink-signer/pkg/crypto"
	"github.com/uhyunpark/zklink-signer/pkg/types"
)

var ErrUnknownTxType = errors.New("unknown transaction type")

// ZkLinkTx is the envelope handed to the submission layer. It holds one of
// Transfer, Withdraw, ChangePubKey or OrderMatching and encodes as
// {"type":"<Variant>", ...fields}.
type ZkLinkTx struct {
	inner Tx
}

// NewZkLinkTx wraps a submittable transaction. Orders are not submittable
// and yield the zero envelope.
func NewZkLinkTx(t Tx) ZkLinkTx {
	switch t.(type) {
	case Transfer, Withdraw, ChangePubKey, OrderMatching:
		return ZkLinkTx{inner: t}
	default:
		return ZkLinkTx{}
	}
}

func (z ZkLinkTx) IsZero() bool { return z.inner == nil }

// Inner returns the wrapped transaction for a type switch.
func (z ZkLinkTx) Inner() Tx { return z.inner }

func (z ZkLinkTx) TxType() TxType {
	if z.inner == nil {
		return 0
	}
	return z.inner.TxType()
}

func (z ZkLinkTx) Bytes() []byte {
	if z.inner == nil {
		return nil
	}
	return z.inner.Bytes()
}

func (z ZkLinkTx) Validate() error {
	if z.inner == nil {
		return types.Invalid("type", "empty transaction envelope")
	}
	return z.inner.Validate()
}

// Hash is sha256 of the canonical bytes.
func (z ZkLinkTx) Hash() (types.TxHash, error) {
	if err := z.Validate(); err != nil {
		return types.TxHash{}, err
	}
	b := z.Bytes()
	if b == nil {
		return types.TxHash{}, fmt.Errorf("%s cannot be encoded", z.TxType())
	}
	return sha256.Sum256(b), nil
}

func (z ZkLinkTx) Nonce() types.Nonce {
	switch t := z.inner.(type) {
	case Transfer:
		return t.Nonce
	case Withdraw:
		return t.Nonce
	case ChangePubKey:
		return t.Nonce
	default:
		// OrderMatching is nonce-less; its orders carry their own.
		return 0
	}
}

func (z ZkLinkTx) AccountID() types.AccountID {
	switch t := z.inner.(type) {
	case Transfer:
		return t.AccountID
	case Withdraw:
		return t.AccountID
	case ChangePubKey:
		return t.AccountID
	case OrderMatching:
		return t.AccountID
	default:
		return 0
	}
}

// Signature returns the layer-two signature carried by the transaction.
func (z ZkLinkTx) Signature() crypto.ZkLinkSignature {
	switch t := z.inner.(type) {
	case Transfer:
		return t.Signature
	case Withdraw:
		return t.Signature
	case ChangePubKey:
		return t.Signature
	case OrderMatching:
		return t.Signature
	default:
		return crypto.ZkLinkSignature{}
	}
}

func (z ZkLinkTx) MarshalJSON() ([]byte, error) {
	if z.inner == nil {
		return nil, fmt.Errorf("marshal empty transaction envelope")
	}
	body, err := json.Marshal(z.inner)
	if err != nil {
		return nil, err
	}
	tag, err := json.Marshal(z.inner.TxType().String())
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(`{"type":`)
	buf.Write(tag)
	if len(body) > 2 {
		buf.WriteByte(',')
		buf.Write(body[1:])
	} else {
		buf.WriteByte('}')
	}
	return buf.Bytes(), nil
}

func (z *ZkLinkTx) UnmarshalJSON(data []byte) error {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return fmt.Errorf("decode transaction envelope: %w", err)
	}

	var (
		inner Tx
		err   error
	)
	switch head.Type {
	case TxTypeTransfer.String():
		var t Transfer
		err = json.Unmarshal(data, &t)
		inner = t
	case TxTypeWithdraw.String():
		var t Withdraw
		err = json.Unmarshal(data, &t)
		inner = t
	case TxTypeChangePubKey.String():
		var t ChangePubKey
		err = json.Unmarshal(data, &t)
		inner = t
	case TxTypeOrderMatching.String():
		var t OrderMatching
		err = json.Unmarshal(data, &t)
		inner = t
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTxType, head.Type)
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", head.Type, err)
	}
	z.inner = inner
	return nil
}
