package signer

import (
	"github.com/uhyunpark/zklink-signer/pkg/crypto"
	"github.com/uhyunpark/zklink-signer/pkg/tx"
	"github.com/uhyunpark/zklink-signer/pkg/types"
)

// TxSignature is a signed transaction ready for submission. The layer-two
// signature travels inside Tx. Layer1Signature is absent for ChangePubKey,
// whose layer-one approval lives in its auth data.
type TxSignature struct {
	Tx                 tx.ZkLinkTx             `json:"tx"`
	Layer1Signature    *crypto.Layer1Signature `json:"layer1Signature,omitempty"`
	SubmitterSignature crypto.ZkLinkSignature  `json:"submitterSignature"`
}

func (s *TxSignature) Hash() (types.TxHash, error) {
	return s.Tx.Hash()
}
