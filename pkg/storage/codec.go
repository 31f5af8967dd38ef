package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/uhyunpark/zklink-signer/pkg/signer"
	"github.com/uhyunpark/zklink-signer/pkg/types"
)

// Record is one stored bundle. The bundle keeps its JSON wire form so a
// record can be handed to a submitter unchanged.
type Record struct {
	Seq       uint64
	Hash      types.TxHash
	TxType    string
	AccountID types.AccountID
	Nonce     types.Nonce
	SavedAt   int64 // unix millis
	Bundle    []byte
}

func newRecord(seq uint64, b *signer.TxSignature, now time.Time) (*Record, error) {
	hash, err := b.Hash()
	if err != nil {
		return nil, fmt.Errorf("hash bundle: %w", err)
	}
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("encode bundle: %w", err)
	}
	return &Record{
		Seq:       seq,
		Hash:      hash,
		TxType:    b.Tx.TxType().String(),
		AccountID: b.Tx.AccountID(),
		Nonce:     b.Tx.Nonce(),
		SavedAt:   now.UnixMilli(),
		Bundle:    raw,
	}, nil
}

// TxSignature decodes the stored bundle.
func (r *Record) TxSignature() (*signer.TxSignature, error) {
	var out signer.TxSignature
	if err := json.Unmarshal(r.Bundle, &out); err != nil {
		return nil, fmt.Errorf("decode bundle %s: %w", r.Hash, err)
	}
	return &out, nil
}

func encodeRecord(r *Record) ([]byte, error) { return cbor.Marshal(r) }

func decodeRecord(b []byte) (*Record, error) {
	var r Record
	if err := cbor.Unmarshal(b, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
