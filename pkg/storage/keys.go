package storage

import (
	"encoding/binary"

	"github.com/uhyunpark/zklink-signer/pkg/types"
)

// Outbox key schema:
//
//	ob:s:<8-byte seq>  → record
//	ob:h:<32-byte hash> → 8-byte seq
//	ob:next            → next seq to assign
const (
	prefixRecord = "ob:s:"
	prefixHash   = "ob:h:"
)

func recordKey(seq uint64) []byte {
	return append([]byte(prefixRecord), seqBytes(seq)...)
}

func hashKey(h types.TxHash) []byte {
	return append([]byte(prefixHash), h[:]...)
}

func nextSeqKey() []byte { return []byte("ob:next") }

func seqBytes(seq uint64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], seq)
	return k[:]
}

// keyUpperBound returns the exclusive upper bound for a prefix scan
func keyUpperBound(prefix []byte) []byte {
	bound := make([]byte, len(prefix))
	copy(bound, prefix)
	bound[len(bound)-1]++
	return bound
}
