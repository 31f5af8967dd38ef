// Package storage keeps signed bundles in a local pebble outbox until a
// submitter picks them up.
package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	"go.uber.org/zap"

	"github.com/uhyunpark/zklink-signer/pkg/signer"
	"github.com/uhyunpark/zklink-signer/pkg/types"
	"github.com/uhyunpark/zklink-signer/pkg/util"
)

var ErrNotFound = errors.New("bundle not found")

type Config struct {
	Path   string
	Logger *zap.SugaredLogger
	// Clock stamps records; defaults to the wall clock.
	Clock util.Clock
}

type PebbleStore struct {
	db    *pebble.DB
	log   *zap.SugaredLogger
	clock util.Clock

	mu      sync.Mutex // guards nextSeq and the hash index
	nextSeq uint64
}

func NewPebbleStore(cfg Config) (*PebbleStore, error) {
	opts := &pebble.Options{
		Cache: pebble.NewCache(16 << 20),
	}
	defer opts.Cache.Unref()

	db, err := pebble.Open(cfg.Path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble db at %s: %w", cfg.Path, err)
	}
	s := &PebbleStore{db: db, log: cfg.Logger, clock: cfg.Clock}
	if s.log == nil {
		s.log = zap.NewNop().Sugar()
	}
	if s.clock == nil {
		s.clock = util.RealClock{}
	}

	val, closer, err := db.Get(nextSeqKey())
	switch {
	case err == nil:
		s.nextSeq = binary.BigEndian.Uint64(val)
		closer.Close()
	case errors.Is(err, pebble.ErrNotFound):
		s.nextSeq = 1
	default:
		db.Close()
		return nil, fmt.Errorf("failed to read outbox sequence: %w", err)
	}
	s.log.Infow("outbox_opened", "path", cfg.Path, "next_seq", s.nextSeq)
	return s, nil
}

func (s *PebbleStore) Close() error { return s.db.Close() }

// Save stores b under its transaction hash. Saving a bundle whose hash is
// already stored replaces it in place and keeps its sequence.
func (s *PebbleStore) Save(ctx context.Context, b *signer.TxSignature) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("nil bundle")
	}
	hash, err := b.Hash()
	if err != nil {
		return nil, fmt.Errorf("hash bundle: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seq, found, err := s.lookupSeq(hash)
	if err != nil {
		return nil, err
	}
	fresh := !found
	if fresh {
		seq = s.nextSeq
	}

	rec, err := newRecord(seq, b, s.clock.Now())
	if err != nil {
		return nil, err
	}
	val, err := encodeRecord(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}

	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Set(recordKey(seq), val, nil); err != nil {
		return nil, err
	}
	if fresh {
		if err := batch.Set(hashKey(hash), seqBytes(seq), nil); err != nil {
			return nil, err
		}
		if err := batch.Set(nextSeqKey(), seqBytes(seq+1), nil); err != nil {
			return nil, err
		}
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return nil, fmt.Errorf("failed to save bundle: %w", err)
	}
	if fresh {
		s.nextSeq++
	}

	s.log.Debugw("bundle_saved", "hash", hash.String(), "seq", seq, "type", rec.TxType, "replaced", !fresh)
	return rec, nil
}

// Get returns the record stored under hash, or ErrNotFound.
func (s *PebbleStore) Get(ctx context.Context, hash types.TxHash) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seq, found, err := s.lookupSeq(hash)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, hash)
	}
	val, closer, err := s.db.Get(recordKey(seq))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, hash)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	defer closer.Close()
	return decodeRecord(val)
}

// List returns up to limit records, oldest first. limit <= 0 means all.
func (s *PebbleStore) List(ctx context.Context, limit int) ([]*Record, error) {
	prefix := []byte(prefixRecord)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open iterator: %w", err)
	}
	defer iter.Close()

	var out []*Record
	for iter.First(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		rec, err := decodeRecord(iter.Value())
		if err != nil {
			s.log.Warnw("outbox_record_skipped", "key", fmt.Sprintf("%x", iter.Key()), "err", err)
			continue
		}
		out = append(out, rec)
	}
	return out, iter.Error()
}

// Delete removes the record stored under hash. Deleting a missing hash
// returns ErrNotFound.
func (s *PebbleStore) Delete(ctx context.Context, hash types.TxHash) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	seq, found, err := s.lookupSeq(hash)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, hash)
	}
	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Delete(recordKey(seq), nil); err != nil {
		return err
	}
	if err := batch.Delete(hashKey(hash), nil); err != nil {
		return err
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("failed to delete bundle: %w", err)
	}
	s.log.Debugw("bundle_deleted", "hash", hash.String(), "seq", seq)
	return nil
}

func (s *PebbleStore) lookupSeq(hash types.TxHash) (uint64, bool, error) {
	val, closer, err := s.db.Get(hashKey(hash))
	if errors.Is(err, pebble.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read hash index: %w", err)
	}
	defer closer.Close()
	if len(val) != 8 {
		return 0, false, fmt.Errorf("corrupt hash index entry for %s", hash)
	}
	return binary.BigEndian.Uint64(val), true, nil
}
