package repository

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/lumenmap/candles/internal/domain/model"
	"github.com/lumenmap/candles/pkg/errs"
	"github.com/lumenmap/candles/pkg/metrics"
)

// Key layout: candles live under a sequence-numbered key so iteration
// yields insertion order; a second index maps candle ID to its
// sequence key for point lookups and pagination cursors.
var (
	prefixCandle = []byte("c:")
	prefixID     = []byte("i:")
)

const seqBandwidth = 128

// BadgerStore persists candles in a badger key-value store. Values are
// JSON; insertion order comes from a monotonic sequence.
type BadgerStore struct {
	db  *badger.DB
	seq *badger.Sequence
	now clock
}

// NewBadgerStore opens the store at the configured path, or fully
// in-memory with WithInMemory (used in tests).
func NewBadgerStore(opts ...Option) (*BadgerStore, error) {
	s := newSettings(opts)

	var bopts badger.Options
	if s.inMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		bopts = badger.DefaultOptions(s.path)
	}
	bopts = bopts.WithLogger(nil)

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, errs.Wrap("repository.open", err)
	}
	seq, err := db.GetSequence([]byte("seq:candles"), seqBandwidth)
	if err != nil {
		_ = db.Close()
		return nil, errs.Wrap("repository.open", err)
	}
	return &BadgerStore{db: db, seq: seq, now: s.now}, nil
}

func candleKey(seq uint64) []byte {
	key := make([]byte, len(prefixCandle)+8)
	copy(key, prefixCandle)
	binary.BigEndian.PutUint64(key[len(prefixCandle):], seq)
	return key
}

func idKey(id string) []byte {
	return append(append([]byte{}, prefixID...), id...)
}

func (b *BadgerStore) Create(_ context.Context, candle model.Candle) (model.Candle, error) {
	start := time.Now()

	n, err := b.seq.Next()
	if err != nil {
		return model.Candle{}, errs.Wrap("repository.create", err)
	}
	candle.ID = uuid.NewString()
	candle.CreatedAt = b.now()

	value, err := json.Marshal(candle)
	if err != nil {
		return model.Candle{}, errs.Wrap("repository.create", err)
	}

	err = b.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(candleKey(n), value); err != nil {
			return err
		}
		seqRef := make([]byte, 8)
		binary.BigEndian.PutUint64(seqRef, n)
		return txn.Set(idKey(candle.ID), seqRef)
	})
	if err != nil {
		return model.Candle{}, errs.Wrap("repository.create", err)
	}

	metrics.RecordStoreWriteLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	return candle, nil
}

// seqOf resolves a candle ID to its sequence number inside txn.
func seqOf(txn *badger.Txn, id string) (uint64, error) {
	item, err := txn.Get(idKey(id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	var n uint64
	err = item.Value(func(val []byte) error {
		n = binary.BigEndian.Uint64(val)
		return nil
	})
	return n, err
}

func (b *BadgerStore) Get(_ context.Context, id string) (model.Candle, error) {
	start := time.Now()
	var candle model.Candle

	err := b.db.View(func(txn *badger.Txn) error {
		n, err := seqOf(txn, id)
		if err != nil {
			return err
		}
		item, err := txn.Get(candleKey(n))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &candle)
		})
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.Candle{}, ErrNotFound
		}
		return model.Candle{}, errs.Wrap("repository.get", err)
	}

	metrics.RecordStoreReadLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	return candle, nil
}

func (b *BadgerStore) List(_ context.Context, afterID string, limit int) ([]model.Candle, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	start := time.Now()
	page := make([]model.Candle, 0, limit)

	err := b.db.View(func(txn *badger.Txn) error {
		seekFrom := candleKey(0)
		if afterID != "" {
			n, err := seqOf(txn, afterID)
			if err != nil {
				return err
			}
			seekFrom = candleKey(n + 1)
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefixCandle
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(seekFrom); it.Valid() && len(page) < limit; it.Next() {
			var candle model.Candle
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &candle)
			})
			if err != nil {
				return err
			}
			page = append(page, candle)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errs.Wrap("repository.list", err)
	}

	metrics.RecordStoreReadLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	return page, nil
}

func (b *BadgerStore) Delete(_ context.Context, id, ownerID string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		n, err := seqOf(txn, id)
		if err != nil {
			return err
		}
		item, err := txn.Get(candleKey(n))
		if err != nil {
			return err
		}
		var candle model.Candle
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &candle)
		}); err != nil {
			return err
		}
		if candle.OwnerID != ownerID {
			return ErrNotOwner
		}
		if err := txn.Delete(candleKey(n)); err != nil {
			return err
		}
		return txn.Delete(idKey(id))
	})
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrNotOwner) {
		return err
	}
	if err != nil {
		return errs.Wrap("repository.delete", err)
	}
	return nil
}

func (b *BadgerStore) Snapshot(_ context.Context) ([]model.Candle, error) {
	var out []model.Candle

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefixCandle
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefixCandle); it.Valid(); it.Next() {
			var candle model.Candle
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &candle)
			})
			if err != nil {
				return err
			}
			out = append(out, candle)
		}
		return nil
	})
	if err != nil {
		return nil, errs.Wrap("repository.snapshot", err)
	}
	return out, nil
}

func (b *BadgerStore) Count(_ context.Context) (int, error) {
	count := 0
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefixID
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefixID); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, errs.Wrap("repository.count", err)
	}
	return count, nil
}

func (b *BadgerStore) Close() error {
	if err := b.seq.Release(); err != nil {
		_ = b.db.Close()
		return errs.Wrap("repository.close", err)
	}
	return errs.Wrap("repository.close", b.db.Close())
}
