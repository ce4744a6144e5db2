// Package storage provides key-value database abstractions and engines.
package storage

import (
	"errors"
	"fmt"
	"os"

	"github.com/Klingon-tech/klingnet-ledger/config"
	"github.com/Klingon-tech/klingnet-ledger/internal/log"
)

// ErrNotFound is returned by Get when a key does not exist.
var ErrNotFound = errors.New("key not found")

// DB is the interface for key-value storage.
type DB interface {
	// Get returns an error wrapping ErrNotFound for a missing key.
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	Has(key []byte) (bool, error)
	// ForEach iterates over all keys with the given prefix in ascending
	// key order. The callback receives a copy of the key; the value is
	// only valid during the call. fn must not write to the database.
	// Return a non-nil error from fn to stop iteration early.
	ForEach(prefix []byte, fn func(key, value []byte) error) error
	Close() error
}

// Batch collects writes that are applied atomically by Commit.
// A batch must not be used after Commit.
type Batch interface {
	Put(key, value []byte) error
	Delete(key []byte) error
	Commit() error
}

// Batcher is implemented by databases that support atomic batches.
type Batcher interface {
	NewBatch() Batch
}

// Open opens the database engine named by engine at path. The memory
// engine ignores path.
func Open(engine, path string) (DB, error) {
	if engine != config.EngineMemory {
		if err := os.MkdirAll(path, 0700); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	log.Storage.Debug().Str("engine", engine).Str("path", path).Msg("Opening database")

	switch engine {
	case config.EngineMemory:
		return NewMemory(), nil
	case config.EngineBadger:
		return NewBadger(path)
	case config.EngineBolt:
		return NewBolt(path)
	default:
		return nil, fmt.Errorf("unknown db engine %q", engine)
	}
}

// NewBatch returns an atomic batch for db when it supports one, and a
// buffered batch applied with individual writes otherwise.
func NewBatch(db DB) Batch {
	if b, ok := db.(Batcher); ok {
		return b.NewBatch()
	}
	return &fallbackBatch{db: db}
}

type batchOp struct {
	key   []byte
	value []byte // nil means delete
}

// fallbackBatch buffers writes and applies them non-atomically
// when the DB doesn't support batching.
type fallbackBatch struct {
	db  DB
	ops []batchOp
}

func (fb *fallbackBatch) Put(key, value []byte) error {
	fb.ops = append(fb.ops, batchOp{key: cloneBytes(key), value: nonNil(value)})
	return nil
}

func (fb *fallbackBatch) Delete(key []byte) error {
	fb.ops = append(fb.ops, batchOp{key: cloneBytes(key)})
	return nil
}

func (fb *fallbackBatch) Commit() error {
	for _, op := range fb.ops {
		if op.value == nil {
			if err := fb.db.Delete(op.key); err != nil {
				return err
			}
		} else if err := fb.db.Put(op.key, op.value); err != nil {
			return err
		}
	}
	fb.ops = nil
	return nil
}

func cloneBytes(b []byte) []byte {
	c := make([]byte, len(b))
	copy(c, b)
	return c
}

// nonNil copies b, mapping nil to an empty slice so a Put of an empty value
// is not mistaken for a delete.
func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return cloneBytes(b)
}
