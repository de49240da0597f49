// ABOUTME: Embedded key-value store backing local (signed-out) mode
// ABOUTME: Wraps BadgerDB with byte-key Get/Set/Delete and prefix listing

package localstore

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v3"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("localstore: key not found")

// KV is a thread-safe key-value store on top of BadgerDB.
type KV struct {
	db *badger.DB
	mu sync.RWMutex
}

// Open opens (or creates) a persistent store in dir.
func Open(dir string) (*KV, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	// Badger logs are noisy on a CLI
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &KV{db: db}, nil
}

// OpenInMemory opens a store that lives only as long as the process.
func OpenInMemory() (*KV, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory badger: %w", err)
	}
	return &KV{db: db}, nil
}

func (k *KV) Get(key []byte) ([]byte, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	var result []byte
	err := k.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		result, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	return result, err
}

func (k *KV) Set(key, value []byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// Delete removes a key. Deleting a missing key is not an error.
func (k *KV) Delete(key []byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// Keys returns every key in sorted order.
func (k *KV) Keys() ([][]byte, error) {
	return k.KeysWithPrefix(nil)
}

// KeysWithPrefix returns the keys starting with prefix, in sorted order.
func (k *KV) KeysWithPrefix(prefix []byte) ([][]byte, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	var keys [][]byte
	err := k.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	return keys, err
}

// ScanPrefix calls fn with every key/value pair under prefix. Returning an
// error from fn stops the scan.
func (k *KV) ScanPrefix(prefix []byte, fn func(key, value []byte) error) error {
	k.mu.RLock()
	defer k.mu.RUnlock()

	return k.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := fn(item.KeyCopy(nil), value); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeletePrefix removes every key under prefix.
func (k *KV) DeletePrefix(prefix []byte) error {
	if len(prefix) == 0 {
		return errors.New("localstore: refusing to delete with an empty prefix, use Reset")
	}
	return k.deleteUnder(prefix)
}

// Reset wipes the whole store.
func (k *KV) Reset() error {
	return k.deleteUnder(nil)
}

func (k *KV) deleteUnder(prefix []byte) error {
	keys, err := k.KeysWithPrefix(prefix)
	if err != nil {
		return err
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	wb := k.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range keys {
		if err := wb.Delete(key); err != nil {
			return fmt.Errorf("failed to delete %q: %w", key, err)
		}
	}
	return wb.Flush()
}

func (k *KV) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.db.Close()
}
