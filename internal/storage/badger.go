package storage

import (
	"fmt"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
)

// BadgerStore persists the key-value namespaces in an embedded badger
// database. Keys are laid out as "<namespace>/<key>" so List can walk
// a namespace with a prefix iterator.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a badger database at path.
func OpenBadger(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store at %s: %w", path, err)
	}
	return &BadgerStore{db: db}, nil
}

func storeKey(namespace, key string) []byte {
	return []byte(namespace + "/" + key)
}

func (b *BadgerStore) Get(namespace, key string) ([]byte, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(storeKey(namespace, key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("badger get %s/%s: %w", namespace, key, err)
	}
	return value, nil
}

func (b *BadgerStore) Set(namespace, key string, value []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(storeKey(namespace, key), value)
	})
	if err != nil {
		return fmt.Errorf("badger set %s/%s: %w", namespace, key, err)
	}
	return nil
}

func (b *BadgerStore) Delete(namespace, key string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(storeKey(namespace, key))
	})
	if err != nil {
		return fmt.Errorf("badger delete %s/%s: %w", namespace, key, err)
	}
	return nil
}

func (b *BadgerStore) List(namespace, prefix string) ([]string, error) {
	fullPrefix := storeKey(namespace, prefix)
	keys := []string{}
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(fullPrefix); it.ValidForPrefix(fullPrefix); it.Next() {
			k := string(it.Item().Key())
			keys = append(keys, strings.TrimPrefix(k, namespace+"/"))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badger list %s/%s: %w", namespace, prefix, err)
	}
	return keys, nil
}

func (b *BadgerStore) Close() error {
	return b.db.Close()
}
