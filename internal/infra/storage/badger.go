package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/errs"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/interfaces"
	"github.com/dgraph-io/badger/v4"
)

const maxConflictRetries = 5

// OpenBadger opens the embedded store. An in-memory store ignores dir.
func OpenBadger(cfg Config) (*badger.DB, error) {
	opts := badger.DefaultOptions(cfg.BadgerDir)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("err opening badger at %s, %w", cfg.BadgerDir, err)
	}
	return db, nil
}

// BadgerNamespace stores every key of a namespace under "<name>:".
type BadgerNamespace struct {
	db     *badger.DB
	prefix string
}

var _ interfaces.Namespace = (*BadgerNamespace)(nil)

func NewBadgerNamespace(db *badger.DB, name string) *BadgerNamespace {
	return &BadgerNamespace{db: db, prefix: name + ":"}
}

func (n *BadgerNamespace) key(k string) []byte {
	return []byte(n.prefix + k)
}

func (n *BadgerNamespace) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := n.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(n.key(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%s%s, %w", n.prefix, key, errs.ErrKeyNotFound)
		}
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (n *BadgerNamespace) Put(ctx context.Context, key string, value []byte) error {
	return n.db.Update(func(txn *badger.Txn) error {
		return txn.Set(n.key(key), value)
	})
}

// PutIfAbsent reads and writes in one transaction. A concurrent writer makes
// the commit fail with ErrConflict, after which the key is read again.
func (n *BadgerNamespace) PutIfAbsent(ctx context.Context, key string, value []byte) (bool, error) {
	for range maxConflictRetries {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		created := false
		err := n.db.Update(func(txn *badger.Txn) error {
			_, err := txn.Get(n.key(key))
			if err == nil {
				return nil
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			created = true
			return txn.Set(n.key(key), value)
		})
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		if err != nil {
			return false, err
		}
		return created, nil
	}
	return false, fmt.Errorf("err claiming %s%s, %w", n.prefix, key, badger.ErrConflict)
}

func (n *BadgerNamespace) Delete(ctx context.Context, key string) error {
	return n.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(n.key(key))
	})
}
