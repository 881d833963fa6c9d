package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"
)

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create storage dir %s: %w", dir, err)
	}
	return nil
}

// BadgerStore keeps the ledger in an embedded Badger database. Badger
// transactions give the commit-or-discard behaviour the Store contract
// requires.
type BadgerStore struct {
	db  *badger.DB
	log *logrus.Logger
}

func NewBadgerStore(dir string, log *logrus.Logger) (*BadgerStore, error) {
	if log == nil {
		log = logrus.New()
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	if err := ensureDir(dir); err != nil {
		return nil, err
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", dir, err)
	}
	return &BadgerStore{db: db, log: log}, nil
}

func (s *BadgerStore) View(ctx context.Context, fn func(KV) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(txn *badger.Txn) error {
		return fn(badgerKV{txn: txn})
	})
}

func (s *BadgerStore) Update(ctx context.Context, fn func(KV) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return fn(badgerKV{txn: txn})
	})
}

// Maintain syncs the database and reclaims value-log space. The worker
// calls this on a timer; ErrNoRewrite just means there was nothing to
// collect.
func (s *BadgerStore) Maintain() error {
	if err := s.db.Sync(); err != nil {
		return fmt.Errorf("sync badger: %w", err)
	}
	if err := s.db.RunValueLogGC(0.5); err != nil && err != badger.ErrNoRewrite {
		return fmt.Errorf("badger value log gc: %w", err)
	}
	s.log.Debug("badger maintenance pass complete")
	return nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

type badgerKV struct {
	txn *badger.Txn
}

func (kv badgerKV) Has(key []byte) (bool, error) {
	_, err := kv.txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (kv badgerKV) Get(key []byte) ([]byte, bool, error) {
	item, err := kv.txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	value, err := item.ValueCopy(nil)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (kv badgerKV) Set(key, value []byte) error {
	return kv.txn.Set(key, value)
}

var _ Store = (*BadgerStore)(nil)
