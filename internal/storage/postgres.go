package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps the ledger in a single kv table. A pg transaction
// per Update closure provides the commit-or-discard guarantee; the table
// is never queried by anything other than exact key.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, db *pgxpool.Pool) (*PostgresStore, error) {
	_, err := db.Exec(ctx, `CREATE TABLE IF NOT EXISTS kv (key BYTEA PRIMARY KEY, value BYTEA NOT NULL)`)
	if err != nil {
		return nil, fmt.Errorf("create kv table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) View(ctx context.Context, fn func(KV) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(pgKV{ctx: ctx, tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) Update(ctx context.Context, fn func(KV) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(pgKV{ctx: ctx, tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

type pgKV struct {
	ctx context.Context
	tx  pgx.Tx
}

func (kv pgKV) Has(key []byte) (bool, error) {
	var exists bool
	err := kv.tx.QueryRow(kv.ctx, `SELECT EXISTS (SELECT 1 FROM kv WHERE key=$1)`, key).Scan(&exists)
	return exists, err
}

func (kv pgKV) Get(key []byte) ([]byte, bool, error) {
	var value []byte
	err := kv.tx.QueryRow(kv.ctx, `SELECT value FROM kv WHERE key=$1`, key).Scan(&value)
	if err == pgx.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (kv pgKV) Set(key, value []byte) error {
	_, err := kv.tx.Exec(kv.ctx, `INSERT INTO kv (key, value) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value)
	return err
}

var _ Store = (*PostgresStore)(nil)
