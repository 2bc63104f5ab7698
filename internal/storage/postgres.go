package storage

import (
	"context"
	"fmt"

	"github.com/unknownmsv/O1Sub/internal/infra"
	"github.com/unknownmsv/O1Sub/internal/sqlinline"
)

// PostgresStore keeps each document as a jsonb row in the documents table.
type PostgresStore struct {
	sql infra.SQLExecutor
}

// NewPostgresStore wraps an executor. Run MigratePostgres before first use.
func NewPostgresStore(sql infra.SQLExecutor) *PostgresStore {
	return &PostgresStore{sql: sql}
}

func (s *PostgresStore) Read(ctx context.Context, name string) ([]byte, error) {
	var body string
	if err := s.sql.QueryRow(ctx, sqlinline.QSelectDocument, name).Scan(&body); err != nil {
		if infra.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("storage: select %s: %w", name, err)
	}
	return []byte(body), nil
}

func (s *PostgresStore) Write(ctx context.Context, name string, data []byte) error {
	if _, err := s.sql.Exec(ctx, sqlinline.QUpsertDocument, name, string(data)); err != nil {
		return fmt.Errorf("storage: upsert %s: %w", name, err)
	}
	return nil
}

var _ Backend = (*PostgresStore)(nil)
