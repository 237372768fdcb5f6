package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arun3676/agentception/internal/storage"
)

// ensure postgresBackend implements storage.Backend
var _ storage.Backend = (*postgresBackend)(nil)

type postgresBackend struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS run_documents (
	run_id TEXT PRIMARY KEY,
	city TEXT NOT NULL,
	role TEXT NOT NULL,
	payload JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
`

// New creates a new Postgres-backed storage.Backend.
func New(ctx context.Context, dsn string) (storage.Backend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &postgresBackend{pool: pool}, nil
}

func (b *postgresBackend) SaveDocument(ctx context.Context, doc *storage.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	query := `
	INSERT INTO run_documents (run_id, city, role, payload, created_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (run_id) DO UPDATE SET payload = EXCLUDED.payload
	`
	_, err = b.pool.Exec(ctx, query,
		doc.RunID, doc.City, doc.Role, payload, doc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

func (b *postgresBackend) GetDocument(ctx context.Context, runID string) (*storage.Document, error) {
	var payload []byte
	err := b.pool.QueryRow(ctx,
		`SELECT payload FROM run_documents WHERE run_id = $1`, runID,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}

	var doc storage.Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return &doc, nil
}

func (b *postgresBackend) ListDocuments(ctx context.Context, filter storage.Filter) ([]*storage.Document, error) {
	query := `SELECT payload FROM run_documents WHERE 1=1`
	args := []any{}
	paramCount := 1

	if filter.City != "" {
		query += fmt.Sprintf(` AND city = $%d`, paramCount)
		args = append(args, filter.City)
		paramCount++
	}
	if filter.Role != "" {
		query += fmt.Sprintf(` AND role = $%d`, paramCount)
		args = append(args, filter.Role)
		paramCount++
	}
	if filter.Since != nil {
		query += fmt.Sprintf(` AND created_at >= $%d`, paramCount)
		args = append(args, *filter.Since)
		paramCount++
	}

	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, paramCount)
		args = append(args, filter.Limit)
	}

	rows, err := b.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*storage.Document
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		var doc storage.Document
		if err := json.Unmarshal(payload, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		docs = append(docs, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return docs, nil
}

func (b *postgresBackend) Close() error {
	b.pool.Close()
	return nil
}
