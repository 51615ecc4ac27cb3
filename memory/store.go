// Package memory is the reference AuditSink (engine.AuditSink) implementation
// backing compressed-summary semantic recall: VectorStore embeds every
// recorded interaction and stores it in a pgvector-indexed PostgreSQL table,
// so a later `compress` round (or an external tool) can recall semantically
// similar past interactions rather than only the ones still in the active
// frame's context log.
package memory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/vibelang-org/vibe/engine"
)

var _ engine.AuditSink = (*VectorStore)(nil)

// VectorStore implements engine.AuditSink against a single pgxpool.Pool.
type VectorStore struct {
	pool     *pgxpool.Pool
	embedder Embedder
}

// Open connects to dsn, registers pgvector's type codec on every new
// connection, and ensures the memory_chunks table exists sized for
// embedder's dimensionality.
func Open(ctx context.Context, dsn string, embedder Embedder) (*VectorStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("memory: parse dsn: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("memory: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("memory: ping: %w", err)
	}

	s := &VectorStore{pool: pool, embedder: embedder}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *VectorStore) migrate(ctx context.Context) error {
	ddl := fmt.Sprintf(`
		CREATE EXTENSION IF NOT EXISTS vector;

		CREATE TABLE IF NOT EXISTS memory_chunks (
			id        BIGSERIAL PRIMARY KEY,
			kind      TEXT NOT NULL,
			model     TEXT NOT NULL,
			prompt    TEXT NOT NULL,
			response  TEXT NOT NULL,
			embedding vector(%d),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE INDEX IF NOT EXISTS idx_memory_chunks_embedding
			ON memory_chunks USING hnsw (embedding vector_cosine_ops);
	`, s.embedder.Dimensions())
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("memory: migrate: %w", err)
	}
	return nil
}

// RecordInteraction implements engine.AuditSink by embedding the interaction
// text (prompt and response concatenated) and storing the result alongside
// it. runner.Driver calls it after resume_with_ai_response has already
// produced the new state; compress summaries are not recorded. It never
// influences step.
func (s *VectorStore) RecordInteraction(ctx context.Context, interaction engine.AIInteraction) error {
	text := interaction.Prompt + "\n" + interaction.Response
	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return err
	}
	vec := pgvector.NewVector(embedding)

	const q = `INSERT INTO memory_chunks (kind, model, prompt, response, embedding)
		VALUES ($1, $2, $3, $4, $5)`
	_, err = s.pool.Exec(ctx, q, string(interaction.Kind), interaction.Model, interaction.Prompt, interaction.Response, vec)
	if err != nil {
		return fmt.Errorf("memory: insert: %w", err)
	}
	return nil
}

// Chunk is one recalled memory, ordered by ascending cosine distance from
// the query (most similar first).
type Chunk struct {
	Kind     string
	Model    string
	Prompt   string
	Response string
	Distance float64
}

// Recall finds the topK stored chunks whose embeddings are closest to
// query's embedding, for semantic lookup independent of the active frame's
// context log.
func (s *VectorStore) Recall(ctx context.Context, query string, topK int) ([]Chunk, error) {
	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	queryVec := pgvector.NewVector(embedding)

	const q = `SELECT kind, model, prompt, response, embedding <=> $1 AS distance
		FROM memory_chunks
		ORDER BY distance
		LIMIT $2`
	rows, err := s.pool.Query(ctx, q, queryVec, topK)
	if err != nil {
		return nil, fmt.Errorf("memory: recall: %w", err)
	}
	chunks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Chunk, error) {
		var c Chunk
		err := row.Scan(&c.Kind, &c.Model, &c.Prompt, &c.Response, &c.Distance)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("memory: scan rows: %w", err)
	}
	return chunks, nil
}

// Close releases the underlying connection pool.
func (s *VectorStore) Close() {
	s.pool.Close()
}
