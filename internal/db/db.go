// Package db serves the vector index contract from Postgres with the
// pgvector extension. Embeddings are computed with the bound embedder at
// upsert and query time, mirroring an index with an integrated model.
package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"document-chat/internal/config"
	"document-chat/internal/index"
)

// IndexEntry is the catalog row recording an index and its model binding.
type IndexEntry struct {
	bun.BaseModel  `bun:"table:indexes,alias:i"`
	Name           string `bun:"name,pk"`
	EmbeddingModel string `bun:"embedding_model,notnull"`
	TextField      string `bun:"text_field,notnull"`
}

// IndexRecord is one stored chunk with its vector.
type IndexRecord struct {
	bun.BaseModel `bun:"table:index_records,alias:r"`
	ID            string            `bun:"id,pk"`
	IndexName     string            `bun:"index_name,notnull"`
	Content       string            `bun:"content,notnull"`
	Metadata      map[string]string `bun:"metadata,type:jsonb"`
	Embedding     []float32         `bun:"embedding,notnull,type:vector(768)"`
}

func ConnectDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	dsn := cfg.DSN + "?sslmode=disable"
	return sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn), pgdriver.WithPassword(cfg.Password))), nil
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

// Service implements index.Service on top of bun.
type Service struct {
	db       *bun.DB
	embedder *embeddings.EmbedderImpl
}

func NewService(db *bun.DB, embedder *embeddings.EmbedderImpl) *Service {
	return &Service{db: db, embedder: embedder}
}

func (s *Service) Close() error { return s.db.Close() }

func (s *Service) ListIndexes(ctx context.Context) ([]string, error) {
	if err := s.initTables(ctx); err != nil {
		return nil, err
	}
	var names []string
	err := s.db.NewSelect().
		Model((*IndexEntry)(nil)).
		Column("name").
		Scan(ctx, &names)
	return names, err
}

func (s *Service) CreateIndexForModel(ctx context.Context, spec index.Spec) error {
	if err := s.initTables(ctx); err != nil {
		return err
	}
	entry := &IndexEntry{
		Name:           spec.Name,
		EmbeddingModel: spec.Embed.Model,
		TextField:      spec.Embed.TextField,
	}
	_, err := s.db.NewInsert().
		Model(entry).
		On("CONFLICT (name) DO NOTHING").
		Exec(ctx)
	return err
}

// DescribeIndex reports ready once the catalog row exists; the table backing
// records is created together with it.
func (s *Service) DescribeIndex(ctx context.Context, name string) (index.Status, error) {
	exists, err := s.db.NewSelect().
		Model((*IndexEntry)(nil)).
		Where("name = ?", name).
		Exists(ctx)
	if err != nil {
		return index.Status{}, err
	}
	return index.Status{Ready: exists}, nil
}

func (s *Service) Upsert(ctx context.Context, name string, records []index.Record) error {
	rows := make([]IndexRecord, 0, len(records))
	for _, rec := range records {
		vec, err := s.embedder.EmbedQuery(ctx, rec.Text)
		if err != nil {
			return fmt.Errorf("embed record %s: %w", rec.ID, err)
		}
		rows = append(rows, IndexRecord{
			ID:        rec.ID,
			IndexName: name,
			Content:   rec.Text,
			Metadata:  rec.Metadata,
			Embedding: vec,
		})
	}
	if len(rows) == 0 {
		return nil
	}
	_, err := s.db.NewInsert().
		Model(&rows).
		On("CONFLICT (id) DO UPDATE").
		Set("content = EXCLUDED.content").
		Set("metadata = EXCLUDED.metadata").
		Set("embedding = EXCLUDED.embedding").
		Exec(ctx)
	return err
}

func (s *Service) Search(ctx context.Context, name, query string, k int, includeMetadata bool) ([]index.Match, error) {
	queryVec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	var rows []struct {
		IndexRecord
		Distance float64 `bun:"distance"`
	}
	err = s.db.NewSelect().
		Model((*IndexRecord)(nil)).
		ColumnExpr("r.*").
		ColumnExpr("r.embedding <-> ? AS distance", queryVec).
		Where("r.index_name = ?", name).
		OrderExpr("r.embedding <-> ?", queryVec).
		Limit(k).
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}

	matches := make([]index.Match, 0, len(rows))
	for _, row := range rows {
		match := index.Match{
			Text: row.Content,
			// Fold unbounded distance into a (0,1] relevance score.
			Score: 1 / (1 + row.Distance),
		}
		if includeMetadata {
			match.Metadata = row.Metadata
		}
		matches = append(matches, match)
	}
	return matches, nil
}

func (s *Service) initTables(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*IndexEntry)(nil)).IfNotExists().Exec(ctx); err != nil {
		return err
	}
	_, err := s.db.NewCreateTable().Model((*IndexRecord)(nil)).IfNotExists().Exec(ctx)
	return err
}

var _ index.Service = (*Service)(nil)
