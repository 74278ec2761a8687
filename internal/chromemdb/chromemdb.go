// Package chromemdb serves the vector index contract from an embedded
// chromem-go store. The embedding model bound at index creation runs through
// the configured embedder, so records carry text only, as with a hosted
// index with integrated inference.
package chromemdb

import (
	"context"
	"fmt"
	"runtime"

	"github.com/philippgille/chromem-go"

	"document-chat/internal/index"
)

const compress = false

// Service encapsulates the chromem-go database operations behind
// index.Service.
type Service struct {
	db      *chromem.DB
	embedFn chromem.EmbeddingFunc
}

// NewService opens (or creates) the store at dbPath. With inMemory set the
// store lives only for the process lifetime.
func NewService(dbPath string, inMemory bool, embedFn chromem.EmbeddingFunc) (*Service, error) {
	var db *chromem.DB
	var err error
	if inMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(dbPath, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	}
	return &Service{db: db, embedFn: embedFn}, nil
}

func (s *Service) ListIndexes(ctx context.Context) ([]string, error) {
	collections := s.db.ListCollections()
	names := make([]string, 0, len(collections))
	for name := range collections {
		names = append(names, name)
	}
	return names, nil
}

func (s *Service) CreateIndexForModel(ctx context.Context, spec index.Spec) error {
	metadata := map[string]string{
		"embedding_model": spec.Embed.Model,
		"text_field":      spec.Embed.TextField,
	}
	_, err := s.db.GetOrCreateCollection(spec.Name, metadata, s.embedFn)
	if err != nil {
		return fmt.Errorf("failed to create/get collection: %v", err)
	}
	return nil
}

// DescribeIndex reports a local collection ready as soon as it exists.
func (s *Service) DescribeIndex(ctx context.Context, name string) (index.Status, error) {
	c := s.db.GetCollection(name, s.embedFn)
	return index.Status{Ready: c != nil}, nil
}

func (s *Service) Upsert(ctx context.Context, name string, records []index.Record) error {
	c := s.db.GetCollection(name, s.embedFn)
	if c == nil {
		return fmt.Errorf("collection %s does not exist", name)
	}

	docs := make([]chromem.Document, 0, len(records))
	for _, rec := range records {
		docs = append(docs, chromem.Document{
			ID:       rec.ID,
			Content:  rec.Text,
			Metadata: rec.Metadata,
		})
	}

	if err := c.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %v", err)
	}
	return nil
}

func (s *Service) Search(ctx context.Context, name, query string, k int, includeMetadata bool) ([]index.Match, error) {
	c := s.db.GetCollection(name, s.embedFn)
	if c == nil {
		return nil, fmt.Errorf("collection %s does not exist", name)
	}

	// chromem rejects queries asking for more results than stored documents.
	if count := c.Count(); k > count {
		k = count
	}
	if k == 0 {
		return nil, nil
	}

	results, err := c.Query(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %v", err)
	}

	matches := make([]index.Match, 0, len(results))
	for _, r := range results {
		match := index.Match{Text: r.Content, Score: float64(r.Similarity)}
		if includeMetadata {
			match.Metadata = r.Metadata
		}
		matches = append(matches, match)
	}
	return matches, nil
}

var _ index.Service = (*Service)(nil)
