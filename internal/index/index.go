package index

import (
	"context"
	"fmt"
)

// Record is the persisted unit in the vector store. The backend maps Text
// into the field declared by the index's field mapping so the bound
// embedding model can vectorize it server-side.
type Record struct {
	ID       string
	Text     string
	Metadata map[string]string
}

// Match is one similarity-search hit. Score is normalized to [0,1].
type Match struct {
	Text     string
	Score    float64
	Metadata map[string]string
}

// EmbedSpec binds an index to a named embedding model and declares which
// record field supplies the text for automatic embedding.
type EmbedSpec struct {
	Model     string
	TextField string
}

// Spec is the full description of an index to create.
type Spec struct {
	Name   string
	Cloud  string
	Region string
	Embed  EmbedSpec
}

type Status struct {
	Ready bool
}

// Service is the vector index collaborator. Implementations are providers:
// a remote HTTP service, a local chromem-go store, or Postgres.
type Service interface {
	ListIndexes(ctx context.Context) ([]string, error)
	CreateIndexForModel(ctx context.Context, spec Spec) error
	DescribeIndex(ctx context.Context, name string) (Status, error)
	Upsert(ctx context.Context, name string, records []Record) error
	Search(ctx context.Context, name, query string, k int, includeMetadata bool) ([]Match, error)
}

// UnavailableError wraps any index-service failure. Retrieval degrades to
// empty context on it; ingestion surfaces it.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("index unavailable during %s: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Handle binds one index name to a service for the process lifetime. There
// is no teardown; the external service owns persistence.
type Handle struct {
	name string
	svc  Service
}

func NewHandle(name string, svc Service) *Handle {
	return &Handle{name: name, svc: svc}
}

func (h *Handle) Name() string { return h.name }

func (h *Handle) Upsert(ctx context.Context, records []Record) error {
	if err := h.svc.Upsert(ctx, h.name, records); err != nil {
		return &UnavailableError{Op: "upsert", Err: err}
	}
	return nil
}

func (h *Handle) Search(ctx context.Context, query string, k int) ([]Match, error) {
	matches, err := h.svc.Search(ctx, h.name, query, k, true)
	if err != nil {
		return nil, &UnavailableError{Op: "search", Err: err}
	}
	return matches, nil
}
