package index

import (
	"context"
	"errors"
	"testing"

	"document-chat/internal/config"
)

type stubService struct {
	names        []string
	createCalls  int
	listCalls    int
	describes    int
	readyAfter   int // number of describe calls before Ready flips true
	listErr      error
	createErr    error
	describeErr  error
	upsertErr    error
	searchResult []Match
	searchErr    error
	upserted     [][]Record
}

func (s *stubService) ListIndexes(ctx context.Context) ([]string, error) {
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.names, nil
}

func (s *stubService) CreateIndexForModel(ctx context.Context, spec Spec) error {
	s.createCalls++
	if s.createErr != nil {
		return s.createErr
	}
	s.names = append(s.names, spec.Name)
	return nil
}

func (s *stubService) DescribeIndex(ctx context.Context, name string) (Status, error) {
	s.describes++
	if s.describeErr != nil {
		return Status{}, s.describeErr
	}
	return Status{Ready: s.describes > s.readyAfter}, nil
}

func (s *stubService) Upsert(ctx context.Context, name string, records []Record) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserted = append(s.upserted, records)
	return nil
}

func (s *stubService) Search(ctx context.Context, name, query string, k int, includeMetadata bool) ([]Match, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.searchResult, nil
}

var _ Service = (*stubService)(nil)

func testIndexConfig() *config.IndexConfig {
	return &config.IndexConfig{PollIntervalSecs: 1, ReadyTimeoutSecs: 5, BackoffFactor: 1}
}

func testSpec() Spec {
	return Spec{
		Name:   "assistant",
		Cloud:  "aws",
		Region: "us-east-1",
		Embed:  EmbedSpec{Model: "nomic-embed-text", TextField: "chunk_text"},
	}
}

func TestEnsureIndexCreatesWhenAbsent(t *testing.T) {
	svc := &stubService{}
	m := NewManager(svc, testIndexConfig())

	handle := m.EnsureIndex(context.Background(), testSpec())
	if handle == nil {
		t.Fatal("expected a handle")
	}
	if handle.Name() != "assistant" {
		t.Fatalf("unexpected handle name: %s", handle.Name())
	}
	if svc.createCalls != 1 {
		t.Fatalf("expected 1 create call, got %d", svc.createCalls)
	}
}

func TestEnsureIndexIdempotent(t *testing.T) {
	svc := &stubService{}
	m := NewManager(svc, testIndexConfig())

	ctx := context.Background()
	m.EnsureIndex(ctx, testSpec())
	m.EnsureIndex(ctx, testSpec())

	if svc.createCalls != 1 {
		t.Fatalf("expected exactly 1 create call across two ensures, got %d", svc.createCalls)
	}
	if svc.listCalls != 2 {
		t.Fatalf("expected 2 list calls, got %d", svc.listCalls)
	}
}

func TestEnsureIndexPollsUntilReady(t *testing.T) {
	svc := &stubService{readyAfter: 2}
	cfg := testIndexConfig()
	m := NewManager(svc, cfg)
	m.poll = 0 // no need to sleep in tests

	m.EnsureIndex(context.Background(), testSpec())
	if svc.describes != 3 {
		t.Fatalf("expected 3 describe calls, got %d", svc.describes)
	}
}

func TestEnsureIndexSwallowsErrors(t *testing.T) {
	svc := &stubService{listErr: errors.New("connection refused")}
	m := NewManager(svc, testIndexConfig())

	// A stuck or broken service must not prevent startup; the handle is
	// returned and later operations fail at use time.
	handle := m.EnsureIndex(context.Background(), testSpec())
	if handle == nil {
		t.Fatal("expected a handle despite the list failure")
	}
}

func TestHandleWrapsFailuresAsUnavailable(t *testing.T) {
	svc := &stubService{upsertErr: errors.New("boom"), searchErr: errors.New("boom")}
	handle := NewHandle("assistant", svc)

	err := handle.Upsert(context.Background(), []Record{{ID: "a", Text: "t"}})
	var ue *UnavailableError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnavailableError from upsert, got %T", err)
	}

	_, err = handle.Search(context.Background(), "q", 3)
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnavailableError from search, got %T", err)
	}
}
