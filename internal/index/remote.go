package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"document-chat/internal/config"
)

// RemoteService talks to a hosted vector index over HTTP. The wire shape is
// provider-specific and deliberately private to this file; callers only see
// the Service interface.
type RemoteService struct {
	baseURL   string
	apiKey    string
	textField string
	client    *http.Client
}

func NewRemoteService(cfg *config.IndexConfig) *RemoteService {
	return &RemoteService{
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		textField: cfg.TextField,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (s *RemoteService) ListIndexes(ctx context.Context) ([]string, error) {
	var parsed struct {
		Indexes []struct {
			Name string `json:"name"`
		} `json:"indexes"`
	}
	if err := s.do(ctx, http.MethodGet, "/indexes", nil, &parsed); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(parsed.Indexes))
	for _, idx := range parsed.Indexes {
		names = append(names, idx.Name)
	}
	return names, nil
}

func (s *RemoteService) CreateIndexForModel(ctx context.Context, spec Spec) error {
	payload := struct {
		Name   string `json:"name"`
		Cloud  string `json:"cloud"`
		Region string `json:"region"`
		Embed  struct {
			Model    string            `json:"model"`
			FieldMap map[string]string `json:"field_map"`
		} `json:"embed"`
	}{
		Name:   spec.Name,
		Cloud:  spec.Cloud,
		Region: spec.Region,
	}
	payload.Embed.Model = spec.Embed.Model
	payload.Embed.FieldMap = map[string]string{"text": spec.Embed.TextField}

	return s.do(ctx, http.MethodPost, "/indexes/create-for-model", payload, nil)
}

func (s *RemoteService) DescribeIndex(ctx context.Context, name string) (Status, error) {
	var parsed struct {
		Status struct {
			Ready bool `json:"ready"`
		} `json:"status"`
	}
	if err := s.do(ctx, http.MethodGet, "/indexes/"+name, nil, &parsed); err != nil {
		return Status{}, err
	}
	return Status{Ready: parsed.Status.Ready}, nil
}

func (s *RemoteService) Upsert(ctx context.Context, name string, records []Record) error {
	type wireRecord struct {
		ID       string            `json:"id"`
		Fields   map[string]string `json:"fields"`
		Metadata map[string]string `json:"metadata,omitempty"`
	}
	payload := struct {
		Records []wireRecord `json:"records"`
	}{Records: make([]wireRecord, 0, len(records))}

	for _, rec := range records {
		payload.Records = append(payload.Records, wireRecord{
			ID:       rec.ID,
			Fields:   map[string]string{s.textField: rec.Text},
			Metadata: rec.Metadata,
		})
	}

	return s.do(ctx, http.MethodPost, "/indexes/"+name+"/records/upsert", payload, nil)
}

func (s *RemoteService) Search(ctx context.Context, name, query string, k int, includeMetadata bool) ([]Match, error) {
	payload := struct {
		Query struct {
			Text string `json:"text"`
			TopK int    `json:"top_k"`
		} `json:"query"`
		IncludeMetadata bool `json:"include_metadata"`
	}{IncludeMetadata: includeMetadata}
	payload.Query.Text = query
	payload.Query.TopK = k

	var parsed struct {
		Matches []struct {
			ID       string            `json:"id"`
			Score    float64           `json:"score"`
			Fields   map[string]string `json:"fields"`
			Metadata map[string]string `json:"metadata"`
		} `json:"matches"`
	}
	if err := s.do(ctx, http.MethodPost, "/indexes/"+name+"/records/search", payload, &parsed); err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(parsed.Matches))
	for _, m := range parsed.Matches {
		text := m.Fields[s.textField]
		if text == "" {
			text = m.Metadata[s.textField]
		}
		matches = append(matches, Match{Text: text, Score: m.Score, Metadata: m.Metadata})
	}
	return matches, nil
}

func (s *RemoteService) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Api-Key", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("request failed: %d, %s", resp.StatusCode, string(data))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

var _ Service = (*RemoteService)(nil)
