package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"document-chat/internal/config"
	"document-chat/internal/helper"
	"document-chat/internal/index"
	"document-chat/internal/models"
	"document-chat/internal/parser"
)

// PartialUpsertError reports an upsert failure after some batches were
// already written. Earlier batches remain durable; there is no rollback
// across batches (at-least-once semantics).
type PartialUpsertError struct {
	Written int
	Err     error
}

func (e *PartialUpsertError) Error() string {
	return fmt.Sprintf("upsert failed after %d records written: %v", e.Written, e.Err)
}

func (e *PartialUpsertError) Unwrap() error { return e.Err }

// Pipeline loads documents, splits them and writes the resulting records to
// the shared index.
type Pipeline struct {
	handle    *index.Handle
	chunkSize int
	overlap   int
	batchSize int
}

func NewPipeline(handle *index.Handle, cfg *config.RAGConfig) *Pipeline {
	return &Pipeline{
		handle:    handle,
		chunkSize: cfg.ChunkSize,
		overlap:   cfg.ChunkOverlap,
		batchSize: cfg.BatchSize,
	}
}

// Ingest loads one document, chunks it and upserts the records in batches.
// It returns the number of records written; on a mid-run upsert failure the
// count covers the batches that were already durable.
//
// Re-ingesting the same file produces a fresh set of record ids rather than
// replacing the old ones. Deduplication is a policy decision left to the
// operator; see DESIGN.md.
func (p *Pipeline) Ingest(ctx context.Context, path string) (int, error) {
	doc, err := parser.Open(path)
	if err != nil {
		return 0, err
	}

	text, err := doc.Load()
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", path, err)
	}

	chunks := parser.SplitText(text, p.chunkSize, p.overlap)
	if len(chunks) == 0 {
		log.Info().Str("file", path).Msg("no chunks generated from content")
		return 0, nil
	}

	records, err := buildRecords(path, chunks)
	if err != nil {
		return 0, err
	}

	written := 0
	for start := 0; start < len(records); start += p.batchSize {
		end := start + p.batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := p.handle.Upsert(ctx, records[start:end]); err != nil {
			return written, &PartialUpsertError{Written: written, Err: err}
		}
		written += end - start
	}

	log.Info().Str("file", path).Int("records", written).Msg("ingested document")
	return written, nil
}

// IngestDir walks dir and ingests every supported file, logging and
// continuing past per-file failures. It returns the total records written.
func (p *Pipeline) IngestDir(ctx context.Context, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if _, err := parser.KindForPath(path); err != nil {
			continue
		}
		n, err := p.Ingest(ctx, path)
		total += n
		if err != nil {
			log.Error().Err(err).Str("file", path).Msg("error ingesting file")
		}
	}
	return total, nil
}

// buildRecords assigns each chunk a globally unique id derived from the
// source filename, the chunk's sequence index and a random disambiguator.
// Id uniqueness prevents distinct chunks from silently overwriting each
// other in the index.
func buildRecords(path string, chunks []models.Chunk) ([]index.Record, error) {
	records := make([]index.Record, 0, len(chunks))
	for _, chunk := range chunks {
		uid, err := helper.GenerateUUID()
		if err != nil {
			return nil, err
		}
		records = append(records, index.Record{
			ID:   fmt.Sprintf("%s-%d-%s", filepath.Base(path), chunk.SequenceIndex, uid),
			Text: chunk.Content,
			Metadata: map[string]string{
				"source": path,
			},
		})
	}
	return records, nil
}
