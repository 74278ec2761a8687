package retriever

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"document-chat/internal/config"
	"document-chat/internal/index"
	"document-chat/internal/models"
)

// Retriever turns a user query into a context string assembled from the
// most relevant indexed chunks.
type Retriever struct {
	handle    *index.Handle
	threshold float64
}

func New(handle *index.Handle, cfg *config.RAGConfig) *Retriever {
	return &Retriever{handle: handle, threshold: cfg.RelevanceThreshold}
}

// Retrieve searches the index for the top-k matches, keeps those scoring
// strictly above the relevance threshold and joins their texts with blank
// lines in descending-score order (ties keep result order).
//
// Retrieval never aborts a chat turn: zero surviving matches or an
// unreachable index both yield an empty context string.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) string {
	matches, err := r.handle.Search(ctx, query, k)
	if err != nil {
		log.Warn().Err(err).Str("index", r.handle.Name()).Msg("search failed, continuing without context")
		return ""
	}

	kept := make([]index.Match, 0, len(matches))
	for _, m := range matches {
		if m.Score > r.threshold {
			kept = append(kept, m)
		}
	}
	if len(kept) == 0 {
		return ""
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})

	texts := make([]string, 0, len(kept))
	for _, m := range kept {
		texts = append(texts, m.Text)
	}
	return strings.Join(texts, models.ContextSeparator)
}
