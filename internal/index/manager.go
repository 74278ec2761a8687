package index

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"document-chat/internal/config"
)

// Manager ensures a remote index exists and is ready before ingestion or
// retrieval touch it.
type Manager struct {
	svc     Service
	poll    time.Duration
	timeout time.Duration
	backoff float64
}

func NewManager(svc Service, cfg *config.IndexConfig) *Manager {
	poll := time.Duration(cfg.PollIntervalSecs) * time.Second
	if poll <= 0 {
		poll = time.Second
	}
	timeout := time.Duration(cfg.ReadyTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	backoff := cfg.BackoffFactor
	if backoff < 1 {
		backoff = 1
	}
	return &Manager{svc: svc, poll: poll, timeout: timeout, backoff: backoff}
}

// EnsureIndex creates the index if absent and waits for it to report ready.
// Calling it twice with an existing index is a no-op besides the existence
// check. Errors are logged and swallowed: startup continues with a possibly
// unready index and later operations fail explicitly at use time. This
// favors availability over fail-fast and is relied upon by callers.
func (m *Manager) EnsureIndex(ctx context.Context, spec Spec) *Handle {
	if err := m.ensure(ctx, spec); err != nil {
		log.Warn().Err(err).Str("index", spec.Name).Msg("index check/creation failed, continuing")
	}
	return NewHandle(spec.Name, m.svc)
}

func (m *Manager) ensure(ctx context.Context, spec Spec) error {
	names, err := m.svc.ListIndexes(ctx)
	if err != nil {
		return &UnavailableError{Op: "list", Err: err}
	}
	for _, name := range names {
		if name == spec.Name {
			return nil
		}
	}

	log.Info().
		Str("index", spec.Name).
		Str("embedding_model", spec.Embed.Model).
		Msg("creating index with integrated embedding")
	if err := m.svc.CreateIndexForModel(ctx, spec); err != nil {
		return &UnavailableError{Op: "create", Err: err}
	}

	return m.waitReady(ctx, spec.Name)
}

// waitReady polls the index status with exponential backoff until it is
// ready or the configured timeout elapses.
func (m *Manager) waitReady(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	interval := m.poll
	for {
		status, err := m.svc.DescribeIndex(ctx, name)
		if err != nil {
			return &UnavailableError{Op: "describe", Err: err}
		}
		if status.Ready {
			return nil
		}

		select {
		case <-ctx.Done():
			return &UnavailableError{Op: "wait-ready", Err: fmt.Errorf("index %s not ready within %s: %w", name, m.timeout, ctx.Err())}
		case <-time.After(interval):
		}
		interval = time.Duration(float64(interval) * m.backoff)
	}
}
