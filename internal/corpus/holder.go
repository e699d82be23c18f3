package corpus

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xaenox/school-bot/internal/metrics"
	"github.com/xaenox/school-bot/internal/models"
	"go.uber.org/zap"
)

// Source reads the full set of QA pairs.
type Source interface {
	AllQAPairs(ctx context.Context) ([]models.QAPair, error)
}

// Holder owns the active Index. Reload builds a replacement off to the side
// and publishes it with a single atomic store.
type Holder struct {
	source  Source
	opts    Options
	logger  *zap.Logger
	metrics *metrics.Collector

	mu      sync.Mutex // serializes reloads
	current atomic.Pointer[Index]
}

// NewHolder returns a holder serving an empty index until the first Reload.
func NewHolder(source Source, opts Options, logger *zap.Logger, m *metrics.Collector) *Holder {
	h := &Holder{
		source:  source,
		opts:    opts,
		logger:  logger,
		metrics: m,
	}
	h.current.Store(Empty())
	return h
}

// Current returns the active index. It is never nil.
func (h *Holder) Current() *Index {
	return h.current.Load()
}

// Size is the number of pairs in the active index.
func (h *Holder) Size() int {
	return h.Current().Len()
}

// Reload reads a fresh snapshot and swaps in a new index. On error the
// previous index stays active.
func (h *Holder) Reload(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	start := time.Now()
	pairs, err := h.source.AllQAPairs(ctx)
	if err != nil {
		h.logger.Error("Failed to load QA corpus",
			zap.Error(err),
			zap.Int("active_pairs", h.Current().Len()))
		return fmt.Errorf("loading qa pairs: %w", err)
	}

	idx := New(pairs, h.opts)
	h.current.Store(idx)
	h.metrics.SetCorpusSize(idx.Len())

	h.logger.Info("QA corpus loaded",
		zap.Int("pairs", idx.Len()),
		zap.Int("skipped", len(pairs)-idx.Len()),
		zap.Int("vocabulary", idx.VocabularySize()),
		zap.Duration("took", time.Since(start)))
	return nil
}
