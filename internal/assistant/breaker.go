package assistant

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/xaenox/school-bot/internal/models"
)

// BreakerConfig controls when the assistant is taken out of rotation.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "assistant",
		MaxRequests:      1,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.5,
		MinRequests:      5,
	}
}

// BreakerAssistant fails fast while the wrapped assistant keeps failing.
type BreakerAssistant struct {
	next Assistant
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerAssistant(next Assistant, cfg BreakerConfig, logger *zap.Logger) *BreakerAssistant {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &BreakerAssistant{next: next, cb: cb}
}

// Complete returns gobreaker.ErrOpenState without calling through while
// the breaker is open.
func (b *BreakerAssistant) Complete(ctx context.Context, messages []models.ChatMessage) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Complete(ctx, messages)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// State reports the breaker state, for health output.
func (b *BreakerAssistant) State() string {
	return b.cb.State().String()
}
