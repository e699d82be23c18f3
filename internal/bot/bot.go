// Package bot turns one user message into one reply. It classifies the
// message, hands it to the matching handler and keeps the user's recent
// conversation for the generative fallback.
package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xaenox/school-bot/internal/assistant"
	"github.com/xaenox/school-bot/internal/classifier"
	"github.com/xaenox/school-bot/internal/metrics"
	"github.com/xaenox/school-bot/internal/models"
	"github.com/xaenox/school-bot/internal/session"
	"github.com/xaenox/school-bot/internal/textnorm"
)

const (
	// ErrorText replaces any reply that failed to be produced.
	ErrorText = "죄송합니다. 시스템에 오류가 발생했습니다. 잠시 후 다시 시도해 주세요."

	// DegradedText is sent when the generative assistant is missing or down.
	DegradedText = "죄송합니다. 현재 AI 응답 기능을 사용할 수 없습니다. 학교 관련 질문이나 급식 정보를 문의해 주세요."

	errorIntent = "error"
)

// MealLookup answers schedule messages.
type MealLookup interface {
	Lookup(ctx context.Context, message string) (string, error)
}

// Answerer answers question messages from the stored corpus.
type Answerer interface {
	Answer(message string) string
}

type Config struct {
	MaxTurns     int
	ContextTurns int
}

// Options are the collaborators of a Bot. Assistant may be nil, in which
// case fallback messages get DegradedText.
type Options struct {
	Classifier classifier.Classifier
	Answerer   Answerer
	Meals      MealLookup
	Assistant  assistant.Assistant
	Sessions   session.Store
	Config     Config
	Logger     *zap.Logger
	Metrics    *metrics.Collector
}

type Bot struct {
	classifier classifier.Classifier
	answerer   Answerer
	meals      MealLookup
	assistant  assistant.Assistant
	sessions   session.Store
	cfg        Config
	locks      *keyedMutex
	now        func() time.Time
	logger     *zap.Logger
	metrics    *metrics.Collector
}

func New(opts Options) *Bot {
	cfg := opts.Config
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = session.DefaultMaxTurns
	}
	if cfg.ContextTurns <= 0 {
		cfg.ContextTurns = session.DefaultContextTurns
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sessions := opts.Sessions
	if sessions == nil {
		sessions = session.NewMemoryStore(cfg.MaxTurns)
	}

	return &Bot{
		classifier: opts.Classifier,
		answerer:   opts.Answerer,
		meals:      opts.Meals,
		assistant:  opts.Assistant,
		sessions:   sessions,
		cfg:        cfg,
		locks:      newKeyedMutex(),
		now:        time.Now,
		logger:     logger,
		metrics:    opts.Metrics,
	}
}

// ProcessMessage answers one message from userID. It always returns a
// well-formed reply. Turns of the same user run one at a time.
func (b *Bot) ProcessMessage(ctx context.Context, text, userID string) models.Reply {
	start := b.now()
	traceID := uuid.New().String()
	logger := b.logger.With(
		zap.String("trace_id", traceID),
		zap.String("user_id", userID))

	unlock := b.locks.Lock(userID)
	defer unlock()

	window, err := b.sessions.Load(ctx, userID)
	persist := true
	if err != nil {
		// Answer without history rather than not at all, and leave the
		// stored window alone so it is not overwritten with a short one.
		logger.Warn("Failed to load conversation window", zap.Error(err))
		b.metrics.CollaboratorFailed("sessions")
		window = session.NewWindow(b.cfg.MaxTurns)
		persist = false
	}

	reply, next, ok := b.respond(ctx, text, window, logger)
	if ok && persist {
		if err := b.sessions.Save(ctx, userID, next); err != nil {
			logger.Warn("Failed to save conversation window", zap.Error(err))
			b.metrics.CollaboratorFailed("sessions")
		}
	}

	b.metrics.ObserveMessage(reply.Intent, b.now().Sub(start))
	return reply
}

// Respond is ProcessMessage without session storage or locking: the caller
// supplies the conversation window and receives the updated one. On
// failure the reply is ErrorText and the window comes back unchanged.
func (b *Bot) Respond(ctx context.Context, text string, window session.Window) (models.Reply, session.Window) {
	reply, next, _ := b.respond(ctx, text, window, b.logger)
	return reply, next
}

func (b *Bot) respond(ctx context.Context, text string, window session.Window, logger *zap.Logger) (reply models.Reply, next session.Window, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic while handling message",
				zap.Any("panic", r),
				zap.Stack("stack"))
			reply, next, ok = errorReply(), window, false
		}
	}()

	intent := b.classifier.Detect(text)
	logger.Info("Intent detected",
		zap.String("intent", intent.String()),
		zap.Float64("confidence", b.classifier.Confidence(text, intent)))

	answer, err := b.dispatch(ctx, intent, text, window, logger)
	if err != nil {
		logger.Error("Failed to handle message",
			zap.String("intent", intent.String()),
			zap.Error(err))
		return errorReply(), window, false
	}

	next = window.Append(models.Turn{User: text, Bot: answer, At: b.now()})
	return models.Reply{
		Text:        answer,
		Intent:      intent.String(),
		Suggestions: Suggestions(intent),
	}, next, true
}

func (b *Bot) dispatch(ctx context.Context, intent classifier.Intent, text string, window session.Window, logger *zap.Logger) (string, error) {
	switch intent {
	case classifier.Schedule:
		answer, err := b.meals.Lookup(ctx, text)
		if err != nil {
			b.metrics.CollaboratorFailed("meals")
			return "", fmt.Errorf("meal lookup: %w", err)
		}
		return answer, nil

	case classifier.Question:
		return b.answerer.Answer(text), nil

	case classifier.Greeting:
		return greet(text), nil

	case classifier.Fallback:
		return b.generate(ctx, text, window, logger), nil
	}
	return "", fmt.Errorf("unhandled intent %d", intent)
}

// generate asks the assistant, degrading to a fixed text on any failure.
func (b *Bot) generate(ctx context.Context, text string, window session.Window, logger *zap.Logger) string {
	if b.assistant == nil {
		return DegradedText
	}

	messages := assistant.Conversation(window.Recent(b.cfg.ContextTurns), text)
	answer, err := b.assistant.Complete(ctx, messages)
	if err != nil {
		logger.Warn("Assistant unavailable", zap.Error(err))
		b.metrics.CollaboratorFailed("assistant")
		return DegradedText
	}
	if strings.TrimSpace(answer) == "" {
		return DegradedText
	}
	return answer
}

var greetings = []struct {
	keywords []string
	reply    string
}{
	{[]string{"안녕"}, "안녕하세요! 파주와석초등학교 챗봇입니다. 무엇을 도와드릴까요?"},
	{[]string{"고마워", "감사"}, "천만에요! 더 궁금한 것이 있으시면 언제든 말씀해 주세요."},
	{[]string{"잘가", "잘 있어"}, "안녕히 가세요! 또 궁금한 것이 있으시면 언제든 찾아주세요."},
}

const genericGreeting = "안녕하세요! 무엇을 도와드릴까요?"

func greet(text string) string {
	msg := textnorm.Normalize(text)
	for _, g := range greetings {
		for _, kw := range g.keywords {
			if strings.Contains(msg, kw) {
				return g.reply
			}
		}
	}
	return genericGreeting
}

func errorReply() models.Reply {
	return models.Reply{
		Text:        ErrorText,
		Intent:      errorIntent,
		Suggestions: Suggestions(classifier.Fallback),
	}
}
