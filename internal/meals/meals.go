// Package meals answers school lunch questions from the crawled meal table.
package meals

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xaenox/school-bot/internal/models"
	"github.com/xaenox/school-bot/internal/storage"
)

// Service formats lunch menus for the day a message asks about.
type Service struct {
	reader storage.MealReader
	now    func() time.Time
	logger *zap.Logger
}

// NewService creates a meal service. A nil clock means time.Now.
func NewService(reader storage.MealReader, clock func() time.Time, logger *zap.Logger) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		reader: reader,
		now:    clock,
		logger: logger,
	}
}

func (s *Service) today() time.Time {
	return startOfDay(s.now().In(KST))
}

// Lookup answers a meal question. Messages about this week get the weekly
// menu. Everything else names a single day, today unless stated otherwise.
func (s *Service) Lookup(ctx context.Context, message string) (string, error) {
	if strings.Contains(message, "이번 주") || strings.Contains(message, "이번주") {
		return s.Weekly(ctx)
	}

	today := s.today()
	date, ok := ExtractDate(message, today)
	if !ok {
		date = today
	}
	s.logger.Debug("Meal lookup", zap.String("date", date.Format(models.DateLayout)))

	return s.Daily(ctx, date)
}

// Daily formats the lunch menu of one day.
func (s *Service) Daily(ctx context.Context, date time.Time) (string, error) {
	day := date.Format(models.DateLayout)
	if isWeekend(date) {
		return fmt.Sprintf("%s는 주말(토/일)이라 급식이 없습니다.", day), nil
	}

	menu, found, err := s.reader.MealByDate(ctx, date, models.Lunch)
	if err != nil {
		return "", fmt.Errorf("looking up meal for %s: %w", day, err)
	}
	if !found {
		return fmt.Sprintf("%s에는 식단 정보가 없습니다.", day), nil
	}
	return fmt.Sprintf("📅 %s 중식 메뉴입니다:\n\n🍽️ %s", koreanDate(date), menu), nil
}

// Weekly lists Monday through Friday of the current week.
func (s *Service) Weekly(ctx context.Context) (string, error) {
	monday := weekStart(s.today())

	days := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		date := monday.AddDate(0, 0, i)
		menu, found, err := s.reader.MealByDate(ctx, date, models.Lunch)
		if err != nil {
			return "", fmt.Errorf("looking up meal for %s: %w", date.Format(models.DateLayout), err)
		}
		if !found {
			menu = "급식 정보 없음"
		}
		days = append(days, fmt.Sprintf("📅 %s\n🍽️ %s", koreanDate(date), menu))
	}

	return "📋 이번 주 급식 메뉴입니다:\n\n" + strings.Join(days, "\n\n"), nil
}
