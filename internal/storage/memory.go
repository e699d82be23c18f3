package storage

import (
	"context"
	"sync"
	"time"

	"github.com/xaenox/school-bot/internal/models"
)

type mealKey struct {
	date     string
	mealType string
}

type MemoryStorage struct {
	mu    sync.RWMutex
	pairs []models.QAPair
	meals map[mealKey]models.Meal
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		meals: make(map[mealKey]models.Meal),
	}
}

func (s *MemoryStorage) AddQAPair(ctx context.Context, pair models.QAPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pairs = append(s.pairs, pair)
	return nil
}

// AddMeal stores meal, replacing any menu already stored for the same day
// and meal type.
func (s *MemoryStorage) AddMeal(ctx context.Context, meal models.Meal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.meals[mealKey{meal.Date, meal.MealType}] = meal
	return nil
}

func (s *MemoryStorage) AllQAPairs(ctx context.Context) ([]models.QAPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pairs := make([]models.QAPair, 0, len(s.pairs))
	for _, p := range s.pairs {
		if p.Valid() {
			pairs = append(pairs, p)
		}
	}
	return pairs, nil
}

func (s *MemoryStorage) MealByDate(ctx context.Context, date time.Time, mealType string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meal, ok := s.meals[mealKey{date.Format(models.DateLayout), mealType}]
	if !ok || meal.Menu == "" {
		return "", false, nil
	}
	return meal.Menu, true, nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
