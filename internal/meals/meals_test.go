package meals

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xaenox/school-bot/internal/models"
	"github.com/xaenox/school-bot/internal/storage"
)

// Tuesday, 2025-05-20 10:00 KST.
var tuesday = time.Date(2025, 5, 20, 10, 0, 0, 0, KST)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newService(t *testing.T, meals ...models.Meal) *Service {
	t.Helper()
	store := storage.NewMemoryStorage()
	for _, m := range meals {
		require.NoError(t, store.AddMeal(context.Background(), m))
	}
	return NewService(store, fixedClock(tuesday), zap.NewNop())
}

func TestExtractDate(t *testing.T) {
	tests := []struct {
		msg  string
		want string
		ok   bool
	}{
		{"오늘 급식 뭐야?", "2025-05-20", true},
		{"내일 급식", "2025-05-21", true},
		{"어제 뭐 나왔어", "2025-05-19", true},
		{"모레 메뉴", "2025-05-22", true},
		{"글피 메뉴", "2025-05-23", true},
		{"5월 23일 급식", "2025-05-23", true},
		{"5월23일", "2025-05-23", true},
		{"12/1 식단", "2025-12-01", true},
		{"월요일 급식", "2025-05-19", true},
		{"금요일 급식", "2025-05-23", true},
		{"일요일 급식", "2025-05-25", true},
		{"내일 말고 5월 30일", "2025-05-21", true},
		{"2월 30일 급식", "", false},
		{"13/1 급식", "", false},
		{"급식 알려줘", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			got, ok := ExtractDate(tt.msg, tuesday)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got.Format(models.DateLayout))
			}
		})
	}
}

func TestExtractDate_InvalidExplicitDateFallsBackToWeekday(t *testing.T) {
	got, ok := ExtractDate("2월 30일 목요일", tuesday)
	require.True(t, ok)
	assert.Equal(t, "2025-05-22", got.Format(models.DateLayout))
}

func TestLookup_TodayWithMenu(t *testing.T) {
	s := newService(t, models.Meal{Date: "2025-05-20", MealType: models.Lunch, Menu: "잡곡밥, 미역국, 불고기"})

	got, err := s.Lookup(context.Background(), "오늘 급식 뭐야?")

	require.NoError(t, err)
	assert.Equal(t, "📅 5월 20일 (화요일) 중식 메뉴입니다:\n\n🍽️ 잡곡밥, 미역국, 불고기", got)
}

func TestLookup_DefaultsToToday(t *testing.T) {
	s := newService(t, models.Meal{Date: "2025-05-20", MealType: models.Lunch, Menu: "비빔밥"})

	got, err := s.Lookup(context.Background(), "급식 메뉴 알려줘")

	require.NoError(t, err)
	assert.Contains(t, got, "5월 20일 (화요일)")
	assert.Contains(t, got, "비빔밥")
}

func TestLookup_NoData(t *testing.T) {
	s := newService(t)

	got, err := s.Lookup(context.Background(), "내일 급식")

	require.NoError(t, err)
	assert.Equal(t, "2025-05-21에는 식단 정보가 없습니다.", got)
}

func TestLookup_Weekend(t *testing.T) {
	s := newService(t, models.Meal{Date: "2025-05-24", MealType: models.Lunch, Menu: "never shown"})

	got, err := s.Lookup(context.Background(), "5월 24일 급식")

	require.NoError(t, err)
	assert.Equal(t, "2025-05-24는 주말(토/일)이라 급식이 없습니다.", got)
}

func TestLookup_UsesKoreanCalendarDay(t *testing.T) {
	store := storage.NewMemoryStorage()
	require.NoError(t, store.AddMeal(context.Background(), models.Meal{Date: "2025-05-20", MealType: models.Lunch, Menu: "카레"}))
	// 16:00 UTC on the 19th is already the 20th in Korea.
	s := NewService(store, fixedClock(time.Date(2025, 5, 19, 16, 0, 0, 0, time.UTC)), zap.NewNop())

	got, err := s.Lookup(context.Background(), "오늘 급식")

	require.NoError(t, err)
	assert.Contains(t, got, "카레")
}

type failingReader struct{ err error }

func (r failingReader) MealByDate(ctx context.Context, date time.Time, mealType string) (string, bool, error) {
	return "", false, r.err
}

func TestLookup_StorageErrorIsWrapped(t *testing.T) {
	dbErr := errors.New("disk I/O error")
	s := NewService(failingReader{dbErr}, fixedClock(tuesday), zap.NewNop())

	_, err := s.Lookup(context.Background(), "오늘 급식")
	require.Error(t, err)
	assert.True(t, errors.Is(err, dbErr))

	_, err = s.Weekly(context.Background())
	assert.True(t, errors.Is(err, dbErr))
}

func TestLookup_ThisWeek(t *testing.T) {
	s := newService(t,
		models.Meal{Date: "2025-05-19", MealType: models.Lunch, Menu: "짜장밥"},
		models.Meal{Date: "2025-05-21", MealType: models.Lunch, Menu: "김치볶음밥"},
	)

	for _, msg := range []string{"이번 주 급식 알려줘", "이번주 메뉴"} {
		got, err := s.Lookup(context.Background(), msg)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(got, "📋 이번 주 급식 메뉴입니다:\n\n"))
		assert.Contains(t, got, "📅 5월 19일 (월요일)\n🍽️ 짜장밥")
		assert.Contains(t, got, "📅 5월 20일 (화요일)\n🍽️ 급식 정보 없음")
		assert.Contains(t, got, "📅 5월 21일 (수요일)\n🍽️ 김치볶음밥")
		assert.Contains(t, got, "📅 5월 23일 (금요일)")
		assert.NotContains(t, got, "토요일")
	}
}

func TestWeekStart(t *testing.T) {
	sunday := time.Date(2025, 5, 25, 0, 0, 0, 0, KST)
	monday := time.Date(2025, 5, 19, 0, 0, 0, 0, KST)

	assert.Equal(t, monday, weekStart(sunday))
	assert.Equal(t, monday, weekStart(monday))
	assert.Equal(t, monday, weekStart(startOfDay(tuesday)))
}
