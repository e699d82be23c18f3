// Package storage reads the answer corpus and the meal table written by the
// school site crawler.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xaenox/school-bot/internal/models"
)

// QAReader returns every stored question/answer pair.
type QAReader interface {
	AllQAPairs(ctx context.Context) ([]models.QAPair, error)
}

// MealReader looks up the menu of one meal on one day.
type MealReader interface {
	MealByDate(ctx context.Context, date time.Time, mealType string) (menu string, found bool, err error)
}

// Writer seeds a backend. The crawler owns production data; this is for
// tests, demos and imports.
type Writer interface {
	AddQAPair(ctx context.Context, pair models.QAPair) error
	AddMeal(ctx context.Context, meal models.Meal) error
}

type Storage interface {
	QAReader
	MealReader
	Writer
	Close() error
}

// scanQAPairs drains rows of (question, answer, additional_answer, category)
// and drops pairs that cannot be matched.
func scanQAPairs(rows *sql.Rows) ([]models.QAPair, error) {
	defer rows.Close()

	var pairs []models.QAPair
	for rows.Next() {
		var question, answer, additional, category sql.NullString
		if err := rows.Scan(&question, &answer, &additional, &category); err != nil {
			return nil, fmt.Errorf("scanning qa pair: %w", err)
		}
		p := models.QAPair{
			Question:         question.String,
			Answer:           answer.String,
			AdditionalAnswer: additional.String,
			Category:         category.String,
		}
		if !p.Valid() {
			continue
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating qa pairs: %w", err)
	}
	return pairs, nil
}

// scanMenu reads a single menu column. sql.ErrNoRows means not found.
func scanMenu(row *sql.Row) (string, bool, error) {
	var menu sql.NullString
	switch err := row.Scan(&menu); {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("querying meal: %w", err)
	}
	if menu.String == "" {
		return "", false, nil
	}
	return menu.String, true, nil
}
