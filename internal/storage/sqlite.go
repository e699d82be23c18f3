package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/xaenox/school-bot/internal/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS qa_data (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	question TEXT NOT NULL,
	answer TEXT NOT NULL,
	additional_answer TEXT,
	category TEXT
);
CREATE TABLE IF NOT EXISTS meals (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	date TEXT NOT NULL UNIQUE,
	meal_type TEXT,
	menu TEXT,
	image_url TEXT,
	crawled_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteStorage reads the crawler's school_data.db.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens the database at path, creating any missing tables
// so that a fresh install starts with an empty corpus instead of failing.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func (s *SQLiteStorage) AllQAPairs(ctx context.Context) ([]models.QAPair, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT question, answer, additional_answer, category FROM qa_data ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying qa pairs: %w", err)
	}
	return scanQAPairs(rows)
}

func (s *SQLiteStorage) MealByDate(ctx context.Context, date time.Time, mealType string) (string, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT menu FROM meals WHERE date = ? AND meal_type = ?`,
		date.Format(models.DateLayout), mealType)
	return scanMenu(row)
}

func (s *SQLiteStorage) AddQAPair(ctx context.Context, pair models.QAPair) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO qa_data (question, answer, additional_answer, category) VALUES (?, ?, ?, ?)`,
		pair.Question, pair.Answer, pair.AdditionalAnswer, pair.Category)
	if err != nil {
		return fmt.Errorf("inserting qa pair: %w", err)
	}
	return nil
}

// AddMeal upserts by date, matching the crawler's one-row-per-day table.
func (s *SQLiteStorage) AddMeal(ctx context.Context, meal models.Meal) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO meals (date, meal_type, menu, image_url) VALUES (?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			meal_type = excluded.meal_type,
			menu = excluded.menu,
			image_url = excluded.image_url`,
		meal.Date, meal.MealType, meal.Menu, meal.ImageURL)
	if err != nil {
		return fmt.Errorf("inserting meal: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
