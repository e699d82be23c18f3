package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/xaenox/school-bot/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN renders the config as a lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(ctx context.Context, config DatabaseConfig) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", config.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to the database: %w", err)
	}

	storage := &PostgresStorage{db: db}
	if err := storage.initializeSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing database schema: %w", err)
	}

	return storage, nil
}

func (s *PostgresStorage) initializeSchema(ctx context.Context) error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("reading migrations file: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, string(migrationSQL)); err != nil {
		return fmt.Errorf("executing migrations: %w", err)
	}
	return nil
}

func (s *PostgresStorage) AllQAPairs(ctx context.Context) ([]models.QAPair, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT question, answer, additional_answer, category
		FROM qa_data
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying qa pairs: %w", err)
	}
	return scanQAPairs(rows)
}

func (s *PostgresStorage) MealByDate(ctx context.Context, date time.Time, mealType string) (string, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT menu
		FROM meals
		WHERE date = $1 AND meal_type = $2`,
		date.Format(models.DateLayout), mealType)
	return scanMenu(row)
}

func (s *PostgresStorage) AddQAPair(ctx context.Context, pair models.QAPair) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO qa_data (question, answer, additional_answer, category)
		VALUES ($1, $2, $3, $4)`,
		pair.Question, pair.Answer, pair.AdditionalAnswer, pair.Category)
	if err != nil {
		return fmt.Errorf("inserting qa pair: %w", err)
	}
	return nil
}

func (s *PostgresStorage) AddMeal(ctx context.Context, meal models.Meal) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO meals (date, meal_type, menu, image_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (date) DO UPDATE
		SET meal_type = EXCLUDED.meal_type, menu = EXCLUDED.menu, image_url = EXCLUDED.image_url`,
		meal.Date, meal.MealType, meal.Menu, meal.ImageURL)
	if err != nil {
		return fmt.Errorf("inserting meal: %w", err)
	}
	return nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
