package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Corpus     CorpusConfig     `mapstructure:"corpus"`
	Resolver   ResolverConfig   `mapstructure:"resolver"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Breaker    BreakerConfig    `mapstructure:"breaker"`
	Session    SessionConfig    `mapstructure:"session"`
	Redis      RedisConfig      `mapstructure:"redis"`
}

type ServerConfig struct {
	Address        string        `mapstructure:"address" validate:"required"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	AdminToken     string        `mapstructure:"admin_token"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
}

type LogConfig struct {
	Level       string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Development bool   `mapstructure:"development"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver" validate:"oneof=sqlite postgres memory"`
	Path     string `mapstructure:"path" validate:"required_if=Driver sqlite"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type CorpusConfig struct {
	MaxFeatures   int           `mapstructure:"max_features" validate:"gt=0"`
	Watch         bool          `mapstructure:"watch"`
	WatchDebounce time.Duration `mapstructure:"watch_debounce"`
}

type ResolverConfig struct {
	SimilarityThreshold float64 `mapstructure:"similarity_threshold" validate:"gte=0,lte=1"`
	MinKeywordScore     int     `mapstructure:"min_keyword_score" validate:"gte=1"`
}

// ClassifierConfig overrides keyword sets by intent name ("schedule",
// "question", "greeting"). Intents left out keep the built-in sets.
type ClassifierConfig struct {
	Keywords map[string][]string `mapstructure:"keywords"`
}

type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model" validate:"required"`
	BaseURL     string        `mapstructure:"base_url" validate:"omitempty,url"`
	MaxTokens   int           `mapstructure:"max_tokens" validate:"gt=0"`
	Temperature float64       `mapstructure:"temperature" validate:"gte=0,lte=2"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type BreakerConfig struct {
	MaxRequests      uint32        `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold float64       `mapstructure:"failure_threshold" validate:"gt=0,lte=1"`
	MinRequests      uint32        `mapstructure:"min_requests"`
}

type SessionConfig struct {
	Backend      string        `mapstructure:"backend" validate:"oneof=memory redis"`
	MaxTurns     int           `mapstructure:"max_turns" validate:"gt=0"`
	ContextTurns int           `mapstructure:"context_turns" validate:"gt=0,ltefield=MaxTurns"`
	TTL          time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func parseDatabaseURL(dbURL string) (DatabaseConfig, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, err
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return DatabaseConfig{}, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	password, _ := u.User.Password()
	port := 5432 // default PostgreSQL port
	if u.Port() != "" {
		fmt.Sscanf(u.Port(), "%d", &port)
	}

	sslMode := u.Query().Get("sslmode")
	if sslMode == "" {
		sslMode = "disable"
	}

	return DatabaseConfig{
		Driver:   "postgres",
		Host:     u.Hostname(),
		Port:     port,
		User:     u.User.Username(),
		Password: password,
		DBName:   strings.TrimPrefix(u.Path, "/"),
		SSLMode:  sslMode,
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":5000")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.admin_token", "")
	v.SetDefault("server.request_timeout", 4*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("telegram.token", "")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "school_data.db")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "school_bot")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("corpus.max_features", 1000)
	v.SetDefault("corpus.watch", true)
	v.SetDefault("corpus.watch_debounce", 2*time.Second)
	v.SetDefault("resolver.similarity_threshold", 0.3)
	v.SetDefault("resolver.min_keyword_score", 2)
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model", "gpt-3.5-turbo")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.max_tokens", 150)
	v.SetDefault("openai.temperature", 0.7)
	v.SetDefault("openai.timeout", 15*time.Second)
	v.SetDefault("breaker.max_requests", 1)
	v.SetDefault("breaker.interval", 60*time.Second)
	v.SetDefault("breaker.timeout", 30*time.Second)
	v.SetDefault("breaker.failure_threshold", 0.5)
	v.SetDefault("breaker.min_requests", 5)
	v.SetDefault("session.backend", "memory")
	v.SetDefault("session.max_turns", 10)
	v.SetDefault("session.context_turns", 5)
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
}

// LoadConfig reads path if it exists, then applies environment overrides.
// Nested keys map to upper-case variables with dots replaced by
// underscores, e.g. SESSION_BACKEND.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Enable environment variable support
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var pathErr *os.PathError
			if !errors.As(err, &pathErr) {
				return nil, fmt.Errorf("reading %s: %w", path, err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	// Check for DATABASE_URL environment variable
	if dbURL := v.GetString("DATABASE_URL"); dbURL != "" {
		dbConfig, err := parseDatabaseURL(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		config.Database = dbConfig
	}

	// Get other environment variables
	if token := v.GetString("TELEGRAM_TOKEN"); token != "" {
		config.Telegram.Token = token
	}
	if apiKey := v.GetString("OPENAI_API_KEY"); apiKey != "" {
		config.OpenAI.APIKey = apiKey
	}
	if addr := v.GetString("REDIS_ADDR"); addr != "" {
		config.Redis.Addr = addr
	}
	if port := v.GetString("PORT"); port != "" {
		config.Server.Address = ":" + port
	}

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}
