package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Варианты движка викторины
const (
	TiersSingle   = "single"
	TiersEasyHard = "easy_hard"

	AttemptsSingle = "single"
	AttemptsMulti  = "multi"

	LeaderboardPoints   = "points"
	LeaderboardSessions = "sessions"

	BankSourceBuiltin   = "builtin"
	BankSourceDirectory = "directory"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// Config хранит все настройки приложения
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Session     SessionConfig     `mapstructure:"session"`
	Quiz        QuizConfig        `mapstructure:"quiz"`
	Bank        BankConfig        `mapstructure:"bank"`
	Leaderboard LeaderboardConfig `mapstructure:"leaderboard"`
	Admin       AdminConfig       `mapstructure:"admin"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	ReadTimeout    int      `mapstructure:"read_timeout"`
	WriteTimeout   int      `mapstructure:"write_timeout"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig содержит настройки подключения к хранилищу.
// Driver: "sqlite" (локальный файл, по умолчанию) или "postgres".
type DatabaseConfig struct {
	Driver        string `mapstructure:"driver"`
	DSN           string `mapstructure:"dsn"`
	Host          string `mapstructure:"host"`
	Port          string `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	DBName        string `mapstructure:"dbname"`
	SSLMode       string `mapstructure:"sslmode"`
	MigrationsDir string `mapstructure:"migrations_dir"`
	LogLevel      string `mapstructure:"log_level"`
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Mode: Режим работы Redis ("single", "sentinel", "cluster"). По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: Список адресов Redis (хост:порт).
	Addrs []string `mapstructure:"addrs"`

	// Addr: Адрес для режима 'single', если Addrs пустой.
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: Имя мастер-сервера Redis (только для режима "sentinel")
	MasterName string `mapstructure:"master_name"`

	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"`
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"`
}

// SessionConfig описывает хранилище состояния сессии викторины.
// Store: "memory" (один процесс) или "redis" (несколько инстансов).
type SessionConfig struct {
	Store      string        `mapstructure:"store"`
	CookieName string        `mapstructure:"cookie_name"`
	Secret     string        `mapstructure:"secret"`
	TTL        time.Duration `mapstructure:"ttl"`
	Secure     bool          `mapstructure:"secure"`
}

// QuizConfig выбирает вариант движка викторины
type QuizConfig struct {
	Tiers         string `mapstructure:"tiers"`
	Attempts      string `mapstructure:"attempts"`
	BatchRotation bool   `mapstructure:"batch_rotation"`
	PerBatch      int    `mapstructure:"per_batch"`
	MinNameLength int    `mapstructure:"min_name_length"`
	AllowResume   bool   `mapstructure:"allow_resume"`
}

// BankConfig описывает источник банка вопросов
type BankConfig struct {
	Source          string `mapstructure:"source"`
	DescriptionGlob string `mapstructure:"description_glob"`
	EasyImageGlob   string `mapstructure:"easy_image_glob"`
	HardImageGlob   string `mapstructure:"hard_image_glob"`
	EasyPlaceholder string `mapstructure:"easy_placeholder"`
	HardPlaceholder string `mapstructure:"hard_placeholder"`
	AssetDir        string `mapstructure:"asset_dir"`
}

// BaselineConfig - фиксированная эталонная строка лидерборда
type BaselineConfig struct {
	Name  string `mapstructure:"name"`
	Score int    `mapstructure:"score"`
}

// LeaderboardConfig содержит настройки лидерборда
type LeaderboardConfig struct {
	Mode         string           `mapstructure:"mode"`
	DefaultLimit int              `mapstructure:"default_limit"`
	CacheTTL     time.Duration    `mapstructure:"cache_ttl"`
	Baselines    []BaselineConfig `mapstructure:"baselines"`
}

// AdminConfig содержит настройки административного доступа
type AdminConfig struct {
	PasswordHash string        `mapstructure:"password_hash"`
	JWTSecret    string        `mapstructure:"jwt_secret"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
}

// RateLimitConfig содержит лимиты на старт викторины и отправку ответов
type RateLimitConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

func setDefaults(vip *viper.Viper) {
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.read_timeout", 15)
	vip.SetDefault("server.write_timeout", 15)
	vip.SetDefault("server.allowed_origins", []string{"http://localhost:5173", "http://localhost:3000"})

	vip.SetDefault("database.driver", DriverSQLite)
	vip.SetDefault("database.dsn", "")
	vip.SetDefault("database.host", "localhost")
	vip.SetDefault("database.port", "5432")
	vip.SetDefault("database.sslmode", "disable")
	vip.SetDefault("database.migrations_dir", "migrations")
	vip.SetDefault("database.log_level", "warn")

	vip.SetDefault("redis.mode", "single")

	vip.SetDefault("session.store", SessionStoreMemory)
	vip.SetDefault("session.cookie_name", "quiz_session")
	vip.SetDefault("session.ttl", 12*time.Hour)
	vip.SetDefault("session.secure", false)

	vip.SetDefault("quiz.tiers", TiersEasyHard)
	vip.SetDefault("quiz.attempts", AttemptsSingle)
	vip.SetDefault("quiz.batch_rotation", true)
	vip.SetDefault("quiz.per_batch", 5)
	vip.SetDefault("quiz.min_name_length", 3)
	vip.SetDefault("quiz.allow_resume", false)

	vip.SetDefault("bank.source", BankSourceBuiltin)
	vip.SetDefault("bank.description_glob", "questions/*.json")
	vip.SetDefault("bank.easy_image_glob", "assets/easy_*.png")
	vip.SetDefault("bank.hard_image_glob", "assets/hard_*.png")
	vip.SetDefault("bank.easy_placeholder", "the labelled spectrum")
	vip.SetDefault("bank.hard_placeholder", "the spectrum")
	vip.SetDefault("bank.asset_dir", "assets")

	vip.SetDefault("leaderboard.mode", LeaderboardPoints)
	vip.SetDefault("leaderboard.default_limit", 10)
	vip.SetDefault("leaderboard.cache_ttl", 30*time.Second)
	vip.SetDefault("leaderboard.baselines", []map[string]interface{}{
		{"name": "GPT-4o", "score": 2},
		{"name": "Llama 3 70B", "score": 2},
	})

	vip.SetDefault("admin.token_ttl", time.Hour)

	vip.SetDefault("rate_limit.enabled", true)
	vip.SetDefault("rate_limit.max_requests", 60)
	vip.SetDefault("rate_limit.window", time.Minute)
}

// Load загружает конфигурацию из файла и переменных окружения
func Load(configPath string) (*Config, error) {
	vip := viper.New() // Новый экземпляр, чтобы избежать глобального состояния

	setDefaults(vip)

	vip.BindEnv("server.port", "SERVER_PORT")

	vip.BindEnv("database.driver", "DATABASE_DRIVER")
	vip.BindEnv("database.dsn", "DATABASE_DSN")
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")

	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	vip.BindEnv("session.store", "SESSION_STORE")
	vip.BindEnv("session.secret", "SESSION_SECRET")

	vip.BindEnv("quiz.tiers", "QUIZ_TIERS")
	vip.BindEnv("quiz.attempts", "QUIZ_ATTEMPTS")
	vip.BindEnv("quiz.batch_rotation", "QUIZ_BATCH_ROTATION")
	vip.BindEnv("quiz.per_batch", "QUIZ_PER_BATCH")

	vip.BindEnv("bank.source", "BANK_SOURCE")
	vip.BindEnv("leaderboard.mode", "LEADERBOARD_MODE")

	vip.BindEnv("admin.password_hash", "ADMIN_PASSWORD_HASH")
	vip.BindEnv("admin.jwt_secret", "ADMIN_JWT_SECRET")

	if configPath != "" {
		vip.SetConfigFile(configPath)
		// Файла может не быть: env и умолчаний достаточно
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok || os.IsNotExist(err) {
				log.Printf("Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("Database Driver: %s", cfg.Database.Driver)
		log.Printf("Session Store: %s", cfg.Session.Store)
		log.Printf("Quiz Variant: tiers=%s attempts=%s rotation=%t per_batch=%d",
			cfg.Quiz.Tiers, cfg.Quiz.Attempts, cfg.Quiz.BatchRotation, cfg.Quiz.PerBatch)
		log.Printf("Bank Source: %s", cfg.Bank.Source)
		log.Printf("Leaderboard Mode: %s (baselines: %d)", cfg.Leaderboard.Mode, len(cfg.Leaderboard.Baselines))
		log.Printf("Admin Password Set: %t", cfg.Admin.PasswordHash != "")
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("-----------------------------------------")
	}

	if err := cfg.Validate(os.Getenv("GIN_MODE") == "release"); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate проверяет согласованность настроек.
// В production-режиме дополнительно требуются секреты.
func (c *Config) Validate(production bool) error {
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}
	if c.Database.Driver == DriverPostgres && c.Database.DSN == "" &&
		(c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "") {
		return fmt.Errorf("database configuration (host, dbname, user) is incomplete (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}

	switch c.Session.Store {
	case SessionStoreMemory, SessionStoreRedis:
	default:
		return fmt.Errorf("unsupported session store: %q", c.Session.Store)
	}

	switch c.Quiz.Tiers {
	case TiersSingle, TiersEasyHard:
	default:
		return fmt.Errorf("unsupported quiz.tiers: %q", c.Quiz.Tiers)
	}
	switch c.Quiz.Attempts {
	case AttemptsSingle, AttemptsMulti:
	default:
		return fmt.Errorf("unsupported quiz.attempts: %q", c.Quiz.Attempts)
	}
	if c.Quiz.BatchRotation && c.Quiz.PerBatch <= 0 {
		return fmt.Errorf("quiz.per_batch must be positive when batch rotation is enabled, got %d", c.Quiz.PerBatch)
	}
	if c.Quiz.MinNameLength < 1 {
		return fmt.Errorf("quiz.min_name_length must be at least 1")
	}

	switch c.Bank.Source {
	case BankSourceBuiltin, BankSourceDirectory:
	default:
		return fmt.Errorf("unsupported bank.source: %q", c.Bank.Source)
	}

	switch c.Leaderboard.Mode {
	case LeaderboardPoints, LeaderboardSessions:
	default:
		return fmt.Errorf("unsupported leaderboard.mode: %q", c.Leaderboard.Mode)
	}

	if production {
		if c.Session.Secret == "" {
			return fmt.Errorf("session secret is required in production mode (check SESSION_SECRET env var)")
		}
		if c.Admin.JWTSecret == "" {
			return fmt.Errorf("admin JWT secret is required in production mode (check ADMIN_JWT_SECRET env var)")
		}
		if c.Database.Driver == DriverPostgres && c.Database.Password == "" && c.Database.DSN == "" {
			return fmt.Errorf("database password is required in production mode (check DATABASE_PASSWORD env var)")
		}
	}

	return nil
}
