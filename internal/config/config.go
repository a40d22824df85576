package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	App struct {
		Name string
		Env  string
	}

	DB struct {
		DSN      string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		LogLevel string
	}

	Redis struct {
		Addr          string
		Password      string
		DB            int
		EventsChannel string
		LikeCountTTL  time.Duration
	}

	GRPC struct {
		Host string
		Port string
	}

	Metrics struct {
		Addr string
	}

	Matching struct {
		WeightAge          float64
		WeightDistance     float64
		WeightInterests    float64
		WeightActivity     float64
		WeightCompleteness float64

		CandidateLimit    int
		MinQueueSize      int
		MaxQueueSize      int
		SuperLikePriority int
		DistanceUnit      string
		BuildTimeout      time.Duration
		TimeZone          string
		QueueTTL          time.Duration
	}

	Limits struct {
		HourlySwipes    int
		DailySuperLikes int
	}

	Maintenance struct {
		Interval       time.Duration
		ReconcileBatch int
	}
}

// Load reads the given .env files (missing files are ignored) and then
// builds the Config from the environment. Real env vars win over file values.
func Load(files ...string) (*Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	cfg := New()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func New() *Config {
	cfg := &Config{}

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "matchmaking")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	cfg.App.Name = getEnvDefault("APP_NAME", "muzz-matchmaking")
	cfg.App.Env = getEnvDefault("APP_ENV", "development")

	// Database
	cfg.DB.LogLevel = getEnvDefault("DB_LOG_LEVEL", "warn")
	cfg.DB.DSN = os.Getenv("MYSQL_DSN")
	if cfg.DB.DSN == "" {
		cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
		cfg.DB.Port = getEnvDefault("DB_PORT", "3306")
		cfg.DB.User = getEnvDefault("DB_USER", "root")
		cfg.DB.Password = getEnvDefault("DB_PASSWORD", "root")
		cfg.DB.Name = getEnvDefault("DB_NAME", "muzz")

		cfg.DB.DSN = fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
		)
	}

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	cfg.Redis.DB = getInt("REDIS_DB", 0)
	cfg.Redis.EventsChannel = getEnvDefault("REDIS_EVENTS_CHANNEL", "matchmaking:events")
	cfg.Redis.LikeCountTTL = getDuration("REDIS_LIKE_COUNT_TTL", time.Hour)

	// gRPC
	cfg.GRPC.Host = getEnvDefault("GRPC_HOST", "127.0.0.1")
	cfg.GRPC.Port = getEnvDefault("GRPC_PORT", "50051")

	cfg.Metrics.Addr = getEnvDefault("METRICS_ADDR", ":9090")

	// Matching
	cfg.Matching.WeightAge = getFloat("MATCH_WEIGHT_AGE", 0.20)
	cfg.Matching.WeightDistance = getFloat("MATCH_WEIGHT_DISTANCE", 0.25)
	cfg.Matching.WeightInterests = getFloat("MATCH_WEIGHT_INTERESTS", 0.30)
	cfg.Matching.WeightActivity = getFloat("MATCH_WEIGHT_ACTIVITY", 0.10)
	cfg.Matching.WeightCompleteness = getFloat("MATCH_WEIGHT_COMPLETENESS", 0.15)
	cfg.Matching.CandidateLimit = getInt("MATCH_CANDIDATE_LIMIT", 200)
	cfg.Matching.MinQueueSize = getInt("MATCH_MIN_QUEUE_SIZE", 10)
	cfg.Matching.MaxQueueSize = getInt("MATCH_MAX_QUEUE_SIZE", 50)
	cfg.Matching.SuperLikePriority = getInt("MATCH_SUPER_LIKE_PRIORITY", 100)
	cfg.Matching.DistanceUnit = strings.ToLower(getEnvDefault("MATCH_DISTANCE_UNIT", "mi"))
	cfg.Matching.BuildTimeout = getDuration("MATCH_BUILD_TIMEOUT", 5*time.Second)
	cfg.Matching.TimeZone = getEnvDefault("MATCH_TIME_ZONE", "UTC")
	cfg.Matching.QueueTTL = getDuration("MATCH_QUEUE_TTL", 24*time.Hour)

	// Limits
	cfg.Limits.HourlySwipes = getInt("LIMIT_HOURLY_SWIPES", 100)
	cfg.Limits.DailySuperLikes = getInt("LIMIT_DAILY_SUPER_LIKES", 5)

	cfg.Maintenance.Interval = getDuration("MAINTENANCE_INTERVAL", 10*time.Minute)
	cfg.Maintenance.ReconcileBatch = getInt("MAINTENANCE_RECONCILE_BATCH", 500)

	return cfg
}

// Validate rejects values the server cannot start with.
func (c *Config) Validate() error {
	switch c.Matching.DistanceUnit {
	case "mi", "km":
	default:
		return fmt.Errorf("MATCH_DISTANCE_UNIT must be mi or km, got %q", c.Matching.DistanceUnit)
	}
	if _, err := time.LoadLocation(c.Matching.TimeZone); err != nil {
		return fmt.Errorf("MATCH_TIME_ZONE: %w", err)
	}
	if c.Matching.MinQueueSize < 0 || c.Matching.MaxQueueSize <= 0 {
		return fmt.Errorf("queue sizes must be positive")
	}
	if c.Limits.HourlySwipes <= 0 || c.Limits.DailySuperLikes < 0 {
		return fmt.Errorf("swipe limits must be positive")
	}
	return nil
}

// Location resolves Matching.TimeZone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Matching.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GRPCAddr joins host and port for net.Listen.
func (c *Config) GRPCAddr() string {
	return c.GRPC.Host + ":" + c.GRPC.Port
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	if v, err := strconv.Atoi(getEnvDefault(k, "")); err == nil {
		return v
	}
	return def
}

func getFloat(k string, def float64) float64 {
	if v, err := strconv.ParseFloat(getEnvDefault(k, ""), 64); err == nil {
		return v
	}
	return def
}

func getDuration(k string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(getEnvDefault(k, "")); err == nil {
		return v
	}
	return def
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
