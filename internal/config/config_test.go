package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	t.Setenv("MYSQL_DSN", "")
	t.Setenv("MATCH_DISTANCE_UNIT", "")

	cfg := New()
	assert.Equal(t, "root:root@tcp(localhost:3306)/muzz?parseTime=true&charset=utf8mb4&loc=UTC", cfg.DB.DSN)
	assert.Equal(t, 0.30, cfg.Matching.WeightInterests)
	assert.Equal(t, 50, cfg.Matching.MaxQueueSize)
	assert.Equal(t, "mi", cfg.Matching.DistanceUnit)
	assert.Equal(t, 100, cfg.Limits.HourlySwipes)
	assert.Equal(t, 5, cfg.Limits.DailySuperLikes)
	assert.Equal(t, time.Hour, cfg.Redis.LikeCountTTL)
	require.NoError(t, cfg.Validate())
}

func TestNewOverrides(t *testing.T) {
	t.Setenv("MYSQL_DSN", "u:p@tcp(db:3306)/x")
	t.Setenv("MATCH_DISTANCE_UNIT", "KM")
	t.Setenv("MATCH_BUILD_TIMEOUT", "750ms")
	t.Setenv("LIMIT_HOURLY_SWIPES", "not-a-number")
	t.Setenv("MATCH_TIME_ZONE", "Europe/London")

	cfg := New()
	assert.Equal(t, "u:p@tcp(db:3306)/x", cfg.DB.DSN)
	assert.Equal(t, "km", cfg.Matching.DistanceUnit)
	assert.Equal(t, 750*time.Millisecond, cfg.Matching.BuildTimeout)
	assert.Equal(t, 100, cfg.Limits.HourlySwipes)
	assert.Equal(t, "Europe/London", cfg.Location().String())
	assert.Equal(t, "127.0.0.1:50051", cfg.GRPCAddr())
}

func TestValidateRejectsUnknownUnit(t *testing.T) {
	t.Setenv("MATCH_DISTANCE_UNIT", "furlong")
	assert.Error(t, New().Validate())
}

func TestLoadReadsDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("MATCH_MAX_QUEUE_SIZE=25\n"), 0o600))
	t.Setenv("MATCH_MAX_QUEUE_SIZE", "")
	os.Unsetenv("MATCH_MAX_QUEUE_SIZE")

	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Matching.MaxQueueSize)
}
