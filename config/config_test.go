package config

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nscollab/models"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("DEMODAY_DEFAULT_BALANCE", "")
	t.Setenv("DEMODAY_HOST_IDS", "")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, models.DefaultAngelBalance, cfg.DefaultAngelBalance)
	assert.Equal(t, "test", cfg.Environment)
	assert.Nil(t, cfg.DefaultHostID())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("DEMODAY_DEFAULT_BALANCE", "5000")
	t.Setenv("DEMODAY_HOST_IDS", " 111, 222 ,")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DATABASE_MAX_CONNS", "20")
	t.Setenv("DATABASE_MIN_CONNS", "2")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, int32(20), cfg.DatabasePoolOptions().MaxConns)
	assert.Equal(t, int32(2), cfg.DatabasePoolOptions().MinConns)

	assert.Equal(t, models.Cents(500000), cfg.DefaultAngelBalance)
	assert.Equal(t, []int64{111, 222}, cfg.HostDiscordIDs)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	require.NotNil(t, cfg.DefaultHostID())
	assert.Equal(t, int64(111), *cfg.DefaultHostID())
	assert.True(t, cfg.IsHost(222))
	assert.False(t, cfg.IsHost(333))
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")

	t.Run("negative balance", func(t *testing.T) {
		t.Setenv("DEMODAY_DEFAULT_BALANCE", "-1")
		_, err := load()
		assert.Error(t, err)
	})

	t.Run("zero balance", func(t *testing.T) {
		t.Setenv("DEMODAY_DEFAULT_BALANCE", "0")
		_, err := load()
		assert.Error(t, err)
	})

	t.Run("balance overflowing cents", func(t *testing.T) {
		t.Setenv("DEMODAY_DEFAULT_BALANCE", "100000000000000000")
		_, err := load()
		assert.Error(t, err)
	})

	t.Run("balance too large to settle", func(t *testing.T) {
		t.Setenv("DEMODAY_DEFAULT_BALANCE", strconv.FormatInt(int64(models.MaxAngelBalance/models.CentsPerUnit)+1, 10))
		_, err := load()
		assert.Error(t, err)
	})

	t.Run("bad pool size", func(t *testing.T) {
		t.Setenv("DEMODAY_DEFAULT_BALANCE", "")
		t.Setenv("DATABASE_MAX_CONNS", "lots")
		_, err := load()
		assert.Error(t, err)
	})

	t.Run("min connections above max", func(t *testing.T) {
		t.Setenv("DEMODAY_DEFAULT_BALANCE", "")
		t.Setenv("DATABASE_MAX_CONNS", "4")
		t.Setenv("DATABASE_MIN_CONNS", "8")
		_, err := load()
		assert.Error(t, err)
	})

	t.Run("bad host id", func(t *testing.T) {
		t.Setenv("DEMODAY_DEFAULT_BALANCE", "")
		t.Setenv("DEMODAY_HOST_IDS", "abc")
		_, err := load()
		assert.Error(t, err)
	})
}

func TestLoad_LargestSettleableBalance(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("DEMODAY_HOST_IDS", "")
	t.Setenv("DEMODAY_DEFAULT_BALANCE", strconv.FormatInt(int64(models.MaxAngelBalance/models.CentsPerUnit), 10))

	cfg, err := load()
	require.NoError(t, err)

	assert.Positive(t, int64(cfg.DefaultAngelBalance))
	assert.LessOrEqual(t, cfg.DefaultAngelBalance, models.MaxAngelBalance)
}

func TestLoad_RequiresDatabaseOutsideTests(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DEMODAY_HOST_IDS", "")

	_, err := load()
	assert.Error(t, err)
}
