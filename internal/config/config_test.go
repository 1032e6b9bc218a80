package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
)

// chdir moves into a fresh temp dir so no config.yaml or .env is picked up.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdir(t)

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, uint64(42), cfg.Model.Seed)
	assert.Equal(t, 5000, cfg.Model.Samples)
	assert.InDelta(t, 0.2, cfg.Model.TestSize, 1e-12)
	assert.Equal(t, "qr", cfg.Model.Solver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Server.Addr())
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.InDelta(t, 20.0, cfg.Server.RateLimit, 1e-12)
	assert.Equal(t, 40, cfg.Server.RateBurst)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdir(t)

	yaml := `
model:
  seed: 7
  solver: normal
log:
  level: debug
  format: console
server:
  port: 9090
  cors_origins: ["https://example.com"]
store:
  driver: sqlite
  dsn: file:predictions.db
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, uint64(7), cfg.Model.Seed)
	assert.Equal(t, "normal", cfg.Model.Solver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	// 未設定の値はデフォルトのまま
	assert.Equal(t, 5000, cfg.Model.Samples)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("model:\n  samples: 1000\n"), 0o644))
	t.Setenv("HOUSEPRICE_MODEL_SAMPLES", "2500")
	t.Setenv("HOUSEPRICE_LOG_LEVEL", "warn")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 2500, cfg.Model.Samples)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("HOUSEPRICE_SERVER_PORT=9191\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("HOUSEPRICE_SERVER_PORT") })

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Server.Port)
}

func TestLoadInvalidFile(t *testing.T) {
	dir := chdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("model: [unclosed"), 0o644))

	_, err := Load(nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Model:  ModelConfig{Seed: 42, Samples: 5000, TestSize: 0.2, Solver: "qr"},
			Log:    LogConfig{Level: "info", Format: "json"},
			Server: ServerConfig{Port: 8080, RateLimit: 20, RateBurst: 40},
			Store:  StoreConfig{Driver: DriverMemory},
		}
	}

	base := valid()
	require.NoError(t, base.Validate())

	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantParam string
	}{
		{"zero samples", func(c *Config) { c.Model.Samples = 0 }, "model.samples"},
		{"test size one", func(c *Config) { c.Model.TestSize = 1 }, "model.test_size"},
		{"unknown solver", func(c *Config) { c.Model.Solver = "sgd" }, "solver"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"negative rate", func(c *Config) { c.Server.RateLimit = -1 }, "server.rate_limit"},
		{"unknown driver", func(c *Config) { c.Store.Driver = "mysql" }, "store.driver"},
		{"sqlite without dsn", func(c *Config) { c.Store.Driver = DriverSQLite }, "store.dsn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)

			var ve *errors.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.wantParam, ve.ParamName)
		})
	}
}
