package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Empty(t, cfg.Gemini.APIKey, "no credential may be baked into defaults")
	assert.Empty(t, cfg.YouTube.APIKey)
	assert.Empty(t, cfg.Speech.APIKey)
	assert.Equal(t, int64(2), cfg.YouTube.MaxResults)
	assert.Equal(t, 5*time.Second, cfg.Speech.ListenFor)
	assert.Equal(t, 3.0, cfg.Mouse.SmoothFactor)
	assert.Equal(t, 0.7, cfg.Mouse.MinDetectionConfidence)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rasoi.yaml")
	yaml := `
server:
  addr: ":9090"
gemini:
  model: gemini-test
mouse:
  smooth_factor: 5
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	t.Setenv("RASOI_GEMINI_API_KEY", "from-env")
	t.Setenv("RASOI_MOUSE_SCROLL_AMOUNT", "120")
	t.Setenv("RASOI_SPEECH_RECORD_COMMAND", "arecord -q -f S16_LE -r 16000 -c 1 -t raw")
	t.Setenv("RASOI_SERVER_CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "gemini-test", cfg.Gemini.Model)
	assert.Equal(t, "from-env", cfg.Gemini.APIKey)
	assert.Equal(t, 5.0, cfg.Mouse.SmoothFactor)
	assert.Equal(t, 120, cfg.Mouse.ScrollAmount)
	assert.Equal(t, []string{"arecord", "-q", "-f", "S16_LE", "-r", "16000", "-c", "1", "-t", "raw"}, cfg.Speech.RecordCommand)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
	// untouched defaults survive
	assert.Equal(t, "https://www.themealdb.com/api/json/v1/1", cfg.MealDB.BaseURL)
}

func TestLoad_DataDirJoinsDB(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RASOI_DATA_DIR", dir)

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err, "an explicit config path must exist")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "rasoi.db"), cfg.Data.DB)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown cache backend", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"redis without addr", func(c *Config) { c.Cache.Backend = "redis" }},
		{"smoothing below one", func(c *Config) { c.Mouse.SmoothFactor = 0.5 }},
		{"confidence above one", func(c *Config) { c.Mouse.MinDetectionConfidence = 1.5 }},
		{"active fps below idle", func(c *Config) { c.Mouse.ActiveFPS = 1 }},
		{"bad mealdb url", func(c *Config) { c.MealDB.BaseURL = "not a url" }},
		{"zero cache ttl", func(c *Config) { c.Cache.TTL = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "gemini.api_key", envKey("RASOI_GEMINI_API_KEY"))
	assert.Equal(t, "mouse.min_detection_confidence", envKey("RASOI_MOUSE_MIN_DETECTION_CONFIDENCE"))
	assert.Equal(t, "", envKey("RASOI_CONFIG"))
	assert.Equal(t, "", envKey("RASOI_NOSECTION"))
}
