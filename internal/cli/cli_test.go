package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/clauserisk/internal/model"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"contracts/lease.docx", "lease"},
		{`C:\contracts\nda final.pdf`, "nda-final"},
		{"https://example.com/terms.html", "terms"},
		{"https://example.com/", "example"},
		{"what?:*.txt", "what___"},
		{"", "document"},
		{"..", "document"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFilename(tt.in), tt.in)
	}

	long := sanitizeFilename(strings.Repeat("a", 300) + ".txt")
	assert.Len(t, long, 100)
}

func TestDedupe(t *testing.T) {
	got := dedupe([]string{"a.txt", "b.txt", "a.txt", "c.txt", "b.txt"})
	assert.Equal(t, []string{"a.txt", "b.txt", "c.txt"}, got)
	assert.Empty(t, dedupe(nil))
}

func TestSetDefaults_RoundTripsDefaultConfig(t *testing.T) {
	v := viper.New()
	setDefaults(v, model.DefaultConfig())

	assert.Equal(t, "file", v.GetString("audit.backend"))
	assert.Equal(t, 30*time.Second, v.GetDuration("http.timeout"))
	assert.True(t, v.GetBool("http.respect_robots"))
	assert.True(t, v.IsSet("llm.api_key"))

	cfg := &model.Config{}
	require.NoError(t, v.Unmarshal(cfg))
	assert.Equal(t, model.DefaultConfig().RateLimiting, cfg.RateLimiting)
	assert.Equal(t, model.DefaultConfig().Cache, cfg.Cache)
	assert.NoError(t, cfg.Validate())
}

func TestSetDefaults_EnvOverride(t *testing.T) {
	t.Setenv("CLAUSERISK_AUDIT_BACKEND", "sqlite")

	v := viper.New()
	setDefaults(v, model.DefaultConfig())
	v.SetEnvPrefix("CLAUSERISK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &model.Config{}
	require.NoError(t, v.Unmarshal(cfg))
	assert.Equal(t, "sqlite", cfg.Audit.Backend)
}

func TestApplyLLMEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OLLAMA_BASE_URL", "http://ollama:11434")

	cfg := model.DefaultConfig()
	cfg.LLM.Provider = "openai"
	applyLLMEnv(cfg)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)

	cfg = model.DefaultConfig()
	cfg.LLM.Provider = "openai"
	cfg.LLM.APIKey = "sk-from-config"
	applyLLMEnv(cfg)
	assert.Equal(t, "sk-from-config", cfg.LLM.APIKey)

	cfg = model.DefaultConfig()
	cfg.LLM.Provider = "ollama"
	applyLLMEnv(cfg)
	assert.Equal(t, "http://ollama:11434", cfg.LLM.BaseURL)
	assert.Empty(t, cfg.LLM.APIKey)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(model.LogConfig{Level: "warn", Format: "json"}, false, &buf)
	logger.Info("hidden")
	logger.Warn("shown", "clauses", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"clauses":3`)

	buf.Reset()
	logger = newLogger(model.LogConfig{Level: "error", Format: "text"}, true, &buf)
	logger.Debug("debug line")
	assert.Contains(t, buf.String(), "debug line", "verbose lowers the level to debug")
}

func TestRenderConfig_HidesAPIKey(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.LLM.APIKey = "sk-secret"

	out, err := renderConfig(cfg)
	require.NoError(t, err)
	assert.NotContains(t, out, "sk-secret")
	assert.Contains(t, out, "rate_limiting:")
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".clauserisk", "config.yaml")
	require.NoError(t, writeDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# ClauseRisk Configuration File"))
	assert.Contains(t, string(data), "OPENAI_API_KEY")

	var cfg model.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, "file", cfg.Audit.Backend)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)

	err = writeDefaultConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}
