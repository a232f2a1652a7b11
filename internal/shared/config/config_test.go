package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("LLM_PROVIDER", "")

	cfg := LoadConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, 30, cfg.QuotationValidityDays)
	assert.Equal(t, time.Duration(0), cfg.LLM.Timeout)
	assert.Equal(t, "local", cfg.Storage.Provider)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("LLM_TIMEOUT", "45s")
	t.Setenv("QUOTATION_VALIDITY_DAYS", "14")

	cfg := LoadConfig()

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 14, cfg.QuotationValidityDays)
}
