package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8188), cfg.HTTP.Port)
	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, 5*time.Second, cfg.Runner.Timeout)
	assert.Equal(t, 256*1024, cfg.Runner.MaxCodeBytes)
	assert.True(t, cfg.Auth.AutoRegister)
	assert.True(t, cfg.Auth.CSRFEnabled)
	assert.Equal(t, 720*time.Hour, cfg.Auth.TokenExpiry)
	assert.Equal(t, 90, cfg.Audit.RetentionDays)
	assert.False(t, cfg.Demo.Enabled)
}

func TestNewConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("AUTH_AUTO_REGISTER", "false")
	t.Setenv("RUNNER_TIMEOUT", "2s")
	t.Setenv("SITE_BASE_URL", "https://spellbook.example")
	t.Setenv("DEMO_MODE", "true")

	cfg := NewConfig()

	assert.Equal(t, int32(9000), cfg.HTTP.Port)
	assert.False(t, cfg.Auth.AutoRegister)
	assert.Equal(t, 2*time.Second, cfg.Runner.Timeout)
	assert.Equal(t, "https://spellbook.example", cfg.Site.BaseURL)
	assert.True(t, cfg.Demo.Enabled)
}
