package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "studybuddy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
  cors_origins: ["http://localhost:3000"]
storage:
  driver: memory
auth:
  mode: jwt
  jwt_secret: dev
notes:
  autosave_delay: 250ms
dashboard:
  upcoming_limit: 3
timezone: UTC
log:
  level: debug
  format: json
`)
	c, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	assert.Equal(t, ":9000", c.Server.Addr)
	assert.Equal(t, "/login", c.Server.LoginPath)
	assert.Equal(t, []string{"http://localhost:3000"}, c.Server.CORSOrigins)
	assert.Equal(t, 250*time.Millisecond, c.Notes.AutosaveDelay)
	assert.Equal(t, time.Second, c.Timer.Tick)
	assert.Equal(t, 3, c.Dashboard.UpcomingLimit)
	assert.False(t, c.NeedsFirebase())

	level, err := c.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "storage:\n  driver: memory\nauth:\n  mode: jwt\n  jwt_secret: file\n")
	t.Setenv("JWT_SECRET_KEY", "env")
	t.Setenv("PORT", "7000")
	t.Setenv("STUDYBUDDY_UPCOMING_LIMIT", "8")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env", c.Auth.JWTSecret)
	assert.Equal(t, ":7000", c.Server.Addr)
	assert.Equal(t, 8, c.Dashboard.UpcomingLimit)
}

func TestValidate(t *testing.T) {
	base := Default()
	base.Storage.Driver = StorageMemory
	base.Auth.Mode = AuthJWT
	base.Auth.JWTSecret = "s"
	require.NoError(t, base.Validate())

	cases := map[string]func(c *Config){
		"driver":     func(c *Config) { c.Storage.Driver = "postgres" },
		"auth mode":  func(c *Config) { c.Auth.Mode = "saml" },
		"jwt secret": func(c *Config) { c.Auth.JWTSecret = "" },
		"firebase":   func(c *Config) { c.Auth.Mode = AuthFirebase },
		"tick":       func(c *Config) { c.Timer.Tick = 0 },
		"limit":      func(c *Config) { c.Dashboard.UpcomingLimit = 0 },
		"timezone":   func(c *Config) { c.Timezone = "Mars/Olympus" },
		"log level":  func(c *Config) { c.Log.Level = "chatty" },
	}
	for name, mutate := range cases {
		c := base
		mutate(&c)
		assert.Error(t, c.Validate(), name)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
