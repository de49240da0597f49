// ABOUTME: Tests for config defaults, first-run creation and env overrides
// ABOUTME: Every test writes into t.TempDir and uses t.Setenv

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.Listen)
	assert.Equal(t, "0 8 * * *", cfg.ReminderCron)
	assert.Equal(t, []string{"Family", "Friends", "Work"}, cfg.DefaultCircles)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadPartialFileIsNormalized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: \":9000\"\ntheme: neon\nupcoming_days: -3\n"), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, "light", cfg.Theme)
	assert.Equal(t, 14, cfg.UpcomingDays)
	assert.Equal(t, "demo", cfg.LocalScope)
	assert.Equal(t, DefaultDatabasePath(), cfg.DatabasePath)
	assert.NotNil(t, cfg.DefaultCircles)
}

func TestLoadRejectsBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: [unterminated"), 0600))

	_, err := Load(path)
	assert.Error(t, err)

	_, err = Load("")
	assert.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: \":9000\"\nlocal_scope: file\n"), 0600))

	t.Setenv("NETWORKIA_LISTEN", ":7000")
	t.Setenv("NETWORKIA_UPCOMING_DAYS", "30")
	t.Setenv("NETWORKIA_DEFAULT_CIRCLES", " Climbing, ,Book club ")
	t.Setenv("NETWORKIA_THEME", "dark")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Listen)
	assert.Equal(t, "file", cfg.LocalScope)
	assert.Equal(t, 30, cfg.UpcomingDays)
	assert.Equal(t, "dark", cfg.Theme)
	assert.Equal(t, []string{"Climbing", "Book club"}, cfg.DefaultCircles)
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("NETWORKIA_LOCAL_SCOPE=from-dotenv\nNETWORKIA_LISTEN=:1111\n"), 0600))

	// Already-set variables win over .env
	t.Setenv("NETWORKIA_LISTEN", ":2222")
	t.Setenv("NETWORKIA_LOCAL_SCOPE", "")
	require.NoError(t, os.Unsetenv("NETWORKIA_LOCAL_SCOPE"))

	require.NoError(t, LoadEnvFiles(envPath, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "from-dotenv", os.Getenv("NETWORKIA_LOCAL_SCOPE"))
	assert.Equal(t, ":2222", os.Getenv("NETWORKIA_LISTEN"))
}

func TestLocation(t *testing.T) {
	cfg := DefaultConfig()
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	cfg.Timezone = "UTC"
	loc, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	cfg.Timezone = "Not/AZone"
	_, err = cfg.Location()
	assert.Error(t, err)
}
