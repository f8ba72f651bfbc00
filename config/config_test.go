package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_FileAndDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", writeConfig(t, `
server:
  port: 9090
storage:
  driver: memory
booking:
  slot_step_minutes: 15
`))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 15*time.Minute, cfg.Booking.SlotStep())
	assert.Equal(t, 90, cfg.Booking.MaxAdvanceDays)
	assert.Equal(t, 30*time.Second, cfg.Booking.AvailabilityCacheTTL)
	assert.Equal(t, 2*time.Second, cfg.Outbox.PollInterval)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", writeConfig(t, "server:\n  port: 9090\n"))
	t.Setenv("MAW3ID_SERVER_PORT", "7070")
	t.Setenv("MAW3ID_BOOKING_MAX_ADVANCE_DAYS", "30")
	t.Setenv("MAW3ID_DATABASE_HOST", "db.internal")
	t.Setenv("MAW3ID_OUTBOX_POLL_INTERVAL", "500ms")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 30, cfg.Booking.MaxAdvanceDays)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 500*time.Millisecond, cfg.Outbox.PollInterval)
}

func TestLoadConfig_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("CONFIG_FILE", writeConfig(t, "storage:\n  driver: mongo\n"))

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	c := DatabaseConfig{Host: "h", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=n sslmode=disable", c.DSN())
}
