package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, "license-tracker", cfg.AppName)
	require.Equal(t, []int{45, 30, 15, 7, 1}, cfg.Scanner.Milestones)
	require.Nil(t, cfg.Scanner.UrgentCutoff)
	require.Equal(t, "15 10 * * *", cfg.Schedule.Cron)
	require.Equal(t, "Asia/Dhaka", cfg.Schedule.Timezone)
	require.Equal(t, []string{"email"}, cfg.Notification.ContactChannels)
	require.Equal(t, 587, cfg.Notification.SMTP.Port)
	require.Equal(t, 12*time.Hour, cfg.Session.TTL)
	require.Equal(t, 3, cfg.Auth.MaxAdmins)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
app_env: production
database:
  type: postgres
  host: db.internal
scanner:
  milestones: [60, 45, 30]
  urgent_cutoff: 28
notification:
  contact_channels: [sns]
  webhook:
    url: https://chat.example.com/hook
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)

	require.Equal(t, "production", cfg.AppEnv)
	require.Equal(t, "postgres", cfg.Database.Type)
	require.Equal(t, "db.internal", cfg.Database.Host)
	require.Equal(t, []int{60, 45, 30}, cfg.Scanner.Milestones)
	require.NotNil(t, cfg.Scanner.UrgentCutoff)
	require.Equal(t, 28, *cfg.Scanner.UrgentCutoff)
	require.Equal(t, []string{"sns"}, cfg.Notification.ContactChannels)
	require.Equal(t, "https://chat.example.com/hook", cfg.Notification.Webhook.URL)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DATABASE_HOST", "env-host")
	t.Setenv("SESSION_SECRET", "from-env")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, "env-host", cfg.Database.Host)
	require.Equal(t, "from-env", cfg.Session.Secret)
}
