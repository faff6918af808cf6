package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
Env = "production"

[Reward]
MinAmount = 500
SettleRetryInterval = "30s"

[Payment]
Provider = "stripe"
SecretKey = "from-file"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("PAYMENT_SECRET_KEY", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "production", cfg.Env)
	require.Equal(t, int64(500), cfg.Reward.MinAmount)
	require.Equal(t, int64(10000), cfg.Reward.MaxAmount)
	require.Equal(t, 30*time.Second, cfg.Reward.SettleRetryInterval)
	require.Equal(t, "stripe", cfg.Payment.Provider)
	require.Equal(t, "from-env", cfg.Payment.SecretKey)
	require.Equal(t, 50, cfg.Feed.Limit)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestDatabaseConfigs_ConnectionString(t *testing.T) {
	db := DatabaseConfigs{Host: "db", Port: "3306", Database: "tensaku", User: "app", Password: "secret"}

	dsn := db.ConnectionString()
	require.Contains(t, dsn, "app:secret@tcp(db:3306)/tensaku?")
	require.Contains(t, dsn, "parseTime=true")
	require.Contains(t, dsn, "multiStatements=true")
	require.Contains(t, dsn, "charset=utf8mb4")
}
