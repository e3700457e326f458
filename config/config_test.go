package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)

	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, 30*time.Second, cfg.IAP.CatalogTimeout)
	require.Equal(t, 24*time.Hour, cfg.IAP.FinishedTTL)
	require.Equal(t, "en-US", cfg.GooglePlay.Language)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("IAP_CATALOG_TIMEOUT=5s\nGOOGLE_PLAY_PACKAGE_NAME=com.app.example\n"), 0o600))

	t.Setenv("IAP_PRODUCT_IDS_PATH", "ids.json")
	// Registers cleanup for the values godotenv sets.
	t.Setenv("IAP_CATALOG_TIMEOUT", "")
	t.Setenv("GOOGLE_PLAY_PACKAGE_NAME", "")
	require.NoError(t, os.Unsetenv("IAP_CATALOG_TIMEOUT"))
	require.NoError(t, os.Unsetenv("GOOGLE_PLAY_PACKAGE_NAME"))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, 5*time.Second, cfg.IAP.CatalogTimeout)
	require.Equal(t, "com.app.example", cfg.GooglePlay.PackageName)
	require.Equal(t, "ids.json", cfg.IAP.ProductIDsPath)
	require.Equal(t, FileSource("ids.json"), cfg.ProductIDs())
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	t.Setenv("IAP_CATALOG_TIMEOUT", "soon")

	_, err := LoadConfig(filepath.Join(t.TempDir(), ".env"))
	require.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	cfg := Config{Log: LogConfig{Level: "warn"}}
	log, err := cfg.NewLogger()
	require.NoError(t, err)
	require.False(t, log.Core().Enabled(zapcore.InfoLevel))
	require.True(t, log.Core().Enabled(zapcore.WarnLevel))

	cfg.Log.Level = "loud"
	_, err = cfg.NewLogger()
	require.Error(t, err)
}
