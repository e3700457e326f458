package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/code-payments/flipchat-iap-client/iap"
)

type Config struct {
	Log        LogConfig
	IAP        IAPConfig
	DB         DBConfig
	GooglePlay GooglePlayConfig
}

type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEVELOPMENT" default:"false"`
}

type IAPConfig struct {
	ProductIDsPath      string        `envconfig:"IAP_PRODUCT_IDS_PATH" default:"product_ids.yaml"`
	CatalogTimeout      time.Duration `envconfig:"IAP_CATALOG_TIMEOUT" default:"30s"`
	FinishedTTL         time.Duration `envconfig:"IAP_FINISHED_TTL" default:"24h"`
	EntitlementCacheTTL time.Duration `envconfig:"IAP_ENTITLEMENT_CACHE_TTL" default:"5m"`
}

type DBConfig struct {
	URL             string        `envconfig:"DATABASE_URL"`
	MaxOpenConns    int           `envconfig:"DATABASE_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"DATABASE_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DATABASE_CONN_MAX_LIFETIME" default:"30m"`
}

type GooglePlayConfig struct {
	PackageName        string `envconfig:"GOOGLE_PLAY_PACKAGE_NAME"`
	ServiceAccountFile string `envconfig:"GOOGLE_PLAY_SERVICE_ACCOUNT_FILE"`
	Language           string `envconfig:"GOOGLE_PLAY_LANGUAGE" default:"en-US"`
}

// LoadConfig reads the optional env files (".env" when none are given) and
// then the process environment. Variables already set in the environment
// take precedence over the files.
func LoadConfig(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, pkgerrors.Wrap(err, "failed to load env file")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, pkgerrors.Wrap(err, "failed to process env config")
	}
	return cfg, nil
}

// ProductIDs returns a source that reads the configured product id file.
func (c Config) ProductIDs() iap.ProductIDSource {
	return FileSource(c.IAP.ProductIDsPath)
}

func (c Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "invalid log level %q", c.Log.Level)
	}

	zc := zap.NewProductionConfig()
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	return zc.Build()
}
