// Package config loads process settings from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "ALMOX"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Config is flat so every key is ALMOX_<TAG>.
type Config struct {
	Addr string `envconfig:"APP_ADDR" default:":8080"`
	Env  string `envconfig:"APP_ENV" default:"development"`

	SQLitePath    string `envconfig:"SQLITE_PATH" default:"almoxarifado.db"`
	MigrationsDir string `envconfig:"MIGRATIONS_DIR"`

	UploadDir string `envconfig:"UPLOAD_DIR" default:"uploads"`
	BackupDir string `envconfig:"BACKUP_DIR" default:"backups"`
	// BackupCheckInterval is how often the scheduler asks whether an automatic backup is due.
	BackupCheckInterval time.Duration `envconfig:"BACKUP_CHECK_INTERVAL" default:"1h"`

	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile       string `envconfig:"LOG_FILE"`
	LogMaxSizeMB  int    `envconfig:"LOG_MAX_SIZE_MB" default:"50"`
	LogMaxBackups int    `envconfig:"LOG_MAX_BACKUPS" default:"5"`
	LogMaxAgeDays int    `envconfig:"LOG_MAX_AGE_DAYS" default:"30"`

	SessionTTL   time.Duration `envconfig:"SESSION_TTL" default:"12h"`
	SecureCookie bool          `envconfig:"SESSION_SECURE_COOKIE" default:"false"`

	AdminName     string `envconfig:"ADMIN_NAME" default:"Administrador"`
	AdminUsername string `envconfig:"ADMIN_USERNAME" default:"admin"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`
}

func (c Config) IsDev() bool {
	return strings.EqualFold(c.Env, AppEnvDev)
}

// Load reads an optional .env file and then the ALMOX_* environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the ALMOX_* environment only.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.SQLitePath) == "" {
		return fmt.Errorf("%s_SQLITE_PATH must not be empty", EnvPrefix)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("%s_SESSION_TTL must be positive", EnvPrefix)
	}
	if c.BackupCheckInterval <= 0 {
		return fmt.Errorf("%s_BACKUP_CHECK_INTERVAL must be positive", EnvPrefix)
	}
	return nil
}
