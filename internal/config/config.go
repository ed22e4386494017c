package config

import (
	"errors"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/aoyama/taskvault/internal/constants"
)

const DefaultConfigFileName = "config.toml"

type Config struct {
	DBPath       string `toml:"db_path"`
	DefaultTheme string `toml:"default_theme"`
	BackupDir    string `toml:"backup_dir"`
}

// LoadOrCreate reads the TOML config at path, writing the defaults on first
// run. Environment variables override file values.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return applyEnv(cfg), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath()
	}
	return applyEnv(cfg), nil
}

// Load returns the effective config without touching the filesystem, for
// callers that do not carry a config file.
func Load() Config {
	return applyEnv(defaultConfig())
}

// DefaultConfigPath returns the config file location under the user config
// directory.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	appDir := filepath.Join(dir, "taskvault")
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(appDir, DefaultConfigFileName), nil
}

func applyEnv(cfg Config) Config {
	cfg.DBPath = getEnv("TASKVAULT_DB_PATH", cfg.DBPath)
	cfg.DefaultTheme = getEnv("TASKVAULT_THEME", cfg.DefaultTheme)
	cfg.BackupDir = getEnv("TASKVAULT_BACKUP_DIR", cfg.BackupDir)
	return cfg
}

func defaultConfig() Config {
	return Config{
		DBPath:       defaultDBPath(),
		DefaultTheme: constants.ThemeLight,
		BackupDir:    ".",
	}
}

func defaultDBPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return constants.DefaultDBFileName
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "taskvault", constants.DefaultDBFileName)
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
