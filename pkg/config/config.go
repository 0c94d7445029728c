// Package config resolves where the game files live and how the editor
// behaves, from defaults, an optional timemachine.yaml, a .env file and
// FTM_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ormasoftchile/timemachine/pkg/logging"
)

// EnvPrefix prefixes every environment variable the editor reads.
const EnvPrefix = "FTM"

// Config holds all configuration for the editor.
type Config struct {
	Game    GameConfig     `mapstructure:"game"`
	Cache   CacheConfig    `mapstructure:"cache"`
	Trace   TraceConfig    `mapstructure:"trace"`
	Logging logging.Config `mapstructure:"logging"`
}

// GameConfig locates the game's files.
type GameConfig struct {
	Dir      string `mapstructure:"dir" validate:"required"`
	IniFile  string `mapstructure:"ini_file" validate:"required,excludesall=/\\"`
	SaveFile string `mapstructure:"save_file" validate:"required,excludesall=/\\"`
}

// CacheConfig locates the editor's own files.
type CacheConfig struct {
	Dir string `mapstructure:"dir" validate:"required"`
	// BackupDir receives backups during a save. Empty means Dir.
	BackupDir string `mapstructure:"backup_dir"`
}

// TraceConfig controls the JSONL audit trail.
type TraceConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	File    string `mapstructure:"file"`
}

// LoadOptions adjusts where Load looks.
type LoadOptions struct {
	// ConfigFile is an explicit config file; it must exist when set.
	ConfigFile string
	// EnvFile is an explicit .env file; it must exist when set. Otherwise a
	// .env in the working directory is loaded if present.
	EnvFile string
	// Overrides are applied last, keyed like "game.dir".
	Overrides map[string]any
}

// Load loads configuration from various sources.
func Load(opts LoadOptions) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName("timemachine")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "timemachine"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	for key, val := range opts.Overrides {
		v.Set(key, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	cache := DefaultCacheDir()

	v.SetDefault("game.dir", DefaultGameDir())
	v.SetDefault("game.ini_file", "undertale.ini")
	v.SetDefault("game.save_file", "file0")

	v.SetDefault("cache.dir", cache)
	v.SetDefault("cache.backup_dir", "")

	v.SetDefault("trace.enabled", true)
	v.SetDefault("trace.file", "")

	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.filename", "")
}

var validate = validator.New()

// Validate checks struct constraints on cfg.
func Validate(cfg *Config) error {
	return validate.Struct(cfg)
}

// DefaultGameDir returns the directory the game keeps its files in on the
// current OS.
func DefaultGameDir() string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "windows":
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return filepath.Join(dir, "UNDERTALE")
		}
		return filepath.Join(home, "AppData", "Local", "UNDERTALE")
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "com.tobyfox.undertale")
	default:
		if dir, err := os.UserConfigDir(); err == nil {
			return filepath.Join(dir, "UNDERTALE")
		}
		return filepath.Join(home, ".config", "UNDERTALE")
	}
}

// DefaultCacheDir returns the editor's cache directory.
func DefaultCacheDir() string {
	if runtime.GOOS == "windows" {
		if dir := os.Getenv("APPDATA"); dir != "" {
			return filepath.Join(dir, "FloweysTimeMachine")
		}
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "timemachine")
	}
	return filepath.Join(os.TempDir(), "timemachine")
}

// IniPath returns the path of the game's ini file.
func (c *Config) IniPath() string { return filepath.Join(c.Game.Dir, c.Game.IniFile) }

// SavePath returns the path of the game's save file.
func (c *Config) SavePath() string { return filepath.Join(c.Game.Dir, c.Game.SaveFile) }

// BackupDir returns where backups are written during a save.
func (c *Config) BackupDir() string {
	if c.Cache.BackupDir != "" {
		return c.Cache.BackupDir
	}
	return c.Cache.Dir
}

// PresetPath returns the path of the preset store.
func (c *Config) PresetPath() string { return filepath.Join(c.Cache.Dir, "presets.yaml") }

// TracePath returns the audit trail path, or "" when tracing is off.
func (c *Config) TracePath() string {
	if !c.Trace.Enabled {
		return ""
	}
	if c.Trace.File != "" {
		return c.Trace.File
	}
	return filepath.Join(c.Cache.Dir, "trace.jsonl")
}
