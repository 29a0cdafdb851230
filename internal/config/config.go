package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/sidereusnuntius/campus/internal/calendar"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	SqliteDriver = "sqlite"
	FileDriver   = "file"
)

const EnvPrefix = "CAMPUS"

type Configuration struct {
	// ApiUrl is the base of every backend endpoint, including the version prefix.
	ApiUrl *url.URL
	// Timeout bounds every backend call.
	Timeout time.Duration
	Storage StorageConfig
	// WeekStart is the first column of the month grid.
	WeekStart time.Weekday
	// RefreshSchedule is the cron spec used by the watch command.
	RefreshSchedule string
	// Appearance is the OS appearance followed by the system theme mode: light or dark.
	Appearance string
	LogLevel   zerolog.Level
	// Debug, if true, logs every request and lowers the log level to debug.
	Debug bool
}

type StorageConfig struct {
	// Driver is either sqlite or file.
	Driver string
	// Path is the directory holding the local state.
	Path string
	// Secret, when set, encrypts the stored values.
	Secret string
	// Migrations is the folder with the SQLite schema migrations.
	Migrations string
}

// Flags returns the global command line flags. They take precedence over the environment and the
// config file.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("campus", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.String("config", "", "path to a config file")
	fs.String("api-url", "", "backend base url")
	fs.Duration("timeout", 0, "timeout of backend calls")
	fs.String("storage", "", "local state driver: sqlite or file")
	fs.String("log-level", "", "log level")
	fs.Bool("debug", false, "log every request")
	return fs
}

var flagKeys = map[string]string{
	"api.url":        "api-url",
	"api.timeout":    "timeout",
	"storage.driver": "storage",
	"log.level":      "log-level",
	"debug":          "debug",
}

func setDefaults(v *viper.Viper) {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	v.SetDefault("api.url", "http://localhost:3000/api/v1")
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("storage.driver", FileDriver)
	v.SetDefault("storage.path", filepath.Join(dir, "campus"))
	v.SetDefault("storage.secret", "")
	v.SetDefault("storage.migrations", "migrations")
	v.SetDefault("calendar.week_start", "sunday")
	v.SetDefault("refresh.schedule", "@every 5m")
	v.SetDefault("theme.appearance", "light")
	v.SetDefault("log.level", "info")
	v.SetDefault("debug", false)
}

// ReadConfig loads the configuration from, in increasing order of precedence, the defaults, the
// config file, a .env file, the CAMPUS_* environment variables and flags. flags may be nil.
func ReadConfig(flags *pflag.FlagSet) (cfg Configuration, err error) {
	if err = godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err = v.BindPFlag(key, f); err != nil {
					return
				}
			}
		}
	}

	if err = readConfigFile(v, flags); err != nil {
		return
	}
	return parse(v)
}

func readConfigFile(v *viper.Viper, flags *pflag.FlagSet) error {
	file := os.Getenv(EnvPrefix + "_CONFIG")
	if flags != nil {
		if f := flags.Lookup("config"); f != nil && f.Changed {
			file = f.Value.String()
		}
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("campus")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "campus"))
		}
	}

	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !(file == "" && errors.As(err, &notFound)) {
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

func parse(v *viper.Viper) (cfg Configuration, err error) {
	cfg.ApiUrl, err = url.Parse(v.GetString("api.url"))
	if err != nil || cfg.ApiUrl.Scheme == "" || cfg.ApiUrl.Host == "" {
		return cfg, fmt.Errorf("invalid api.url %q", v.GetString("api.url"))
	}

	cfg.Timeout = v.GetDuration("api.timeout")
	if cfg.Timeout <= 0 {
		return cfg, fmt.Errorf("invalid api.timeout %q", v.GetString("api.timeout"))
	}

	cfg.Storage = StorageConfig{
		Driver:     strings.ToLower(v.GetString("storage.driver")),
		Path:       v.GetString("storage.path"),
		Secret:     v.GetString("storage.secret"),
		Migrations: v.GetString("storage.migrations"),
	}
	if cfg.Storage.Driver != SqliteDriver && cfg.Storage.Driver != FileDriver {
		return cfg, fmt.Errorf("unknown storage.driver %q", cfg.Storage.Driver)
	}

	if cfg.WeekStart, err = calendar.ParseWeekday(v.GetString("calendar.week_start")); err != nil {
		return
	}
	cfg.RefreshSchedule = v.GetString("refresh.schedule")
	cfg.Appearance = strings.ToLower(v.GetString("theme.appearance"))

	cfg.Debug = v.GetBool("debug")
	if cfg.LogLevel, err = zerolog.ParseLevel(v.GetString("log.level")); err != nil {
		return
	}
	if cfg.Debug && cfg.LogLevel > zerolog.DebugLevel {
		cfg.LogLevel = zerolog.DebugLevel
	}
	return cfg, nil
}
