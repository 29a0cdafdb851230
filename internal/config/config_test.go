package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestDefaults(t *testing.T) {
	t.Setenv("CAMPUS_CONFIG", "")
	cfg, err := ReadConfig(nil)
	if err != nil {
		t.Fatal(err)
	}

	if got := cfg.ApiUrl.String(); got != "http://localhost:3000/api/v1" {
		t.Errorf("unexpected api url %s", got)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("unexpected timeout %s", cfg.Timeout)
	}
	if cfg.Storage.Driver != FileDriver {
		t.Errorf("unexpected driver %s", cfg.Storage.Driver)
	}
	if cfg.WeekStart != time.Sunday {
		t.Errorf("unexpected week start %s", cfg.WeekStart)
	}
	if cfg.LogLevel != zerolog.InfoLevel {
		t.Errorf("unexpected log level %s", cfg.LogLevel)
	}
	if cfg.Appearance != "light" {
		t.Errorf("unexpected appearance %s", cfg.Appearance)
	}
}

func TestPrecedence(t *testing.T) {
	file := filepath.Join(t.TempDir(), "campus.yaml")
	content := "api:\n  url: http://file.example/api/v1\n  timeout: 3s\ncalendar:\n  week_start: monday\n"
	if err := os.WriteFile(file, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CAMPUS_CONFIG", file)
	t.Setenv("CAMPUS_API_URL", "http://env.example/api/v1")

	cases := []struct {
		name     string
		args     []string
		expected string
	}{
		{"environment over file", nil, "http://env.example/api/v1"},
		{"flag over environment", []string{"--api-url", "http://flag.example/api/v1", "whoami"}, "http://flag.example/api/v1"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			fs := Flags()
			if err := fs.Parse(c.args); err != nil {
				t.Fatal(err)
			}
			cfg, err := ReadConfig(fs)
			if err != nil {
				t.Fatal(err)
			}
			if got := cfg.ApiUrl.String(); got != c.expected {
				t.Errorf("expected %s, got %s", c.expected, got)
			}
			if cfg.Timeout != 3*time.Second {
				t.Errorf("file value lost: timeout %s", cfg.Timeout)
			}
			if cfg.WeekStart != time.Monday {
				t.Errorf("file value lost: week start %s", cfg.WeekStart)
			}
		})
	}
}

func TestFlagsStopAtCommand(t *testing.T) {
	fs := Flags()
	if err := fs.Parse([]string{"--debug", "events", "--search", "hack"}); err != nil {
		t.Fatal(err)
	}
	if args := fs.Args(); len(args) != 3 || args[0] != "events" {
		t.Errorf("unexpected remaining arguments %v", args)
	}
}

func TestInvalid(t *testing.T) {
	cases := map[string]string{
		"CAMPUS_API_URL":             "not a url",
		"CAMPUS_STORAGE_DRIVER":      "postgres",
		"CAMPUS_CALENDAR_WEEK_START": "someday",
		"CAMPUS_LOG_LEVEL":           "loud",
		"CAMPUS_API_TIMEOUT":         "-1s",
	}
	for env, value := range cases {
		t.Run(env, func(t *testing.T) {
			t.Setenv("CAMPUS_CONFIG", "")
			t.Setenv(env, value)
			if _, err := ReadConfig(nil); err == nil {
				t.Errorf("expected %s=%s to be rejected", env, value)
			}
		})
	}
}
