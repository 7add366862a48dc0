package config

import (
	"errors"
	"os"
	"sync"
)

type Config struct {
	Env        string
	LogLevel   string
	Port       string
	DBType     string
	DBDSN      string
	SQLitePath string
	FileGoals  string
	FileDaily  string
	FileWeekly string
	AuthURL    string
	LocalToken string
}

var (
	cfg  *Config
	once sync.Once
)

func Load() *Config {
	once.Do(func() {
		_ = loadDotEnv()
		cfg = &Config{
			Env:        getEnv("APP_ENV", "development"),
			LogLevel:   getEnv("LOG_LEVEL", "info"),
			Port:       getEnv("PORT", "8088"),
			DBType:     getEnv("STORAGE_BACKEND", "file"),
			DBDSN:      getEnv("POSTGRES_DSN", ""),
			SQLitePath: getEnv("SQLITE_PATH", "data/goaltracker.db"),
			FileGoals:  getEnv("GOALS_FILE", "data/goals.json"),
			FileDaily:  getEnv("DAILY_STATUS_FILE", "data/daily_status.json"),
			FileWeekly: getEnv("WEEKLY_STATUS_FILE", "data/weekly_status.json"),
			AuthURL:    getEnv("AUTH_SERVICE_URL", ""),
			LocalToken: getEnv("LOCAL_AUTH_TOKEN", "MOCK-TOKEN"),
		}
		if err := cfg.Validate(); err != nil {
			panic("Invalid config: " + err.Error())
		}
	})
	return cfg
}

func (c *Config) Validate() error {
	switch c.DBType {
	case "postgres":
		if c.DBDSN == "" {
			return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when STORAGE_BACKEND=sqlite")
		}
	case "file":
		if c.FileGoals == "" || c.FileDaily == "" || c.FileWeekly == "" {
			return errors.New("File storage requires GOALS_FILE, DAILY_STATUS_FILE and WEEKLY_STATUS_FILE to be set")
		}
	default:
		return errors.New("STORAGE_BACKEND must be one of: file, sqlite, postgres")
	}
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	if c.Env != "development" && c.AuthURL == "" {
		return errors.New("AUTH_SERVICE_URL is required outside development")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func loadDotEnv() error {
	data, err := os.ReadFile(".env")
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, line := range splitLines(string(data)) {
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		if kv := splitKV(line); len(kv) == 2 {
			os.Setenv(kv[0], kv[1])
		}
	}
	return nil
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i, c := range s {
		if c == '\n' || c == '\r' {
			if i > start {
				lines = append(lines, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func splitKV(s string) []string {
	for i, c := range s {
		if c == '=' {
			return []string{s[:i], s[i+1:]}
		}
	}
	return nil
}
