// Package config loads the per-deployment configuration: the source map
// from a YAML file and database settings from the environment. The loaded
// Config is passed explicitly into the core; nothing here is process-wide
// mutable state.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFreshHours is the cache freshness threshold used when a source
// does not set its own.
const DefaultFreshHours = 6

// Source describes one harvested event source: where its payload lives,
// which table it lands in, and the dedup key shape for that table.
type Source struct {
	Name       string   `yaml:"name"`
	CacheFile  string   `yaml:"cache_file"`
	URL        string   `yaml:"url"`
	Table      string   `yaml:"table"`
	City       string   `yaml:"city"`
	FreshHours int      `yaml:"fresh_hours"`
	NaturalKey []string `yaml:"natural_key"`
	Columns    []string `yaml:"columns"`
}

// FreshFor returns the freshness threshold as a duration.
func (s Source) FreshFor() time.Duration {
	hours := s.FreshHours
	if hours <= 0 {
		hours = DefaultFreshHours
	}
	return time.Duration(hours) * time.Hour
}

// Database holds connection settings for the destination store.
type Database struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

// DSN renders the settings as a pgx connection string.
func (d Database) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// Config is the full runtime configuration for one invocation.
type Config struct {
	SummaryLog string   `yaml:"summary_log"`
	Sources    []Source `yaml:"sources"`
	DB         Database `yaml:"-"`
}

// Load reads the YAML source map at path and database settings from the
// environment (a .env file is honored when present).
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if len(cfg.Sources) == 0 {
		return Config{}, fmt.Errorf("config %s declares no sources", path)
	}
	for i, src := range cfg.Sources {
		if src.Name == "" {
			return Config{}, fmt.Errorf("source %d has no name", i)
		}
		if src.Table == "" {
			return Config{}, fmt.Errorf("source %s has no table", src.Name)
		}
		if len(src.NaturalKey) == 0 {
			return Config{}, fmt.Errorf("source %s has no natural key", src.Name)
		}
	}
	if cfg.SummaryLog == "" {
		cfg.SummaryLog = "resumen_extracciones.log"
	}

	cfg.DB = databaseFromEnv()
	return cfg, nil
}

func databaseFromEnv() Database {
	_ = godotenv.Load()

	return Database{
		Host:     getEnv("AGENDA_DB_HOST", "localhost"),
		Port:     getEnv("AGENDA_DB_PORT", "5432"),
		Name:     getEnv("AGENDA_DB_NAME", "quehaypahacer"),
		User:     getEnv("AGENDA_DB_USER", "postgres"),
		Password: getEnv("AGENDA_DB_PASSWORD", ""),
		SSLMode:  getEnv("AGENDA_DB_SSLMODE", "disable"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
