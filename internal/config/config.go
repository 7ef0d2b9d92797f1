// Package config defines the JSON-serializable run configuration for
// songetl and how it is assembled.
//
// Values are layered, later layers winning:
//
//  1. Default(): the local sparkifydb Postgres and ./data inputs.
//  2. An optional JSON file.
//  3. An optional .env file (github.com/joho/godotenv).
//  4. The process environment.
//
// Example file (trimmed):
//
//	{
//	  "storage": { "kind": "sqlite", "dsn": "file:sparkify.db", "auto_create": true },
//	  "sources": { "song_data": "data/song_data", "log_data": "data/log_data" },
//	  "runtime": { "lookup": "bulk", "cache": true, "on_error": "skip" },
//	  "metrics": { "backend": "pushgateway", "pushgateway_url": "http://localhost:9091" }
//	}
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the top-level object decoded from a config file.
type Config struct {
	Storage Storage `json:"storage"`
	Sources Sources `json:"sources"`
	Runtime Runtime `json:"runtime"`
	Metrics Metrics `json:"metrics"`
}

// Storage selects the warehouse backend.
type Storage struct {
	// Kind is a registered storage kind: postgres, pq, sqlite, mysql, mssql.
	Kind string `json:"kind"`
	DSN  string `json:"dsn"`

	// AutoCreate creates missing tables before the first file.
	AutoCreate bool `json:"auto_create"`
}

// Sources names the two input trees.
type Sources struct {
	SongData string `json:"song_data"`
	LogData  string `json:"log_data"`
}

// Runtime tunes how files are processed.
type Runtime struct {
	// Lookup is "row" (one query per songplay) or "bulk" (one per file).
	Lookup string `json:"lookup"`
	// Cache memoizes songplay lookups within a file.
	Cache bool `json:"cache"`
	// OnError is "abort" or "skip".
	OnError string `json:"on_error"`
}

// Metrics selects where run metrics go.
type Metrics struct {
	// Backend is "none", "pushgateway" or "datadog".
	Backend        string `json:"backend"`
	PushgatewayURL string `json:"pushgateway_url"`
	// DatadogAddr is a DogStatsD address such as "127.0.0.1:8125".
	DatadogAddr string `json:"datadog_addr"`
	// Job groups pushed metrics.
	Job string `json:"job"`
}

// DefaultDSN is the local development warehouse.
const DefaultDSN = "host=127.0.0.1 dbname=sparkifydb user=student password=student"

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Storage: Storage{Kind: "postgres", DSN: DefaultDSN},
		Sources: Sources{SongData: "data/song_data", LogData: "data/log_data"},
		Runtime: Runtime{Lookup: "row", OnError: "abort"},
		Metrics: Metrics{Backend: "none", Job: "songetl"},
	}
}

// Load builds a Config from the defaults, the JSON file at path, the
// dotenv file at envFile and the environment. Empty paths are skipped, as
// is a missing envFile.
func Load(path, envFile string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	dotenv := map[string]string{}
	if envFile != "" {
		m, err := godotenv.Read(envFile)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("config: read %s: %w", envFile, err)
		default:
			dotenv = m
		}
	}

	lookup := func(k string) (string, bool) {
		if v, ok := os.LookupEnv(k); ok && strings.TrimSpace(v) != "" {
			return v, true
		}
		v, ok := dotenv[k]
		return v, ok
	}
	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: open: %w", err)
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays variables found by lookup onto cfg.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	strs := []struct {
		key string
		dst *string
	}{
		{"SONGETL_STORAGE_KIND", &cfg.Storage.Kind},
		{"SONGETL_DSN", &cfg.Storage.DSN},
		{"SONGETL_SONG_DATA", &cfg.Sources.SongData},
		{"SONGETL_LOG_DATA", &cfg.Sources.LogData},
		{"SONGETL_LOOKUP", &cfg.Runtime.Lookup},
		{"SONGETL_ON_ERROR", &cfg.Runtime.OnError},
		{"METRICS_BACKEND", &cfg.Metrics.Backend},
		{"PUSHGATEWAY_URL", &cfg.Metrics.PushgatewayURL},
		{"SONGETL_METRICS_JOB", &cfg.Metrics.Job},
	}
	for _, s := range strs {
		if v, ok := lookup(s.key); ok && strings.TrimSpace(v) != "" {
			*s.dst = strings.TrimSpace(v)
		}
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"SONGETL_AUTO_CREATE", &cfg.Storage.AutoCreate},
		{"SONGETL_CACHE", &cfg.Runtime.Cache},
	}
	for _, b := range bools {
		v, ok := lookup(b.key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s: %w", b.key, err)
		}
		*b.dst = parsed
	}

	// DD_AGENT_HOST is the usual Datadog agent variable; the port defaults
	// to DogStatsD's 8125.
	if host, ok := lookup("DD_AGENT_HOST"); ok && strings.TrimSpace(host) != "" {
		host = strings.TrimSpace(host)
		port := "8125"
		if p, ok := lookup("DD_DOGSTATSD_PORT"); ok && strings.TrimSpace(p) != "" {
			port = strings.TrimSpace(p)
		}
		cfg.Metrics.DatadogAddr = host + ":" + port
	}
	return nil
}
