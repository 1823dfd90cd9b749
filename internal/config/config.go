package config

import (
	"flag"
	"os"
	"time"
)

// Config holds the server settings. Flags win over environment variables,
// which win over the defaults.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogFile   string
	Heartbeat time.Duration
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvDurationOrDefault(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// Load parses args (without the program name) on top of the environment.
func Load(args []string) (Config, error) {
	var cfg Config
	fs := flag.NewFlagSet("tictactoe", flag.ContinueOnError)
	fs.StringVar(&cfg.HTTPAddr, "addr", getEnvOrDefault("HTTP_ADDR", ":8080"), "HTTP listen address")
	fs.StringVar(&cfg.LogLevel, "log-level", getEnvOrDefault("LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFile, "log-file", getEnvOrDefault("LOG_FILE", ""), "Also append logs to this file")
	fs.DurationVar(&cfg.Heartbeat, "heartbeat", getEnvDurationOrDefault("SSE_HEARTBEAT", 15*time.Second), "SSE heartbeat interval")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if cfg.Heartbeat <= 0 {
		cfg.Heartbeat = 15 * time.Second
	}
	return cfg, nil
}
