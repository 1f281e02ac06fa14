package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/peterbourgon/ff/v3"

	"github.com/prasetyowira/qrlink/constant"
)

// EnvVarPrefix prefixes every environment variable, e.g. QRLINK_PORT
const EnvVarPrefix = "QRLINK"

type Config struct {
	Port         int
	DatabaseURL  string
	AuthUser     string
	AuthPass     string
	CacheSize    int
	LogLevel     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	ShortenerEndpoint string
	ShortenerTimeout  time.Duration
	ShortenerRate     float64
	ShortenerBurst    int
	ShortLinkTTL      time.Duration

	PNGSize int
}

// LoadConfig reads flags from args, falling back to QRLINK_* environment
// variables and then to defaults.
func LoadConfig(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("qrlink", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.IntVar(&cfg.Port, "port", 8080, "HTTP listen port")
	fs.StringVar(&cfg.DatabaseURL, "database-url", "qrlink.db", "SQLite file for link history")
	fs.StringVar(&cfg.AuthUser, "auth-user", "admin", "basic auth user for the links endpoint")
	fs.StringVar(&cfg.AuthPass, "auth-pass", "password", "basic auth password for the links endpoint")
	fs.IntVar(&cfg.CacheSize, "cache-size", 1000, "rendered QR code cache entries")
	fs.StringVar(&cfg.LogLevel, "log-level", "INFO", "INFO for JSON production logs, anything else for development logs")
	fs.DurationVar(&cfg.ReadTimeout, "read-timeout", 15*time.Second, "HTTP server read timeout")
	fs.DurationVar(&cfg.WriteTimeout, "write-timeout", 15*time.Second, "HTTP server write timeout")
	fs.DurationVar(&cfg.IdleTimeout, "idle-timeout", 60*time.Second, "HTTP server idle timeout")
	fs.StringVar(&cfg.ShortenerEndpoint, "shortener-endpoint", "https://is.gd/create.php", "is.gd create endpoint")
	fs.DurationVar(&cfg.ShortenerTimeout, "shortener-timeout", 10*time.Second, "timeout for one shortening call")
	fs.Float64Var(&cfg.ShortenerRate, "shortener-rate", 1, "outbound shortening calls per second, 0 disables limiting")
	fs.IntVar(&cfg.ShortenerBurst, "shortener-burst", 5, "outbound shortening burst")
	fs.DurationVar(&cfg.ShortLinkTTL, "short-link-ttl", time.Hour, "how long a short URL is reused without calling the provider, 0 disables reuse")
	fs.IntVar(&cfg.PNGSize, "png-size", 1024, "default PNG edge length in pixels")

	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix(EnvVarPrefix)); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every out-of-range setting
func (c Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 1 and 65535, got %d", c.Port))
	}
	if c.CacheSize < 1 {
		errs = append(errs, fmt.Errorf("cache-size must be positive, got %d", c.CacheSize))
	}
	if c.ShortenerEndpoint == "" {
		errs = append(errs, errors.New("shortener-endpoint must not be empty"))
	}
	if c.ShortenerRate < 0 {
		errs = append(errs, fmt.Errorf("shortener-rate must not be negative, got %v", c.ShortenerRate))
	}
	if c.ShortenerBurst < 1 {
		errs = append(errs, fmt.Errorf("shortener-burst must be at least 1, got %d", c.ShortenerBurst))
	}
	if c.ShortLinkTTL < 0 {
		errs = append(errs, fmt.Errorf("short-link-ttl must not be negative, got %s", c.ShortLinkTTL))
	}
	if c.PNGSize < constant.MinRasterSize || c.PNGSize > constant.MaxRasterSize {
		errs = append(errs, fmt.Errorf("png-size must be between %d and %d, got %d",
			constant.MinRasterSize, constant.MaxRasterSize, c.PNGSize))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether production (JSON) logging is configured
func (c Config) IsProduction() bool {
	return c.LogLevel == constant.LogLevelProduction
}
