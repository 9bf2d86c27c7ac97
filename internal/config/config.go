// Package config loads interviewer settings from defaults, an optional
// YAML file, a .env file and INTERVIEWER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/highlog/interviewer/internal/decision"
	"github.com/highlog/interviewer/internal/evidence"
	"github.com/highlog/interviewer/internal/interview"
	"github.com/highlog/interviewer/internal/llm"
	"github.com/highlog/interviewer/internal/objstore"
	"github.com/highlog/interviewer/internal/store"
)

// Config is the top-level structure of the config file.
type Config struct {
	Database  DatabaseConfig   `yaml:"database"`
	Interview interview.Config `yaml:"interview"`
	Evidence  evidence.Config  `yaml:"evidence"`
	Decision  decision.Config  `yaml:"decision"`
	Server    ServerConfig     `yaml:"server"`
	S3        objstore.Config  `yaml:"s3"`
	LLM       llm.Config       `yaml:"llm"`
	Log       LogConfig        `yaml:"log"`
}

type DatabaseConfig struct {
	// DSN is a SQLite path or file: URI, or a postgres:// URL.
	DSN string `yaml:"dsn"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	JWTSecret    string        `yaml:"jwt_secret"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Default returns a Config populated with sensible defaults. The database
// DSN is left empty and resolved by Load.
func Default() *Config {
	return &Config{
		Interview: interview.DefaultConfig(),
		Evidence:  evidence.DefaultConfig(),
		Decision:  decision.DefaultConfig(),
		Server: ServerConfig{
			Addr:         ":8080",
			TokenTTL:     24 * time.Hour,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 90 * time.Second,
		},
		LLM: llm.DefaultConfig(),
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds the effective configuration. path may be empty, in which case
// INTERVIEWER_CONFIG is consulted; an explicitly named file must exist.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := Default()
	if path == "" {
		path = os.Getenv("INTERVIEWER_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if cfg.Database.DSN == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
		cfg.Database.DSN = p
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	var errs []error
	setInt := func(dst *int, key string) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	setBool := func(dst *bool, key string) {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	setDuration := func(dst *time.Duration, key string) {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	setString(&cfg.Database.DSN, "INTERVIEWER_DB")

	setInt(&cfg.Interview.TimeBudget, "INTERVIEWER_TIME_BUDGET")
	setInt(&cfg.Interview.MinRemaining, "INTERVIEWER_MIN_REMAINING")
	setInt(&cfg.Interview.MaxProbesPerTopic, "INTERVIEWER_MAX_PROBES")
	setBool(&cfg.Interview.LiveAnalysis, "INTERVIEWER_LIVE_ANALYSIS")
	setInt(&cfg.Evidence.K, "INTERVIEWER_EVIDENCE_K")
	setString(&cfg.Decision.Language, "INTERVIEWER_LANGUAGE")

	setString(&cfg.Server.Addr, "INTERVIEWER_ADDR")
	setString(&cfg.Server.JWTSecret, "INTERVIEWER_JWT_SECRET")
	setDuration(&cfg.Server.TokenTTL, "INTERVIEWER_TOKEN_TTL")

	setString(&cfg.S3.Endpoint, "INTERVIEWER_S3_ENDPOINT")
	setString(&cfg.S3.Region, "INTERVIEWER_S3_REGION")
	setString(&cfg.S3.AccessKey, "INTERVIEWER_S3_ACCESS_KEY")
	setString(&cfg.S3.SecretKey, "INTERVIEWER_S3_SECRET_KEY")
	setString(&cfg.S3.Bucket, "INTERVIEWER_S3_BUCKET")
	setString(&cfg.S3.Prefix, "INTERVIEWER_S3_PREFIX")
	setBool(&cfg.S3.UseSSL, "INTERVIEWER_S3_USE_SSL")

	setString(&cfg.Log.Level, "INTERVIEWER_LOG_LEVEL")
	setString(&cfg.Log.Format, "INTERVIEWER_LOG_FORMAT")

	llm.ApplyEnv(&cfg.LLM)
	if os.Getenv("INTERVIEWER_LLM_PROVIDER") == "" && cfg.LLM.Validate() != nil {
		if found, ok := llm.DiscoverConfig(); ok {
			adoptDiscovered(&cfg.LLM, found)
		}
	}

	return errors.Join(errs...)
}

// adoptDiscovered switches to a provider found via its standard API key
// variable, keeping any model settings already configured.
func adoptDiscovered(dst *llm.Config, found llm.Config) {
	dst.Provider = found.Provider
	dst.Anthropic.APIKey = found.Anthropic.APIKey
	dst.OpenAI.APIKey = found.OpenAI.APIKey
	dst.Gemini.APIKey = found.Gemini.APIKey
	dst.OpenRouter.APIKey = found.OpenRouter.APIKey
}

// Validate reports every problem found in the settings shared by all
// commands.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Database.DSN) == "" {
		errs = append(errs, errors.New("database.dsn must not be empty"))
	}
	if err := c.Interview.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("interview: %w", err))
	}
	if c.Evidence.K < 0 {
		errs = append(errs, fmt.Errorf("evidence.k must not be negative, got %d", c.Evidence.K))
	}
	if c.Decision.Temperature < 0 || c.Decision.Temperature > 1 {
		errs = append(errs, fmt.Errorf("decision.temperature must be in [0, 1], got %g", c.Decision.Temperature))
	}
	if c.S3.Enabled() {
		if err := c.S3.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ValidateServer checks the extra settings the HTTP server needs.
func (c *Config) ValidateServer() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr must not be empty"))
	}
	if len(c.Server.JWTSecret) < 16 {
		errs = append(errs, errors.New("server.jwt_secret must be at least 16 bytes (INTERVIEWER_JWT_SECRET)"))
	}
	if c.Server.TokenTTL <= 0 {
		errs = append(errs, errors.New("server.token_ttl must be positive"))
	}
	return errors.Join(errs...)
}
