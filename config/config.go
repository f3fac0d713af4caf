// Package config loads davsearch-mcp settings from defaults, an optional config
// file, a .env file and DAVSEARCH_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvPrefix      = "DAVSEARCH"
	configName     = "davsearch"
	BackendWebDAV  = "webdav"
	BackendLocal   = "local"
	defaultLogFile = "davsearch-mcp.log"
)

// Keys bound to command-line flags.
const (
	KeyLogLevel = "log.level"
	KeyLogFile  = "log.file"
	KeyHTTPAddr = "http.addr"
)

type Config struct {
	Backend   string
	WebDAV    WebDAV
	Local     Local
	Indexer   Indexer
	Extractor Extractor
	Search    Search
	LogLevel  string
	LogFile   string
	HTTPAddr  string
}

type WebDAV struct {
	URL               string
	Username          string
	Password          string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

type Local struct {
	Root  string
	Watch bool
}

type Indexer struct {
	MaxDepth       int
	MaxIndexSize   int
	Concurrency    int
	CacheTTL       time.Duration
	ListingTimeout time.Duration
	Exclude        []string
}

type Extractor struct {
	MaxFileSize     int64
	CacheTTL        time.Duration
	CacheMaxBytes   int64
	MaxContentChars int
}

type Search struct {
	DefaultLimit     int
	FallbackLimit    int
	ResultCacheTTL   time.Duration
	ContentBatchSize int
}

// NewViper returns a viper instance with every default set and environment lookup enabled.
// Callers bind their flags to it before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.backend", BackendWebDAV)

	v.SetDefault("webdav.url", "")
	v.SetDefault("webdav.username", "")
	v.SetDefault("webdav.password", "")
	v.SetDefault("webdav.timeout", 30*time.Second)
	v.SetDefault("webdav.requests_per_second", 10.0)
	v.SetDefault("webdav.burst", 20)

	v.SetDefault("local.root", ".")
	v.SetDefault("local.watch", true)

	v.SetDefault("indexer.max_depth", 10)
	v.SetDefault("indexer.max_index_size", 10000)
	v.SetDefault("indexer.concurrency", 3)
	v.SetDefault("indexer.cache_ttl", 15*time.Minute)
	v.SetDefault("indexer.listing_timeout", 10*time.Second)
	v.SetDefault("indexer.exclude", []string{})

	v.SetDefault("extractor.max_file_size", "10MiB")
	v.SetDefault("extractor.cache_ttl", 5*time.Minute)
	v.SetDefault("extractor.cache_max_bytes", "100MiB")
	v.SetDefault("extractor.max_content_chars", 100000)

	v.SetDefault("search.default_limit", 50)
	v.SetDefault("search.fallback_limit", 20)
	v.SetDefault("search.result_cache_ttl", time.Minute)
	v.SetDefault("search.content_batch_size", 10)

	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFile, defaultLogFile)
	v.SetDefault(KeyHTTPAddr, "")
}

// LoadDotEnv loads envFile into the process environment without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv(envFile string) error {
	if err := godotenv.Load(envFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", envFile, err)
	}
	return nil
}

// Load reads configFile, or davsearch.yaml from the working directory or
// $HOME/.config/davsearch when configFile is empty, and returns the validated result.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", configName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Debug("no config file found, using defaults and environment")
	}

	cfg, err := fromViper(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) (*Config, error) {
	maxFileSize, err := parseBytes(v, "extractor.max_file_size")
	if err != nil {
		return nil, err
	}
	cacheMaxBytes, err := parseBytes(v, "extractor.cache_max_bytes")
	if err != nil {
		return nil, err
	}

	return &Config{
		Backend: strings.ToLower(v.GetString("store.backend")),
		WebDAV: WebDAV{
			URL:               v.GetString("webdav.url"),
			Username:          v.GetString("webdav.username"),
			Password:          v.GetString("webdav.password"),
			Timeout:           v.GetDuration("webdav.timeout"),
			RequestsPerSecond: v.GetFloat64("webdav.requests_per_second"),
			Burst:             v.GetInt("webdav.burst"),
		},
		Local: Local{
			Root:  v.GetString("local.root"),
			Watch: v.GetBool("local.watch"),
		},
		Indexer: Indexer{
			MaxDepth:       v.GetInt("indexer.max_depth"),
			MaxIndexSize:   v.GetInt("indexer.max_index_size"),
			Concurrency:    v.GetInt("indexer.concurrency"),
			CacheTTL:       v.GetDuration("indexer.cache_ttl"),
			ListingTimeout: v.GetDuration("indexer.listing_timeout"),
			Exclude:        v.GetStringSlice("indexer.exclude"),
		},
		Extractor: Extractor{
			MaxFileSize:     maxFileSize,
			CacheTTL:        v.GetDuration("extractor.cache_ttl"),
			CacheMaxBytes:   cacheMaxBytes,
			MaxContentChars: v.GetInt("extractor.max_content_chars"),
		},
		Search: Search{
			DefaultLimit:     v.GetInt("search.default_limit"),
			FallbackLimit:    v.GetInt("search.fallback_limit"),
			ResultCacheTTL:   v.GetDuration("search.result_cache_ttl"),
			ContentBatchSize: v.GetInt("search.content_batch_size"),
		},
		LogLevel: v.GetString(KeyLogLevel),
		LogFile:  v.GetString(KeyLogFile),
		HTTPAddr: v.GetString(KeyHTTPAddr),
	}, nil
}

// parseBytes accepts plain byte counts as well as sizes such as "10MB" or "64 MiB".
func parseBytes(v *viper.Viper, key string) (int64, error) {
	raw := strings.TrimSpace(v.GetString(key))
	size, err := humanize.ParseBytes(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid size %q: %w", key, raw, err)
	}
	return int64(size), nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendWebDAV:
		if c.WebDAV.URL == "" {
			return fmt.Errorf("webdav.url is required for the %s backend (set %s_WEBDAV_URL)", BackendWebDAV, EnvPrefix)
		}
	case BackendLocal:
		if c.Local.Root == "" {
			return errors.New("local.root is required for the local backend")
		}
	default:
		return fmt.Errorf("unknown store.backend %q (expected %s or %s)", c.Backend, BackendWebDAV, BackendLocal)
	}

	positive := []struct {
		key   string
		value int64
	}{
		{"webdav.burst", int64(c.WebDAV.Burst)},
		{"indexer.max_depth", int64(c.Indexer.MaxDepth)},
		{"indexer.max_index_size", int64(c.Indexer.MaxIndexSize)},
		{"indexer.concurrency", int64(c.Indexer.Concurrency)},
		{"indexer.cache_ttl", int64(c.Indexer.CacheTTL)},
		{"indexer.listing_timeout", int64(c.Indexer.ListingTimeout)},
		{"extractor.max_file_size", c.Extractor.MaxFileSize},
		{"extractor.cache_ttl", int64(c.Extractor.CacheTTL)},
		{"extractor.cache_max_bytes", c.Extractor.CacheMaxBytes},
		{"extractor.max_content_chars", int64(c.Extractor.MaxContentChars)},
		{"search.default_limit", int64(c.Search.DefaultLimit)},
		{"search.fallback_limit", int64(c.Search.FallbackLimit)},
		{"search.result_cache_ttl", int64(c.Search.ResultCacheTTL)},
		{"search.content_batch_size", int64(c.Search.ContentBatchSize)},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%s must be positive", p.key)
		}
	}
	if c.WebDAV.RequestsPerSecond <= 0 {
		return errors.New("webdav.requests_per_second must be positive")
	}
	return nil
}
