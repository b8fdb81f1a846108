// Package config loads codemetrics settings from defaults, a YAML file, a
// dotenv file, CODEMETRICS_* environment variables and explicit overrides,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"slices"
	"strings"

	"github.com/TFMV/codemetrics/parser"
	"github.com/TFMV/codemetrics/scan"
	"github.com/TFMV/codemetrics/types"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidFormat    = errors.New("invalid output format")
	ErrInvalidMeasure   = errors.New("invalid line measure")
	ErrInvalidBackend   = errors.New("invalid store backend")
	ErrInvalidJobs      = errors.New("jobs must be positive")
	ErrInvalidTop       = errors.New("top must be positive")
	ErrInvalidCacheSize = errors.New("cache size must not be negative")
	ErrInvalidLevel     = errors.New("invalid log level")
	ErrInvalidLogFormat = errors.New("invalid log format")
	ErrUnknownLanguage  = errors.New("unknown language")
	ErrMissingStore     = errors.New("store backend is missing its location")
)

const (
	envPrefix        = "CODEMETRICS"
	defaultFile      = ".codemetrics"
	defaultEnvFile   = ".env"
	defaultTop       = 5
	defaultCacheSize = 10000
)

// Output formats.
const (
	FormatText  = "text"
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Store backends.
const (
	BackendNone    = "none"
	BackendSurreal = "surreal"
	BackendBadger  = "badger"
)

// Config holds all codemetrics settings.
type Config struct {
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Output   OutputConfig   `mapstructure:"output"`
	Store    StoreConfig    `mapstructure:"store"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// AnalysisConfig controls which files are measured and how.
type AnalysisConfig struct {
	Languages  []string `mapstructure:"languages"`
	Measure    string   `mapstructure:"measure"`
	Top        int      `mapstructure:"top"`
	Jobs       int      `mapstructure:"jobs"`
	KeepGoing  bool     `mapstructure:"keep_going"`
	Exclude    []string `mapstructure:"exclude"`
	SkipVendor bool     `mapstructure:"skip_vendor"`
	CacheSize  int      `mapstructure:"cache_size"`
}

// OutputConfig controls how reports are rendered.
type OutputConfig struct {
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// StoreConfig selects where runs are persisted.
type StoreConfig struct {
	Backend string        `mapstructure:"backend"`
	Surreal SurrealConfig `mapstructure:"surreal"`
	Badger  BadgerConfig  `mapstructure:"badger"`
}

// SurrealConfig holds the SurrealDB connection settings.
type SurrealConfig struct {
	URL       string `mapstructure:"url"`
	Namespace string `mapstructure:"namespace"`
	Database  string `mapstructure:"database"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
}

// BadgerConfig points at the embedded store directory. An empty path keeps
// the store in memory.
type BadgerConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig sets the log level and handler format.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Options locate the sources Load reads.
type Options struct {
	// File is an explicit config file. When empty, .codemetrics.yaml is
	// looked up in Dir.
	File string
	// Dir is searched for the default config and dotenv files; empty means
	// the working directory.
	Dir string
	// EnvFile is the dotenv file; empty means .env in Dir. A missing file is
	// not an error.
	EnvFile string
	// Overrides are applied last, keyed by dotted setting name.
	Overrides map[string]any
}

// Load reads and validates the configuration.
func Load(opts Options) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	dir := opts.Dir
	if dir == "" {
		dir = "."
	}

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName(defaultFile)
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = dir + string(os.PathSeparator) + defaultEnvFile
	}
	if err := applyDotenv(v, envFile); err != nil {
		return nil, err
	}

	for key, val := range opts.Overrides {
		v.Set(key, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDotenv sets the CODEMETRICS_* values of a dotenv file on v. Variables
// already present in the process environment win.
func applyDotenv(v *viper.Viper, path string) error {
	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read env file: %w", err)
	}

	for _, key := range v.AllKeys() {
		name := envName(key)
		val, ok := vars[name]
		if !ok {
			continue
		}
		if _, set := os.LookupEnv(name); set {
			continue
		}
		v.Set(key, val)
	}
	return nil
}

func envName(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func setDefaults(v *viper.Viper) {
	// Analysis defaults.
	v.SetDefault("analysis.languages", parser.Languages())
	v.SetDefault("analysis.measure", string(types.MeasurePhysical))
	v.SetDefault("analysis.top", defaultTop)
	v.SetDefault("analysis.jobs", runtime.NumCPU())
	v.SetDefault("analysis.keep_going", false)
	v.SetDefault("analysis.exclude", []string{})
	v.SetDefault("analysis.skip_vendor", true)
	v.SetDefault("analysis.cache_size", defaultCacheSize)

	// Output defaults.
	v.SetDefault("output.format", FormatText)
	v.SetDefault("output.color", true)

	// Store defaults.
	v.SetDefault("store.backend", BackendNone)
	v.SetDefault("store.surreal.url", "ws://localhost:8000/rpc")
	v.SetDefault("store.surreal.namespace", "codemetrics")
	v.SetDefault("store.surreal.database", "codemetrics")
	v.SetDefault("store.surreal.username", "")
	v.SetDefault("store.surreal.password", "")
	v.SetDefault("store.badger.path", "")

	// Logging defaults.
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "text")
}

// Validate checks every setting and reports the first invalid one.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Output.Format) {
	case FormatText, FormatTable, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Output.Format)
	}

	if _, err := types.ParseLineMeasure(c.Analysis.Measure); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidMeasure, c.Analysis.Measure)
	}

	if c.Analysis.Jobs <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidJobs, c.Analysis.Jobs)
	}

	if c.Analysis.Top <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTop, c.Analysis.Top)
	}

	if c.Analysis.CacheSize < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCacheSize, c.Analysis.CacheSize)
	}

	known := parser.Languages()
	for _, lang := range c.Analysis.Languages {
		if !slices.Contains(known, strings.ToLower(lang)) {
			return fmt.Errorf("%w: %q", ErrUnknownLanguage, lang)
		}
	}

	switch strings.ToLower(c.Store.Backend) {
	case BackendNone, BackendBadger:
	case BackendSurreal:
		if c.Store.Surreal.URL == "" {
			return fmt.Errorf("%w: %s", ErrMissingStore, BackendSurreal)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBackend, c.Store.Backend)
	}

	if _, err := parseLevel(c.Logging.Level); err != nil {
		return err
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}

	return nil
}

// LineMeasure returns the validated LOC measure.
func (c *Config) LineMeasure() types.LineMeasure {
	m, err := types.ParseLineMeasure(c.Analysis.Measure)
	if err != nil {
		return types.MeasurePhysical
	}
	return m
}

// ScanOptions returns the file discovery filters.
func (c *Config) ScanOptions() scan.Options {
	return scan.Options{
		Exclude:    c.Analysis.Exclude,
		SkipVendor: c.Analysis.SkipVendor,
	}
}
