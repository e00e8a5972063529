package config

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vango-dev/xbow/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "xbow.json"

	// DefaultAddr is the default listen address.
	DefaultAddr = ":8080"

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default log format.
	DefaultLogFormat = "text"

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "xbow"
)

// Environment variables that override the file.
const (
	EnvAddr      = "XBOW_ADDR"
	EnvLogLevel  = "XBOW_LOG_LEVEL"
	EnvLogFormat = "XBOW_LOG_FORMAT"
)

// Config represents the complete xbow.json configuration.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `json:"addr,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `json:"log"`

	// Store contains store configuration.
	Store StoreConfig `json:"store"`

	// Dispatch contains action loop configuration.
	Dispatch DispatchConfig `json:"dispatch"`

	// Watch contains websocket feed configuration.
	Watch WatchConfig `json:"watch"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// StoreConfig contains store settings.
type StoreConfig struct {
	// Name is the label of the root path segment.
	Name string `json:"name,omitempty"`

	// Seed lists todos created at startup, first item on top.
	Seed []string `json:"seed,omitempty"`
}

// DispatchConfig contains action loop settings.
type DispatchConfig struct {
	// QueueSize is how many actions may wait for the loop.
	QueueSize int `json:"queueSize,omitempty"`
}

// WatchConfig contains websocket feed settings.
type WatchConfig struct {
	// StreamBuffer is the number of invalidations buffered per connection.
	StreamBuffer int `json:"streamBuffer,omitempty"`

	// PingInterval is the keepalive period (e.g., "30s").
	PingInterval string `json:"pingInterval,omitempty"`

	// WriteTimeout bounds each websocket write (e.g., "10s").
	WriteTimeout string `json:"writeTimeout,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled serves /metrics and installs the store monitor.
	Enabled bool `json:"enabled"`

	// Namespace prefixes every metric name.
	Namespace string `json:"namespace,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Addr: DefaultAddr,
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Store: StoreConfig{
			Name: "$",
		},
		Dispatch: DispatchConfig{
			QueueSize: 64,
		},
		Watch: WatchConfig{
			StreamBuffer: 64,
			PingInterval: "30s",
			WriteTimeout: "10s",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
		},
	}
}

// Load reads xbow.json from the specified directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeConfigNotFound).
				WithDetail("No configuration file at " + path).
				WithSuggestion("Run 'xbow init' to write one with the defaults")
		}
		return nil, errors.New(errors.CodeConfigSyntax).Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		e := errors.New(errors.CodeConfigSyntax).Wrap(err)
		if offset, ok := errorOffset(err); ok {
			line, col := position(data, offset)
			e.WithSource(path, data, line, col)
		}
		return nil, e.WithSuggestion("Check that " + filepath.Base(path) + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Resolve loads the configuration for a command. An explicit path must
// exist. Without one, the nearest xbow.json in the working directory or
// its parents is used, or the defaults when there is none. Environment
// overrides are applied and the result is validated.
func Resolve(path string) (*Config, error) {
	var cfg *Config
	var err error
	switch {
	case path != "":
		cfg, err = LoadFile(path)
	default:
		cfg, err = LoadFromWorkingDir()
		var e *errors.Error
		if stderrors.As(err, &e) && e.Code == errors.CodeConfigNotFound {
			cfg, err = New(), nil
		}
	}
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// errorOffset returns the byte offset reported by a JSON decoding error.
func errorOffset(err error) (int64, bool) {
	var syntax *json.SyntaxError
	if stderrors.As(err, &syntax) {
		return syntax.Offset, true
	}
	var typ *json.UnmarshalTypeError
	if stderrors.As(err, &typ) {
		return typ.Offset, true
	}
	return 0, false
}

// position converts a byte offset to a 1-based line and column.
func position(data []byte, offset int64) (line, col int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	line, col = 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New(errors.CodeConfigSyntax).Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Newf(errors.CategoryConfig, "write %s", path).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	d := New()
	if c.Addr == "" {
		c.Addr = d.Addr
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Store.Name == "" {
		c.Store.Name = d.Store.Name
	}
	if c.Dispatch.QueueSize == 0 {
		c.Dispatch.QueueSize = d.Dispatch.QueueSize
	}
	if c.Watch.StreamBuffer == 0 {
		c.Watch.StreamBuffer = d.Watch.StreamBuffer
	}
	if c.Watch.PingInterval == "" {
		c.Watch.PingInterval = d.Watch.PingInterval
	}
	if c.Watch.WriteTimeout == "" {
		c.Watch.WriteTimeout = d.Watch.WriteTimeout
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = d.Metrics.Namespace
	}
}

// ApplyEnv overrides fields from environment variables read with getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvAddr); v != "" {
		c.Addr = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := getenv(EnvLogFormat); v != "" {
		c.Log.Format = strings.ToLower(v)
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, port, err := net.SplitHostPort(c.Addr); err != nil {
		return errors.New(errors.CodeConfigAddr).Wrap(err)
	} else if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
		return errors.New(errors.CodeConfigAddr).
			WithDetail("Port must be between 0 and 65535, got " + strconv.Quote(port))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return errors.New(errors.CodeConfigLevel).Wrap(err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New(errors.CodeConfigFormat).
			WithSuggestion(`Use "text" or "json", got ` + strconv.Quote(c.Log.Format))
	}
	if c.Dispatch.QueueSize < 0 {
		return errors.Newf(errors.CategoryConfig, "dispatch.queueSize must not be negative")
	}
	if c.Watch.StreamBuffer < 1 {
		return errors.Newf(errors.CategoryConfig, "watch.streamBuffer must be at least 1")
	}
	for name, v := range map[string]string{
		"watch.pingInterval": c.Watch.PingInterval,
		"watch.writeTimeout": c.Watch.WriteTimeout,
	} {
		if d, err := time.ParseDuration(v); err != nil || d <= 0 {
			return errors.Newf(errors.CategoryConfig, "%s must be a positive duration, got %q", name, v)
		}
	}
	return nil
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	l, _ := parseLevel(c.Log.Level)
	return l
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(s))
	return l, err
}

// PingInterval returns Watch.PingInterval as a duration.
func (c *Config) PingInterval() time.Duration {
	d, _ := time.ParseDuration(c.Watch.PingInterval)
	return d
}

// WriteTimeout returns Watch.WriteTimeout as a duration.
func (c *Config) WriteTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Watch.WriteTimeout)
	return d
}

// NewLogger builds the slog logger described by Log.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the directory containing
// xbow.json.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New(errors.CodeConfigNotFound).
				WithDetail("No xbow.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory
// or the nearest parent holding xbow.json.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
