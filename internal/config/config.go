package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/gmichels/selenium-grid-exporter/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix      = "SELENIUM_EXPORTER"
	configFileName = "selenium-grid-exporter"
	configFileType = "toml"
	configEnvVar   = EnvPrefix + "_CONFIG"

	DefaultGridURL         = "http://localhost:4444"
	DefaultMetricsPort     = 8000
	DefaultMetricsPath     = "/metrics"
	DefaultPublishInterval = 30
	DefaultWait            = 15
	DefaultFetchTimeout    = 10
	DefaultLogLevel        = string(LogLevelInfo)
	DefaultSource          = string(SourceStatus)

	maxPort = 65535

	// Served by the HTTP server alongside the grid metrics.
	healthPath          = "/healthz"
	exporterMetricsPath = "/exporter/metrics"
)

type Config struct {
	GridURL         string `mapstructure:"grid_url"`
	MetricsPort     int    `mapstructure:"metrics_port"`
	ListenAddress   string `mapstructure:"listen_address"`
	MetricsPath     string `mapstructure:"metrics_path"`
	PublishInterval int    `mapstructure:"publish_interval"`
	Wait            int    `mapstructure:"wait"`
	FetchTimeout    int    `mapstructure:"fetch_timeout"`
	Source          string `mapstructure:"source"`
	GroupByBrowser  bool   `mapstructure:"group_by_browser"`
	LogLevel        string `mapstructure:"log_level"`
	LogFile         string `mapstructure:"log_file"`
	PIDFile         string `mapstructure:"pid_file"`
}

// flagKeys maps command line flags to their configuration keys.
var flagKeys = map[string]string{
	"grid-url":         "grid_url",
	"metrics-port":     "metrics_port",
	"listen-address":   "listen_address",
	"metrics-path":     "metrics_path",
	"publish-interval": "publish_interval",
	"wait":             "wait",
	"fetch-timeout":    "fetch_timeout",
	"source":           "source",
	"group-by-browser": "group_by_browser",
	"log-level":        "log_level",
	"log-file":         "log_file",
	"pid-file":         "pid_file",
}

// RegisterFlags defines the exporter's command line flags on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP("config", "c", "", "Path to a TOML configuration file")
	fs.StringP("grid-url", "g", DefaultGridURL, "The grid URL with port")
	fs.IntP("metrics-port", "p", DefaultMetricsPort, "Port where the metrics will be published")
	fs.String("listen-address", "", "Address the metrics server binds to (empty for all interfaces)")
	fs.String("metrics-path", DefaultMetricsPath, "HTTP path serving the grid metrics")
	fs.IntP("publish-interval", "i", DefaultPublishInterval, "How frequent (in seconds) metrics are generated")
	fs.IntP("wait", "w", DefaultWait, "How long (in seconds) to wait for the grid to initialize before polling starts")
	fs.Int("fetch-timeout", DefaultFetchTimeout, "Timeout (in seconds) for a single grid request")
	fs.String("source", DefaultSource, "Grid API to poll: status or graphql")
	fs.Bool("group-by-browser", false, "Merge nodes offering the same browser into one series")
	fs.StringP("log-level", "l", DefaultLogLevel, "Set the logging level: debug, info, warning, error or critical")
	fs.String("log-file", "", "Write logs to this file with rotation instead of stdout")
	fs.String("pid-file", "", "Write the process ID to this file and refuse to start if it is held")
}

// Load builds the configuration from defaults, an optional TOML file,
// SELENIUM_EXPORTER_* environment variables and the given flags, in
// increasing order of precedence. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	errFactory := errors.New()
	v := viper.New()

	v.SetDefault("grid_url", DefaultGridURL)
	v.SetDefault("metrics_port", DefaultMetricsPort)
	v.SetDefault("listen_address", "")
	v.SetDefault("metrics_path", DefaultMetricsPath)
	v.SetDefault("publish_interval", DefaultPublishInterval)
	v.SetDefault("wait", DefaultWait)
	v.SetDefault("fetch_timeout", DefaultFetchTimeout)
	v.SetDefault("source", DefaultSource)
	v.SetDefault("group_by_browser", false)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_file", "")
	v.SetDefault("pid_file", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, errFactory.Wrap(errors.ErrBindFlags, err).WithData(name)
			}
		}
	}

	if err := readConfigFile(v, configPath(flags)); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	cfg.GridURL = strings.TrimRight(cfg.GridURL, "/")
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.Source = strings.ToLower(cfg.Source)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func configPath(flags *pflag.FlagSet) string {
	if flags != nil {
		if path, err := flags.GetString("config"); err == nil && path != "" {
			return path
		}
	}

	return os.Getenv(configEnvVar)
}

func readConfigFile(v *viper.Viper, path string) error {
	errFactory := errors.New()

	v.SetConfigType(configFileType)
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configFileName)
		v.AddConfigPath("/etc")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return errFactory.Wrap(errors.ErrReadConfig, err)
	}

	return nil
}

// Validate checks that every value is usable by the exporter.
func (c *Config) Validate() error {
	errFactory := errors.New()

	u, err := url.Parse(c.GridURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errFactory.WithData(errors.ErrInvalidGridURL, c.GridURL)
	}

	if c.MetricsPort < 1 || c.MetricsPort > maxPort {
		return errFactory.WithData(errors.ErrInvalidPort, c.MetricsPort)
	}

	if !strings.HasPrefix(c.MetricsPath, "/") {
		return errFactory.WithData(errors.ErrInvalidConfig, fmt.Sprintf("metrics_path %q must start with /", c.MetricsPath))
	}
	if c.MetricsPath == healthPath || c.MetricsPath == exporterMetricsPath {
		return errFactory.WithData(errors.ErrInvalidConfig, fmt.Sprintf("metrics_path %q is reserved", c.MetricsPath))
	}

	if c.PublishInterval < 1 {
		return errFactory.WithData(errors.ErrInvalidInterval, fmt.Sprintf("publish_interval=%d", c.PublishInterval))
	}

	if c.Wait < 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, fmt.Sprintf("wait=%d", c.Wait))
	}

	if c.FetchTimeout < 1 {
		return errFactory.WithData(errors.ErrInvalidInterval, fmt.Sprintf("fetch_timeout=%d", c.FetchTimeout))
	}

	if !Source(c.Source).IsValid() {
		return errFactory.WithData(errors.ErrInvalidSource, c.Source)
	}

	if !LogLevel(c.LogLevel).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	return nil
}

// Addr returns the host:port the metrics server listens on.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.ListenAddress, strconv.Itoa(c.MetricsPort))
}
