package config

import "time"

// Source selects which grid API the exporter polls.
type Source string

const (
	SourceStatus  Source = "status"
	SourceGraphQL Source = "graphql"
)

// IsValid returns whether the source is supported
func (s Source) IsValid() bool {
	switch s {
	case SourceStatus, SourceGraphQL:
		return true
	default:
		return false
	}
}

// LogLevel represents valid logging levels
type LogLevel string

const (
	LogLevelDebug    LogLevel = "debug"
	LogLevelInfo     LogLevel = "info"
	LogLevelWarning  LogLevel = "warning"
	LogLevelError    LogLevel = "error"
	LogLevelCritical LogLevel = "critical"
)

// IsValid returns whether the log level is valid
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError, LogLevelCritical:
		return true
	default:
		return false
	}
}

// String implements the Stringer interface
func (l LogLevel) String() string {
	return string(l)
}

// PublishEvery returns the refresh interval as a duration.
func (c *Config) PublishEvery() time.Duration {
	return time.Duration(c.PublishInterval) * time.Second
}

// StartupWait returns how long to wait before the first refresh.
func (c *Config) StartupWait() time.Duration {
	return time.Duration(c.Wait) * time.Second
}

// FetchTimeoutDuration returns the per-request timeout for grid calls.
func (c *Config) FetchTimeoutDuration() time.Duration {
	return time.Duration(c.FetchTimeout) * time.Second
}
