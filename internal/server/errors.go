package server

import "github.com/gmichels/selenium-grid-exporter/internal/errors"

const (
	ErrListen   = errors.ErrServerListen
	ErrShutdown = errors.ErrShutdownFailed
)
