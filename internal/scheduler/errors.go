package scheduler

import "github.com/gmichels/selenium-grid-exporter/internal/errors"

const (
	ErrInvalidInterval = errors.ErrInvalidInterval
	ErrMissingSource   = errors.ErrorCode("scheduler_missing_source")
	ErrCycleAbandoned  = errors.ErrorCode("refresh_abandoned")
	ErrCyclePanicked   = errors.ErrorCode("refresh_panicked")
)
