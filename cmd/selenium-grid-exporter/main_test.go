package main

import (
	"testing"

	"github.com/gmichels/selenium-grid-exporter/internal/config"
	"github.com/gmichels/selenium-grid-exporter/internal/errors"
	"github.com/gmichels/selenium-grid-exporter/internal/grid"
	"github.com/gmichels/selenium-grid-exporter/internal/metrics"
	"github.com/gmichels/selenium-grid-exporter/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSource(t *testing.T) {
	cfg := &config.Config{GridURL: "http://hub:4444", FetchTimeout: 5, Source: "status"}

	source, err := newSource(cfg)
	require.NoError(t, err)
	assert.IsType(t, &grid.StatusSource{}, source)
	assert.Equal(t, "http://hub:4444"+grid.StatusPath, source.URL())

	cfg.Source = "graphql"
	source, err = newSource(cfg)
	require.NoError(t, err)
	assert.IsType(t, &grid.GraphQLSource{}, source)
	assert.Equal(t, "http://hub:4444"+grid.GraphQLPath, source.URL())

	cfg.Source = "soap"
	_, err = newSource(cfg)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidSource))
}

func TestNewScheduler(t *testing.T) {
	cfg := &config.Config{GridURL: "http://hub:4444", PublishInterval: 30, Wait: 15, FetchTimeout: 5}
	source := grid.NewStatusSource(cfg.GridURL, cfg.FetchTimeoutDuration())
	registry := metrics.NewRegistry()

	sched, err := newScheduler(cfg, source, registry, metrics.NewExporterMetrics())
	require.NoError(t, err)
	assert.Equal(t, scheduler.Starting, sched.State())

	cfg.PublishInterval = 0
	_, err = newScheduler(cfg, source, registry, nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInitFailed))
	assert.True(t, errors.HasCode(err, errors.ErrInvalidInterval))
}
