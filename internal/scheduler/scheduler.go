package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gmichels/selenium-grid-exporter/internal/errors"
	"github.com/gmichels/selenium-grid-exporter/internal/grid"
	"github.com/gmichels/selenium-grid-exporter/internal/logger"
	"github.com/gmichels/selenium-grid-exporter/internal/metrics"
	"github.com/google/uuid"
)

// State is the scheduler's position in its lifecycle.
type State int32

const (
	Starting State = iota
	Idle
	Refreshing
	Stopped
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Idle:
		return "idle"
	case Refreshing:
		return "refreshing"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Publisher receives the samples of each successful cycle and reports
// when the current set was published.
type Publisher interface {
	Publish(samples []metrics.Sample)
	UpdatedAt() time.Time
}

// Observer is told about every cycle's outcome.
type Observer interface {
	ObserveRefresh(outcome string, elapsed time.Duration)
	ObservePublish(n int, at time.Time)
}

// Options tunes a Scheduler. Observer and Logger default to a no-op
// observer and the package logger.
type Options struct {
	Interval       time.Duration
	StartupWait    time.Duration
	GroupByBrowser bool
	Observer       Observer
	Logger         logger.Logger
}

// Scheduler runs fetch, parse, aggregate and publish on a fixed interval.
// Cycles never overlap; ticks that elapse during a cycle are dropped.
type Scheduler struct {
	source    grid.Source
	publisher Publisher
	opts      Options
	log       logger.Logger
	state     atomic.Int32
}

// New returns a Scheduler in the Starting state. It fails with
// ErrMissingSource when source or publisher is nil and with
// ErrInvalidInterval when opts.Interval is not positive. A negative
// StartupWait is treated as zero.
func New(source grid.Source, publisher Publisher, opts Options) (*Scheduler, error) {
	errFactory := errors.New()

	if source == nil || publisher == nil {
		return nil, errFactory.New(ErrMissingSource)
	}
	if opts.Interval <= 0 {
		return nil, errFactory.WithData(ErrInvalidInterval, opts.Interval)
	}
	if opts.StartupWait < 0 {
		opts.StartupWait = 0
	}
	if opts.Observer == nil {
		opts.Observer = noopObserver{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.Default()
	}

	s := &Scheduler{
		source:    source,
		publisher: publisher,
		opts:      opts,
		log:       opts.Logger,
	}
	s.setState(Starting)

	return s, nil
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

func (s *Scheduler) setState(state State) {
	s.state.Store(int32(state))
}

// Run waits the startup delay, then refreshes immediately and on every
// interval until ctx is cancelled. A failed cycle never stops the loop.
func (s *Scheduler) Run(ctx context.Context) {
	defer s.setState(Stopped)

	s.setState(Starting)
	s.log.Info().Msgf("Waiting %d seconds for grid to initialize...", int(s.opts.StartupWait.Seconds()))
	if !sleep(ctx, s.opts.StartupWait) {
		s.log.Info().Msg("Stopped before polling started")
		return
	}
	s.setState(Idle)

	s.log.Info().
		Str("grid_url", s.source.URL()).
		Dur("interval", s.opts.Interval).
		Bool("group_by_browser", s.opts.GroupByBrowser).
		Msg("Polling grid")

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return
		}

		_ = s.RunOnce(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce performs a single refresh cycle. On any failure the publisher is
// left untouched and the error is returned after being logged.
func (s *Scheduler) RunOnce(ctx context.Context) (err error) {
	errFactory := errors.New()
	cycleID := uuid.NewString()
	start := time.Now()

	s.setState(Refreshing)
	defer s.setState(Idle)

	defer func() {
		if r := recover(); r != nil {
			err = errFactory.WithData(ErrCyclePanicked, r)
			s.opts.Observer.ObserveRefresh(metrics.OutcomePanic, time.Since(start))
			s.log.Error().Str("cycle_id", cycleID).Interface("panic", r).Msg("Refresh cycle panicked")
		}
	}()

	raw, err := s.source.Fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return s.abandon(ctx, cycleID, start)
		}
		s.opts.Observer.ObserveRefresh(metrics.OutcomeFetchError, time.Since(start))
		event := s.log.Warn().
			Str("cycle_id", cycleID).
			Str("grid_url", s.source.URL()).
			Str("error_code", string(errors.CodeOf(err))).
			Err(err)
		if failure, ok := grid.FailureOf(err); ok && failure.StatusCode != 0 {
			event = event.Int("status_code", failure.StatusCode)
		}
		event.Msg("Unable to retrieve metrics from the grid")
		return err
	}

	topology, err := s.source.Parse(raw)
	if err != nil {
		s.opts.Observer.ObserveRefresh(metrics.OutcomeParseError, time.Since(start))
		s.log.Warn().
			Str("cycle_id", cycleID).
			Str("grid_url", s.source.URL()).
			Int("payload_bytes", len(raw)).
			Str("error_code", string(errors.CodeOf(err))).
			Err(err).
			Msg("Unable to parse grid status")
		return err
	}

	if s.opts.GroupByBrowser {
		topology = grid.GroupByBrowser(topology)
	}
	samples := metrics.Aggregate(topology)

	if ctx.Err() != nil {
		return s.abandon(ctx, cycleID, start)
	}

	s.publisher.Publish(samples)
	publishedAt := s.publisher.UpdatedAt()
	elapsed := time.Since(start)
	s.opts.Observer.ObservePublish(len(samples), publishedAt)
	s.opts.Observer.ObserveRefresh(metrics.OutcomeSuccess, elapsed)

	s.log.Debug().
		Str("cycle_id", cycleID).
		Int("nodes", topology.NodeCount).
		Int("slots", topology.TotalSlots).
		Int("sessions", topology.SessionCount).
		Int("queued", topology.SessionQueueSize).
		Int("samples", len(samples)).
		Dur("elapsed", elapsed).
		Msg("Published grid metrics")

	return nil
}

func (s *Scheduler) abandon(ctx context.Context, cycleID string, start time.Time) error {
	s.opts.Observer.ObserveRefresh(metrics.OutcomeAbandoned, time.Since(start))
	s.log.Debug().Str("cycle_id", cycleID).Msg("Refresh cycle abandoned on shutdown")

	return errors.New().Wrap(ErrCycleAbandoned, ctx.Err())
}

// sleep waits for d or until ctx is done, reporting whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

type noopObserver struct{}

func (noopObserver) ObserveRefresh(string, time.Duration) {}
func (noopObserver) ObservePublish(int, time.Time)        {}
