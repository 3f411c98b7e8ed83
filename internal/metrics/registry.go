package metrics

import (
	"io"
	"sync/atomic"
	"time"
)

// Registry holds the sample set of the last successful refresh. Publish
// swaps the whole set at once, so readers see either the previous set or
// the new one, never a mix.
type Registry struct {
	current atomic.Pointer[snapshot]
}

type snapshot struct {
	samples   []Sample
	updatedAt time.Time
}

// NewRegistry returns a registry holding an empty sample set.
func NewRegistry() *Registry {
	r := &Registry{}
	r.current.Store(&snapshot{})

	return r
}

// Publish replaces the current sample set with a copy of samples.
func (r *Registry) Publish(samples []Sample) {
	owned := make([]Sample, len(samples))
	for i, s := range samples {
		owned[i] = s.clone()
	}

	r.current.Store(&snapshot{samples: owned, updatedAt: time.Now()})
}

// CurrentSamples returns the last published set. The returned slice is
// shared between readers and must not be modified.
func (r *Registry) CurrentSamples() []Sample {
	return r.current.Load().samples
}

// UpdatedAt returns when the current set was published, or the zero time
// if nothing has been published yet.
func (r *Registry) UpdatedAt() time.Time {
	return r.current.Load().updatedAt
}

// WriteTo renders the current set in the Prometheus text format.
func (r *Registry) WriteTo(w io.Writer) (int64, error) {
	return WriteText(w, r.CurrentSamples())
}
