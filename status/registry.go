package status

import "sync/atomic"

// Metric keys published by the frame pipeline and the game
const (
	FrameAcquired    = "frame.acquired"
	FrameSubmitted   = "frame.submitted"
	FrameCompleted   = "frame.completed"
	FrameGateWait    = "frame.gate_wait_seconds"
	FrameInFlight    = "frame.in_flight"
	BumpHighWater    = "bump.high_water"
	GameScore        = "game.score"
	GameLevel        = "game.level"
	GameHighScore    = "game.high_score"
	GameStatus       = "game.status"
	AudioEnabled     = "audio.enabled"
	PresenterBackend = "presenter.backend"
)

// Registry is the central metrics facade
// Components cache pointers at construction; hot paths write directly to atomics
type Registry struct {
	Bools   *MetricMap[atomic.Bool]
	Ints    *MetricMap[atomic.Int64]
	Floats  *MetricMap[AtomicFloat]
	Strings *MetricMap[AtomicString]
}

// NewRegistry creates an initialized Registry
func NewRegistry() *Registry {
	return &Registry{
		Bools:   NewMetricMap[atomic.Bool](),
		Ints:    NewMetricMap[atomic.Int64](),
		Floats:  NewMetricMap[AtomicFloat](),
		Strings: NewMetricMap[AtomicString](),
	}
}

// TotalCount returns total metrics across all types
func (r *Registry) TotalCount() int {
	return r.Bools.Count() + r.Ints.Count() + r.Floats.Count() + r.Strings.Count()
}

// Numeric returns every bool, int and float metric as float64, keyed by name
func (r *Registry) Numeric() map[string]float64 {
	out := make(map[string]float64, r.Bools.Count()+r.Ints.Count()+r.Floats.Count())
	r.Bools.Range(func(k string, v *atomic.Bool) {
		if v.Load() {
			out[k] = 1
		} else {
			out[k] = 0
		}
	})
	r.Ints.Range(func(k string, v *atomic.Int64) { out[k] = float64(v.Load()) })
	r.Floats.Range(func(k string, v *AtomicFloat) { out[k] = v.Get() })
	return out
}

// StoreMax raises an int metric to v if v is larger
func StoreMax(m *atomic.Int64, v int64) {
	for {
		cur := m.Load()
		if v <= cur || m.CompareAndSwap(cur, v) {
			return
		}
	}
}
