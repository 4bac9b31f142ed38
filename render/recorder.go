package render

import (
	"sync"
	"sync/atomic"

	"github.com/lixenwraith/gridshooter/gpu"
)

// Recorder is a headless presenter that keeps the last Keep presented frames
type Recorder struct {
	Collector

	keep      int
	mu        sync.Mutex
	history   []*Frame
	presented atomic.Uint64
	onPresent func(*Frame)
}

var _ gpu.Drawable = (*Recorder)(nil)

// NewRecorder keeps at most keep frames, at least one
func NewRecorder(keep int) *Recorder {
	return &Recorder{keep: max(keep, 1)}
}

// OnPresent registers a callback run on the queue goroutine for each presented frame
func (r *Recorder) OnPresent(fn func(*Frame)) {
	r.mu.Lock()
	r.onPresent = fn
	r.mu.Unlock()
}

// Present records the latest completed frame
func (r *Recorder) Present() {
	r.presented.Add(1)
	f, ok := r.Latest()
	if !ok {
		return
	}
	r.mu.Lock()
	r.history = append(r.history, f)
	if over := len(r.history) - r.keep; over > 0 {
		r.history = append(r.history[:0], r.history[over:]...)
	}
	fn := r.onPresent
	r.mu.Unlock()
	if fn != nil {
		fn(f)
	}
}

// Presented is the number of Present calls
func (r *Recorder) Presented() uint64 {
	return r.presented.Load()
}

// Frames returns the retained frames, oldest first
func (r *Recorder) Frames() []*Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Frame(nil), r.history...)
}
