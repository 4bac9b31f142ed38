package status

import (
	"math"
	"sync/atomic"
	"unicode/utf8"
)

// MaxStringLen bounds string metrics in bytes
const MaxStringLen = 32

// AtomicFloat is a float64 stored as its IEEE bits; the zero value reads 0
type AtomicFloat struct {
	bits atomic.Uint64
}

func (f *AtomicFloat) Set(v float64) { f.bits.Store(math.Float64bits(v)) }

func (f *AtomicFloat) Get() float64 { return math.Float64frombits(f.bits.Load()) }

// Add applies delta with a CAS loop and returns the sum
func (f *AtomicFloat) Add(delta float64) float64 {
	for {
		old := f.bits.Load()
		sum := math.Float64frombits(old) + delta
		if f.bits.CompareAndSwap(old, math.Float64bits(sum)) {
			return sum
		}
	}
}

// AtomicString holds a short label such as a game status; the zero value reads ""
type AtomicString struct {
	ptr atomic.Pointer[string]
}

// Store truncates v to MaxStringLen bytes without splitting a rune
func (s *AtomicString) Store(v string) {
	if len(v) > MaxStringLen {
		cut := MaxStringLen
		for cut > 0 && !utf8.RuneStart(v[cut]) {
			cut--
		}
		v = v[:cut]
	}
	s.ptr.Store(&v)
}

func (s *AtomicString) Load() string {
	if p := s.ptr.Load(); p != nil {
		return *p
	}
	return ""
}
