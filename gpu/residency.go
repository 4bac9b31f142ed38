package gpu

import (
	"fmt"
	"sync"
)

// Allocation is anything a residency set can track
type Allocation interface {
	AllocatedSize() int
	Label() string
}

// ResidencySet groups allocations that must stay resident while queues reference them
type ResidencySet struct {
	mu        sync.Mutex
	label     string
	pending   []Allocation
	committed []Allocation
	requested bool
}

// NewResidencySet fails when the device does not support residency sets
func (d *Device) NewResidencySet(label string) (*ResidencySet, error) {
	if !SupportsResidencySets(d) {
		return nil, fmt.Errorf("gpu: device %q does not support residency sets", d.name)
	}
	return &ResidencySet{label: label}, nil
}

func (r *ResidencySet) Label() string { return r.label }

// AddAllocation stages an allocation; it takes effect on Commit
func (r *ResidencySet) AddAllocation(a Allocation) {
	if a == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, a)
}

// Commit makes staged allocations part of the set
func (r *ResidencySet) Commit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, r.pending...)
	r.pending = nil
}

// RequestResidency asks the driver to make the set resident ahead of use
func (r *ResidencySet) RequestResidency() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requested = true
}

// AllocationCount returns the number of committed allocations
func (r *ResidencySet) AllocationCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

// AllocatedSize returns the committed footprint in bytes
func (r *ResidencySet) AllocatedSize() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, a := range r.committed {
		total += a.AllocatedSize()
	}
	return total
}

// Contains reports whether a is committed
func (r *ResidencySet) Contains(a Allocation) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.committed {
		if c == a {
			return true
		}
	}
	return false
}
