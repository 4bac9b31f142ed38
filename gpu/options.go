package gpu

// StorageMode selects where a resource's memory lives
type StorageMode uint8

const (
	// StorageModeShared is CPU-writable and GPU-visible
	StorageModeShared StorageMode = iota
	// StorageModePrivate is GPU-only; Contents() is nil
	StorageModePrivate
)

func (m StorageMode) String() string {
	switch m {
	case StorageModeShared:
		return "shared"
	case StorageModePrivate:
		return "private"
	}
	return "unknown"
}

// HazardTrackingMode controls whether the driver orders access to heap resources
// Untracked heaps rely on the caller's own synchronization (the frame ring)
type HazardTrackingMode uint8

const (
	HazardTrackingDefault HazardTrackingMode = iota
	HazardTrackingUntracked
	HazardTrackingTracked
)

// ResourceOptions groups the creation options of a buffer or heap
type ResourceOptions struct {
	Storage        StorageMode
	HazardTracking HazardTrackingMode
}

// Shared is the option set used for every per-frame resource
var Shared = ResourceOptions{Storage: StorageModeShared}

// HeapDescriptor configures a heap
type HeapDescriptor struct {
	Size    int
	Options ResourceOptions
	Label   string
}
