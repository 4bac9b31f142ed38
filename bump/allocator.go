package bump

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/lixenwraith/gridshooter/gpu"
)

// Alignment is the granularity of every allocation
const Alignment = 8

var (
	// ErrCapacityExceeded is returned when an allocation does not fit the remaining space
	ErrCapacityExceeded = errors.New("bump: capacity exceeded")

	// ErrPrivateStorage is returned when the backing storage would not be CPU-visible
	ErrPrivateStorage = errors.New("bump: backing buffer must be CPU-visible")
)

// Allocator hands out per-frame scratch memory from one shared GPU buffer
// Not safe for concurrent use; each frame slot owns one
type Allocator struct {
	buffer    *gpu.Buffer
	contents  []byte
	capacity  uint64
	offset    uint64
	highWater uint64
}

// AlignUp rounds n up to a multiple of alignment, which must be a power of two
func AlignUp(n, alignment uint64) uint64 {
	return (n + alignment - 1) &^ (alignment - 1)
}

// New creates an allocator over a fresh buffer of capacity bytes
func New(device *gpu.Device, capacity int, opts gpu.ResourceOptions) (*Allocator, error) {
	if opts.Storage == gpu.StorageModePrivate {
		return nil, ErrPrivateStorage
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("bump: invalid capacity %d", capacity)
	}
	buf, err := device.NewBuffer(capacity, opts)
	if err != nil {
		return nil, fmt.Errorf("bump: create base buffer: %w", err)
	}
	buf.SetLabel("bumpAllocatorBase")
	return &Allocator{
		buffer:   buf,
		contents: buf.Contents(),
		capacity: uint64(capacity),
	}, nil
}

// AllocateBytes reserves size bytes rounded up to Alignment and returns their offset
// On failure the offset is unchanged
func (a *Allocator) AllocateBytes(size uint64) ([]byte, uint64, error) {
	// Checked before aligning so sizes near MaxUint64 cannot wrap
	if size > a.capacity-a.offset {
		return nil, a.offset, fmt.Errorf("%w: need %d bytes at offset %d, capacity %d",
			ErrCapacityExceeded, size, a.offset, a.capacity)
	}
	aligned := AlignUp(size, Alignment)
	if aligned > a.capacity-a.offset {
		return nil, a.offset, fmt.Errorf("%w: need %d bytes at offset %d, capacity %d",
			ErrCapacityExceeded, aligned, a.offset, a.capacity)
	}
	start := a.offset
	a.offset += aligned
	if a.offset > a.highWater {
		a.highWater = a.offset
	}
	return a.contents[start : start+size : start+aligned], start, nil
}

// Allocate reserves room for count values of T and returns a typed view plus its byte offset
// Memory is not zeroed
func Allocate[T any](a *Allocator, count int) ([]T, uint64, error) {
	if count < 0 {
		return nil, a.offset, fmt.Errorf("bump: negative count %d", count)
	}
	var zero T
	elem := uint64(unsafe.Sizeof(zero))
	if elem > 0 && uint64(count) > a.capacity/elem {
		return nil, a.offset, fmt.Errorf("%w: %d values of %d bytes at offset %d, capacity %d",
			ErrCapacityExceeded, count, elem, a.offset, a.capacity)
	}
	size := elem * uint64(count)
	mem, offset, err := a.AllocateBytes(size)
	if err != nil {
		return nil, offset, err
	}
	if count == 0 || size == 0 {
		return make([]T, count), offset, nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&mem[0])), count), offset, nil
}

// MustAllocate is Allocate for statically sized frames; exhaustion is a sizing bug and panics
func MustAllocate[T any](a *Allocator, count int) ([]T, uint64) {
	v, offset, err := Allocate[T](a, count)
	if err != nil {
		panic(err)
	}
	return v, offset
}

// Reset makes the whole capacity available again
// Previously returned slices alias the memory handed out next
func (a *Allocator) Reset() { a.offset = 0 }

func (a *Allocator) Offset() uint64 { return a.offset }

func (a *Allocator) Capacity() uint64 { return a.capacity }

// HighWater returns the largest offset reached since creation
func (a *Allocator) HighWater() uint64 { return a.highWater }

// BaseBuffer is the buffer GPU commands bind with the offsets returned by Allocate
func (a *Allocator) BaseBuffer() *gpu.Buffer { return a.buffer }

// Release frees the base buffer
func (a *Allocator) Release() {
	if a.buffer != nil {
		a.buffer.Release()
		a.contents = nil
	}
}
