package gpu

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Heap co-locates several buffers in one allocation
// Placement is linear; memory is reclaimed only when the heap is released
type Heap struct {
	device   *Device
	mu       sync.Mutex
	mem      []byte
	size     int
	used     int
	options  ResourceOptions
	label    string
	released atomic.Bool
}

func (h *Heap) Size() int { return h.size }

// UsedSize returns bytes placed so far
func (h *Heap) UsedSize() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.used
}

func (h *Heap) Label() string { return h.label }

// AllocatedSize implements Allocation
func (h *Heap) AllocatedSize() int { return h.size }

// NewBuffer places a buffer in the heap; opts storage must match the heap
func (h *Heap) NewBuffer(length int, opts ResourceOptions) (*Buffer, error) {
	if h.released.Load() {
		return nil, ErrReleased
	}
	if opts.Storage != h.options.Storage {
		return nil, fmt.Errorf("gpu: heap %q storage %s does not match buffer storage %s",
			h.label, h.options.Storage, opts.Storage)
	}
	size, align := h.device.HeapBufferSizeAndAlign(length)

	h.mu.Lock()
	defer h.mu.Unlock()

	offset := alignUp(h.used, align)
	if offset+size > h.size {
		return nil, fmt.Errorf("%w: heap %q has %d of %d bytes free, need %d",
			ErrOutOfMemory, h.label, h.size-offset, h.size, size)
	}
	h.used = offset + size

	b := &Buffer{device: h.device, heap: h, length: length, options: opts}
	if h.mem != nil {
		b.contents = h.mem[offset : offset+length : offset+length]
	}
	return b, nil
}

// Release frees the heap and every buffer placed in it
func (h *Heap) Release() {
	if !h.released.CompareAndSwap(false, true) {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	unmapShared(h.mem)
	h.mem = nil
	h.device.unreserve(h.size)
}
