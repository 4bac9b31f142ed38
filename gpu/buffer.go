package gpu

import "sync/atomic"

// Buffer is a linear GPU allocation; shared buffers expose their bytes to the CPU
type Buffer struct {
	device   *Device
	heap     *Heap
	label    string
	contents []byte
	length   int
	options  ResourceOptions
	released atomic.Bool
}

// Contents returns the CPU-visible bytes, nil for private storage
func (b *Buffer) Contents() []byte { return b.contents }

func (b *Buffer) Length() int { return b.length }

func (b *Buffer) Options() ResourceOptions { return b.options }

func (b *Buffer) Label() string { return b.label }

func (b *Buffer) SetLabel(label string) { b.label = label }

// Heap returns the heap the buffer was placed in, nil for standalone buffers
func (b *Buffer) Heap() *Heap { return b.heap }

// AllocatedSize implements Allocation
func (b *Buffer) AllocatedSize() int {
	if b.heap != nil {
		size, _ := b.device.HeapBufferSizeAndAlign(b.length)
		return size
	}
	return b.length
}

// Release frees standalone memory; heap-placed buffers are reclaimed with their heap
func (b *Buffer) Release() {
	if !b.released.CompareAndSwap(false, true) {
		return
	}
	if b.heap == nil {
		unmapShared(b.contents)
		b.device.unreserve(b.length)
	}
	b.contents = nil
}

// Released reports whether Release was called
func (b *Buffer) Released() bool { return b.released.Load() }
