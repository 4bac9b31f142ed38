package gpu

import (
	"fmt"
	"sync/atomic"
)

// Family identifies a GPU feature family
type Family int

const (
	FamilyCommon Family = iota
	FamilyApple5
	FamilyApple6
	FamilyApple7
	FamilyApple8
	FamilyApple9
)

// OSVersion is the host platform version a device reports
type OSVersion struct {
	Major, Minor, Patch int
}

// AtLeast reports whether v >= min
func (v OSVersion) AtLeast(min OSVersion) bool {
	if v.Major != min.Major {
		return v.Major > min.Major
	}
	if v.Minor != min.Minor {
		return v.Minor > min.Minor
	}
	return v.Patch >= min.Patch
}

func (v OSVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// HeapAlignment is the placement alignment of buffers inside a heap
const HeapAlignment = 256

// DeviceDescriptor configures a software device
type DeviceDescriptor struct {
	Name   string
	Family Family
	OS     OSVersion
	// MemoryLimit caps total allocated bytes; 0 means unlimited
	MemoryLimit int
}

// Device owns resource creation and command queues
type Device struct {
	name        string
	family      Family
	os          OSVersion
	memoryLimit int64
	allocated   atomic.Int64
}

// NewDevice creates a software device
func NewDevice(desc DeviceDescriptor) *Device {
	name := desc.Name
	if name == "" {
		name = "Software Rasterizer"
	}
	return &Device{
		name:        name,
		family:      desc.Family,
		os:          desc.OS,
		memoryLimit: int64(desc.MemoryLimit),
	}
}

// DefaultDevice returns a device supporting every feature the game uses
func DefaultDevice() *Device {
	return NewDevice(DeviceDescriptor{
		Family: FamilyApple7,
		OS:     OSVersion{Major: 15},
	})
}

func (d *Device) Name() string { return d.name }

func (d *Device) OSVersion() OSVersion { return d.os }

// SupportsFamily reports whether the device implements family f (families are cumulative)
func (d *Device) SupportsFamily(f Family) bool {
	return d.family >= f
}

// CurrentAllocatedSize returns bytes currently held by buffers and heaps
func (d *Device) CurrentAllocatedSize() int {
	return int(d.allocated.Load())
}

// HeapBufferSizeAndAlign returns the heap footprint of a buffer of the given length
func (d *Device) HeapBufferSizeAndAlign(length int) (size, align int) {
	return alignUp(length, HeapAlignment), HeapAlignment
}

func (d *Device) reserve(size int) error {
	n := d.allocated.Add(int64(size))
	if d.memoryLimit > 0 && n > d.memoryLimit {
		d.allocated.Add(-int64(size))
		return fmt.Errorf("%w: %d bytes requested, limit %d", ErrOutOfMemory, size, d.memoryLimit)
	}
	return nil
}

func (d *Device) unreserve(size int) {
	d.allocated.Add(-int64(size))
}

// NewBuffer allocates a standalone buffer
func (d *Device) NewBuffer(length int, opts ResourceOptions) (*Buffer, error) {
	if length < 0 {
		return nil, fmt.Errorf("gpu: negative buffer length %d", length)
	}
	if err := d.reserve(length); err != nil {
		return nil, err
	}
	b := &Buffer{device: d, length: length, options: opts}
	if opts.Storage == StorageModeShared {
		mem, err := mapShared(length)
		if err != nil {
			d.unreserve(length)
			return nil, err
		}
		b.contents = mem
	}
	return b, nil
}

// NewHeap allocates a heap that buffers can be placed in
func (d *Device) NewHeap(desc HeapDescriptor) (*Heap, error) {
	if desc.Size <= 0 {
		return nil, fmt.Errorf("gpu: invalid heap size %d", desc.Size)
	}
	if err := d.reserve(desc.Size); err != nil {
		return nil, err
	}
	h := &Heap{device: d, size: desc.Size, options: desc.Options, label: desc.Label}
	if desc.Options.Storage == StorageModeShared {
		mem, err := mapShared(desc.Size)
		if err != nil {
			d.unreserve(desc.Size)
			return nil, err
		}
		h.mem = mem
	}
	return h, nil
}

func alignUp(n, alignment int) int {
	return (n + alignment - 1) &^ (alignment - 1)
}
