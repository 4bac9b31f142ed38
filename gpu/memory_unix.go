//go:build unix

package gpu

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// mapShared reserves anonymous page-aligned memory for a shared-storage allocation
func mapShared(size int) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap %d bytes: %v", ErrOutOfMemory, size, err)
	}
	return mem, nil
}

func unmapShared(mem []byte) {
	if len(mem) == 0 {
		return
	}
	_ = unix.Munmap(mem)
}
