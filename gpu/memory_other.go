//go:build !unix

package gpu

// mapShared falls back to Go heap memory where mmap is unavailable
// Allocated as uint64 words so the base address is 8-byte aligned
func mapShared(size int) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	words := make([]uint64, (size+7)/8)
	return unsafeBytes(words)[:size], nil
}

func unmapShared(mem []byte) {}
