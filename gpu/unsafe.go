package gpu

import "unsafe"

func unsafeBytes(words []uint64) []byte {
	if len(words) == 0 {
		return []byte{}
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), len(words)*8)
}

// View reinterprets size_of(T)*count bytes starting at offset as a []T
// Returns false if the range does not fit the buffer
func View[T any](b *Buffer, offset uint64, count int) ([]T, bool) {
	if b == nil || count < 0 {
		return nil, false
	}
	contents := b.Contents()
	var zero T
	size := uint64(unsafe.Sizeof(zero)) * uint64(count)
	if offset+size > uint64(len(contents)) {
		return nil, false
	}
	if count == 0 {
		return []T{}, true
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&contents[offset])), count), true
}
