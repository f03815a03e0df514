package cache

import (
	"github.com/frozenpine/pool"
)

// FrameCache accumulates frame bytes in one growable buffer.
// Used as a rolling record of frames a consumer has set aside,
// rotated once the consumer is done with a prefix.
type FrameCache struct {
	cap    int
	offset int
	used   int
	buffer []byte
}

func (cache *FrameCache) append(data []byte) {
	size := len(data)

	if size <= 0 {
		return
	}

	if cache.offset+size > cache.cap {
		cache.cap += size * 2
		newBuffer := make([]byte, cache.cap)
		copy(newBuffer, cache.buffer[cache.used:cache.offset])
		cache.offset -= cache.used
		cache.used = 0
		pool.PutByteSlice(cache.buffer)
		cache.buffer = newBuffer
	}

	copy(cache.buffer[cache.offset:], data)
	cache.offset += size
}

// Rotate drops used bytes from the front, then appends data
func (cache *FrameCache) Rotate(used int, data []byte) {
	if used > cache.offset-cache.used {
		cache.used = 0
		cache.offset = 0
	} else {
		cache.used += used
	}

	cache.append(data)
}

func (cache *FrameCache) Bytes() []byte {
	return cache.buffer[cache.used:cache.offset]
}

// Merge appends data to the cached remainder and returns the whole
func (cache *FrameCache) Merge(data []byte) []byte {
	if cache.offset <= 0 {
		cache.offset = 0
		cache.used = 0
	}

	cache.append(data)

	return cache.Bytes()
}

func NewFrameCache() *FrameCache {
	return &FrameCache{
		cap:    pool.MaxBytesSize,
		buffer: make([]byte, pool.MaxBytesSize),
	}
}
