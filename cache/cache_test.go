package cache_test

import (
	"bytes"
	"slices"
	"testing"

	"github.com/frozenpine/nic4go/cache"
)

func TestPool(t *testing.T) {
	pool := cache.NewBytesPool(2046)

	v1 := pool.GetSlice()
	if len(v1) != 2046 {
		t.Fatal("slice size wrong:", len(v1))
	}

	v1[0] = 0xFF
	pool.PutSlice(v1)

	v2 := pool.GetSlice()
	if v2[0] != 0 {
		t.Fatal("recycled slice not zeroed")
	}

	// undersized slices never enter the pool
	pool.PutSlice(make([]byte, 8))

	if got := pool.GetSlice(); len(got) != 2046 {
		t.Fatal("pool handed out foreign slice:", len(got))
	}
}

func TestPoolSizing(t *testing.T) {
	if pool := cache.NewBytesPool(0); pool.Size() != cache.MaxBytesSize {
		t.Fatal("default size wrong:", pool.Size())
	}

	// odd sizes align up
	if pool := cache.NewBytesPool(7); pool.Size() != 8 {
		t.Fatal("align up failed:", pool.Size())
	}

	if pool := cache.NewBytesPool(1 << 20); pool.Size() != cache.MaxBytesSize {
		t.Fatal("oversize not clamped:", pool.Size())
	}
}

func TestFrameCache(t *testing.T) {
	fc := cache.NewFrameCache()

	data := []byte{1, 2, 3}

	buff := fc.Merge(data)
	if slices.Compare(buff, data) != 0 {
		t.Fatal("initial merge failed")
	}

	rotate := 1
	fc.Rotate(rotate, nil)

	buff = fc.Merge(data)
	if slices.Compare(buff, append(data[rotate:], data...)) != 0 {
		t.Fatal("remain merge failed")
	}

	fc.Rotate(len(data)*3, data)

	if slices.Compare(fc.Bytes(), data) != 0 {
		t.Fatal("exceed rotate failed")
	}

	result := fc.Merge(make([]byte, 8192))
	if !bytes.Equal(result, append(data, make([]byte, 8192)...)) {
		t.Fatal("extend failed")
	}
}
