package memory

import (
	"bytes"
	"testing"
)

func TestBufferPool(t *testing.T) {
	pool := NewBufferPool(1024, 1<<20)

	buf := pool.Get()
	if buf == nil {
		t.Fatal("Get returned nil")
	}

	buf.WriteString("test data")
	if buf.String() != "test data" {
		t.Error("Buffer write failed")
	}

	pool.Put(buf)

	stats := pool.GetStats()
	if stats.Gets != 1 {
		t.Errorf("Expected 1 get, got %d", stats.Gets)
	}
	if stats.Puts != 1 {
		t.Errorf("Expected 1 put, got %d", stats.Puts)
	}
}

func TestBufferPool_OversizedBuffer(t *testing.T) {
	pool := NewBufferPool(1024, 4096)

	buf := bytes.NewBuffer(make([]byte, 0, 8192))
	buf.WriteString("data")

	pool.Put(buf)

	stats := pool.GetStats()
	if stats.Discards != 1 {
		t.Errorf("Expected 1 discard, got %d", stats.Discards)
	}
}

func TestByteSlicePool(t *testing.T) {
	pool := NewByteSlicePool()

	sizes := []int{32, 100, 500, 2000, 10000}
	for _, size := range sizes {
		slice := pool.Get(size)
		if len(slice) != size {
			t.Errorf("Expected len %d, got %d", size, len(slice))
		}
		pool.Put(slice)
	}
}

func TestByteSlicePool_LargeSize(t *testing.T) {
	pool := NewByteSlicePool()

	slice := pool.Get(1 << 20)
	if len(slice) != 1<<20 {
		t.Errorf("Expected 1MB slice")
	}

	stats := pool.GetStats()
	if stats.Misses != 1 {
		t.Errorf("Expected 1 miss, got %d", stats.Misses)
	}
}

func TestGlobalPools(t *testing.T) {
	buf := GetBuffer()
	if buf == nil {
		t.Fatal("GetBuffer returned nil")
	}
	buf.WriteString("global test")
	PutBuffer(buf)

	slice := GetBytes(100)
	if len(slice) != 100 {
		t.Errorf("Expected 100 bytes, got %d", len(slice))
	}
	PutBytes(slice)

	stats := GetGlobalStats()
	if stats == nil {
		t.Error("GetGlobalStats returned nil")
	}
}
