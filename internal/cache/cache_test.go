package cache

import (
	"fmt"
	"testing"
)

type fakeLoader struct {
	files map[int][]byte
	loads int
}

func (f *fakeLoader) Load(id int) ([]byte, error) {
	f.loads++
	b, ok := f.files[id]
	if !ok {
		return nil, fmt.Errorf("no such seed %d", id)
	}
	return b, nil
}

func TestGetLoadsOnceThenCaches(t *testing.T) {
	loader := &fakeLoader{files: map[int][]byte{1: []byte("hello")}}
	c := New(1<<20, 100, loader)

	b1, err := c.Get(1, -1)
	if err != nil {
		t.Fatal(err)
	}
	b2, err := c.Get(1, -1)
	if err != nil {
		t.Fatal(err)
	}
	if string(b1) != "hello" || string(b2) != "hello" {
		t.Fatalf("unexpected bytes: %q %q", b1, b2)
	}
	if loader.loads != 1 {
		t.Fatalf("loads = %d, want 1 (second Get should hit cache)", loader.loads)
	}
}

func TestEvictionRespectsEntryBudget(t *testing.T) {
	loader := &fakeLoader{files: map[int][]byte{
		0: []byte("aaaa"), 1: []byte("bbbb"), 2: []byte("cccc"),
	}}
	c := New(1<<20, 2, loader)

	if _, err := c.Get(0, -1); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get(1, -1); err != nil {
		t.Fatal(err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	if _, err := c.Get(2, 1); err != nil {
		t.Fatal(err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len after third Get = %d, want 2 (entry budget enforced)", c.Len())
	}
	if _, ok := c.slots[1]; !ok {
		t.Fatal("current slot 1 must never be evicted while passed as `current`")
	}
}

func TestStoreMemDropsWhenOverBudget(t *testing.T) {
	loader := &fakeLoader{}
	c := New(8, 10, loader)
	c.StoreMem(0, []byte("0123456789")) // 10 bytes > 8 byte budget
	if c.Len() != 0 {
		t.Fatalf("Len = %d, want 0 (oversized store dropped)", c.Len())
	}
}

func TestRetakeAfterTrimShrinksInPlace(t *testing.T) {
	loader := &fakeLoader{}
	c := New(1<<20, 10, loader)
	c.StoreMem(0, []byte("0123456789"))
	c.RetakeAfterTrim(0, 4)
	b := c.slots[0]
	if string(b) != "0123" {
		t.Fatalf("got %q, want %q", b, "0123")
	}
}
