package bitmap

import "testing"

func TestSetTestClear(t *testing.T) {
	m := New(128)
	if m.Test(5) {
		t.Fatal("expected bit 5 unset initially")
	}
	m.Set(5)
	if !m.Test(5) {
		t.Fatal("expected bit 5 set")
	}
	m.Clear(5)
	if m.Test(5) {
		t.Fatal("expected bit 5 cleared")
	}
}

func TestPopcount(t *testing.T) {
	m := New(256)
	for _, id := range []int{0, 1, 63, 64, 200} {
		m.Set(id)
	}
	if got := m.Popcount(); got != 5 {
		t.Fatalf("popcount = %d, want 5", got)
	}
}

func TestOrAnd(t *testing.T) {
	a := New(128)
	b := New(128)
	a.Set(1)
	a.Set(2)
	b.Set(2)
	b.Set(3)

	union := a.Clone()
	union.Or(b)
	for _, id := range []int{1, 2, 3} {
		if !union.Test(id) {
			t.Fatalf("union missing bit %d", id)
		}
	}

	inter := a.Clone()
	inter.And(b)
	if inter.Popcount() != 1 || !inter.Test(2) {
		t.Fatalf("intersection wrong: popcount=%d", inter.Popcount())
	}
}

func TestNewBits(t *testing.T) {
	have := New(128)
	have.Set(1)
	candidate := New(128)
	candidate.Set(1)
	candidate.Set(2)
	candidate.Set(70)

	fresh := have.NewBits(candidate)
	if len(fresh) != 2 {
		t.Fatalf("expected 2 fresh bits, got %v", fresh)
	}
	want := map[int]bool{2: true, 70: true}
	for _, id := range fresh {
		if !want[id] {
			t.Fatalf("unexpected fresh bit %d", id)
		}
	}
}

func TestEachOrder(t *testing.T) {
	m := New(200)
	m.Set(150)
	m.Set(2)
	m.Set(64)

	var order []int
	m.Each(func(id int) { order = append(order, id) })
	want := []int{2, 64, 150}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}

func TestFromTraceBits(t *testing.T) {
	trace := make([]byte, 16)
	trace[3] = 1
	trace[9] = 42
	m := FromTraceBits(trace)
	if m.Popcount() != 2 || !m.Test(3) || !m.Test(9) {
		t.Fatalf("unexpected map from trace: popcount=%d", m.Popcount())
	}
}
