package queue

import (
	"testing"

	"github.com/fluxqueue/fluxqueue/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	st, err := NewStore(dir, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return st
}

func TestAppendAssignsDenseID(t *testing.T) {
	st := newTestStore(t)
	for i := 0; i < 3; i++ {
		sd := NewSeed(i, "id:000000,src:seed", -1, 0, i, i)
		id, err := st.Append(sd)
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
		if id != i {
			t.Fatalf("id = %d, want %d", id, i)
		}
	}
	if st.Count() != 3 {
		t.Fatalf("Count = %d, want 3", st.Count())
	}
}

func TestAppendRejectsMismatchedID(t *testing.T) {
	st := newTestStore(t)
	sd := NewSeed(5, "id:000005", -1, 0, 0, 0)
	if _, err := st.Append(sd); err == nil {
		t.Fatal("expected error appending seed with mismatched id")
	}
}

func TestActiveCount(t *testing.T) {
	st := newTestStore(t)
	for i := 0; i < 4; i++ {
		sd := NewSeed(i, "id:seed", -1, 0, 0, 0)
		if _, err := st.Append(sd); err != nil {
			t.Fatal(err)
		}
	}
	st.SetDisabled(1, true)
	st.SetDisabled(3, true)
	if got := st.ActiveCount(); got != 2 {
		t.Fatalf("ActiveCount = %d, want 2", got)
	}
}

func TestMarkersPersistToDisk(t *testing.T) {
	st := newTestStore(t)
	sd := NewSeed(0, "id:000000,src:seed", -1, 0, 0, 0)
	if _, err := st.Append(sd); err != nil {
		t.Fatal(err)
	}
	if err := st.MarkDetDone(sd); err != nil {
		t.Fatalf("MarkDetDone: %v", err)
	}
	if !sd.PassedDet {
		t.Fatal("PassedDet not set")
	}
	if err := st.MarkRedundant(sd, true); err != nil {
		t.Fatalf("MarkRedundant: %v", err)
	}
	if !sd.FSRedundant {
		t.Fatal("FSRedundant not set")
	}
	if err := st.MarkRedundant(sd, false); err != nil {
		t.Fatalf("MarkRedundant clear: %v", err)
	}
	if sd.FSRedundant {
		t.Fatal("FSRedundant still set after clear")
	}
}

func TestRecomputePending(t *testing.T) {
	st := newTestStore(t)
	for i := 0; i < 3; i++ {
		sd := NewSeed(i, "id:seed", -1, 0, 0, 0)
		if _, err := st.Append(sd); err != nil {
			t.Fatal(err)
		}
	}
	st.Get(0).Favored = true
	st.Get(1).WasFuzzed = true
	st.RecomputePending()
	if st.PendingNotFuzzed != 2 {
		t.Fatalf("PendingNotFuzzed = %d, want 2", st.PendingNotFuzzed)
	}
	if st.PendingFavored != 1 {
		t.Fatalf("PendingFavored = %d, want 1", st.PendingFavored)
	}
}

func TestClassifyText(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want types.TextKind
	}{
		{"too short", []byte("hi"), types.TextKindBinary},
		{"plain ascii", []byte("hello world this is ascii"), types.TextKindASCII},
		{"binary control bytes", append([]byte("xxxxxxxxxxxx"), 0x01, 0x02, 0x03, 0x04), types.TextKindBinary},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ClassifyText(c.in); got != c.want {
				t.Fatalf("ClassifyText(%q) = %v, want %v", c.in, got, c.want)
			}
		})
	}
}
