package harness

import (
	"bytes"
	"context"
	"testing"
)

func TestDemoTarget_Deterministic(t *testing.T) {
	target := NewDemoTarget(1 << 10)
	input := []byte("hello fuzzing world")

	r1, err := target.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	r2, err := target.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if !bytes.Equal(r1.TraceBits, r2.TraceBits) {
		t.Error("expected identical trace bits for identical input")
	}
}

func TestDemoTarget_DifferentInputsDiverge(t *testing.T) {
	target := NewDemoTarget(1 << 10)

	r1, err := target.Execute(context.Background(), []byte("aaaa"))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	r2, err := target.Execute(context.Background(), []byte("zzzzzzzzzzzzzzzz"))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if bytes.Equal(r1.TraceBits, r2.TraceBits) {
		t.Error("expected different trace bits for divergent inputs")
	}
}

func TestDemoTarget_EmptyInput(t *testing.T) {
	target := NewDemoTarget(64)

	res, err := target.Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(res.TraceBits) != 64 {
		t.Errorf("expected map-sized trace bits, got %d", len(res.TraceBits))
	}
	for _, b := range res.TraceBits {
		if b != 0 {
			t.Error("expected all-zero trace bits for empty input")
		}
	}
}
