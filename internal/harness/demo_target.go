package harness

import (
	"context"
	"time"
)

// DemoTarget is a reference Executor standing in for the instrumented
// binary the scheduler would normally fork and trace: it has no real
// target to run, so it derives deterministic trace bits from the input's
// own bytes. It exists so the CLI demo driver has something to execute
// against when no external harness is wired in.
type DemoTarget struct {
	MapSize int
}

// NewDemoTarget creates a demo target addressing mapSize edges.
func NewDemoTarget(mapSize int) *DemoTarget {
	return &DemoTarget{MapSize: mapSize}
}

// Execute derives a trace bitmap from a rolling hash over consecutive
// byte pairs, the same edge-id-from-transition idea afl-fuzz's
// instrumentation uses, applied here to synthetic input instead of
// actual branch transitions.
func (d *DemoTarget) Execute(ctx context.Context, input []byte) (ExecResult, error) {
	trace := make([]byte, d.MapSize)
	if len(input) > 0 {
		prev := byte(0)
		for _, b := range input {
			edge := (int(prev)<<4 ^ int(b)) % d.MapSize
			if trace[edge] < 0xff {
				trace[edge]++
			}
			prev = b
		}
	}
	return ExecResult{
		TraceBits: trace,
		ExecTime:  time.Microsecond * time.Duration(10+len(input)),
	}, nil
}
