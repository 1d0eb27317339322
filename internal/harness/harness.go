// Package harness defines the collaborator interfaces the scheduler sits
// between — mutation operators and target execution — neither of which
// is in scope here. It also ships a reference Mutator implementation
// (AFL-style byte-level mutations) used by the demo driver and tests.
package harness

import (
	"context"
	"time"
)

// Mutator produces a mutated variant of an input. The real mutation
// engine is an external collaborator; this interface is the seam the
// scheduler's demo driver calls through.
type Mutator interface {
	Mutate(input []byte) ([]byte, error)
	Name() string
}

// ExecResult is one target invocation's outcome.
type ExecResult struct {
	TraceBits []byte // one byte per edge, this execution
	ExecTime  time.Duration
	Crashed   bool
	Timeout   bool
}

// Executor runs the instrumented target on an input and reports its
// coverage. The real fork-server harness is an external collaborator.
type Executor interface {
	Execute(ctx context.Context, input []byte) (ExecResult, error)
}
