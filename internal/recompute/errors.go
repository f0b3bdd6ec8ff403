package recompute

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/featuregraph/internal/depgraph"
	"github.com/specialistvlad/featuregraph/internal/object"
)

var (
	// ErrPassInProgress is returned when a pass is requested on a document
	// that is already recomputing.
	ErrPassInProgress = errors.New("recompute already in progress")
	// ErrNotConverged is the cause stored on an object that kept being
	// touched during a single pass.
	ErrNotConverged = errors.New("object did not converge within one recompute")
)

// ComputationError is a failure reported by an object's computation.
type ComputationError struct {
	Object string
	Err    error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("computation of '%s' failed: %v", e.Object, e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }

// FatalComputationError is a panic raised by an object's computation and
// recovered by the engine. It is handled like a ComputationError.
type FatalComputationError struct {
	Object string
	Panic  any
	Stack  []byte
}

func (e *FatalComputationError) Error() string {
	return fmt.Sprintf("computation of '%s' panicked: %v", e.Object, e.Panic)
}

// UpstreamError marks an object that was not executed because something it
// depends on failed or lies on a dependency cycle.
type UpstreamError struct {
	Object   string
	Upstream string
	Cause    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("skipped due to upstream failure of '%s'", e.Upstream)
}

func (e *UpstreamError) Unwrap() error { return e.Cause }

// Failure kinds reported in a Report.
const (
	KindCycle        = "cycle"
	KindComputation  = "computation"
	KindFatal        = "fatal"
	KindReentrancy   = "reentrancy"
	KindUpstream     = "upstream"
	KindNotConverged = "not_converged"
)

// KindOf classifies an error stored on an object as one of the Kind constants.
func KindOf(err error) string {
	var (
		upstream   *UpstreamError
		cycle      *depgraph.CycleError
		fatal      *FatalComputationError
		reentrancy *object.ReentrancyError
	)
	switch {
	case errors.As(err, &upstream):
		return KindUpstream
	case errors.As(err, &cycle):
		return KindCycle
	case errors.Is(err, ErrNotConverged):
		return KindNotConverged
	case errors.As(err, &fatal):
		return KindFatal
	case errors.As(err, &reentrancy):
		return KindReentrancy
	default:
		return KindComputation
	}
}

// classify wraps a raw computation error so that every failure stored on an
// object is one of the typed errors of this package or a ReentrancyError.
func classify(o *object.Object, err error) error {
	var (
		comp       *ComputationError
		fatal      *FatalComputationError
		reentrancy *object.ReentrancyError
	)
	if errors.As(err, &comp) || errors.As(err, &fatal) || errors.As(err, &reentrancy) {
		return err
	}
	return &ComputationError{Object: o.Name(), Err: err}
}
