package dynamo

import (
	"errors"
	"strconv"
	"strings"
)

// Domain errors for kernel operations.
var (
	// ErrInvalidArgument indicates malformed creation inputs.
	ErrInvalidArgument = errors.New("dynamo: invalid argument")

	// ErrInvalidHandle indicates an unknown or destroyed world handle.
	ErrInvalidHandle = errors.New("dynamo: invalid handle")

	// ErrPolicyDenied indicates a well-formed request rejected by the policy guard.
	ErrPolicyDenied = errors.New("dynamo: policy denied")

	// ErrNonFinite indicates the integrator produced NaN or Inf.
	ErrNonFinite = errors.New("dynamo: state diverged (NaN or Inf detected)")
)

// KernelError wraps a sentinel error with the operation and world it concerns.
type KernelError struct {
	Op      string
	Handle  Handle
	Detail  string
	Wrapped error
}

func (e *KernelError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if !e.Handle.IsNull() {
		b.WriteString(" world ")
		b.WriteString(strconv.FormatUint(uint64(e.Handle), 10))
	}
	b.WriteString(": ")
	b.WriteString(e.Wrapped.Error())
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *KernelError) Unwrap() error {
	return e.Wrapped
}

// StatusOf maps err onto the status code reported across the ABI.
// Errors outside the kernel taxonomy are internal errors.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrInvalidArgument):
		return StatusInvalidArgument
	case errors.Is(err, ErrInvalidHandle):
		return StatusInvalidHandle
	case errors.Is(err, ErrPolicyDenied):
		return StatusPolicyDenied
	default:
		return StatusInternalError
	}
}
