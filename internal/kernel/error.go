package kernel

import "github.com/san-kum/physicslab/internal/dynamo"

// Error is a non-OK status read back from a caller's error channel.
type Error struct {
	Status  dynamo.Status
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return "kernel: " + e.Status.String()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Status.Sentinel()
}
