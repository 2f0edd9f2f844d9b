package kernel

import (
	"github.com/san-kum/physicslab/internal/dynamo"
	"github.com/san-kum/physicslab/internal/errchan"
)

// Caller is one calling context of the kernel.
type Caller struct {
	k    *Kernel
	last *errchan.Channel
}

func (c *Caller) record(op string, err error) dynamo.Status {
	status := c.last.SetError(err)
	c.k.metrics.ObserveCall(op, status)
	return status
}

// WorldCreate returns the handle of a new world, or 0 with InvalidArgument
// recorded when y0 or vy0 is not finite.
func (c *Caller) WorldCreate(y0, vy0 float64) uint64 {
	h, err := c.k.worlds.Create(y0, vy0)
	c.record("create", err)
	return uint64(h)
}

// WorldDestroy never fails. It clears the error channel.
func (c *Caller) WorldDestroy(handle uint64) {
	c.k.worlds.Destroy(dynamo.Handle(handle))
	c.record("destroy", nil)
}

func (c *Caller) WorldStep(handle uint64, dt float64, steps uint32) dynamo.Status {
	err := c.k.worlds.Step(dynamo.Handle(handle), dt, steps)
	return c.record("step", err)
}

// WorldGetState copies the state of the world into t, y and vy. The outputs
// are left untouched on failure; a nil output is an InvalidArgument.
func (c *Caller) WorldGetState(handle uint64, t, y, vy *float64) dynamo.Status {
	s, err := c.k.worlds.State(dynamo.Handle(handle))
	if err == nil && (t == nil || y == nil || vy == nil) {
		err = &dynamo.KernelError{
			Op:      "get_state",
			Handle:  dynamo.Handle(handle),
			Detail:  "output pointers must be non-null",
			Wrapped: dynamo.ErrInvalidArgument,
		}
	}
	if err != nil {
		return c.record("get_state", err)
	}

	*t, *y, *vy = s.T, s.Y, s.Vy
	return c.record("get_state", nil)
}

// LastErrorCode reads the code of the most recent call without clearing it.
func (c *Caller) LastErrorCode() dynamo.Status {
	return c.last.Code()
}

// LastErrorMessage copies the most recent message into buf and returns its
// full length; see errchan.Channel.CopyMessage.
func (c *Caller) LastErrorMessage(buf []byte) uint32 {
	return c.last.CopyMessage(buf)
}

// Err converts the most recent outcome into an error, or nil after a
// successful call.
func (c *Caller) Err() error {
	code := c.LastErrorCode()
	if code.OK() {
		return nil
	}

	buf := make([]byte, 256)
	if n := c.LastErrorMessage(buf); int(n) >= len(buf) {
		buf = make([]byte, n+1)
		c.LastErrorMessage(buf)
	}
	return &Error{Status: code, Message: cString(buf)}
}

func cString(buf []byte) string {
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}
