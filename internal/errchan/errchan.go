// Package errchan records the outcome of the most recent kernel call for
// each calling context.
//
// A [Channel] holds a single {code, message} record. Reading it never clears
// it, and copying the message out is allocation-free so it can back the
// pl_last_error_message ABI entry point directly.
package errchan

import (
	"sync"
	"unicode/utf8"

	"github.com/san-kum/physicslab/internal/dynamo"
)

// Record is a snapshot of a channel.
type Record struct {
	Code    dynamo.Status
	Message string
}

type Channel struct {
	mu  sync.Mutex
	rec Record
}

func New() *Channel {
	return &Channel{}
}

func (c *Channel) Set(code dynamo.Status, message string) {
	c.mu.Lock()
	c.rec = Record{Code: code, Message: message}
	c.mu.Unlock()
}

// SetError records err, or clears the channel when err is nil.
func (c *Channel) SetError(err error) dynamo.Status {
	if err == nil {
		c.Clear()
		return dynamo.StatusOK
	}
	code := dynamo.StatusOf(err)
	c.Set(code, err.Error())
	return code
}

func (c *Channel) Clear() {
	c.Set(dynamo.StatusOK, "")
}

func (c *Channel) Code() dynamo.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rec.Code
}

func (c *Channel) Last() Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rec
}

// CopyMessage writes as much of the message as fits into buf, followed by a
// NUL byte, and returns the full message length in bytes. A truncated copy
// never ends in the middle of a UTF-8 sequence. An empty buf receives nothing.
func (c *Channel) CopyMessage(buf []byte) uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg := c.rec.Message
	full := uint32(len(msg))
	if len(buf) == 0 {
		return full
	}

	n := len(msg)
	if n > len(buf)-1 {
		n = len(buf) - 1
		for n > 0 && !utf8.RuneStart(msg[n]) {
			n--
		}
	}
	copy(buf, msg[:n])
	buf[n] = 0
	return full
}
