package sim

import (
	"github.com/san-kum/physicslab/internal/dynamo"
	"github.com/san-kum/physicslab/internal/kernel"
)

// Session owns one world for the lifetime of a run. Kernel status codes are
// turned into errors through the caller's error channel.
type Session struct {
	caller *kernel.Caller
	handle uint64
}

func Open(c *kernel.Caller, y0, vy0 float64) (*Session, error) {
	s := &Session{caller: c}
	if err := s.create(y0, vy0); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) create(y0, vy0 float64) error {
	s.handle = s.caller.WorldCreate(y0, vy0)
	if s.handle == 0 {
		return s.caller.Err()
	}
	return nil
}

func (s *Session) Handle() uint64 { return s.handle }

func (s *Session) Step(dt float64, steps uint32) error {
	if st := s.caller.WorldStep(s.handle, dt, steps); !st.OK() {
		return s.caller.Err()
	}
	return nil
}

func (s *Session) State() (dynamo.State, error) {
	var st dynamo.State
	if code := s.caller.WorldGetState(s.handle, &st.T, &st.Y, &st.Vy); !code.OK() {
		return dynamo.State{}, s.caller.Err()
	}
	return st, nil
}

// Reset replaces the world with a fresh one at t=0.
func (s *Session) Reset(y0, vy0 float64) error {
	s.Close()
	return s.create(y0, vy0)
}

// Close destroys the world. It is safe to call more than once.
func (s *Session) Close() {
	if s.handle != 0 {
		s.caller.WorldDestroy(s.handle)
		s.handle = 0
	}
}
