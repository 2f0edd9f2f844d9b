package errchan

import "sync"

// Table holds one channel per calling context, keyed by an opaque id
// (an OS thread id at the C boundary).
type Table struct {
	channels sync.Map
}

func NewTable() *Table {
	return &Table{}
}

// For returns the channel for id, creating it on first use.
func (t *Table) For(id uint64) *Channel {
	if ch, ok := t.channels.Load(id); ok {
		return ch.(*Channel)
	}
	ch, _ := t.channels.LoadOrStore(id, New())
	return ch.(*Channel)
}

// Release drops the channel for id. A later For(id) starts from a cleared record.
func (t *Table) Release(id uint64) {
	t.channels.Delete(id)
}

func (t *Table) Len() int {
	n := 0
	t.channels.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
