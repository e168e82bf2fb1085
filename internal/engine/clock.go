package engine

import "sync/atomic"

// Clock is the logical clock that orders batches in the journal.
//
// Every batch is stamped with a strictly increasing seq. Journal queries
// order by seq and never by wall time.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0. The first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock positioned at start, so that the first Next
// returns start+1. Used to continue numbering after the batches already in
// a file journal.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last sequence number handed out.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
