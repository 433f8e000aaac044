package engine

import "sync/atomic"

// Clock stamps node evaluations with a strictly increasing seq.
//
// Results are ordered by seq alone, so a run replays identically no matter
// how long each node took. An Engine keeps one Clock across runs; the first
// stamp of a fresh clock is start+1.
type Clock struct {
	seq atomic.Int64
}

// NewClock returns a clock whose last issued stamp is start.
func NewClock(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next issues the next stamp.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued stamp.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
