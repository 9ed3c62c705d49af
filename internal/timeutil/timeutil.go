package timeutil

import (
	"sync/atomic"
	"time"
)

type clockSource struct {
	now  func() time.Time
	wall bool
	loc  *time.Location
}

var clock atomic.Pointer[clockSource]

func init() {
	clock.Store(&clockSource{now: time.Now})
}

// SetClock replaces the clock used by NowAware and returns a function restoring
// the previous one. Readings are instants; their zone only affects display.
func SetClock(now func() time.Time) (restore func()) {
	if now == nil {
		now = time.Now
	}
	return swapClock(&clockSource{now: now})
}

// SetWallClock installs a naive clock: each reading is a wall time in loc and
// the zone it carries is ignored. A nil loc means the readings are UTC wall
// times.
func SetWallClock(now func() time.Time, loc *time.Location) (restore func()) {
	if now == nil {
		now = time.Now
	}
	return swapClock(&clockSource{now: now, wall: true, loc: loc})
}

func swapClock(c *clockSource) (restore func()) {
	prev := clock.Swap(c)
	return func() { clock.Store(prev) }
}

// NowAware returns the current instant normalized to UTC. Readings from a wall
// clock go through FromWall.
func NowAware() time.Time {
	c := clock.Load()
	t := c.now()
	if c.wall {
		return FromWall(t, c.loc)
	}
	return MakeUTC(t)
}

// FromWall converts a naive wall-clock reading in loc to a UTC instant. With a
// nil or UTC loc the wall clock is taken as UTC; otherwise a wall time that
// occurs twice resolves to the earlier instant.
func FromWall(wall time.Time, loc *time.Location) time.Time {
	if loc == nil || loc == time.UTC {
		return AttachUTC(wall)
	}
	return EarliestInstant(wall, loc)
}

// MakeUTC returns t expressed in UTC.
func MakeUTC(t time.Time) time.Time {
	if t.Location() == time.UTC {
		return t
	}
	return t.UTC()
}

// AttachUTC interprets the wall clock of t as UTC, discarding whatever zone t
// carries. This is the conversion for a naive timestamp.
func AttachUTC(t time.Time) time.Time {
	y, mo, d := t.Date()
	h, mi, s := t.Clock()
	return time.Date(y, mo, d, h, mi, s, t.Nanosecond(), time.UTC)
}

// EarliestInstant resolves the wall clock of wall in loc. When the wall time
// occurs twice (a DST fold) the earlier of the two instants is returned. When it
// does not occur at all (a DST gap) the result of time.Date is returned.
func EarliestInstant(wall time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	naive := AttachUTC(wall)

	var (
		best  time.Time
		found bool
	)
	for _, probe := range []time.Duration{-24 * time.Hour, 0, 24 * time.Hour} {
		_, offset := naive.Add(probe).In(loc).Zone()
		candidate := naive.Add(-time.Duration(offset) * time.Second)
		if !sameWall(candidate.In(loc), naive) {
			continue
		}
		if !found || candidate.Before(best) {
			best = candidate
			found = true
		}
	}
	if !found {
		y, mo, d := naive.Date()
		h, mi, s := naive.Clock()
		return time.Date(y, mo, d, h, mi, s, naive.Nanosecond(), loc).UTC()
	}
	return best.UTC()
}

// ToEpochSeconds returns the whole-second Unix time of t. Sub-second precision is
// floored.
func ToEpochSeconds(t time.Time) int64 {
	return t.UTC().Unix()
}

func sameWall(a, b time.Time) bool {
	ay, amo, ad := a.Date()
	by, bmo, bd := b.Date()
	ah, ami, as := a.Clock()
	bh, bmi, bs := b.Clock()
	return ay == by && amo == bmo && ad == bd && ah == bh && ami == bmi && as == bs && a.Nanosecond() == b.Nanosecond()
}
