package client

import (
	"sync/atomic"
	"testing"
	"time"
)

type testClock struct{ ns atomic.Int64 }

func newTestClock(t time.Time) *testClock {
	c := &testClock{}
	c.ns.Store(t.UnixNano())
	return c
}

func (c *testClock) Now() time.Time          { return time.Unix(0, c.ns.Load()) }
func (c *testClock) Set(t time.Time)         { c.ns.Store(t.UnixNano()) }
func (c *testClock) Advance(d time.Duration) { c.ns.Add(int64(d)) }

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestDeadline_RemainingNeverIncreases(t *testing.T) {
	clock := newTestClock(base)
	d := NewDeadline(base.Add(10*time.Second), nil, WithNow(clock.Now), WithTick(time.Hour))
	defer d.Stop()

	if got := d.Remaining(); got != 10*time.Second {
		t.Fatalf("remaining = %v, want 10s", got)
	}
	clock.Advance(-5 * time.Second)
	if got := d.Remaining(); got != 10*time.Second {
		t.Fatalf("clock moved back: remaining = %v, want 10s", got)
	}
	clock.Set(base.Add(4 * time.Second))
	if got := d.Remaining(); got != 6*time.Second {
		t.Fatalf("remaining = %v, want 6s", got)
	}
	clock.Set(base.Add(time.Minute))
	if got := d.Remaining(); got != 0 {
		t.Fatalf("after deadline remaining = %v, want 0", got)
	}
}

func TestDeadline_FiresExactlyOnce(t *testing.T) {
	clock := newTestClock(base)
	var fired atomic.Int32
	done := make(chan struct{}, 4)
	d := NewDeadline(base.Add(time.Second), func() {
		fired.Add(1)
		done <- struct{}{}
	}, WithNow(clock.Now), WithTick(time.Millisecond))
	defer d.Stop()

	clock.Advance(2 * time.Second)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("deadline did not fire")
	}
	time.Sleep(20 * time.Millisecond)
	if n := fired.Load(); n != 1 {
		t.Fatalf("onExpire ran %d times, want 1", n)
	}
	if !d.Expired() {
		t.Fatalf("deadline should report expired")
	}
}

func TestDeadline_PastDeadlineFiresImmediately(t *testing.T) {
	clock := newTestClock(base)
	done := make(chan struct{})
	d := NewDeadline(base.Add(-time.Minute), func() { close(done) }, WithNow(clock.Now), WithTick(time.Hour))
	defer d.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("past deadline did not fire")
	}
}

func TestDeadline_StopPreventsExpiry(t *testing.T) {
	clock := newTestClock(base)
	var fired atomic.Int32
	d := NewDeadline(base.Add(time.Second), func() { fired.Add(1) }, WithNow(clock.Now), WithTick(time.Millisecond))
	d.Stop()
	d.Stop()

	clock.Advance(time.Minute)
	time.Sleep(20 * time.Millisecond)
	if n := fired.Load(); n != 0 {
		t.Fatalf("stopped deadline fired %d times", n)
	}
}

func TestDeadline_TicksPublishRemaining(t *testing.T) {
	clock := newTestClock(base)
	d := NewDeadline(base.Add(time.Hour), nil, WithNow(clock.Now), WithTick(time.Millisecond))
	defer d.Stop()

	select {
	case r := <-d.C():
		if r != time.Hour {
			t.Fatalf("tick = %v, want 1h", r)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no tick received")
	}
}
