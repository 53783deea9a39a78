package client

import (
	"sync"
	"time"
)

const defaultTick = time.Second

// Deadline counts down to a fixed instant. It is display only: the server
// decides whether an attempt is late.
type Deadline struct {
	at       time.Time
	now      func() time.Time
	tick     time.Duration
	onExpire func()

	c    chan time.Duration
	stop chan struct{}

	mu       sync.Mutex
	last     time.Duration
	stopped  bool
	fired    bool
	stopOnce sync.Once
}

type DeadlineOption func(*Deadline)

// WithTick sets the refresh interval of C. Default 1s.
func WithTick(d time.Duration) DeadlineOption {
	return func(t *Deadline) {
		if d > 0 {
			t.tick = d
		}
	}
}

// WithNow replaces the clock.
func WithNow(now func() time.Time) DeadlineOption {
	return func(t *Deadline) {
		if now != nil {
			t.now = now
		}
	}
}

// NewDeadline starts the countdown to at. onExpire runs at most once, on the
// timer goroutine, when the remaining time reaches zero before Stop.
func NewDeadline(at time.Time, onExpire func(), opts ...DeadlineOption) *Deadline {
	d := &Deadline{
		at:       at,
		now:      time.Now,
		tick:     defaultTick,
		onExpire: onExpire,
		c:        make(chan time.Duration, 1),
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.last = d.at.Sub(d.now())
	if d.last < 0 {
		d.last = 0
	}
	go d.run()
	return d
}

// Remaining never increases between calls and is 0 once the deadline passed.
func (d *Deadline) Remaining() time.Duration {
	r := d.at.Sub(d.now())
	if r < 0 {
		r = 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if r > d.last {
		r = d.last
	}
	d.last = r
	return r
}

func (d *Deadline) At() time.Time { return d.at }

// C delivers the remaining time on every tick. Slow readers miss ticks.
func (d *Deadline) C() <-chan time.Duration { return d.c }

// Stop ends the countdown. onExpire will not be called after Stop returns
// unless it was already running.
func (d *Deadline) Stop() {
	d.stopOnce.Do(func() {
		d.mu.Lock()
		d.stopped = true
		d.mu.Unlock()
		close(d.stop)
	})
}

func (d *Deadline) Expired() bool {
	return d.Remaining() == 0
}

func (d *Deadline) run() {
	ticker := time.NewTicker(d.tick)
	defer ticker.Stop()

	for {
		if d.Remaining() == 0 {
			d.expire()
			return
		}
		select {
		case <-d.stop:
			return
		case <-ticker.C:
			d.publish(d.Remaining())
		}
	}
}

func (d *Deadline) publish(r time.Duration) {
	select {
	case d.c <- r:
	default:
		select {
		case <-d.c:
		default:
		}
		select {
		case d.c <- r:
		default:
		}
	}
}

func (d *Deadline) expire() {
	d.publish(0)
	d.mu.Lock()
	if d.stopped || d.fired {
		d.mu.Unlock()
		return
	}
	d.fired = true
	d.mu.Unlock()
	if d.onExpire != nil {
		d.onExpire()
	}
}
