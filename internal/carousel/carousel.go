// Package carousel owns the auto-advance scheduling for one image rotator:
// a single cancellable timer per instance, reset by user navigation and
// paused while the pointer hovers.
package carousel

import (
	"sync"
	"time"
)

// Carousel cycles an index over n slides. All methods are safe for use from
// the timer goroutine and the event handlers driving it. At any moment there
// is at most one pending timer: every (re)schedule cancels the previous one
// first.
type Carousel struct {
	mu sync.Mutex

	n        int
	idx      int
	interval time.Duration

	timer   *time.Timer
	running bool
	paused  bool

	onAdvance func(idx int)
}

func New(n int, interval time.Duration, onAdvance func(int)) *Carousel {
	return &Carousel{n: n, interval: interval, onAdvance: onAdvance}
}

// Index returns the current slide.
func (c *Carousel) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.idx
}

// Start begins auto-advancing. Calling it again resets the pending timer
// rather than stacking a second one.
func (c *Carousel) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
	c.paused = false
	c.schedule()
}

// Stop cancels any pending advance. Idempotent.
func (c *Carousel) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	c.cancel()
}

// Pause holds auto-advance while the pointer hovers the carousel.
func (c *Carousel) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.paused = true
	c.cancel()
}

// Resume restarts the timer on pointer leave.
func (c *Carousel) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running || !c.paused {
		return
	}
	c.paused = false
	c.schedule()
}

// Next is a user navigation: advance now and reset the timer.
func (c *Carousel) Next() int {
	return c.nav(1)
}

// Prev is a user navigation: go back and reset the timer.
func (c *Carousel) Prev() int {
	return c.nav(-1)
}

func (c *Carousel) nav(step int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.step(step)
	if c.running && !c.paused {
		c.schedule()
	}
	return c.idx
}

// step moves the index; caller holds the lock.
func (c *Carousel) step(by int) {
	if c.n <= 0 {
		return
	}
	c.idx = ((c.idx+by)%c.n + c.n) % c.n
	if c.onAdvance != nil {
		c.onAdvance(c.idx)
	}
}

// schedule arms the single timer; caller holds the lock.
func (c *Carousel) schedule() {
	c.cancel()
	c.timer = time.AfterFunc(c.interval, c.fire)
}

func (c *Carousel) cancel() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Carousel) fire() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running || c.paused {
		return
	}
	c.step(1)
	c.schedule()
}
