package carousel

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects advance callbacks so tests can wait on them instead of
// sleeping fixed amounts.
type recorder struct {
	mu   sync.Mutex
	seen []int
	ch   chan int
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan int, 64)}
}

func (r *recorder) observe(idx int) {
	r.mu.Lock()
	r.seen = append(r.seen, idx)
	r.mu.Unlock()
	r.ch <- idx
}

func (r *recorder) wait(t *testing.T) int {
	t.Helper()
	select {
	case idx := <-r.ch:
		return idx
	case <-time.After(2 * time.Second):
		t.Fatal("no advance within deadline")
		return -1
	}
}

func (r *recorder) assertQuiet(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case idx := <-r.ch:
		t.Fatalf("unexpected advance to %d", idx)
	case <-time.After(d):
	}
}

func TestAutoAdvanceWraps(t *testing.T) {
	rec := newRecorder()
	c := New(3, 10*time.Millisecond, rec.observe)
	c.Start()
	defer c.Stop()

	assert.Equal(t, 1, rec.wait(t))
	assert.Equal(t, 2, rec.wait(t))
	assert.Equal(t, 0, rec.wait(t), "wraps past the last slide")
}

func TestManualNavigation(t *testing.T) {
	c := New(3, time.Hour, nil)

	assert.Equal(t, 1, c.Next())
	assert.Equal(t, 2, c.Next())
	assert.Equal(t, 0, c.Next())
	assert.Equal(t, 2, c.Prev(), "wraps backwards from the first slide")
	assert.Equal(t, 2, c.Index())
}

func TestNavigationResetsTimer(t *testing.T) {
	rec := newRecorder()
	c := New(5, 60*time.Millisecond, rec.observe)
	c.Start()
	defer c.Stop()

	// keep navigating faster than the interval; the timer must keep being
	// pushed back instead of firing alongside
	for i := 0; i < 4; i++ {
		time.Sleep(20 * time.Millisecond)
		c.Next()
		assert.Equal(t, i+1, rec.wait(t))
	}
	rec.assertQuiet(t, 30*time.Millisecond)
}

func TestPauseResume(t *testing.T) {
	rec := newRecorder()
	c := New(3, 15*time.Millisecond, rec.observe)
	c.Start()
	defer c.Stop()

	rec.wait(t)
	c.Pause()
	// drain anything that raced the pause
	for {
		select {
		case <-rec.ch:
			continue
		default:
		}
		break
	}
	rec.assertQuiet(t, 60*time.Millisecond)

	c.Resume()
	rec.wait(t)
}

func TestStopIsIdempotent(t *testing.T) {
	rec := newRecorder()
	c := New(3, 10*time.Millisecond, rec.observe)
	c.Start()
	rec.wait(t)

	c.Stop()
	c.Stop()
	rec.assertQuiet(t, 40*time.Millisecond)
}

func TestStartAgainDoesNotStackTimers(t *testing.T) {
	rec := newRecorder()
	c := New(10, 30*time.Millisecond, rec.observe)
	c.Start()
	c.Start()
	c.Start()
	defer c.Stop()

	first := rec.wait(t)
	require.Equal(t, 1, first, "one timer, one advance")
	rec.assertQuiet(t, 15*time.Millisecond)
}

func TestZeroSlides(t *testing.T) {
	c := New(0, time.Millisecond, nil)
	c.Start()
	defer c.Stop()
	assert.Equal(t, 0, c.Next())
	assert.Equal(t, 0, c.Index())
}
