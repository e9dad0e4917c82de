package playback

import (
	"context"
	"sort"
	"sync"
	"time"
)

// FrameID identifies a requested frame callback.
type FrameID uint64

// Scheduler hands out per-frame callbacks, like a display's animation
// tick. Callbacks run one at a time on the scheduler's goroutine.
type Scheduler interface {
	RequestFrame(fn func(now time.Time)) FrameID
	CancelFrame(id FrameID)
	Now() time.Time
}

// Loop is a real-time Scheduler. Frame callbacks and posted tasks all run
// on the goroutine that calls Run.
type Loop struct {
	interval time.Duration
	tasks    chan func()
	done     chan struct{}
	stop     sync.Once

	mu     sync.Mutex
	nextID FrameID
	frames map[FrameID]func(time.Time)
}

// NewLoop creates a loop that ticks fps times per second.
func NewLoop(fps int) *Loop {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Loop{
		interval: time.Second / time.Duration(fps),
		tasks:    make(chan func(), 64),
		done:     make(chan struct{}),
		frames:   make(map[FrameID]func(time.Time)),
	}
}

func (l *Loop) RequestFrame(fn func(now time.Time)) FrameID {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	l.frames[l.nextID] = fn
	return l.nextID
}

func (l *Loop) CancelFrame(id FrameID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.frames, id)
}

func (l *Loop) Now() time.Time {
	return time.Now()
}

// Post queues fn to run on the loop goroutine. Safe to call from anywhere.
// It reports false, dropping fn, once Run has returned.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Run drives the loop until ctx is done. A loop runs once.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	defer l.stop.Do(func() { close(l.done) })

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.tasks:
			fn()
		case now := <-ticker.C:
			l.runFrames(now)
		}
	}
}

// runFrames runs the callbacks pending at tick time. Callbacks requested
// while running wait for the next tick.
func (l *Loop) runFrames(now time.Time) {
	l.mu.Lock()
	ids := make([]FrameID, 0, len(l.frames))
	for id := range l.frames {
		ids = append(ids, id)
	}
	l.mu.Unlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		l.mu.Lock()
		fn, ok := l.frames[id]
		delete(l.frames, id)
		l.mu.Unlock()

		if ok {
			fn(now)
		}
	}
}
