package playback

import (
	"bytes"
	"image"
	"sort"
	"time"

	"github.com/mgpai22/capcanvas/internal/render"
	"github.com/mgpai22/capcanvas/internal/subtitle"
)

// fakeScheduler runs frame callbacks only when advanced.
type fakeScheduler struct {
	now    time.Time
	nextID FrameID
	frames map[FrameID]func(time.Time)
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{
		now:    time.Unix(1_700_000_000, 0),
		frames: make(map[FrameID]func(time.Time)),
	}
}

func (f *fakeScheduler) RequestFrame(fn func(time.Time)) FrameID {
	f.nextID++
	f.frames[f.nextID] = fn
	return f.nextID
}

func (f *fakeScheduler) CancelFrame(id FrameID) {
	delete(f.frames, id)
}

func (f *fakeScheduler) Now() time.Time {
	return f.now
}

func (f *fakeScheduler) pending() int {
	return len(f.frames)
}

// advance moves the clock and fires one tick.
func (f *fakeScheduler) advance(d time.Duration) {
	f.now = f.now.Add(d)
	ids := make([]FrameID, 0, len(f.frames))
	for id := range f.frames {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		fn, ok := f.frames[id]
		if !ok {
			continue
		}
		delete(f.frames, id)
		fn(f.now)
	}
}

type countingStyle struct {
	style render.Style
	calls int
}

func (c *countingStyle) Style() render.Style {
	c.calls++
	return c.style
}

type testRig struct {
	sched    *fakeScheduler
	driver   *Driver
	readout  *TextReadout
	styles   *countingStyle
	rendered []float64
	ended    int
}

func newTestRig() *testRig {
	rig := &testRig{
		sched:   newFakeScheduler(),
		readout: &TextReadout{W: &bytes.Buffer{}},
		styles:  &countingStyle{style: render.DefaultStyle()},
	}
	rig.driver = NewDriver(rig.sched, rig.styles, rig.readout, nil)
	rig.driver.OnFrame = func(progress float64, _ *image.RGBA) {
		rig.rendered = append(rig.rendered, progress)
	}
	rig.driver.OnEnd = func() { rig.ended++ }
	return rig
}

func (r *testRig) last() float64 {
	if len(r.rendered) == 0 {
		return -1
	}
	return r.rendered[len(r.rendered)-1]
}

// three seconds of captions
func testSequence() subtitle.Sequence {
	return subtitle.Sequence{
		{ID: 1, StartTime: 0, EndTime: 1.5, Text: "one two three"},
		{ID: 2, StartTime: 1.5, EndTime: 3, Text: "four five"},
	}
}
