package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mgpai22/capcanvas/internal/playback"
	"github.com/mgpai22/capcanvas/internal/render"
	"github.com/mgpai22/capcanvas/internal/subtitle"
)

// stoppedClock never runs frame callbacks, so progress only moves when a
// control moves it.
type stoppedClock struct {
	now  time.Time
	next playback.FrameID
}

func (c *stoppedClock) RequestFrame(func(time.Time)) playback.FrameID {
	c.next++
	return c.next
}

func (c *stoppedClock) CancelFrame(playback.FrameID) {}

func (c *stoppedClock) Now() time.Time { return c.now }

const controlsDurationMs = 20000

func newControlsDriver(sched playback.Scheduler) *playback.Driver {
	d := playback.NewDriver(sched, render.StaticStyle(render.DefaultStyle()), nil, nil)
	d.Load(subtitle.Sequence{
		{ID: 1, StartTime: 0, EndTime: 10, Text: "first half"},
		{ID: 2, StartTime: 10, EndTime: 20, Text: "second half"},
	}, controlsDurationMs)
	return d
}

func TestParseControl(t *testing.T) {
	tests := []struct {
		line     string
		want     controlKind
		fraction float64
		wantErr  bool
	}{
		{line: "", want: controlToggle},
		{line: "  P ", want: controlToggle},
		{line: "+", want: controlForward},
		{line: "-", want: controlBack},
		{line: "g 0.25", want: controlGoto, fraction: 0.25},
		{line: "r", want: controlRestart},
		{line: "q", want: controlQuit},
		{line: "g", wantErr: true},
		{line: "g 2", wantErr: true},
		{line: "g half", wantErr: true},
		{line: "x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := parseControl(tt.line)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseControl(%q) error = %v, wantErr %v", tt.line, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.kind != tt.want || got.fraction != tt.fraction {
				t.Errorf("parseControl(%q) = %+v", tt.line, got)
			}
		})
	}
}

func TestApplyControl(t *testing.T) {
	d := newControlsDriver(&stoppedClock{now: time.Unix(1_700_000_000, 0)})

	steps := []struct {
		line      string
		wantState playback.State
		wantProg  float64
	}{
		{"p", playback.Playing, 0},
		{"p", playback.Paused, 0},
		{"g 0.5", playback.Paused, 0.5},
		// resumes where it was paused instead of from 0
		{"p", playback.Playing, 0.5},
		{"+", playback.Playing, 0.75},
		{"-", playback.Playing, 0.5},
		{"p", playback.Paused, 0.5},
		{"r", playback.Playing, 0},
	}
	for i, s := range steps {
		c, err := parseControl(s.line)
		if err != nil {
			t.Fatalf("step %d: parseControl(%q) error = %v", i, s.line, err)
		}
		quit, err := applyControl(d, c, controlsDurationMs)
		if err != nil || quit {
			t.Fatalf("step %d (%q): applyControl() = %v, %v", i, s.line, quit, err)
		}
		if d.State() != s.wantState || d.Progress() != s.wantProg {
			t.Errorf("step %d (%q): state %v progress %v, want %v %v",
				i, s.line, d.State(), d.Progress(), s.wantState, s.wantProg)
		}
	}

	quit, err := applyControl(d, playControl{kind: controlQuit}, controlsDurationMs)
	if err != nil || !quit {
		t.Errorf("quit control = %v, %v; want true, nil", quit, err)
	}
}

func TestReadControls(t *testing.T) {
	loop := playback.NewLoop(30)
	d := newControlsDriver(loop)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	quitCalled := false
	go readControls(ctx, strings.NewReader("g 0.25\nbogus\nq\n"), loop, d, controlsDurationMs, func() {
		quitCalled = true
		cancel()
	})

	if err := loop.Run(ctx); err != context.Canceled {
		t.Fatalf("Run() = %v, want context.Canceled from quit", err)
	}
	if !quitCalled {
		t.Error("quit control did not stop playback")
	}
	if d.State() != playback.Stopped || d.Progress() != 0.25 {
		t.Errorf("state %v progress %v, want Stopped at 0.25", d.State(), d.Progress())
	}
}
