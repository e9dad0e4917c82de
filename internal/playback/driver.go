package playback

import (
	"errors"
	"image"
	"math"
	"time"

	"github.com/mgpai22/capcanvas/internal/logging"
	"github.com/mgpai22/capcanvas/internal/render"
	"github.com/mgpai22/capcanvas/internal/subtitle"
)

// DefaultFPS is the tick rate for real-time playback and export.
const DefaultFPS = 30

// previewProgress is where a style change is previewed
const previewProgress = 0.5

var ErrNotLoaded = errors.New("no captions loaded")

// State of the playback driver.
type State int

const (
	Stopped State = iota
	Playing
	Paused
	Seeking
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Seeking:
		return "seeking"
	default:
		return "unknown"
	}
}

// Track maps a pointer coordinate onto the [0,1] span of a seek control.
type Track struct {
	Left  float64
	Width float64
}

// Fraction returns the clamped position of x along the track.
func (t Track) Fraction(x float64) float64 {
	if t.Width <= 0 {
		return 0
	}
	return math.Max(0, math.Min(1, (x-t.Left)/t.Width))
}

// Driver advances playback over a caption sequence and renders each step.
// It is not safe for concurrent use; call it from the scheduler goroutine.
type Driver struct {
	sched    Scheduler
	renderer *render.Renderer
	canvas   *render.Canvas
	styles   render.StyleSource
	readout  Readout
	logger   *logging.Logger

	// OnFrame receives every rendered frame. The image is reused.
	OnFrame func(progress float64, img *image.RGBA)
	// OnEnd is called when playback runs to the end.
	OnEnd func()

	captions   subtitle.Sequence
	durationMs float64

	state        State
	preSeek      State
	resume       bool
	seekProgress float64
	seekPending  bool
	startWall    time.Time
	frame        FrameID
	framePending bool
	progress     float64
}

func NewDriver(
	sched Scheduler,
	styles render.StyleSource,
	readout Readout,
	logger *logging.Logger,
) *Driver {
	if logger == nil {
		logger = logging.Nop()
	}
	if readout == nil {
		readout = nopReadout{}
	}
	return &Driver{
		sched:    sched,
		renderer: render.NewRenderer(logger),
		canvas:   render.NewCanvas(),
		styles:   styles,
		readout:  readout,
		logger:   logger,
	}
}

func (d *Driver) State() State {
	return d.state
}

// Progress is the fraction of the last rendered frame.
func (d *Driver) Progress() float64 {
	return d.progress
}

func (d *Driver) Canvas() *render.Canvas {
	return d.canvas
}

func (d *Driver) totalSeconds() float64 {
	return d.durationMs / 1000
}

// Load replaces the captions and stops playback.
func (d *Driver) Load(seq subtitle.Sequence, durationMs float64) {
	d.cancelStep()
	d.captions = seq
	d.durationMs = durationMs
	d.state = Stopped
	d.resume = false
	d.seekPending = false
	d.seekProgress = 0
	d.progress = 0
	d.readout.Update(0, d.totalSeconds())
}

// Reset drops the captions and stops playback.
func (d *Driver) Reset() {
	d.Load(nil, 0)
}

// Start begins playback from 0, or from a released seek position that has
// not been played yet.
func (d *Driver) Start() error {
	if d.captions == nil {
		return ErrNotLoaded
	}

	switch d.state {
	case Playing:
		return nil
	case Seeking:
		d.resume = true
		return nil
	}

	d.cancelStep()

	offset := 0.0
	if d.seekPending {
		offset = d.seekProgress * d.durationMs
		d.seekPending = false
	}
	now := d.sched.Now()
	d.startWall = now.Add(-msToDuration(offset))
	d.state = Playing

	d.logger.Debugw("Playback started", "offset_ms", offset)
	d.step(now)
	return nil
}

// Pause stops stepping. A later Start begins again from 0 unless a seek
// happened in between.
func (d *Driver) Pause() {
	switch d.state {
	case Playing:
		d.cancelStep()
		d.state = Paused
	case Seeking:
		d.resume = false
		d.preSeek = Paused
	}
}

// SeekPress begins a seek gesture at pointer position x.
func (d *Driver) SeekPress(x float64, track Track) {
	if d.captions == nil || d.durationMs <= 0 {
		return
	}

	d.cancelStep()
	if d.state != Seeking {
		d.resume = d.state == Playing
		d.preSeek = d.state
		if d.resume {
			d.preSeek = Paused
		}
	}
	d.state = Seeking
	d.seekTo(track.Fraction(x))
}

// SeekMove follows the pointer while a seek is in progress.
func (d *Driver) SeekMove(x float64, track Track) {
	if d.state != Seeking {
		return
	}
	d.seekTo(track.Fraction(x))
}

// SeekRelease ends the gesture. Playback interrupted by the seek resumes
// from the released fraction.
func (d *Driver) SeekRelease(x float64, track Track) {
	if d.state != Seeking {
		return
	}

	frac := track.Fraction(x)
	d.seekTo(frac)

	now := d.sched.Now()
	d.startWall = now.Add(-msToDuration(frac * d.durationMs))

	if d.resume {
		d.resume = false
		d.seekPending = false
		d.state = Playing
		d.scheduleStep()
		return
	}
	d.seekPending = true
	d.state = d.preSeek
}

// Preview renders the midpoint frame. Ignored while playing or seeking.
func (d *Driver) Preview() {
	if d.captions == nil || d.state == Playing || d.state == Seeking {
		return
	}
	d.renderAt(previewProgress)
}

func (d *Driver) step(now time.Time) {
	d.framePending = false
	if d.state != Playing {
		return
	}

	progress := 1.0
	if d.durationMs > 0 {
		elapsed := float64(now.Sub(d.startWall)) / float64(time.Millisecond)
		progress = math.Min(elapsed/d.durationMs, 1)
	}
	d.renderAt(progress)

	if progress >= 1 {
		d.state = Stopped
		d.progress = 0
		d.readout.Update(0, d.totalSeconds())
		d.logger.Debugw("Playback finished")
		if d.OnEnd != nil {
			d.OnEnd()
		}
		return
	}
	d.scheduleStep()
}

func (d *Driver) seekTo(frac float64) {
	d.seekProgress = frac
	d.renderAt(frac)
}

func (d *Driver) renderAt(progress float64) {
	d.renderer.RenderFrame(d.canvas, d.captions, d.durationMs, progress, d.styles.Style())
	d.progress = progress
	d.readout.Update(progress*d.totalSeconds(), d.totalSeconds())
	if d.OnFrame != nil {
		d.OnFrame(progress, d.canvas.Image())
	}
}

func (d *Driver) scheduleStep() {
	d.frame = d.sched.RequestFrame(d.step)
	d.framePending = true
}

// cancelStep must run before any state change so a stale step never
// renders under the new state.
func (d *Driver) cancelStep() {
	if d.framePending {
		d.sched.CancelFrame(d.frame)
		d.framePending = false
	}
}

func msToDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
