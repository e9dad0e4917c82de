package playback

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/mgpai22/capcanvas/internal/logging"
	"github.com/mgpai22/capcanvas/internal/render"
	"github.com/mgpai22/capcanvas/internal/subtitle"
	"github.com/mgpai22/capcanvas/internal/video"
)

// Exporter renders a whole session into a frame sink. Each export runs on
// its own goroutine with its own renderer and canvas, so it never touches
// a Driver's surface.
type Exporter struct {
	FPS    int
	Styles render.StyleSource
	Logger *logging.Logger

	// OnProgress is called after each frame from the export goroutine.
	OnProgress func(frame int, progress float64)
}

// Job tracks a running export.
type Job struct {
	done   chan struct{}
	err    error
	frames int
}

// Done is closed when the export has finished and the sink is closed.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the export finishes and returns its error.
func (j *Job) Wait() error {
	<-j.done
	return j.err
}

// Frames is the number of frames written. Valid after Done.
func (j *Job) Frames() int {
	<-j.done
	return j.frames
}

// FrameCount is the number of frames an export of durationMs produces,
// including the final frame at progress 1.
func FrameCount(durationMs float64, fps int) int {
	if durationMs <= 0 {
		return 1
	}
	return int(math.Ceil(durationMs*float64(fps)/1000)) + 1
}

// Export starts rendering seq into sink. Frame i is stamped i/fps seconds
// after the first frame. The sink is always closed.
func (e *Exporter) Export(
	ctx context.Context,
	seq subtitle.Sequence,
	durationMs float64,
	sink video.FrameSink,
) *Job {
	job := &Job{done: make(chan struct{})}

	go func() {
		defer close(job.done)
		job.frames, job.err = e.run(ctx, seq, durationMs, sink)
	}()

	return job
}

func (e *Exporter) run(
	ctx context.Context,
	seq subtitle.Sequence,
	durationMs float64,
	sink video.FrameSink,
) (frames int, err error) {
	defer func() {
		if closeErr := sink.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close sink: %w", closeErr))
		}
	}()

	if len(seq) == 0 {
		return 0, ErrNotLoaded
	}

	logger := e.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	fps := e.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}
	styles := e.Styles
	if styles == nil {
		styles = render.StaticStyle(render.DefaultStyle())
	}

	renderer := render.NewRenderer(logger)
	canvas := render.NewCanvas()

	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return frames, err
		}

		progress := 1.0
		if durationMs > 0 {
			elapsedMs := float64(i) * 1000 / float64(fps)
			progress = math.Min(elapsedMs/durationMs, 1)
		}

		renderer.RenderFrame(canvas, seq, durationMs, progress, styles.Style())
		if err := sink.WriteFrame(canvas.Image()); err != nil {
			return frames, fmt.Errorf("failed to write frame %d: %w", i, err)
		}
		frames++

		if e.OnProgress != nil {
			e.OnProgress(frames, progress)
		}
		if progress >= 1 {
			logger.Debugw("Export finished", "frames", frames)
			return frames, nil
		}
	}
}
