package video

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// FFmpegSink pipes raw RGBA frames into an ffmpeg process.
type FFmpegSink struct {
	opts   Options
	path   string
	pw     *io.PipeWriter
	done   chan error
	stderr bytes.Buffer
	frames int
	closed bool
}

// encoder settings per container
func outputArgs(c Container, fps int) (ffmpeg.KwArgs, error) {
	switch c {
	case ContainerWebM:
		return ffmpeg.KwArgs{
			"c:v":          "libvpx-vp9",
			"pix_fmt":      "yuva420p",
			"b:v":          "2M",
			"r":            fps,
			"auto-alt-ref": 0,
		}, nil
	case ContainerMP4:
		return ffmpeg.KwArgs{
			"c:v":      "libx264",
			"pix_fmt":  "yuv420p",
			"preset":   "veryfast",
			"movflags": "+faststart",
			"r":        fps,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContainer, c)
	}
}

// NewFFmpegSink starts ffmpeg writing to outputPath. The container is taken
// from the extension (.webm or .mp4).
func NewFFmpegSink(ffmpegPath, outputPath string, opts Options) (*FFmpegSink, error) {
	container, err := ContainerFor(outputPath)
	if err != nil {
		return nil, err
	}
	kwargs, err := outputArgs(container, opts.FPS)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	pr, pw := io.Pipe()
	s := &FFmpegSink{
		opts: opts,
		path: outputPath,
		pw:   pw,
		done: make(chan error, 1),
	}

	stream := ffmpeg.Input("pipe:", ffmpeg.KwArgs{
		"format":    "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"framerate": opts.FPS,
	}).
		Output(outputPath, kwargs).
		OverWriteOutput().
		WithInput(pr).
		WithErrorOutput(&s.stderr).
		SetFfmpegPath(ffmpegPath)

	go func() {
		err := stream.Run()
		// unblock writers if ffmpeg exits early
		_ = pr.CloseWithError(io.ErrClosedPipe)
		s.done <- err
	}()

	return s, nil
}

func (s *FFmpegSink) WriteFrame(img *image.RGBA) error {
	if s.closed {
		return fmt.Errorf("write to closed sink")
	}
	if err := checkFrame(img, s.opts); err != nil {
		return err
	}

	rowBytes := s.opts.Width * 4
	if img.Stride == rowBytes {
		_, err := s.pw.Write(img.Pix[:s.opts.frameBytes()])
		return s.writeErr(err)
	}
	for y := 0; y < s.opts.Height; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+rowBytes]
		if _, err := s.pw.Write(row); err != nil {
			return s.writeErr(err)
		}
	}
	s.frames++
	return nil
}

func (s *FFmpegSink) writeErr(err error) error {
	if err == nil {
		s.frames++
		return nil
	}
	closeErr := s.Close()
	if closeErr != nil {
		return fmt.Errorf("failed to write frame %d: %w", s.frames, closeErr)
	}
	return fmt.Errorf("failed to write frame %d: %w", s.frames, err)
}

// Close flushes the pipe and waits for ffmpeg to finish.
func (s *FFmpegSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	_ = s.pw.Close()
	if err := <-s.done; err != nil {
		return fmt.Errorf("ffmpeg encoding failed: %w: %s", err, lastLines(s.stderr.String(), 5))
	}
	return nil
}

// Frames is the number of frames written so far.
func (s *FFmpegSink) Frames() int {
	return s.frames
}

func (s *FFmpegSink) Path() string {
	return s.path
}

func lastLines(text string, n int) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "; ")
}
