package video

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// PNGSink writes every frame as a numbered PNG. It is the fallback when no
// ffmpeg binary is available.
type PNGSink struct {
	dir    string
	opts   Options
	enc    png.Encoder
	frames int
}

func NewPNGSink(dir string, opts Options) (*PNGSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create frame directory: %w", err)
	}
	return &PNGSink{
		dir:  dir,
		opts: opts,
		enc:  png.Encoder{CompressionLevel: png.BestSpeed},
	}, nil
}

// FramePath returns the file name used for frame i.
func (s *PNGSink) FramePath(i int) string {
	return filepath.Join(s.dir, fmt.Sprintf("frame-%05d.png", i))
}

func (s *PNGSink) WriteFrame(img *image.RGBA) error {
	if err := checkFrame(img, s.opts); err != nil {
		return err
	}

	path := s.FramePath(s.frames)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create frame file: %w", err)
	}
	if err := s.enc.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode frame %d: %w", s.frames, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close frame file: %w", err)
	}

	s.frames++
	return nil
}

func (s *PNGSink) Close() error {
	return nil
}

func (s *PNGSink) Frames() int {
	return s.frames
}

// WritePNG encodes a single frame to path.
func WritePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return f.Close()
}
