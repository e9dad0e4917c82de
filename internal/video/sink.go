package video

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"
)

// FrameSink consumes rendered frames in order. Close finishes the artifact.
type FrameSink interface {
	WriteFrame(img *image.RGBA) error
	Close() error
}

// Container is the output artifact type, chosen from the file extension.
type Container string

const (
	ContainerWebM Container = "webm"
	ContainerMP4  Container = "mp4"
	// numbered PNG files in a directory
	ContainerPNG Container = "png"
)

var ErrUnsupportedContainer = errors.New("unsupported video container")

// ContainerFor maps an output path to its container. A path without an
// extension is treated as a PNG frame directory.
func ContainerFor(path string) (Container, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".webm":
		return ContainerWebM, nil
	case ".mp4":
		return ContainerMP4, nil
	case "":
		return ContainerPNG, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedContainer, ext)
	}
}

// Options describes the frames a sink receives.
type Options struct {
	Width  int
	Height int
	FPS    int
}

func (o Options) frameBytes() int {
	return o.Width * o.Height * 4
}

func checkFrame(img *image.RGBA, opts Options) error {
	b := img.Bounds()
	if b.Dx() != opts.Width || b.Dy() != opts.Height {
		return fmt.Errorf("frame is %dx%d, expected %dx%d",
			b.Dx(), b.Dy(), opts.Width, opts.Height)
	}
	return nil
}
