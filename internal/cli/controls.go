package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mgpai22/capcanvas/internal/playback"
)

// seconds moved by + and -
const seekStep = 5.0

const controlsHelp = `Controls (type and press Enter):
  p or empty  play / pause
  + / -       jump 5s forward / back
  g <0..1>    go to a fraction of the duration
  r           restart from the beginning
  q           quit`

type controlKind int

const (
	controlToggle controlKind = iota
	controlForward
	controlBack
	controlGoto
	controlRestart
	controlQuit
)

type playControl struct {
	kind     controlKind
	fraction float64
}

func parseControl(line string) (playControl, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return playControl{kind: controlToggle}, nil
	}

	switch fields[0] {
	case "p", "pause", "play":
		return playControl{kind: controlToggle}, nil
	case "+", "f":
		return playControl{kind: controlForward}, nil
	case "-", "b":
		return playControl{kind: controlBack}, nil
	case "r":
		return playControl{kind: controlRestart}, nil
	case "q", "quit":
		return playControl{kind: controlQuit}, nil
	case "g":
		if len(fields) != 2 {
			return playControl{}, errors.New("usage: g <fraction>")
		}
		f, err := strconv.ParseFloat(fields[1], 64)
		if err != nil || f < 0 || f > 1 {
			return playControl{}, fmt.Errorf("fraction must be between 0 and 1, got %q", fields[1])
		}
		return playControl{kind: controlGoto, fraction: f}, nil
	}
	return playControl{}, fmt.Errorf("unknown control %q", fields[0])
}

// applyControl runs c against the driver. It must be called on the loop
// goroutine and reports whether playback should end.
func applyControl(d *playback.Driver, c playControl, durationMs float64) (bool, error) {
	track := playback.Track{Width: 1}
	seekTo := func(frac float64) {
		d.SeekPress(d.Progress(), track)
		d.SeekMove(frac, track)
		d.SeekRelease(frac, track)
	}
	step := 0.0
	if durationMs > 0 {
		step = seekStep * 1000 / durationMs
	}

	switch c.kind {
	case controlToggle:
		if d.State() == playback.Playing {
			d.Pause()
			return false, nil
		}
		// Start alone would begin again from 0
		if d.State() == playback.Paused {
			seekTo(d.Progress())
		}
		return false, d.Start()
	case controlForward:
		seekTo(d.Progress() + step)
	case controlBack:
		seekTo(d.Progress() - step)
	case controlGoto:
		seekTo(c.fraction)
	case controlRestart:
		d.Pause()
		seekTo(0)
		return false, d.Start()
	case controlQuit:
		return true, nil
	}
	return false, nil
}

// readControls feeds lines from r to the loop until r ends, the loop
// stops or q is entered.
func readControls(
	ctx context.Context,
	r io.Reader,
	loop *playback.Loop,
	d *playback.Driver,
	durationMs float64,
	quit func(),
) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		c, err := parseControl(scanner.Text())
		if err != nil {
			logger.Warnw("Ignoring control", "error", err)
			continue
		}
		posted := loop.Post(func() {
			done, err := applyControl(d, c, durationMs)
			if err != nil {
				logger.Warnw("Control failed", "error", err)
			}
			if done {
				quit()
			}
		})
		if !posted {
			return
		}
	}
}
