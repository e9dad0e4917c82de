package playback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mgpai22/capcanvas/internal/logging"
	"github.com/mgpai22/capcanvas/internal/subtitle"
)

// ErrBusy is returned while a generation is already running.
var ErrBusy = errors.New("generation already in progress")

// InputMethod selects where captions come from.
type InputMethod string

const (
	InputScript InputMethod = "script"
	InputSRT    InputMethod = "srt"
)

// generation phases shown while freeform text is processed
var generationPhases = []string{
	"Processing your script...",
	"Generating subtitle timings...",
	"Applying styling...",
	"Finalizing subtitles...",
}

// Phase reports generation progress.
type Phase struct {
	Index   int
	Name    string
	Percent int
}

// GenerationError wraps any failure while generating from text.
type GenerationError struct {
	Phase string
	Err   error
}

func (e *GenerationError) Error() string {
	if e.Phase == "" {
		return fmt.Sprintf("failed to generate captions: %v", e.Err)
	}
	return fmt.Sprintf("failed to generate captions during %q: %v", e.Phase, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// DefaultPhaseDelay waits 600ms plus up to 400ms of jitter.
func DefaultPhaseDelay() time.Duration {
	return 600*time.Millisecond + time.Duration(rand.Int63n(int64(400*time.Millisecond)))
}

// Session holds the captions of one document and feeds them to a Driver.
type Session struct {
	ID string

	// PhaseDelay paces the generation phases. Nil means no delay.
	PhaseDelay func() time.Duration

	driver     *Driver
	logger     *logging.Logger
	method     InputMethod
	captions   subtitle.Sequence
	durationMs float64
	generating bool
}

// NewSession creates an empty session. driver may be nil when nothing is
// played back.
func NewSession(driver *Driver, logger *logging.Logger) *Session {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Session{
		ID:         uuid.NewString(),
		PhaseDelay: DefaultPhaseDelay,
		driver:     driver,
		logger:     logger,
		method:     InputScript,
	}
}

func (s *Session) Method() InputMethod {
	return s.method
}

func (s *Session) Captions() subtitle.Sequence {
	return s.captions
}

func (s *Session) DurationMs() float64 {
	return s.durationMs
}

func (s *Session) Generating() bool {
	return s.generating
}

// Loaded reports whether captions are present.
func (s *Session) Loaded() bool {
	return len(s.captions) > 0
}

// ExportName returns the default artifact name for ext (".webm", ".srt").
func (s *Session) ExportName(ext string) string {
	return "subtitles-" + s.ID + ext
}

// SetInputMethod switches the input source and clears the session.
func (s *Session) SetInputMethod(method InputMethod) {
	s.method = method
	s.reset()
}

// Generate builds captions from freeform text. onPhase, if set, is called
// at the start of every phase.
func (s *Session) Generate(ctx context.Context, text string, onPhase func(Phase)) (err error) {
	if s.generating {
		return ErrBusy
	}
	if strings.TrimSpace(text) == "" {
		return subtitle.ErrEmptyInput
	}

	s.generating = true
	defer func() {
		s.generating = false
	}()

	phase := ""
	defer func() {
		if r := recover(); r != nil {
			err = &GenerationError{Phase: phase, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	for i, name := range generationPhases {
		phase = name
		if onPhase != nil {
			onPhase(Phase{Index: i, Name: name, Percent: (i + 1) * 100 / len(generationPhases)})
		}
		if err := s.wait(ctx); err != nil {
			return &GenerationError{Phase: phase, Err: err}
		}
	}

	seq, estimate, err := subtitle.FromText(text)
	if err != nil {
		return &GenerationError{Phase: phase, Err: err}
	}

	s.logger.Infow("Generated captions",
		"session", s.ID,
		"captions", len(seq),
		"duration", estimate,
	)
	s.load(seq, estimate*1000)
	return nil
}

// Import loads captions from SRT content. The parsed file is returned so
// callers can report skipped blocks. An import without a single caption
// clears the session and returns subtitle.ErrNoCaptions.
func (s *Session) Import(r io.Reader) (*subtitle.SRTFile, error) {
	if s.generating {
		return nil, ErrBusy
	}

	f, err := subtitle.ParseSRT(r)
	if err != nil {
		return nil, err
	}
	for _, skipped := range f.Skipped() {
		s.logger.Warnw("Skipped malformed block", "error", skipped)
	}

	if len(f.Captions()) == 0 {
		s.reset()
		return f, subtitle.ErrNoCaptions
	}

	s.load(f.Captions(), f.DurationMs())
	return f, nil
}

// Load installs an already built sequence, for example a translation.
func (s *Session) Load(seq subtitle.Sequence, durationMs float64) {
	s.load(seq, durationMs)
}

func (s *Session) load(seq subtitle.Sequence, durationMs float64) {
	s.captions = seq
	s.durationMs = durationMs
	if s.driver != nil {
		s.driver.Load(seq, durationMs)
	}
}

func (s *Session) reset() {
	s.captions = nil
	s.durationMs = 0
	if s.driver != nil {
		s.driver.Reset()
	}
}

func (s *Session) wait(ctx context.Context) error {
	if s.PhaseDelay == nil {
		return ctx.Err()
	}
	timer := time.NewTimer(s.PhaseDelay())
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
