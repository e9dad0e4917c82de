package cli

import (
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mgpai22/capcanvas/internal/logging"
	"github.com/mgpai22/capcanvas/internal/playback"
	"github.com/mgpai22/capcanvas/internal/subtitle"
)

const script = "the quick brown fox jumps over the lazy dog"

const srtInput = `1
00:00:00,000 --> 00:00:01,500
Hello there

2
00:00:01,500 --> 00:00:03,000
General Kenobi
`

func TestMain(m *testing.M) {
	logger = logging.Nop()
	os.Exit(m.Run())
}

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func newTestSession() *playback.Session {
	s := playback.NewSession(nil, nil)
	s.PhaseDelay = nil
	return s
}

func TestLoadCaptions(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		content    string
		wantMethod playback.InputMethod
		wantCount  int
		wantEnd    float64
	}{
		{
			name:       "script",
			file:       "script.txt",
			content:    script,
			wantMethod: playback.InputScript,
			wantCount:  3,
		},
		{
			name:       "srt",
			file:       "talk.srt",
			content:    srtInput,
			wantMethod: playback.InputSRT,
			wantCount:  2,
			wantEnd:    3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := newTestSession()
			path := writeInput(t, tt.file, tt.content)

			if err := loadCaptions(context.Background(), session, path); err != nil {
				t.Fatalf("loadCaptions() error = %v", err)
			}
			if session.Method() != tt.wantMethod {
				t.Errorf("Method() = %q, want %q", session.Method(), tt.wantMethod)
			}
			if got := len(session.Captions()); got != tt.wantCount {
				t.Errorf("got %d captions, want %d", got, tt.wantCount)
			}
			if tt.wantEnd > 0 && session.DurationMs() != tt.wantEnd*1000 {
				t.Errorf("DurationMs() = %v, want %v", session.DurationMs(), tt.wantEnd*1000)
			}
		})
	}
}

func TestLoadCaptionsErrors(t *testing.T) {
	ctx := context.Background()

	err := loadCaptions(ctx, newTestSession(), writeInput(t, "empty.srt", "nothing here\n"))
	if !errors.Is(err, subtitle.ErrNoCaptions) {
		t.Errorf("empty srt error = %v, want ErrNoCaptions", err)
	}

	err = loadCaptions(ctx, newTestSession(), writeInput(t, "blank.txt", "   \n"))
	if !errors.Is(err, subtitle.ErrEmptyInput) {
		t.Errorf("blank script error = %v, want ErrEmptyInput", err)
	}

	err = loadCaptions(ctx, newTestSession(), filepath.Join(t.TempDir(), "missing.txt"))
	if err == nil || !strings.Contains(err.Error(), "file not found") {
		t.Errorf("missing file error = %v", err)
	}
}

func TestOutputPath(t *testing.T) {
	if got := outputPath("", "subtitles-x.srt"); got != "subtitles-x.srt" {
		t.Errorf("outputPath() = %q", got)
	}
	if got := outputPath("mine.srt", "subtitles-x.srt"); got != "mine.srt" {
		t.Errorf("outputPath() = %q", got)
	}
}

func TestGenerateCommand(t *testing.T) {
	input := writeInput(t, "script.txt", script)
	output := filepath.Join(t.TempDir(), "out.vtt")

	rootCmd.SetArgs([]string{"generate", input, "--format", "vtt", "-o", output})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	text := string(data)
	if !strings.HasPrefix(text, "WEBVTT\n\n") {
		t.Errorf("output does not start with WEBVTT header: %q", text)
	}
	if !strings.Contains(text, "00:00:00.000 --> ") || !strings.Contains(text, "the quick brown") {
		t.Errorf("unexpected output:\n%s", text)
	}
}

func TestExportSRTCommand(t *testing.T) {
	input := writeInput(t, "script.txt", script)
	output := filepath.Join(t.TempDir(), "out.srt")

	rootCmd.SetArgs([]string{"export", input, "--caption-style", "srt", "-o", output})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	f, err := subtitle.Open(output)
	if err != nil {
		t.Fatalf("failed to parse exported SRT: %v", err)
	}
	if got := len(f.Captions()); got != 3 {
		t.Errorf("got %d captions, want 3", got)
	}
	if got := f.Captions()[2].Text; got != "the lazy dog" {
		t.Errorf("last caption = %q", got)
	}
}

func TestRenderCommand(t *testing.T) {
	input := writeInput(t, "talk.srt", srtInput)
	output := filepath.Join(t.TempDir(), "frame.png")

	rootCmd.SetArgs([]string{"render", input, "--progress", "0.25", "--background", "blue", "-o", output})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("render failed: %v", err)
	}

	f, err := os.Open(output)
	if err != nil {
		t.Fatalf("failed to open frame: %v", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("failed to decode frame: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 1920 || b.Dy() != 1080 {
		t.Fatalf("frame is %dx%d", b.Dx(), b.Dy())
	}
	r, g, b, a := img.At(0, 0).RGBA()
	if r != 0 || g != 0 || b != 0xffff || a != 0xffff {
		t.Errorf("corner pixel = %d,%d,%d,%d, want opaque blue", r>>8, g>>8, b>>8, a>>8)
	}
}

func TestRenderRejectsBadProgress(t *testing.T) {
	input := writeInput(t, "talk.srt", srtInput)

	rootCmd.SetArgs([]string{"render", input, "--progress", "1.5", "-o", filepath.Join(t.TempDir(), "x.png")})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected error for progress outside 0..1")
	}
}

func TestWriteLicense(t *testing.T) {
	tests := []struct {
		name        string
		notices     bool
		license     bool
		wantLicense bool
		wantNotices bool
	}{
		{"license only", false, true, true, false},
		{"with notices", true, true, true, true},
		{"notices only", true, false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sb strings.Builder
			if err := writeLicense(&sb, tt.notices, tt.license); err != nil {
				t.Fatalf("writeLicense() error = %v", err)
			}
			out := sb.String()
			if got := strings.Contains(out, "MIT License"); got != tt.wantLicense {
				t.Errorf("license printed = %v, want %v", got, tt.wantLicense)
			}
			if got := strings.Contains(out, "Third-party components"); got != tt.wantNotices {
				t.Errorf("notices printed = %v, want %v", got, tt.wantNotices)
			}
		})
	}
}
