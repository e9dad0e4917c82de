package audio

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestParseProbe(t *testing.T) {
	got, err := parseProbe([]byte(`{"format":{"duration":"12.500000"}}`))
	if err != nil {
		t.Fatalf("parseProbe failed: %v", err)
	}
	if got != 12500*time.Millisecond {
		t.Errorf("expected 12.5s, got %v", got)
	}

	if _, err := parseProbe([]byte(`{"format":{}}`)); err == nil {
		t.Error("expected error for missing duration")
	}
	if _, err := parseProbe([]byte(`not json`)); err == nil {
		t.Error("expected error for invalid json")
	}
}

func TestIsAudioFile(t *testing.T) {
	tests := map[string]bool{
		"voice.mp3":    true,
		"VOICE.WAV":    true,
		"track.opus":   true,
		"movie.mp4":    false,
		"captions.srt": false,
		"noext":        false,
	}
	for path, want := range tests {
		if got := IsAudioFile(path); got != want {
			t.Errorf("IsAudioFile(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestAudioCodecFor(t *testing.T) {
	if got := audioCodecFor("out.webm"); got != "libopus" {
		t.Errorf("webm codec = %s", got)
	}
	if got := audioCodecFor("out.mp4"); got != "aac" {
		t.Errorf("mp4 codec = %s", got)
	}
}

func TestMuxSoundtrackMissingInput(t *testing.T) {
	dir := t.TempDir()
	err := MuxSoundtrack(context.Background(),
		filepath.Join(dir, "missing.webm"),
		filepath.Join(dir, "missing.mp3"),
		filepath.Join(dir, "out.webm"),
	)
	if err == nil {
		t.Fatal("expected error for missing input")
	}
}

func TestGetDurationMissingFile(t *testing.T) {
	_, err := GetDuration(context.Background(), filepath.Join(t.TempDir(), "nope.webm"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
