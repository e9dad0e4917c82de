package subtitle

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseSRTExampleBlock(t *testing.T) {
	f, err := ParseSRTString("1\n00:00:01,000 --> 00:00:02,500\nHello world\n\n")
	if err != nil {
		t.Fatalf("ParseSRT failed: %v", err)
	}

	seq := f.Captions()
	if len(seq) != 1 {
		t.Fatalf("expected 1 caption, got %d", len(seq))
	}
	want := Caption{ID: 1, StartTime: 1.0, EndTime: 2.5, Text: "Hello world"}
	if seq[0] != want {
		t.Errorf("got %+v, want %+v", seq[0], want)
	}
	if f.DurationMs() != 2500 {
		t.Errorf("expected duration 2500ms, got %v", f.DurationMs())
	}
}

func TestParseSRTMultiLineAndCRLF(t *testing.T) {
	content := "\ufeff7\r\n00:00:01,000 --> 00:00:04,000\r\nHello,\r\n  world!  \r\n\r\n" +
		"42\r\n00:00:05,500 --> 00:00:08,200\r\nThis is a test.\r\nWith multiple lines.\r\n"

	f, err := ParseSRTString(content)
	if err != nil {
		t.Fatalf("ParseSRT failed: %v", err)
	}

	seq := f.Captions()
	if len(seq) != 2 {
		t.Fatalf("expected 2 captions, got %d", len(seq))
	}
	if seq[0].Text != "Hello, world!" {
		t.Errorf("caption 0: unexpected text %q", seq[0].Text)
	}
	if seq[1].Text != "This is a test. With multiple lines." {
		t.Errorf("caption 1: unexpected text %q", seq[1].Text)
	}
	// ids come from position, not from the index line
	if seq[0].ID != 1 || seq[1].ID != 2 {
		t.Errorf("expected ids 1,2, got %d,%d", seq[0].ID, seq[1].ID)
	}
	if math.Abs(seq[1].EndTime-8.2) > 1e-9 {
		t.Errorf("caption 1: expected end 8.2, got %v", seq[1].EndTime)
	}
}

func TestParseSRTSkipsBrokenTimingLine(t *testing.T) {
	content := `1
00:00:01,000 --> 00:00:02,000
First

2
00:00:03,000 -> 00:00:04,000
Broken

3
00:00:05,000 --> 00:00:06,000
Third
`
	f, err := ParseSRTString(content)
	if err != nil {
		t.Fatalf("ParseSRT failed: %v", err)
	}

	seq := f.Captions()
	if len(seq) != 2 {
		t.Fatalf("expected 2 captions, got %d: %+v", len(seq), seq)
	}
	if seq[0].Text != "First" || seq[1].Text != "Third" {
		t.Errorf("unexpected captions: %+v", seq)
	}
	if seq[1].ID != 2 {
		t.Errorf("expected sequential id 2, got %d", seq[1].ID)
	}

	skipped := f.Skipped()
	if len(skipped) != 1 {
		t.Fatalf("expected 1 skipped block, got %d", len(skipped))
	}
	if skipped[0].Line != 6 {
		t.Errorf("expected skipped line 6, got %d", skipped[0].Line)
	}
	if !strings.Contains(skipped[0].Error(), "malformed timing line") {
		t.Errorf("unexpected error text: %v", skipped[0])
	}
}

func TestParseSRTNoBlocks(t *testing.T) {
	for _, content := range []string{"", "\n\n", "just some words\nno timing here\n"} {
		f, err := ParseSRTString(content)
		if err != nil {
			t.Fatalf("ParseSRT(%q) failed: %v", content, err)
		}
		if len(f.Captions()) != 0 {
			t.Errorf("ParseSRT(%q): expected no captions, got %v", content, f.Captions())
		}
	}
}

func TestParseSRTTrailingIndex(t *testing.T) {
	f, err := ParseSRTString("1\n00:00:01,000 --> 00:00:02,000\nok\n\n2")
	if err != nil {
		t.Fatalf("ParseSRT failed: %v", err)
	}
	if len(f.Captions()) != 1 {
		t.Errorf("expected 1 caption, got %d", len(f.Captions()))
	}
	if len(f.Skipped()) != 1 {
		t.Errorf("expected the dangling index to be reported, got %v", f.Skipped())
	}
}

func TestParseSRTSkipsEmptyAndReversedBlocks(t *testing.T) {
	content := "1\n00:00:01,000 --> 00:00:02,000\n\n" +
		"2\n00:00:05,000 --> 00:00:04,000\nbackwards\n\n" +
		"3\n00:00:06,000 --> 00:00:07,000\nkept\n"

	f, err := ParseSRTString(content)
	if err != nil {
		t.Fatalf("ParseSRT failed: %v", err)
	}
	seq := f.Captions()
	if len(seq) != 1 || seq[0].Text != "kept" || seq[0].ID != 1 {
		t.Errorf("unexpected captions: %+v", seq)
	}
	if len(f.Skipped()) != 2 {
		t.Errorf("expected 2 skipped blocks, got %d", len(f.Skipped()))
	}
}

func TestSRTRoundTrip(t *testing.T) {
	seq := Sequence{
		{ID: 1, StartTime: 0, EndTime: 0.123, Text: "alpha beta"},
		{ID: 2, StartTime: 0.123, EndTime: 59.999, Text: "gamma"},
		{ID: 3, StartTime: 61.5, EndTime: 3600.001, Text: "delta, epsilon!"},
	}

	var buf bytes.Buffer
	if err := WriteSRT(&buf, seq); err != nil {
		t.Fatalf("WriteSRT failed: %v", err)
	}

	f, err := ParseSRT(&buf)
	if err != nil {
		t.Fatalf("ParseSRT failed: %v", err)
	}
	got := f.Captions()
	if len(got) != len(seq) {
		t.Fatalf("expected %d captions, got %d", len(seq), len(got))
	}
	for i := range seq {
		if got[i].ID != seq[i].ID || got[i].Text != seq[i].Text {
			t.Errorf("caption %d: got %+v, want %+v", i, got[i], seq[i])
		}
		if FormatTimestamp(got[i].StartTime) != FormatTimestamp(seq[i].StartTime) ||
			FormatTimestamp(got[i].EndTime) != FormatTimestamp(seq[i].EndTime) {
			t.Errorf("caption %d: times differ: got %+v, want %+v", i, got[i], seq[i])
		}
	}
}

func TestOpenSRTFile(t *testing.T) {
	tmpDir := t.TempDir()
	srtPath := filepath.Join(tmpDir, "test.srt")
	content := "1\n00:00:01,000 --> 00:00:04,000\nHello, world!\n"
	if err := os.WriteFile(srtPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	f, err := Open(srtPath)
	if err != nil {
		t.Fatalf("failed to open SRT file: %v", err)
	}
	if f.Format() != FormatSRT {
		t.Errorf("expected format SRT, got %s", f.Format())
	}
	if len(f.Captions()) != 1 {
		t.Errorf("expected 1 caption, got %d", len(f.Captions()))
	}
}

func TestOpenUnsupportedFormat(t *testing.T) {
	tmpDir := t.TempDir()
	txtPath := filepath.Join(tmpDir, "test.txt")
	if err := os.WriteFile(txtPath, []byte("test"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	_, err := Open(txtPath)
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("expected 'unsupported' in error, got: %v", err)
	}
}
