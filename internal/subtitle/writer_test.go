package subtitle

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteSRTExactBytes(t *testing.T) {
	seq := Sequence{
		{ID: 1, StartTime: 0, EndTime: 1.5, Text: "one two three"},
		{ID: 2, StartTime: 1.5, EndTime: 3, Text: "four five"},
	}

	var buf bytes.Buffer
	if err := WriteSRT(&buf, seq); err != nil {
		t.Fatalf("WriteSRT failed: %v", err)
	}

	want := "1\n00:00:00,000 --> 00:00:01,500\none two three\n\n" +
		"2\n00:00:01,500 --> 00:00:03,000\nfour five\n\n"
	if buf.String() != want {
		t.Errorf("unexpected output:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestWritersByFormat(t *testing.T) {
	seq := Sequence{{ID: 1, StartTime: 1.25, EndTime: 2.5, Text: "Hello"}}
	tmpDir := t.TempDir()

	tests := []struct {
		format Format
		want   string
	}{
		{FormatSRT, "00:00:01,250 --> 00:00:02,500"},
		{FormatVTT, "00:00:01.250 --> 00:00:02.500"},
		{FormatASS, "Dialogue: 0,0:00:01.25,0:00:02.50,Default,,0,0,0,,Hello"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			w, err := NewWriter(tt.format)
			if err != nil {
				t.Fatalf("NewWriter failed: %v", err)
			}
			path := filepath.Join(tmpDir, "nested", "out"+GetExtensionForFormat(tt.format))
			if err := w.Write(seq, path); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("failed to read output: %v", err)
			}
			if !strings.Contains(string(data), tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, data)
			}
		})
	}
}

func TestGetFormatFromExtension(t *testing.T) {
	tests := map[string]Format{
		"a.srt": FormatSRT,
		"a.VTT": FormatVTT,
		"a.ssa": FormatASS,
		"a.txt": FormatSRT,
	}
	for path, want := range tests {
		if got := GetFormatFromExtension(path); got != want {
			t.Errorf("GetFormatFromExtension(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestWithTextsLeavesOriginal(t *testing.T) {
	seq := Sequence{{ID: 1, StartTime: 0, EndTime: 1, Text: "hello"}}
	out, err := seq.WithTexts([]string{"hola"})
	if err != nil {
		t.Fatalf("WithTexts failed: %v", err)
	}
	if out[0].Text != "hola" || seq[0].Text != "hello" {
		t.Errorf("unexpected texts: out=%q seq=%q", out[0].Text, seq[0].Text)
	}
	if _, err := seq.WithTexts(nil); err == nil {
		t.Error("expected error for length mismatch")
	}
}
