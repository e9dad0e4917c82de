package config

import (
	"testing"

	"github.com/mgpai22/capcanvas/internal/render"
)

func TestLiveStyleReload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "capcanvas.yml", "style:\n  font_size: small\n")

	cfg, err := Load(WithConfigFile(path))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	live := NewLiveStyle(cfg, nil)
	var changes []render.Style
	live.OnChange = func(s render.Style) { changes = append(changes, s) }

	if got := live.Style().FontSize; got != render.FontSmall {
		t.Fatalf("initial FontSize = %q, want small", got)
	}

	writeFile(t, dir, "capcanvas.yml", "style:\n  font_size: extra-large\n  highlight_keywords: true\n")
	if err := cfg.v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig() error = %v", err)
	}
	if err := live.reload(); err != nil {
		t.Fatalf("reload() error = %v", err)
	}

	got := live.Style()
	if got.FontSize != render.FontExtraLarge || !got.HighlightKeywords {
		t.Errorf("Style() = %+v", got)
	}
	if got.Background != render.BackgroundGreen {
		t.Errorf("Background = %q, want default kept", got.Background)
	}
	if len(changes) != 1 {
		t.Errorf("OnChange called %d times, want 1", len(changes))
	}
}

func TestLiveStyleRejectsInvalidEdit(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "capcanvas.yml", "style:\n  background: blue\n")

	cfg, err := Load(WithConfigFile(path))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	live := NewLiveStyle(cfg, nil)

	writeFile(t, dir, "capcanvas.yml", "style:\n  background: purple\n")
	if err := cfg.v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig() error = %v", err)
	}
	if err := live.reload(); err == nil {
		t.Fatal("reload() error = nil, want invalid style")
	}
	if got := live.Style().Background; got != render.BackgroundBlue {
		t.Errorf("Background = %q, want previous blue", got)
	}
}

func TestLiveStyleWatchWithoutFile(t *testing.T) {
	live := NewLiveStyle(Default(), nil)
	if live.Watch() {
		t.Error("Watch() = true without a config file")
	}
}

func TestLiveStyleSet(t *testing.T) {
	live := NewLiveStyle(Default(), nil)
	want := render.DefaultStyle()
	want.Background = render.BackgroundTransparent

	live.Set(want)
	if got := live.Style(); got != want {
		t.Errorf("Style() = %+v, want %+v", got, want)
	}
}
