package logging

import "testing"

func TestNewLogger(t *testing.T) {
	for _, verbose := range []bool{false, true} {
		l := NewLogger(verbose)
		if l == nil || l.SugaredLogger == nil {
			t.Fatalf("NewLogger(%v) returned nil logger", verbose)
		}
		if got := l.Desugar().Core().Enabled(-1); got != verbose {
			t.Errorf("NewLogger(%v): debug enabled = %v", verbose, got)
		}
	}
}

func TestNopChildren(t *testing.T) {
	l := Nop().Named("render").With("session", "abc")
	// must not panic
	l.Infow("frame", "progress", 0.5)
	l.Debugw("frame", "progress", 0.5)
}
