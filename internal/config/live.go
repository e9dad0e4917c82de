package config

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/mgpai22/capcanvas/internal/logging"
	"github.com/mgpai22/capcanvas/internal/render"
)

var _ render.StyleSource = (*LiveStyle)(nil)

// LiveStyle is a render.StyleSource that follows edits to the config
// file. Readers always see a complete snapshot; a bad edit is logged and
// the previous style kept.
type LiveStyle struct {
	mu    sync.RWMutex
	style render.Style

	cfg    *Config
	logger *logging.Logger

	// OnChange, if set, runs after a new style is swapped in.
	OnChange func(render.Style)
}

// NewLiveStyle starts from cfg.Style. Call Watch to begin following the
// config file.
func NewLiveStyle(cfg *Config, logger *logging.Logger) *LiveStyle {
	if logger == nil {
		logger = logging.Nop()
	}
	return &LiveStyle{
		style:  cfg.Style,
		cfg:    cfg,
		logger: logger.Named("style"),
	}
}

func (l *LiveStyle) Style() render.Style {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.style
}

// Set replaces the current style.
func (l *LiveStyle) Set(s render.Style) {
	l.mu.Lock()
	l.style = s
	l.mu.Unlock()

	if l.OnChange != nil {
		l.OnChange(s)
	}
}

// Watch reloads the style whenever the config file changes. It reports
// false when no config file was loaded.
func (l *LiveStyle) Watch() bool {
	if l.cfg.File == "" || l.cfg.v == nil {
		return false
	}
	l.cfg.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		if err := l.reload(); err != nil {
			l.logger.Warnw("Ignoring style change",
				"file", e.Name,
				"error", err,
			)
			return
		}
		l.logger.Infow("Style reloaded", "file", e.Name)
	})
	l.cfg.v.WatchConfig()
	l.logger.Debugw("Watching config file", "file", l.cfg.File)
	return true
}

// reload decodes the settings viper has already re-read. Flags and
// environment keep their precedence over the file.
func (l *LiveStyle) reload() error {
	var next Config
	if err := l.cfg.v.Unmarshal(&next); err != nil {
		return fmt.Errorf("failed to decode style: %w", err)
	}
	if err := validate.Struct(next.Style); err != nil {
		return fmt.Errorf("invalid style: %w", err)
	}
	l.Set(next.Style)
	return nil
}
