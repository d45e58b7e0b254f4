package main

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// DefaultThemeColor matches the accent color the UI ships with.
const DefaultThemeColor = "#409EFF"

// Preferences is the durably persisted display preference set.
type Preferences struct {
	IsDark     bool   `json:"isdark"`
	ThemeColor string `json:"themeColor"`
}

// ThemeStore holds the display preferences, loading them at construction
// and writing them back on every change. A corrupt stored value falls back
// to the defaults.
type ThemeStore struct {
	logger  *zap.Logger
	storage PrefsStorage

	mu    sync.Mutex
	prefs Preferences
}

func NewThemeStore(logger *zap.Logger, storage PrefsStorage) *ThemeStore {
	ts := &ThemeStore{
		logger:  logger,
		storage: storage,
		prefs:   Preferences{IsDark: false, ThemeColor: DefaultThemeColor},
	}
	if p, ok := storage.LoadPrefs(context.Background()); ok {
		ts.prefs = p
	}
	return ts
}

// ToggleDark flips the dark-mode flag.
func (ts *ThemeStore) ToggleDark() {
	ts.mu.Lock()
	ts.prefs.IsDark = !ts.prefs.IsDark
	p := ts.prefs
	ts.mu.Unlock()
	ts.persist(p)
}

// SetThemeColor updates the accent color.
func (ts *ThemeStore) SetThemeColor(color string) {
	ts.mu.Lock()
	ts.prefs.ThemeColor = color
	p := ts.prefs
	ts.mu.Unlock()
	ts.persist(p)
}

// Prefs returns the current preferences.
func (ts *ThemeStore) Prefs() Preferences {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.prefs
}

func (ts *ThemeStore) persist(p Preferences) {
	if err := ts.storage.SavePrefs(context.Background(), p); err != nil {
		ts.logger.Warn("theme: failed to persist preferences", zap.Error(err))
	}
}
