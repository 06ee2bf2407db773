package domain

import (
	"errors"
	"time"
)

// Window représente une fenêtre d'extraction [since, until]
// DESIGN PATTERN: Value Object (DDD)
//   - Immutable: pas de setters, valeurs fixées à la création
//   - until absent = fenêtre ouverte (pas de borne haute)
type Window struct {
	since time.Time
	until *time.Time
}

// NewWindow crée une fenêtre à partir d'un watermark et d'une borne haute optionnelle
func NewWindow(since time.Time, until *time.Time) (Window, error) {
	if since.IsZero() {
		return Window{}, errors.New("window start cannot be zero")
	}
	w := Window{since: since.UTC()}
	if until != nil {
		u := until.UTC()
		w.until = &u
	}
	return w, nil
}

// Since retourne la borne basse (incluse)
func (w Window) Since() time.Time {
	return w.since
}

// Until retourne la borne haute (incluse) si elle existe
func (w Window) Until() (time.Time, bool) {
	if w.until == nil {
		return time.Time{}, false
	}
	return *w.until, true
}
