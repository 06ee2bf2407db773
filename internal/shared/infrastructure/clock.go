package infrastructure

import (
	"sync"
	"time"
)

// Clock source de temps injectable (horloge synthétique en test)
type Clock interface {
	Now() time.Time
}

// SystemClock horloge système, toujours en UTC
type SystemClock struct{}

// Now retourne l'heure courante
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FakeClock horloge manuelle pour les tests
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t.UTC()}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
