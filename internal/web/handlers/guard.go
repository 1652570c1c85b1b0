package handlers

import (
	"sync"

	"github.com/kozaktomas/photo-labeler/internal/session"
)

// Guard serializes access to a navigator, which is not safe for concurrent use.
type Guard struct {
	mu  sync.Mutex
	nav *session.Navigator
}

// NewGuard wraps nav.
func NewGuard(nav *session.Navigator) *Guard {
	return &Guard{nav: nav}
}

// Do runs fn while holding the navigator lock.
func (g *Guard) Do(fn func(nav *session.Navigator) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(g.nav)
}
