package router

import (
	"github.com/abhisek/learnhub/internal/screen"
	"github.com/abhisek/learnhub/internal/ui/layout"

	tea "charm.land/bubbletea/v2"
)

// Router holds the single active view. Showing a view discards the
// previous one; navigation history is owned by whoever drives the router.
type Router struct {
	active screen.Screen
}

// New creates a Router showing initial, which may be nil.
func New(initial screen.Screen) *Router {
	return &Router{active: initial}
}

// Show replaces the active view and calls its Init().
func (r *Router) Show(s screen.Screen) tea.Cmd {
	r.active = s
	if s == nil {
		return nil
	}
	return s.Init()
}

// Active returns the view being shown, or nil.
func (r *Router) Active() screen.Screen {
	return r.active
}

// Update forwards a message to the active view.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	if r.active == nil {
		return nil
	}
	updated, cmd := r.active.Update(msg)
	r.active = updated
	return cmd
}

// View renders the active view.
func (r *Router) View(width, height int) string {
	if r.active == nil {
		return ""
	}
	return r.active.View(width, height)
}

// Title of the active view, or "".
func (r *Router) Title() string {
	if r.active == nil {
		return ""
	}
	return r.active.Title()
}

// KeyHints of the active view when it provides any.
func (r *Router) KeyHints() []layout.KeyHint {
	if p, ok := r.active.(screen.KeyHintProvider); ok {
		return p.KeyHints()
	}
	return nil
}
