// Package markdown renders lesson, tutor and chat text for the terminal.
package markdown

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// Style is the glamour standard style used for every render.
const Style = "dark"

const minWidth = 20

var (
	mu        sync.Mutex
	renderers = map[int]*glamour.TermRenderer{}
)

// Render wraps md to width and styles it. Text that glamour cannot handle
// is returned unchanged.
func Render(md string, width int) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	if width < minWidth {
		width = minWidth
	}

	mu.Lock()
	defer mu.Unlock()

	r, ok := renderers[width]
	if !ok {
		var err error
		r, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle(Style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		renderers[width] = r
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}
