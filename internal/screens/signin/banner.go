package signin

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/learnhub/internal/ui/theme"
)

const bannerArt = `
 ██╗     ███████╗ █████╗ ██████╗ ███╗   ██╗██╗  ██╗██╗   ██╗██████╗
 ██║     ██╔════╝██╔══██╗██╔══██╗████╗  ██║██║  ██║██║   ██║██╔══██╗
 ██║     █████╗  ███████║██████╔╝██╔██╗ ██║███████║██║   ██║██████╔╝
 ██║     ██╔══╝  ██╔══██║██╔══██╗██║╚██╗██║██╔══██║██║   ██║██╔══██╗
 ███████╗███████╗██║  ██║██║  ██║██║ ╚████║██║  ██║╚██████╔╝██████╔╝
 ╚══════╝╚══════╝╚═╝  ╚═╝╚═╝  ╚═╝╚═╝  ╚═══╝╚═╝  ╚═╝ ╚═════╝ ╚═════╝`

const bannerCompact = "L E A R N H U B"

// RenderBanner returns the banner in the primary color, falling back to
// letters on terminals narrower than the art.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 72 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
