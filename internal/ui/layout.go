// Package ui holds layout helpers shared by the views.
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tutor-scheduler/internal/theme"
)

// Layout splits the terminal into a one-line header, the content area
// and a one-line status bar.
type Layout struct {
	Width  int
	Height int
}

const (
	headerHeight    = 1
	statusBarHeight = 1
)

// NewLayout creates a Layout for a terminal of the given size.
func NewLayout(width, height int) Layout {
	return Layout{Width: width, Height: height}
}

// ContentWidth returns the width available to the active view.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height left between header and status bar.
func (l Layout) ContentHeight() int {
	return max(l.Height-headerHeight-statusBarHeight, 0)
}

// RenderHeader renders the title on the left and status on the right.
func (l Layout) RenderHeader(title, status string) string {
	return l.row(theme.HeaderStyle, title, status)
}

// RenderStatusBar renders the status line. Right, when set, is aligned to
// the right edge and dropped first when the line is too narrow.
func (l Layout) RenderStatusBar(left string, right ...string) string {
	r := ""
	if len(right) > 0 {
		r = right[0]
	}
	return l.row(theme.StatusBarStyle, left, r)
}

// RenderWithFrame stacks header, content and status bar.
func (l Layout) RenderWithFrame(header, content, statusBar string) string {
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

// row fills one line of the terminal with style, left and right text
// separated by padding in the style's background.
func (l Layout) row(style lipgloss.Style, left, right string) string {
	leftRendered := style.Render(left)
	rightRendered := ""
	if right != "" {
		rightRendered = style.Render(right)
	}

	gap := l.Width - lipgloss.Width(leftRendered) - lipgloss.Width(rightRendered)
	if gap < 0 {
		rightRendered = ""
		gap = max(l.Width-lipgloss.Width(leftRendered), 0)
	}

	filler := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, leftRendered, filler, rightRendered)
}

// FormWidth is the width huh forms get inside a view of the given width.
func FormWidth(viewWidth int) int {
	return min(max(viewWidth-4, 40), 100)
}

// FormHeight is the height huh forms get inside a view of the given height.
func FormHeight(viewHeight int) int {
	return max(viewHeight-4, 10)
}
