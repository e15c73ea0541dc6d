package tui

import (
	"github.com/charmbracelet/glamour"
)

// ReportWidth is the column at which rendered reports wrap.
const ReportWidth = 100

// RenderReport turns a Markdown run report into styled terminal output.
// Emoji shortcodes in action messages are expanded. If glamour cannot build a
// renderer or fails on the document, the Markdown is returned as written so a
// report is never lost.
func RenderReport(markdown string, width int) string {
	if width <= 0 {
		width = ReportWidth
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithEmoji(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return markdown
	}
	out, err := r.Render(markdown)
	if err != nil {
		return markdown
	}
	return out
}
