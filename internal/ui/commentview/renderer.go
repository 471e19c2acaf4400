package commentview

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/fragmede/livethread/internal/domain"
	"github.com/fragmede/livethread/internal/layout"
)

const (
	minWidth  = 20
	minHeight = layout.StatusRows + 2

	noCommentsText = "No comments yet..."
	noMatchText    = "No comments match filter"
)

// Draw paints a full frame: the status bar, the filter prompt when one is
// given, then the content rows of plan. The result always has exactly
// height lines, none wider than width; anything that does not fit is
// clipped. A *domain.RenderError is returned alongside the clipped frame
// when the terminal is below the usable minimum.
func Draw(plan layout.Plan, status, prompt string, width, height int) (string, error) {
	if width <= 0 || height <= 0 {
		return "", &domain.RenderError{Width: width, Height: height}
	}

	lines := strings.Split(status, "\n")
	if prompt != "" {
		lines = append(lines, prompt)
	}

	margin := strings.Repeat(" ", layout.Margin)
	content := make([]string, 0, plan.ContentHeight)
	switch {
	case plan.NoContent:
		text := noCommentsText
		if plan.Filtered {
			text = noMatchText
		}
		content = append(content, margin+noticeStyle.Render(text))
	default:
		for _, row := range plan.Rows {
			content = append(content, margin+renderRow(row))
		}
	}
	for len(content) < plan.ContentHeight {
		content = append(content, "")
	}
	lines = append(lines, content...)

	for len(lines) < height {
		lines = append(lines, "")
	}
	lines = lines[:height]
	for i, line := range lines {
		if ansi.StringWidth(line) > width {
			lines[i] = ansi.Truncate(line, width, "")
		}
	}

	out := strings.Join(lines, "\n")
	if width < minWidth || height < minHeight {
		return out, &domain.RenderError{Width: width, Height: height}
	}
	return out, nil
}

func renderRow(row layout.Row) string {
	var sb strings.Builder
	for _, seg := range row.Segments {
		if seg.Role == layout.RoleIndent {
			sb.WriteString(seg.Text)
			continue
		}
		sb.WriteString(styleFor(seg.Role, row.Depth).Render(seg.Text))
	}
	return sb.String()
}
