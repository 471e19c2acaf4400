// Package layout computes which comments, and which wrapped lines of
// them, fit in the terminal. It is pure: the same inputs always produce
// the same Plan.
package layout

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/fragmede/livethread/internal/domain"
	"github.com/fragmede/livethread/internal/render"
)

const (
	// StatusRows is the height of the bordered status bar.
	StatusRows = 3
	// FilterRows is the height of the filter prompt while it is shown.
	FilterRows = 1
	// Margin is the blank column kept on each side of the content.
	Margin = 1

	indentPerDepth = 2
	minBodyWidth   = 10

	Marker    = "↳ "
	markerPad = "  "
	separator = " • "
)

// Role tags a segment with the style the renderer should apply.
type Role int

const (
	RoleBody Role = iota
	RoleAuthor
	RoleSeparator
	RoleScore
	RoleTimestamp
	RoleMarker
	RoleIndent
)

// Segment is a run of text sharing one role.
type Segment struct {
	Text string
	Role Role
}

// Row is one terminal line of content.
type Row struct {
	CommentID string
	Depth     int
	Header    bool
	Segments  []Segment
}

// Text returns the row without styling.
func (r Row) Text() string {
	var sb strings.Builder
	for _, s := range r.Segments {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// ViewState is the operator-controlled part of the view. It is owned by
// the UI goroutine.
type ViewState struct {
	ScrollOffset   int
	UserScrolledUp bool
	FilterText     string
	FilterActive   bool
}

// Options tune rendering details that come from configuration.
type Options struct {
	Placeholder string
}

// Plan is the outcome of Compute.
type Plan struct {
	Rows []Row

	// NoContent is set when no comment is eligible; Filtered tells a
	// filter with no matches apart from an empty store.
	NoContent bool
	Filtered  bool

	Eligible      int
	TotalLines    int
	ContentWidth  int
	ContentHeight int

	// Offset is the document line at the top of the window and MaxOffset
	// the largest offset that still fills it.
	Offset    int
	MaxOffset int
	AtBottom  bool
	MoreAbove bool
	MoreBelow bool

	// Anchors maps a comment ID to the document line of its header.
	Anchors map[string]int
	// TopID is the comment owning the first visible row.
	TopID string
}

// AnchorOffset converts a comment anchor back to a scroll offset in this
// plan. delta is the distance from the comment's header to the old top.
func (p Plan) AnchorOffset(id string, delta int) (int, bool) {
	line, ok := p.Anchors[id]
	if !ok {
		return 0, false
	}
	off := line + delta
	if off < 0 {
		off = 0
	}
	if off > p.MaxOffset {
		off = p.MaxOffset
	}
	return off, true
}

// TopAnchor reports the comment at the top of the window and how far
// into it the window starts.
func (p Plan) TopAnchor() (string, int) {
	if p.TopID == "" {
		return "", 0
	}
	return p.TopID, p.Offset - p.Anchors[p.TopID]
}

// block is the rendered form of one comment.
type block struct {
	start int
	rows  []Row
}

// Compute lays out comments, oldest first, for a terminal of the given
// size.
func Compute(comments []domain.Comment, vs ViewState, width, height int, opts Options) Plan {
	plan := Plan{
		ContentWidth:  max(width-2*Margin, 1),
		ContentHeight: ContentHeight(height, vs.FilterActive),
		Anchors:       make(map[string]int),
	}

	eligible := Filter(comments, vs.FilterText)
	plan.Eligible = len(eligible)
	if len(eligible) == 0 {
		plan.NoContent = true
		plan.Filtered = len(comments) > 0 && vs.FilterText != ""
		plan.AtBottom = true
		return plan
	}

	blocks := make([]block, 0, len(eligible))
	total := 0
	for _, c := range eligible {
		rows := commentRows(c, plan.ContentWidth, opts.Placeholder)
		blocks = append(blocks, block{start: total, rows: rows})
		plan.Anchors[c.ID] = total
		total += len(rows)
	}
	plan.TotalLines = total
	plan.MaxOffset = max(total-plan.ContentHeight, 0)

	if !vs.UserScrolledUp || vs.ScrollOffset >= plan.MaxOffset {
		follow(&plan, blocks)
		return plan
	}

	window(&plan, blocks, max(vs.ScrollOffset, 0))
	return plan
}

// ContentHeight is the number of content rows left after the status bar
// and, when shown, the filter prompt.
func ContentHeight(height int, filterActive bool) int {
	h := height - StatusRows
	if filterActive {
		h -= FilterRows
	}
	return max(h, 0)
}

// Filter keeps comments whose author or body contains text as typed,
// ignoring case. Empty text keeps everything.
func Filter(comments []domain.Comment, text string) []domain.Comment {
	if text == "" {
		return comments
	}
	needle := strings.ToLower(text)
	out := make([]domain.Comment, 0, len(comments))
	for _, c := range comments {
		if strings.Contains(strings.ToLower(c.Author), needle) ||
			strings.Contains(strings.ToLower(c.Body), needle) {
			out = append(out, c)
		}
	}
	return out
}

// follow fills the window from the newest comment backward. A comment is
// taken only while its header and at least one body line still fit.
func follow(plan *Plan, blocks []block) {
	plan.AtBottom = true
	remaining := plan.ContentHeight

	first := len(blocks)
	var partial []Row
	for i := len(blocks) - 1; i >= 0 && remaining > 0; i-- {
		n := len(blocks[i].rows)
		if n <= remaining {
			first = i
			remaining -= n
			continue
		}
		if remaining >= 2 {
			partial = blocks[i].rows[:remaining]
			plan.Offset = blocks[i].start
			plan.TopID = blocks[i].rows[0].CommentID
			plan.MoreAbove = i > 0
			plan.MoreBelow = i == len(blocks)-1
		}
		break
	}

	rows := make([]Row, 0, plan.ContentHeight)
	rows = append(rows, partial...)
	for _, b := range blocks[first:] {
		rows = append(rows, b.rows...)
	}
	plan.Rows = rows

	if partial == nil && first < len(blocks) {
		plan.Offset = blocks[first].start
		plan.TopID = blocks[first].rows[0].CommentID
		plan.MoreAbove = first > 0
	}
}

// window shows the contiguous document lines starting at offset.
func window(plan *Plan, blocks []block, offset int) {
	plan.Offset = offset
	end := min(offset+plan.ContentHeight, plan.TotalLines)

	var rows []Row
	for _, b := range blocks {
		bEnd := b.start + len(b.rows)
		if bEnd <= offset || b.start >= end {
			continue
		}
		lo := max(offset-b.start, 0)
		hi := min(end-b.start, len(b.rows))
		if plan.TopID == "" {
			plan.TopID = b.rows[0].CommentID
		}
		rows = append(rows, b.rows[lo:hi]...)
	}

	// A header without any of its body is not shown.
	if n := len(rows); n > 0 && rows[n-1].Header {
		rows = rows[:n-1]
	}

	plan.Rows = rows
	plan.MoreAbove = offset > 0
	plan.MoreBelow = end < plan.TotalLines
}

// commentRows renders the header and wrapped body lines of one comment.
func commentRows(c domain.Comment, contentWidth int, placeholder string) []Row {
	depth := visualDepth(c.Depth, contentWidth)
	indent := strings.Repeat(" ", depth*indentPerDepth)

	header := Row{CommentID: c.ID, Depth: c.Depth, Header: true}
	if indent != "" {
		header.Segments = append(header.Segments, Segment{Text: indent, Role: RoleIndent})
	}
	header.Segments = append(header.Segments,
		Segment{Text: render.Sanitize(c.Author, placeholder), Role: RoleAuthor},
		Segment{Text: separator, Role: RoleSeparator},
		Segment{Text: Points(c.Score), Role: RoleScore},
		Segment{Text: separator, Role: RoleSeparator},
		Segment{Text: render.FormatTimestamp(c.CreatedAt), Role: RoleTimestamp},
	)

	bodyWidth := contentWidth - len(indent)
	if c.Depth > 0 {
		bodyWidth -= ansi.StringWidth(Marker)
	}
	lines := render.Wrap(render.Sanitize(c.Body, placeholder), max(bodyWidth, 1))

	rows := make([]Row, 0, len(lines)+1)
	rows = append(rows, header)
	for i, line := range lines {
		row := Row{CommentID: c.ID, Depth: c.Depth}
		if indent != "" {
			row.Segments = append(row.Segments, Segment{Text: indent, Role: RoleIndent})
		}
		if c.Depth > 0 {
			if i == 0 {
				row.Segments = append(row.Segments, Segment{Text: Marker, Role: RoleMarker})
			} else {
				row.Segments = append(row.Segments, Segment{Text: markerPad, Role: RoleIndent})
			}
		}
		row.Segments = append(row.Segments, Segment{Text: line, Role: RoleBody})
		rows = append(rows, row)
	}
	return rows
}

// visualDepth caps indentation so deep replies keep a readable body.
func visualDepth(depth, contentWidth int) int {
	if depth <= 0 {
		return 0
	}
	limit := (contentWidth - minBodyWidth - ansi.StringWidth(Marker)) / indentPerDepth
	return max(min(depth, limit), 0)
}

// Points formats a score for the header.
func Points(score int) string {
	if score == 1 || score == -1 {
		return fmt.Sprintf("%d point", score)
	}
	return fmt.Sprintf("%d points", score)
}
