package render

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// DefaultPlaceholder replaces characters the terminal cannot show.
const DefaultPlaceholder = "?"

// Sanitize strips escape sequences from s and replaces invalid UTF-8,
// control characters and other non-printable runes with placeholder.
// Newlines survive; tabs become a single space.
func Sanitize(s, placeholder string) string {
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	s = strings.ToValidUTF8(s, placeholder)

	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n', r == '\x1b':
			// ESC is left for ansi.Strip below.
			sb.WriteRune(r)
		case r == '\t':
			sb.WriteByte(' ')
		case r == '\r':
		case r == '\u200d':
			// Joiner inside emoji sequences.
			sb.WriteRune(r)
		case unicode.IsControl(r), !unicode.IsPrint(r) && !unicode.IsSpace(r):
			sb.WriteString(placeholder)
		default:
			sb.WriteRune(r)
		}
	}
	return ansi.Strip(sb.String())
}

// Wrap word-wraps text to lines no wider than width display cells.
// Paragraph breaks are kept as empty lines; words wider than the line are
// broken hard. Width below one is treated as one.
func Wrap(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		var line strings.Builder
		lineLen := 0
		flush := func() {
			lines = append(lines, line.String())
			line.Reset()
			lineLen = 0
		}
		for _, word := range words {
			wlen := ansi.StringWidth(word)
			if lineLen > 0 && lineLen+1+wlen > width {
				flush()
			}
			if wlen > width {
				for _, piece := range breakWord(word, width) {
					if lineLen > 0 {
						flush()
					}
					line.WriteString(piece)
					lineLen = ansi.StringWidth(piece)
				}
				continue
			}
			if lineLen > 0 {
				line.WriteByte(' ')
				lineLen++
			}
			line.WriteString(word)
			lineLen += wlen
		}
		flush()
	}

	// Leading and trailing blank paragraphs add nothing to a comment.
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}

// breakWord splits a word into chunks of at most width cells.
func breakWord(word string, width int) []string {
	var out []string
	var cur strings.Builder
	curLen := 0
	for _, r := range word {
		rw := runewidth.RuneWidth(r)
		if curLen > 0 && curLen+rw > width {
			out = append(out, cur.String())
			cur.Reset()
			curLen = 0
		}
		cur.WriteRune(r)
		curLen += rw
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}
