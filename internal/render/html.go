package render

import (
	"html"
	"strings"

	xhtml "golang.org/x/net/html"
)

// HTMLToText converts a comment's rendered markdown HTML to plain text.
// Reddit ships body_html entity-escaped, so it is unescaped once before
// tokenizing.
func HTMLToText(raw string) string {
	if raw == "" {
		return ""
	}

	raw = html.UnescapeString(raw)

	tokenizer := xhtml.NewTokenizer(strings.NewReader(raw))
	var sb strings.Builder
	var inPre bool
	var anchorURL string
	var quoteDepth int

	newline := func() {
		sb.WriteString("\n")
		if quoteDepth > 0 {
			sb.WriteString(strings.Repeat("> ", quoteDepth))
		}
	}

	for {
		tt := tokenizer.Next()
		switch tt {
		case xhtml.ErrorToken:
			return strings.TrimSpace(sb.String())

		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			t := tokenizer.Token()
			switch t.Data {
			case "p", "h1", "h2", "h3", "h4", "h5", "h6":
				if sb.Len() > 0 {
					newline()
					newline()
				}
			case "br":
				newline()
			case "li":
				newline()
				sb.WriteString("• ")
			case "blockquote":
				quoteDepth++
				if sb.Len() > 0 {
					newline()
				}
			case "em", "i":
				sb.WriteString("*")
			case "strong", "b":
				sb.WriteString("**")
			case "code":
				if !inPre {
					sb.WriteString("`")
				}
			case "pre":
				inPre = true
				newline()
			case "a":
				for _, attr := range t.Attr {
					if attr.Key == "href" {
						anchorURL = attr.Val
					}
				}
			}

		case xhtml.EndTagToken:
			t := tokenizer.Token()
			switch t.Data {
			case "blockquote":
				if quoteDepth > 0 {
					quoteDepth--
				}
			case "em", "i":
				sb.WriteString("*")
			case "strong", "b":
				sb.WriteString("**")
			case "code":
				if !inPre {
					sb.WriteString("`")
				}
			case "pre":
				inPre = false
				newline()
			case "a":
				if anchorURL != "" {
					text := strings.TrimSpace(sb.String())
					// Only append URL if it differs from the link text.
					if !strings.HasSuffix(text, anchorURL) {
						sb.WriteString(" [")
						sb.WriteString(anchorURL)
						sb.WriteString("]")
					}
				}
				anchorURL = ""
			}

		case xhtml.TextToken:
			text := tokenizer.Token().Data
			if inPre {
				// Preserve whitespace in pre blocks, indent with 4 spaces.
				for i, line := range strings.Split(text, "\n") {
					if i > 0 {
						newline()
					}
					if line != "" {
						sb.WriteString("    ")
						sb.WriteString(line)
					}
				}
				continue
			}
			// Markup whitespace between block tags carries no content.
			if strings.TrimSpace(text) == "" {
				if !strings.Contains(text, "\n") {
					sb.WriteString(" ")
				}
				continue
			}
			sb.WriteString(strings.ReplaceAll(text, "\n", " "))
		}
	}
}
