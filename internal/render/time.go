package render

import (
	"fmt"
	"time"
)

// TimestampLayout is the absolute form used in comment headers.
const TimestampLayout = "2006-01-02 15:04:05 UTC"

// ClockLayout is the form used for "last update" in the status bar.
const ClockLayout = "15:04:05"

// FormatTimestamp renders t in UTC for a comment header.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "unknown time"
	}
	return t.UTC().Format(TimestampLayout)
}

// TimeAgo renders the distance from t to now in a compact form.
func TimeAgo(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
