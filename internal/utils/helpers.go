// Package utils provides shared helper functions.
package utils

import (
	"fmt"
	"strings"
	"time"
)

// Timestamp returns the current UTC time in RFC 3339 format.
func Timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// TruncateString shortens s to max characters, appending suffix when
// truncation happens.
func TruncateString(s string, max int, suffix string) string {
	if len(s) <= max {
		return s
	}
	if suffix == "" {
		suffix = "..."
	}
	if max <= len(suffix) {
		return s[:max]
	}
	return s[:max-len(suffix)] + suffix
}

// FormatBytes renders a byte count as a human-readable size.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

// FormatDuration renders a duration as a compact human string, e.g.
// "2h 15m" or "45s".
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) - m*60
		if s == 0 {
			return fmt.Sprintf("%dm", m)
		}
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) - h*60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

// SanitizeString strips control characters and trims whitespace.
func SanitizeString(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\t' || r >= 32 {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
