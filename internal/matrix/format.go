package matrix

import (
	"html"
	"strings"
	"time"

	"github.com/fwmsg/aufgaben-web/internal/validate"
)

// parseDate returns the zero time for empty or unparsable input.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	t, _ := validate.ParseDate(s)
	return t
}

// FormatDate formats an ISO date as dd.mm.yy.
func FormatDate(iso string) string {
	t := parseDate(iso)
	if t.IsZero() {
		return ""
	}
	return t.Format("02.01.06")
}

// FormatDateFull formats an ISO date as dd.mm.yyyy.
func FormatDateFull(iso string) string {
	t := parseDate(iso)
	if t.IsZero() {
		return ""
	}
	return t.Format("02.01.2006")
}

// IsDateBeforeOrEqual reports a <= b; false if either side is missing.
func IsDateBeforeOrEqual(a, b string) bool {
	ta, tb := parseDate(a), parseDate(b)
	if ta.IsZero() || tb.IsZero() {
		return false
	}
	return !ta.After(tb)
}

// Escape neutralises text for interpolation into markup built outside html/template.
func Escape(text string) string { return html.EscapeString(text) }
