// Package dateutil provides note timestamp parsing and formatting utilities.
package dateutil

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidDate indicates a date string that matches no accepted layout.
var ErrInvalidDate = errors.New("invalid date")

// MaxDateLength limits date string length to prevent abuse.
const MaxDateLength = 64

// EvernoteLayout is the timestamp layout used by ENEX exports.
// Evernote expects UTC times with a literal Z suffix and no separators.
const EvernoteLayout = "20060102T150405Z"

// noteLayouts are the frontmatter date layouts accepted for note creation
// times. The first match wins: day-first slash dates take precedence over
// month-first, so 05/03/2023 reads as 5 March.
var noteLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	EvernoteLayout,
	"02/01/2006",
	"01/02/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"2 January 2006",
	"2006/01/02",
}

// ParseNoteDate parses a frontmatter date value against the accepted
// layouts. Surrounding whitespace and quotes are ignored. Returns
// ErrInvalidDate when the value is empty, too long, or matches no layout.
func ParseNoteDate(value string) (time.Time, error) {
	s := strings.TrimSpace(value)
	s = strings.Trim(s, `"'`)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	if len(s) > MaxDateLength {
		return time.Time{}, ErrInvalidDate
	}

	for _, layout := range noteLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, ErrInvalidDate
}

// FormatEvernote renders a time in the ENEX timestamp format.
// The time is converted to UTC first; ENEX timestamps are always UTC.
func FormatEvernote(t time.Time) string {
	return t.UTC().Format(EvernoteLayout)
}
