package service

import (
	"strings"
	"time"
)

// Tried in order; the first layout that parses wins, so an ambiguous
// "02/01/2025" is read day-first.
var invoiceDateLayouts = []string{
	"2006-1-2",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"2/1/2006",
	"1/2/2006",
	"2-1-2006",
	"2006/1/2",
}

// ParseInvoiceDate returns the calendar date in s and whether any layout matched.
func ParseInvoiceDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range invoiceDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeDate falls back to the calendar date of now when s does not parse.
func NormalizeDate(s string, now time.Time) time.Time {
	if t, ok := ParseInvoiceDate(s); ok {
		return t
	}
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
