// Package dateutils provides the date layouts used by ledger files and stores.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Date layout constants used throughout the application
const (
	DateLayoutLedger = "2006/01/02"
	DateLayoutISO    = "2006-01-02"
	DateLayoutInput  = "02/01/2006"
)

// LedgerDateWidth is the number of characters a ledger header date occupies.
const LedgerDateWidth = len(DateLayoutLedger)

// LedgerFormats are the layouts accepted for a ledger transaction header date.
var LedgerFormats = []string{
	DateLayoutLedger,
	DateLayoutISO,
}

var whitespace = regexp.MustCompile(`\s+`)

// ParseLedgerDate parses a YYYY/MM/DD (or YYYY-MM-DD) date in UTC.
func ParseLedgerDate(dateStr string) (time.Time, error) {
	dateStr = CleanDateString(dateStr)
	for _, layout := range LedgerFormats {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse ledger date: %q", dateStr)
}

// ParseDate parses a date given on the command line: ISO, ledger or DD/MM/YYYY.
func ParseDate(dateStr string) (time.Time, error) {
	dateStr = CleanDateString(dateStr)
	for _, layout := range []string{DateLayoutISO, DateLayoutLedger, DateLayoutInput} {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %q", dateStr)
}

// FormatLedgerDate formats t as YYYY/MM/DD.
func FormatLedgerDate(t time.Time) string {
	return t.Format(DateLayoutLedger)
}

// ToISODate formats a time.Time value as an ISO date (YYYY-MM-DD)
func ToISODate(t time.Time) string {
	return t.Format(DateLayoutISO)
}

// TruncateToDay drops the clock part of t, keeping its calendar date in UTC.
func TruncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CleanDateString trims and collapses whitespace.
func CleanDateString(dateStr string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}
