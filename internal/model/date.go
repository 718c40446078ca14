package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is how every date is written to the store.
const DateLayout = "2006-01-02"

// Layouts accepted when reading dates back. Rows typed by hand into the sheet
// may carry a time part or the day-first form used in Indonesia.
var dateLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"02/01/2006",
}

// ParseDate parses a stored date. It returns nil when the text is empty or
// not a recognised date, so callers can keep the row and sort it last.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}

// FormatDate normalizes t to YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseAmount parses a stored amount. Thousands separators are not accepted:
// an amount the store cannot represent unambiguously is a data error.
func ParseAmount(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(s))
}
