package series

import (
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

var clockLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04",
	"2006-01-02T15:04:05",
	"15:04:05",
	"15:04",
}

// ParseNumber coerces a spreadsheet cell to a float. Full-width digits and
// thousands separators are accepted.
func ParseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(norm.NFKC.String(raw))
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseSeconds reads an elapsed-seconds cell, either a plain number or h:mm:ss / m:ss.
func ParseSeconds(raw string) (float64, bool) {
	if v, ok := ParseNumber(raw); ok {
		return v, v >= 0
	}

	s := strings.TrimSpace(norm.NFKC.String(raw))
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}

	total := 0.0
	for _, p := range parts {
		n, err := strconv.ParseFloat(p, 64)
		if err != nil || n < 0 {
			return 0, false
		}
		total = total*60 + n
	}
	return total, true
}

// ParseClock reads a wall-clock timestamp cell.
func ParseClock(raw string) (time.Time, bool) {
	s := strings.TrimSpace(norm.NFKC.String(raw))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// MaxMinute bounds minute indices; larger cells are treated as unreadable.
const MaxMinute = math.MaxInt32

// ToMinute floors a minute value, rejecting negatives and values past MaxMinute.
func ToMinute(v float64) (int, bool) {
	if v < 0 || v > MaxMinute {
		return 0, false
	}
	return int(math.Floor(v)), true
}

// SecondsToMinutes floor-divides elapsed seconds into whole minutes.
func SecondsToMinutes(seconds float64) (int, bool) {
	return ToMinute(seconds / 60)
}
