package tournament

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the only accepted calendar date format.
const DateLayout = "2006-01-02"

// MinutesPerDay bounds time-of-day values.
const MinutesPerDay = 24 * 60

// ParseDate parses "YYYY-MM-DD", also accepting a datetime whose date portion
// is well formed ("2022-01-01T08:00").
func ParseDate(s string) (time.Time, error) {
	d := ExtractDate(s)
	t, err := time.Parse(DateLayout, d)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// ExtractDate returns the date portion of a date or datetime string.
func ExtractDate(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "T "); i >= 0 {
		return s[:i]
	}
	return s
}

// ExtractTime returns the "HH:MM" portion of a time or datetime string.
func ExtractTime(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "T "); i >= 0 {
		s = s[i+1:]
	}
	if len(s) > 5 {
		s = s[:5]
	}
	return s
}

// ParseTime converts "HH:MM" (or a datetime) to minutes after midnight.
// "24:00" is accepted as an end-of-day boundary.
func ParseTime(s string) (int, error) {
	t := ExtractTime(s)
	parts := strings.Split(t, ":")
	if len(parts) != 2 || len(parts[0]) == 0 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	if h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return h*60 + m, nil
}

// FormatMinutes renders minutes after midnight as "HH:MM".
func FormatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// AddDays shifts a "YYYY-MM-DD" date by n days.
func AddDays(date string, n int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(DateLayout), nil
}

// HasDatePrefix reports whether a scheduled time carries its own date
// ("2022-01-01T08:00").
func HasDatePrefix(s string) bool {
	return strings.ContainsAny(strings.TrimSpace(s), "T ")
}

// ReplaceTime keeps any date prefix of original and swaps its time portion.
func ReplaceTime(original string, minutes int) string {
	hhmm := FormatMinutes(minutes)
	original = strings.TrimSpace(original)
	if i := strings.IndexAny(original, "T "); i >= 0 {
		return original[:i+1] + hhmm
	}
	return hhmm
}
