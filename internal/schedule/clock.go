// Package schedule holds the scheduling core: the interval overlap
// test used for session conflict detection, the free-gap finder over a
// trainer's day, and the availability resolver that combines the
// weekly slot template with date exceptions and booking demand.  All
// functions are pure; repositories feed them rows and handlers shape
// their output.
package schedule

import (
    "fmt"
    "strconv"
    "strings"
)

// ParseClock parses a clock time in "HH:MM" (or "HH:MM:SS", as MySQL
// TIME columns scan) into minutes since midnight.
func ParseClock(s string) (int, error) {
    parts := strings.Split(strings.TrimSpace(s), ":")
    if len(parts) != 2 && len(parts) != 3 {
        return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
    }
    h, err := strconv.Atoi(parts[0])
    if err != nil || h < 0 || h > 23 {
        return 0, fmt.Errorf("invalid hour in %q", s)
    }
    m, err := strconv.Atoi(parts[1])
    if err != nil || m < 0 || m > 59 {
        return 0, fmt.Errorf("invalid minute in %q", s)
    }
    return h*60 + m, nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
    return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// NormalizeClock reparses a clock string and renders it as "HH:MM",
// stripping any seconds component coming back from the database.
func NormalizeClock(s string) string {
    m, err := ParseClock(s)
    if err != nil {
        return s
    }
    return FormatClock(m)
}
