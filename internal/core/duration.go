// Package core provides duration parsing and clock-time math.
//
// This file contains functions for normalizing human-entered duration text
// into a canonical two-decimal hours string and for computing elapsed time
// between two wall-clock times. All arithmetic runs on integer minutes and
// centihours; floating point never enters the math, only the boundary
// strings.
package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

const minutesPerDay = 24 * 60

var (
	// "8h", "45m", "1h 30m" with optional spacing, case-insensitive units.
	hoursMinutesRe = regexp.MustCompile(`(?i)^(?:(\d+)\s*h)?\s*(?:(\d+)\s*m)?$`)
	// "1:30" duration form; the hour part is unbounded.
	colonRe = regexp.MustCompile(`^(\d+):([0-5]?\d)$`)
)

// ParseDuration normalizes free-form duration text into a canonical decimal
// hours string with two decimals.
//
// Accepted forms, in priority order:
//
//	"1h 30m" / "2h" / "45m"  (h/m units, case-insensitive)
//	"1:30"                   (hours:minutes)
//	"1.5" / "1,5" / "2"      (bare decimal or integer hours)
//
// Returns ErrInvalidDuration for anything else, including empty input after
// trimming; callers treat that as "no change".
func ParseDuration(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", ErrInvalidDuration
	}

	if m := hoursMinutesRe.FindStringSubmatch(s); m != nil && (m[1] != "" || m[2] != "") {
		minutes, err := minutesFromParts(m[1], m[2])
		if err != nil {
			return "", ErrInvalidDuration
		}
		return FormatCentihours(centihoursFromMinutes(minutes)), nil
	}

	if m := colonRe.FindStringSubmatch(s); m != nil {
		minutes, err := minutesFromParts(m[1], m[2])
		if err != nil {
			return "", ErrInvalidDuration
		}
		return FormatCentihours(centihoursFromMinutes(minutes)), nil
	}

	ch, err := ParseCentihours(s)
	if err != nil {
		return "", ErrInvalidDuration
	}
	return FormatCentihours(ch), nil
}

// FormatDuration renders a decimal hours value as "Xh Ym", flooring to whole
// hours and rounding the remaining fraction to the nearest minute. Negative
// or non-numeric input formats as "0h 0m": a fail-soft display default, not
// an error.
func FormatDuration(decimalHours string) string {
	ch, err := ParseCentihours(decimalHours)
	if err != nil {
		return "0h 0m"
	}
	hours := ch / 100
	minutes := ((ch % 100) * 60 + 50) / 100
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// DurationBetween computes the elapsed hours between two wall-clock times as
// a canonical two-decimal string. When out is at or before in, the shift is
// assumed to run overnight and a full day is added; a shift is never
// interpreted as zero or negative length.
func DurationBetween(timeIn, timeOut string) (string, error) {
	in, err := ParseClock(timeIn)
	if err != nil {
		return "", err
	}
	out, err := ParseClock(timeOut)
	if err != nil {
		return "", err
	}
	if out <= in {
		out += minutesPerDay
	}
	return FormatCentihours(centihoursFromMinutes(out - in)), nil
}

// ParseClock converts an "HH:MM" 24-hour wall-clock time into minutes since
// midnight. A single-digit hour is accepted.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, ErrInvalidClock
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, ErrInvalidClock
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, ErrInvalidClock
	}
	return h*60 + m, nil
}

// ParseCentihours converts a decimal hours string into integer centihours
// with half-up rounding on the third decimal. Both dot and comma decimal
// separators are accepted. Negative values are rejected.
func ParseCentihours(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidDuration
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidDuration
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidDuration
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	if intPart == "0" && fracPart == "" && len(parts) == 2 {
		return 0, ErrInvalidDuration
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidDuration
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidDuration
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidDuration
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidDuration
	}
	var frac int64
	if len(fracPart) > 0 {
		frac = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			frac += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				frac++
			}
		}
	}
	return iv*100 + frac, nil
}

// FormatCentihours renders integer centihours as the canonical two-decimal
// hours string, e.g. 1250 -> "12.50".
func FormatCentihours(ch int64) string {
	if ch < 0 {
		ch = 0
	}
	return fmt.Sprintf("%d.%02d", ch/100, ch%100)
}

func centihoursFromMinutes(minutes int) int64 {
	return (int64(minutes)*100 + 30) / 60
}

func minutesFromParts(hoursPart, minutesPart string) (int, error) {
	total := 0
	if hoursPart != "" {
		h, err := strconv.Atoi(hoursPart)
		if err != nil {
			return 0, err
		}
		total += h * 60
	}
	if minutesPart != "" {
		m, err := strconv.Atoi(minutesPart)
		if err != nil {
			return 0, err
		}
		total += m
	}
	return total, nil
}
