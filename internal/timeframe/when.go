package timeframe

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var absoluteFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// relativePattern matches +2h, +30m, +1d, +1h30m
var relativePattern = regexp.MustCompile(`^\+(\d+[wdhm])+$`)

// inPattern matches "in 3 days", "in 45 min", "in 2 weeks"
var inPattern = regexp.MustCompile(`^in\s+(\d+)\s*(m|min|mins|minutes?|h|hours?|d|days?|w|weeks?)$`)

// clockPattern matches 9am, 9:30pm, 21:00
var clockPattern = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*(am|pm)?$`)

// ParseWhen resolves a user-entered time relative to now. Supported forms are
// RFC3339 and ISO-like absolute times (local zone of now), "+1h30m",
// "in N minutes|hours|days|weeks" and "tomorrow [time]".
func ParseWhen(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	lower := strings.ToLower(input)

	if lower == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}

	if strings.HasPrefix(lower, "tomorrow") {
		return parseTomorrow(strings.TrimSpace(strings.TrimPrefix(lower, "tomorrow")), now)
	}

	if match := inPattern.FindStringSubmatch(lower); match != nil {
		n, err := strconv.Atoi(match[1])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid number %q: %w", match[1], err)
		}
		return addUnit(now, n, match[2][0])
	}

	if relativePattern.MatchString(lower) {
		return parseRelative(lower[1:], now)
	}

	for _, format := range absoluteFormats {
		if t, err := time.ParseInLocation(format, input, now.Location()); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse time: %q", input)
}

func parseTomorrow(rest string, now time.Time) (time.Time, error) {
	day := now.AddDate(0, 0, 1)
	hour, minute := 9, 0

	if rest != "" {
		h, m, err := parseClock(rest)
		if err != nil {
			return time.Time{}, err
		}
		hour, minute = h, m
	}

	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location()), nil
}

func parseClock(s string) (int, int, error) {
	match := clockPattern.FindStringSubmatch(s)
	if match == nil {
		return 0, 0, fmt.Errorf("unable to parse clock time: %q", s)
	}

	hour, _ := strconv.Atoi(match[1])
	minute := 0
	if match[2] != "" {
		minute, _ = strconv.Atoi(match[2])
	}

	switch match[3] {
	case "am":
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour != 12 {
			hour += 12
		}
	}

	if hour > 23 || minute > 59 {
		return 0, 0, fmt.Errorf("clock time out of range: %q", s)
	}
	return hour, minute, nil
}

func parseRelative(spec string, now time.Time) (time.Time, error) {
	result := now
	current := ""

	for _, char := range spec {
		if char >= '0' && char <= '9' {
			current += string(char)
			continue
		}

		n, err := strconv.Atoi(current)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid number in relative time: %q", current)
		}
		result, err = addUnit(result, n, byte(char))
		if err != nil {
			return time.Time{}, err
		}
		current = ""
	}

	return result, nil
}

func addUnit(t time.Time, n int, unit byte) (time.Time, error) {
	switch unit {
	case 'm':
		return t.Add(time.Duration(n) * time.Minute), nil
	case 'h':
		return t.Add(time.Duration(n) * time.Hour), nil
	case 'd':
		return t.AddDate(0, 0, n), nil
	case 'w':
		return t.AddDate(0, 0, 7*n), nil
	default:
		return time.Time{}, fmt.Errorf("unknown time unit: %c", unit)
	}
}
