// Package timeframe turns the human-entered durations and times used by the
// goal forms into day counts and absolute timestamps.
package timeframe

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// DefaultDays is used when a timeframe is empty or carries no known unit.
const DefaultDays = 30

// MaxDays caps absurd timeframes ("500 years") at ten years.
const MaxDays = 3650

// Day counts per unit. A month is always 30 days and a year 365.
const (
	daysPerDay   = 1
	daysPerWeek  = 7
	daysPerMonth = 30
	daysPerYear  = 365
)

// unitPattern matches an optional count followed by a unit keyword, e.g.
// "2 weeks", "3months", "1 tháng". Units must not be glued to other letters.
var unitPattern = regexp.MustCompile(
	`(?:^|[^\p{L}])(?:(\d+)\s*)?(weeks?|wks?|tuần|months?|mos?|tháng|years?|yrs?|năm|days?|ngày)(?:$|[^\p{L}])`,
)

var unitDays = map[string]int{
	"week": daysPerWeek, "weeks": daysPerWeek, "wk": daysPerWeek, "wks": daysPerWeek, "tuần": daysPerWeek,
	"month": daysPerMonth, "months": daysPerMonth, "mo": daysPerMonth, "mos": daysPerMonth, "tháng": daysPerMonth,
	"year": daysPerYear, "years": daysPerYear, "yr": daysPerYear, "yrs": daysPerYear, "năm": daysPerYear,
	"day": daysPerDay, "days": daysPerDay, "ngày": daysPerDay,
}

// Parse converts a timeframe such as "2 weeks" or "about 3 months" into a
// number of days. The first recognised unit wins. A missing or zero count
// means 1. Empty or unrecognised input yields DefaultDays.
func Parse(text string) int {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return DefaultDays
	}

	match := unitPattern.FindStringSubmatch(lower)
	if match == nil {
		return DefaultDays
	}

	count := 1
	if match[1] != "" {
		n, err := strconv.Atoi(match[1])
		if errors.Is(err, strconv.ErrRange) {
			return MaxDays
		}
		if err != nil {
			return DefaultDays
		}
		if n > 0 {
			count = n
		}
	}

	if count > MaxDays {
		return MaxDays
	}
	return min(count*unitDays[match[2]], MaxDays)
}
