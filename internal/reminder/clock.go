package reminder

import "time"

// defaultHour is used for Custom and any category without its own slot.
const defaultHour = 12

var categoryHours = map[Category]int{
	CategoryStart:            9,
	CategoryDaily:            8,
	CategoryWeeklyReview:     10,
	CategoryMonthlyMilestone: 11,
	CategoryMilestone:        12,
	CategoryCompletion:       18,
	CategoryPractice:         19,
	CategoryMotivation:       20,
}

// HourFor returns the hour of day reminders of category c fire at.
func HourFor(c Category) int {
	if h, ok := categoryHours[c]; ok {
		return h
	}
	return defaultHour
}

// At returns the calendar day `days` after now at hour:00:00 in now's location.
func At(now time.Time, days, hour int) time.Time {
	d := now.AddDate(0, 0, days)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, now.Location())
}

// SnapToCategoryHour keeps the calendar day of t and replaces its time of day
// with the slot of category c.
func SnapToCategoryHour(t time.Time, c Category) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), HourFor(c), 0, 0, 0, t.Location())
}
