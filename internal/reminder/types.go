package reminder

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxMessageLength bounds record messages and goal texts, in runes.
const MaxMessageLength = 500

// Category drives the default time of day of generated reminders.
type Category string

const (
	CategoryStart            Category = "Start"
	CategoryDaily            Category = "Daily"
	CategoryWeeklyReview     Category = "Weekly Review"
	CategoryMonthlyMilestone Category = "Monthly Milestone"
	CategoryMilestone        Category = "Milestone"
	CategoryCompletion       Category = "Completion"
	CategoryPractice         Category = "Practice"
	CategoryMotivation       Category = "Motivation"
	CategoryCustom           Category = "Custom"
)

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryStart,
	CategoryDaily,
	CategoryWeeklyReview,
	CategoryMonthlyMilestone,
	CategoryMilestone,
	CategoryCompletion,
	CategoryPractice,
	CategoryMotivation,
	CategoryCustom,
}

// lookupCategory matches case-insensitively and ignores spaces, so
// "WeeklyReview" and "weekly review" both resolve to CategoryWeeklyReview.
func lookupCategory(s string) (Category, bool) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	if key == "" {
		return "", false
	}
	for _, c := range Categories {
		if strings.ToLower(strings.ReplaceAll(string(c), " ", "")) == key {
			return c, true
		}
	}
	return "", false
}

// ParseCategory maps free text to a Category. Unknown values become CategoryCustom.
func ParseCategory(s string) Category {
	if c, ok := lookupCategory(s); ok {
		return c
	}
	return CategoryCustom
}

// Record is one persisted reminder. JSON names follow the mobile app's storage format.
type Record struct {
	ID                 string    `json:"id"`
	Message            string    `json:"message"`
	ScheduledTime      time.Time `json:"scheduledTime"`
	NotificationHandle string    `json:"notificationId,omitempty"`
	IsActive           bool      `json:"isActive"`
	Category           Category  `json:"category"`
	CreatedAt          time.Time `json:"createdAt"`
	Goal               string    `json:"goal,omitempty"`
	IsAIGenerated      bool      `json:"isAIGenerated"`
}

// Expired reports whether the scheduled time has been reached.
func (r *Record) Expired(now time.Time) bool {
	return !r.ScheduledTime.After(now)
}

// Live reports whether the record is active and still ahead of now.
func (r *Record) Live(now time.Time) bool {
	return r.IsActive && !r.Expired(now)
}

// Candidate is an unvalidated reminder proposed by the AI gateway.
type Candidate struct {
	Message   string
	DayOffset float64
	Category  string
}

// Draft is a validated, timestamped reminder that has not been persisted yet.
type Draft struct {
	Message       string
	ScheduledTime time.Time
	Category      Category
	Goal          string
	IsAIGenerated bool
}

// Source tells which path of the generator produced a plan.
type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
)

// Plan is the generator output for one goal.
type Plan struct {
	Goal       string
	Days       int
	Strategy   string
	Source     Source
	Drafts     []Draft
	Rejected   int
	Duplicates int
}

// ValidateMessage trims msg and checks it is non-empty and within MaxMessageLength.
func ValidateMessage(field, msg string) (string, error) {
	trimmed := strings.TrimSpace(msg)
	if trimmed == "" {
		return "", &ValidationError{Field: field, Reason: "must not be empty"}
	}
	if utf8.RuneCountInString(trimmed) > MaxMessageLength {
		return "", &ValidationError{Field: field, Reason: "exceeds 500 characters"}
	}
	return trimmed, nil
}
