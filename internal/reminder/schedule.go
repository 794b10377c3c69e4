package reminder

import (
	"fmt"
	"math"
	"sort"
	"time"
	"unicode/utf8"
)

const (
	// MinCandidates is the number of valid AI candidates below which the
	// whole AI answer is discarded in favour of the fallback template.
	MinCandidates = 5
	// MaxDrafts caps the length of any generated plan.
	MaxDrafts = 25

	maxDailyReminders  = 7
	maxWeeklyReviews   = 8
	milestoneThreshold = 14
	goalExcerptLength  = 100
)

// Generator expands a goal into a time-ordered list of drafts.
type Generator struct {
	now func() time.Time
}

// NewGenerator returns a Generator reading the clock from now (time.Now if nil).
func NewGenerator(now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{now: now}
}

// Generate builds a plan for goal over days. When candidates are given and at
// least MinCandidates of them survive validation, they become the plan;
// otherwise the deterministic fallback template is used. It never fails.
func (g *Generator) Generate(goal string, days int, candidates []Candidate) Plan {
	now := g.now()
	if days < 1 {
		days = 1
	}

	plan := Plan{Goal: goal, Days: days}

	if len(candidates) > 0 {
		drafts, rejected, duplicates := g.fromCandidates(now, goal, candidates)
		plan.Rejected = rejected
		plan.Duplicates = duplicates

		if len(drafts) >= MinCandidates {
			plan.Source = SourceAI
			plan.Drafts = finalize(drafts)
			return plan
		}
	}

	plan.Source = SourceFallback
	plan.Strategy = fallbackStrategy(goal, days)
	plan.Drafts = finalize(fallbackDrafts(now, goal, days))
	return plan
}

func (g *Generator) fromCandidates(now time.Time, goal string, candidates []Candidate) ([]Draft, int, int) {
	type key struct {
		message string
		at      int64
	}

	seen := make(map[key]bool, len(candidates))
	drafts := make([]Draft, 0, len(candidates))
	rejected, duplicates := 0, 0

	for _, c := range candidates {
		d, ok := validateCandidate(now, goal, c)
		if !ok {
			rejected++
			continue
		}

		k := key{message: d.Message, at: d.ScheduledTime.UnixNano()}
		if seen[k] {
			duplicates++
			continue
		}
		seen[k] = true
		drafts = append(drafts, d)
	}

	return drafts, rejected, duplicates
}

func validateCandidate(now time.Time, goal string, c Candidate) (Draft, bool) {
	message, err := ValidateMessage("message", c.Message)
	if err != nil {
		return Draft{}, false
	}

	if c.DayOffset < 1 || c.DayOffset != math.Trunc(c.DayOffset) || c.DayOffset > math.MaxInt32 {
		return Draft{}, false
	}

	category, ok := lookupCategory(c.Category)
	if !ok {
		return Draft{}, false
	}

	return Draft{
		Message:       message,
		ScheduledTime: At(now, int(c.DayOffset), HourFor(category)),
		Category:      category,
		Goal:          goal,
		IsAIGenerated: true,
	}, true
}

func fallbackDrafts(now time.Time, goal string, days int) []Draft {
	name := excerpt(goal)
	draft := func(msg string, at time.Time, c Category) Draft {
		return Draft{Message: msg, ScheduledTime: at, Category: c, Goal: goal, IsAIGenerated: true}
	}

	start := now.Add(time.Hour)
	drafts := []Draft{
		draft(fmt.Sprintf("Day one of %q: take the first small step today.", name), start, CategoryStart),
	}

	for d := 1; d <= min(maxDailyReminders, days); d++ {
		drafts = append(drafts, draft(
			fmt.Sprintf("Day %d: keep going with %q. Small steps add up.", d, name),
			At(now, d, HourFor(CategoryDaily)), CategoryDaily))
	}

	for w := 1; w <= min(days/7, maxWeeklyReviews); w++ {
		drafts = append(drafts, draft(
			fmt.Sprintf("Week %d review: what moved %q forward, and what will you change next week?", w, name),
			At(now, 7*w, HourFor(CategoryWeeklyReview)), CategoryWeeklyReview))
	}

	if days > milestoneThreshold {
		drafts = append(drafts, draft(
			fmt.Sprintf("Halfway there with %q! Look back at how far you have come.", name),
			At(now, days/2, HourFor(CategoryMilestone)), CategoryMilestone))
	}

	// With a one-day timeframe the completion slot can fall before the start reminder.
	completion := At(now, days-1, HourFor(CategoryCompletion))
	for !completion.After(start) {
		completion = completion.AddDate(0, 0, 1)
	}
	drafts = append(drafts, draft(
		fmt.Sprintf("Final stretch: finish %q and celebrate what you achieved.", name),
		completion, CategoryCompletion))

	return drafts
}

func fallbackStrategy(goal string, days int) string {
	return fmt.Sprintf("Build momentum on %q over %d days: start today, check in every morning "+
		"during the first week, review progress weekly and finish with a clear completion date.",
		excerpt(goal), days)
}

func finalize(drafts []Draft) []Draft {
	SortDrafts(drafts)
	if len(drafts) > MaxDrafts {
		drafts = drafts[:MaxDrafts]
	}
	return drafts
}

// SortDrafts orders drafts by scheduled time, keeping input order for ties.
func SortDrafts(drafts []Draft) {
	sort.SliceStable(drafts, func(i, j int) bool {
		return drafts[i].ScheduledTime.Before(drafts[j].ScheduledTime)
	})
}

// SortRecords orders records by scheduled time, keeping input order for ties.
func SortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ScheduledTime.Before(records[j].ScheduledTime)
	})
}

func excerpt(s string) string {
	if utf8.RuneCountInString(s) <= goalExcerptLength {
		return s
	}
	r := []rune(s)
	return string(r[:goalExcerptLength]) + "…"
}
