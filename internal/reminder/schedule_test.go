package reminder

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

var refNow = time.Date(2026, 1, 13, 10, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func validCandidates(n int) []Candidate {
	out := make([]Candidate, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, Candidate{
			Message:   fmt.Sprintf("Step %d", i),
			DayOffset: float64(i),
			Category:  "Daily",
		})
	}
	return out
}

func assertSorted(t *testing.T, drafts []Draft) {
	t.Helper()
	for i := 1; i < len(drafts); i++ {
		if drafts[i].ScheduledTime.Before(drafts[i-1].ScheduledTime) {
			t.Fatalf("drafts not sorted at %d: %s before %s",
				i, drafts[i].ScheduledTime, drafts[i-1].ScheduledTime)
		}
	}
}

func countCategory(drafts []Draft, c Category) int {
	n := 0
	for _, d := range drafts {
		if d.Category == c {
			n++
		}
	}
	return n
}

func TestFallbackPlanShape(t *testing.T) {
	tests := []struct {
		name       string
		days       int
		total      int
		daily      int
		weekly     int
		milestones int
	}{
		{"one day", 1, 3, 1, 0, 0},
		{"one week", 7, 10, 7, 1, 0},
		{"two weeks", 14, 11, 7, 2, 0},
		{"thirty days", 30, 14, 7, 4, 1},
		{"one year", 365, 18, 7, 8, 1},
	}

	g := NewGenerator(fixedClock(refNow))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := g.Generate("Learn Go", tt.days, nil)

			if plan.Source != SourceFallback {
				t.Fatalf("expected fallback source, got %s", plan.Source)
			}
			if plan.Strategy == "" {
				t.Error("expected a fallback strategy")
			}
			if len(plan.Drafts) != tt.total {
				t.Fatalf("expected %d drafts, got %d", tt.total, len(plan.Drafts))
			}
			if got := countCategory(plan.Drafts, CategoryDaily); got != tt.daily {
				t.Errorf("daily: expected %d, got %d", tt.daily, got)
			}
			if got := countCategory(plan.Drafts, CategoryWeeklyReview); got != tt.weekly {
				t.Errorf("weekly: expected %d, got %d", tt.weekly, got)
			}
			if got := countCategory(plan.Drafts, CategoryMilestone); got != tt.milestones {
				t.Errorf("milestone: expected %d, got %d", tt.milestones, got)
			}
			if countCategory(plan.Drafts, CategoryStart) != 1 || countCategory(plan.Drafts, CategoryCompletion) != 1 {
				t.Error("expected exactly one start and one completion reminder")
			}

			assertSorted(t, plan.Drafts)
			if plan.Drafts[0].Category != CategoryStart {
				t.Errorf("expected start reminder first, got %s", plan.Drafts[0].Category)
			}
			for _, d := range plan.Drafts {
				if !d.ScheduledTime.After(refNow) {
					t.Errorf("draft %q is not in the future: %s", d.Message, d.ScheduledTime)
				}
				if d.Goal != "Learn Go" {
					t.Errorf("expected goal to be carried, got %q", d.Goal)
				}
			}
		})
	}
}

func TestFallbackTimesOfDay(t *testing.T) {
	plan := NewGenerator(fixedClock(refNow)).Generate("Run a 10k", 30, nil)

	for _, d := range plan.Drafts {
		switch d.Category {
		case CategoryStart:
			if want := refNow.Add(time.Hour); !d.ScheduledTime.Equal(want) {
				t.Errorf("start: expected %s, got %s", want, d.ScheduledTime)
			}
		case CategoryDaily, CategoryWeeklyReview, CategoryMilestone, CategoryCompletion:
			if h := d.ScheduledTime.Hour(); h != HourFor(d.Category) {
				t.Errorf("%s: expected hour %d, got %d", d.Category, HourFor(d.Category), h)
			}
		}
	}

	last := plan.Drafts[len(plan.Drafts)-1]
	if want := time.Date(2026, 2, 11, 18, 0, 0, 0, time.UTC); !last.ScheduledTime.Equal(want) {
		t.Errorf("completion: expected %s, got %s", want, last.ScheduledTime)
	}
}

func TestFallbackCompletionAfterStartLateInDay(t *testing.T) {
	evening := time.Date(2026, 1, 13, 20, 0, 0, 0, time.UTC)
	plan := NewGenerator(fixedClock(evening)).Generate("Read a chapter", 1, nil)

	var start, completion time.Time
	for _, d := range plan.Drafts {
		switch d.Category {
		case CategoryStart:
			start = d.ScheduledTime
		case CategoryCompletion:
			completion = d.ScheduledTime
		}
	}
	if !completion.After(start) {
		t.Fatalf("completion %s should follow start %s", completion, start)
	}
	if plan.Drafts[0].Category != CategoryStart {
		t.Errorf("expected start first, got %s", plan.Drafts[0].Category)
	}
}

func TestFallbackMessagesStayWithinLimit(t *testing.T) {
	goal := strings.Repeat("é", MaxMessageLength)
	plan := NewGenerator(fixedClock(refNow)).Generate(goal, 30, nil)

	for _, d := range plan.Drafts {
		if n := utf8.RuneCountInString(d.Message); n > MaxMessageLength {
			t.Errorf("message has %d runes", n)
		}
	}
	if utf8.RuneCountInString(plan.Strategy) > 2*MaxMessageLength {
		t.Error("strategy should use the goal excerpt")
	}
}

func TestGenerateUsesValidCandidates(t *testing.T) {
	candidates := []Candidate{
		{Message: "Set up the toolchain", DayOffset: 1, Category: "Start"},
		{Message: "Write a CLI", DayOffset: 3, Category: "practice"},
		{Message: "You are doing great", DayOffset: 3, Category: "Motivation"},
		{Message: "Review the week", DayOffset: 7, Category: "WeeklyReview"},
		{Message: "Ship it", DayOffset: 30, Category: "Completion"},
		{Message: "Something else", DayOffset: 10, Category: "Custom"},
	}

	plan := NewGenerator(fixedClock(refNow)).Generate("Learn Go", 30, candidates)

	if plan.Source != SourceAI {
		t.Fatalf("expected AI source, got %s", plan.Source)
	}
	if len(plan.Drafts) != 6 {
		t.Fatalf("expected 6 drafts, got %d", len(plan.Drafts))
	}
	assertSorted(t, plan.Drafts)

	for _, d := range plan.Drafts {
		if h := d.ScheduledTime.Hour(); h != HourFor(d.Category) {
			t.Errorf("%s: expected hour %d, got %d", d.Category, HourFor(d.Category), h)
		}
		if !d.IsAIGenerated {
			t.Errorf("%q should be marked AI generated", d.Message)
		}
	}

	want := time.Date(2026, 1, 16, 20, 0, 0, 0, time.UTC)
	for _, d := range plan.Drafts {
		if d.Category == CategoryMotivation && !d.ScheduledTime.Equal(want) {
			t.Errorf("motivation: expected %s, got %s", want, d.ScheduledTime)
		}
		if d.Category == CategoryCustom && d.ScheduledTime.Hour() != defaultHour {
			t.Errorf("custom: expected noon, got %s", d.ScheduledTime)
		}
	}
}

func TestGenerateFallsBackBelowMinimum(t *testing.T) {
	candidates := append(validCandidates(3),
		Candidate{Message: "", DayOffset: 4, Category: "Daily"},
		Candidate{Message: "Bad offset", DayOffset: 0, Category: "Daily"},
	)

	g := NewGenerator(fixedClock(refNow))
	plan := g.Generate("Learn Go", 30, candidates)
	fallback := g.Generate("Learn Go", 30, nil)

	if plan.Source != SourceFallback {
		t.Fatalf("expected fallback source, got %s", plan.Source)
	}
	if plan.Rejected != 2 {
		t.Errorf("expected 2 rejected, got %d", plan.Rejected)
	}
	if !reflect.DeepEqual(plan.Drafts, fallback.Drafts) {
		t.Error("expected the plan to equal the fallback template")
	}
}

func TestGenerateRejectsBadCandidates(t *testing.T) {
	tests := []struct {
		name string
		c    Candidate
	}{
		{"empty message", Candidate{Message: "   ", DayOffset: 2, Category: "Daily"}},
		{"too long", Candidate{Message: strings.Repeat("a", MaxMessageLength+1), DayOffset: 2, Category: "Daily"}},
		{"zero offset", Candidate{Message: "x", DayOffset: 0, Category: "Daily"}},
		{"negative offset", Candidate{Message: "x", DayOffset: -3, Category: "Daily"}},
		{"fractional offset", Candidate{Message: "x", DayOffset: 1.5, Category: "Daily"}},
		{"unknown category", Candidate{Message: "x", DayOffset: 2, Category: "Banana"}},
		{"missing category", Candidate{Message: "x", DayOffset: 2, Category: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := validateCandidate(refNow, "goal", tt.c); ok {
				t.Fatalf("expected %+v to be rejected", tt.c)
			}
		})
	}
}

func TestGenerateDeduplicates(t *testing.T) {
	candidates := append(validCandidates(5), Candidate{Message: "Step 2", DayOffset: 2, Category: "daily"})

	plan := NewGenerator(fixedClock(refNow)).Generate("Learn Go", 30, candidates)

	if plan.Duplicates != 1 {
		t.Errorf("expected 1 duplicate, got %d", plan.Duplicates)
	}
	if len(plan.Drafts) != 5 {
		t.Errorf("expected 5 drafts, got %d", len(plan.Drafts))
	}
}

func TestGenerateCapsPlanLength(t *testing.T) {
	plan := NewGenerator(fixedClock(refNow)).Generate("Learn Go", 60, validCandidates(40))

	if len(plan.Drafts) != MaxDrafts {
		t.Fatalf("expected %d drafts, got %d", MaxDrafts, len(plan.Drafts))
	}
	assertSorted(t, plan.Drafts)
	if last := plan.Drafts[MaxDrafts-1]; last.Message != "Step 25" {
		t.Errorf("expected the earliest 25 to be kept, last is %q", last.Message)
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"Daily", CategoryDaily},
		{"weekly review", CategoryWeeklyReview},
		{"WeeklyReview", CategoryWeeklyReview},
		{" MONTHLY MILESTONE ", CategoryMonthlyMilestone},
		{"banana", CategoryCustom},
		{"", CategoryCustom},
	}
	for _, tt := range tests {
		if got := ParseCategory(tt.in); got != tt.want {
			t.Errorf("ParseCategory(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestSnapToCategoryHour(t *testing.T) {
	in := time.Date(2026, 3, 1, 23, 45, 12, 0, time.UTC)
	got := SnapToCategoryHour(in, CategoryStart)
	if want := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("expected %s, got %s", want, got)
	}
}
