package gateway

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/notexe/motivator/internal/reminder"
)

const planSystemPrompt = "You are a motivation coach. You turn a personal goal into a schedule of short, " +
	"specific reminder messages.\n\n" +
	"Return raw JSON only (no markdown code blocks, no text before or after) with this structure:\n" +
	"{\n" +
	"  \"strategy\": \"Your strategy in 100-200 words\",\n" +
	"  \"recommended_timeframe\": \"for example 3 months\",\n" +
	"  \"reminders\": [\n" +
	"    {\"message\": \"A concrete motivating reminder\", \"days_from_now\": 1, \"category\": \"Start\"},\n" +
	"    {\"message\": \"Another reminder\", \"days_from_now\": 7, \"category\": \"Weekly Review\"}\n" +
	"  ]\n" +
	"}\n\n" +
	"Guidelines:\n" +
	"- Create 8-15 reminders\n" +
	"- days_from_now is a whole number of days, at least 1\n" +
	"- category is one of: Start, Daily, Weekly Review, Monthly Milestone, Milestone, Completion, Practice, Motivation\n" +
	"- Each message is under 200 characters, specific to the goal, positive and actionable"

var languageNames = map[string]string{
	"en": "English",
	"vi": "Vietnamese",
	"ru": "Russian",
	"fr": "French",
	"de": "German",
	"es": "Spanish",
}

func languageName(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if name, ok := languageNames[code]; ok {
		return name
	}
	if code == "" {
		return "English"
	}
	return code
}

func buildPlanPrompt(goal, timeframeHint, language string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Create a motivation plan for this goal: %q", goal)
	if hint := strings.TrimSpace(timeframeHint); hint != "" {
		fmt.Fprintf(&b, " to be reached within %s.\n", hint)
		fmt.Fprintf(&b, "Spread the reminders over %s and set recommended_timeframe to %q.\n", hint, hint)
	} else {
		b.WriteString(".\nSuggest a realistic timeframe for this goal and spread the reminders over it.\n")
	}
	fmt.Fprintf(&b, "Write the strategy and every message in %s.", languageName(language))

	return b.String()
}

const greetingPrompt = "Generate a warm, meaningful greeting for the %s in %s. " +
	"At most 3 words, no punctuation, no quotes. Return only the greeting text."

const connectionPrompt = "Reply with the words: connection OK"

// extractJSON returns the text between the first '{' and the last '}'.
func extractJSON(content string) (string, bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || start >= end {
		return "", false
	}
	return content[start : end+1], true
}

// parsePlan decodes the model's reply. Structural problems make the whole
// reply unparseable; per-reminder content is validated later by the generator.
func parsePlan(content string) (*Result, error) {
	block, ok := extractJSON(content)
	if !ok {
		return nil, unparseable("no JSON object found in response")
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(block), &doc); err != nil {
		return nil, unparseable("failed to parse JSON: %w", err)
	}

	strategy, ok := doc["strategy"].(string)
	if !ok || strings.TrimSpace(strategy) == "" {
		return nil, unparseable("strategy is missing or not a string")
	}

	list, ok := doc["reminders"]
	if !ok {
		list, ok = doc["motivations"]
	}
	if !ok {
		return nil, unparseable("reminders list is missing")
	}
	items, ok := list.([]any)
	if !ok || len(items) == 0 {
		return nil, unparseable("reminders must be a non-empty array")
	}

	candidates := make([]reminder.Candidate, 0, len(items))
	for i, item := range items {
		c, err := parseCandidate(item)
		if err != nil {
			return nil, unparseable("reminder %d: %w", i, err)
		}
		candidates = append(candidates, c)
	}

	recommended, _ := doc["recommended_timeframe"].(string)

	return &Result{
		Strategy:             strings.TrimSpace(strategy),
		RecommendedTimeframe: strings.TrimSpace(recommended),
		Candidates:           candidates,
	}, nil
}

// parseCandidate checks field types only. Absent fields are left zero and
// rejected by the generator like any other invalid candidate.
func parseCandidate(item any) (reminder.Candidate, error) {
	obj, ok := item.(map[string]any)
	if !ok {
		return reminder.Candidate{}, fmt.Errorf("not an object")
	}

	var c reminder.Candidate
	if v, present := obj["message"]; present {
		s, ok := v.(string)
		if !ok {
			return c, fmt.Errorf("message is not a string")
		}
		c.Message = s
	}
	if v, present := obj["days_from_now"]; present {
		n, ok := v.(float64)
		if !ok {
			return c, fmt.Errorf("days_from_now is not a number")
		}
		c.DayOffset = n
	}
	if v, present := obj["category"]; present {
		s, ok := v.(string)
		if !ok {
			return c, fmt.Errorf("category is not a string")
		}
		c.Category = s
	}
	return c, nil
}

// cleanGreeting keeps the first line without quotes.
func cleanGreeting(content string) string {
	line := strings.TrimSpace(content)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = strings.NewReplacer(`"`, "", "'", "", "“", "", "”", "").Replace(line)
	return strings.TrimSpace(line)
}
