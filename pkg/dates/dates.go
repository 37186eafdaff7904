// Package dates provides natural language date parsing for task and
// event scheduling.
package dates

import (
	"regexp"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var parser *when.Parser

func init() {
	parser = when.New(nil)
	parser.Add(en.All...)
	parser.Add(common.All...)
}

// Frequent misspellings seen in model output and user text.
var spellingFixes = map[string]string{
	"tommorow":  "tomorrow",
	"tomorow":   "tomorrow",
	"tommorrow": "tomorrow",
	"yesturday": "yesterday",
	"wensday":   "wednesday",
	"wendsday":  "wednesday",
	"thursay":   "thursday",
	"saterday":  "saturday",
}

var wordRe = regexp.MustCompile(`[a-zA-Z]+`)

func fixSpelling(text string) string {
	return wordRe.ReplaceAllStringFunc(text, func(word string) string {
		if fixed, ok := spellingFixes[strings.ToLower(word)]; ok {
			return fixed
		}
		return word
	})
}

// Normalize parses a date expression relative to the anchor time.
// It accepts RFC3339 and common ISO layouts directly, then falls back
// to natural language parsing with future preference. Returns nil when
// the expression cannot be resolved to a date.
func Normalize(expr string, anchor time.Time) *time.Time {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, expr, anchor.Location()); err == nil {
			return &t
		}
	}

	expr = fixSpelling(expr)

	result, err := parser.Parse(expr, anchor)
	if err != nil || result == nil {
		return nil
	}

	t := result.Time
	// Prefer future dates: a weekday whose occurrence today already
	// passed rolls a full week, a bare time rolls to tomorrow.
	if t.Before(anchor) {
		if day, ok := weekdayIn(expr); ok && t.Weekday() == day {
			t = NextWeekday(anchor, day, t.Hour(), t.Minute())
		} else if anchor.Sub(t) < 24*time.Hour {
			t = t.Add(24 * time.Hour)
		}
	}
	return &t
}

var weekdayWords = map[string]time.Weekday{
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
	"sunday": time.Sunday, "sun": time.Sunday,
}

func weekdayIn(expr string) (time.Weekday, bool) {
	for _, word := range wordRe.FindAllString(strings.ToLower(expr), -1) {
		if day, ok := weekdayWords[word]; ok {
			return day, true
		}
	}
	return 0, false
}

// NextWeekday returns the next occurrence of the given weekday at the
// given hour and minute, strictly after the anchor. If the weekday is
// today but the time already passed, it rolls to next week.
func NextWeekday(anchor time.Time, day time.Weekday, hour, minute int) time.Time {
	daysAhead := (int(day) - int(anchor.Weekday()) + 7) % 7
	candidate := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), hour, minute, 0, 0, anchor.Location())
	candidate = candidate.AddDate(0, 0, daysAhead)
	if !candidate.After(anchor) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate
}
