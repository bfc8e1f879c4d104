// Package dates resolves due-date expressions to calendar dates.
package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ISO is the layout of every date this package emits.
const ISO = "2006-01-02"

// ParseError reports due-date text that cannot be resolved to a date.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse date from %q", e.Input)
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sun":       time.Sunday,
	"mon":       time.Monday,
	"tue":       time.Tuesday,
	"wed":       time.Wednesday,
	"thu":       time.Thursday,
	"fri":       time.Friday,
	"sat":       time.Saturday,
}

var months = map[string]time.Month{
	"january":   time.January,
	"february":  time.February,
	"march":     time.March,
	"april":     time.April,
	"may":       time.May,
	"june":      time.June,
	"july":      time.July,
	"august":    time.August,
	"september": time.September,
	"october":   time.October,
	"november":  time.November,
	"december":  time.December,
	"jan":       time.January,
	"feb":       time.February,
	"mar":       time.March,
	"apr":       time.April,
	"jun":       time.June,
	"jul":       time.July,
	"aug":       time.August,
	"sep":       time.September,
	"oct":       time.October,
	"nov":       time.November,
	"dec":       time.December,
}

// Parse resolves text to an ISO date relative to now. Empty input yields
// an empty string and no error. Accepted forms:
//
//	2025-03-01          ISO calendar date
//	today, tomorrow
//	friday              next occurrence, always in the future
//	next friday         same as above
//	in 3 days, in 2 weeks
//	dec 25, december 25 current year, or next year if already past
func Parse(text string, now time.Time) (string, error) {
	input := text
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return "", nil
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if d, err := time.ParseInLocation(ISO, text, now.Location()); err == nil {
		return d.Format(ISO), nil
	}

	switch text {
	case "today":
		return today.Format(ISO), nil
	case "tomorrow":
		return today.AddDate(0, 0, 1).Format(ISO), nil
	}

	fields := strings.Fields(text)

	if wd, ok := weekdays[text]; ok {
		return nextWeekday(today, wd).Format(ISO), nil
	}
	if len(fields) == 2 && fields[0] == "next" {
		if wd, ok := weekdays[fields[1]]; ok {
			return nextWeekday(today, wd).Format(ISO), nil
		}
	}

	if len(fields) == 3 && fields[0] == "in" {
		n, err := strconv.Atoi(fields[1])
		if err == nil && n >= 0 {
			switch strings.TrimSuffix(fields[2], "s") {
			case "day":
				return today.AddDate(0, 0, n).Format(ISO), nil
			case "week":
				return today.AddDate(0, 0, 7*n).Format(ISO), nil
			}
		}
	}

	if len(fields) == 2 {
		if m, ok := months[fields[0]]; ok {
			day, err := strconv.Atoi(fields[1])
			if err == nil {
				if d, ok := monthDay(today, m, day); ok {
					return d.Format(ISO), nil
				}
			}
		}
	}

	return "", &ParseError{Input: input}
}

// monthDay resolves a month/day pair to the current year, or the next year
// when the date has already passed. Day numbers that do not exist in the
// chosen month (e.g. feb 30) are rejected.
func monthDay(today time.Time, m time.Month, day int) (time.Time, bool) {
	for _, year := range []int{today.Year(), today.Year() + 1} {
		d := time.Date(year, m, day, 0, 0, 0, 0, today.Location())
		if d.Month() != m || d.Day() != day {
			continue
		}
		if d.Before(today) {
			continue
		}
		return d, true
	}
	return time.Time{}, false
}

// nextWeekday returns the first occurrence of wd strictly after today.
func nextWeekday(today time.Time, wd time.Weekday) time.Time {
	days := (int(wd) - int(today.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return today.AddDate(0, 0, days)
}
