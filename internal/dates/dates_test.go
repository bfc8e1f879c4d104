package dates

import (
	"errors"
	"testing"
	"time"
)

// Reference date for all tests: Sunday 2024-12-01.
var ref = time.Date(2024, 12, 1, 15, 4, 5, 0, time.UTC)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"iso date", "2025-03-01", "2025-03-01"},
		{"today", "today", "2024-12-01"},
		{"tomorrow", "tomorrow", "2024-12-02"},
		{"tomorrow mixed case", "Tomorrow", "2024-12-02"},
		{"bare weekday resolves forward", "friday", "2024-12-06"},
		{"same weekday skips to next week", "sunday", "2024-12-08"},
		{"next weekday", "next monday", "2024-12-02"},
		{"next weekday abbreviated", "next fri", "2024-12-06"},
		{"in n days", "in 3 days", "2024-12-04"},
		{"in one day singular", "in 1 day", "2024-12-02"},
		{"in n weeks", "in 2 weeks", "2024-12-15"},
		{"month day this year", "dec 25", "2024-12-25"},
		{"month day full name", "december 25", "2024-12-25"},
		{"month day rolls to next year", "jan 15", "2025-01-15"},
		{"month day today", "dec 1", "2024-12-01"},
		{"surrounding whitespace", "  tomorrow  ", "2024-12-02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input, ref)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseEmpty(t *testing.T) {
	for _, input := range []string{"", "   "} {
		got, err := Parse(input, ref)
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", input, err)
		}
		if got != "" {
			t.Errorf("Parse(%q) = %q, want empty", input, got)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"not a date",
		"someday",
		"in many days",
		"in 3 months",
		"feb 30",
		"dec 45",
		"2024-13-01",
		"next christmas",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input, ref)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", input)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Errorf("Parse(%q) error is %T, want *ParseError", input, err)
			}
		})
	}
}

func TestParseWeekdayNeverInPast(t *testing.T) {
	// Walk a full week of reference dates; the resolved day must always be
	// strictly after the reference day.
	for offset := 0; offset < 7; offset++ {
		now := ref.AddDate(0, 0, offset)
		for name := range weekdays {
			got, err := Parse(name, now)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", name, err)
			}
			d, err := time.Parse(ISO, got)
			if err != nil {
				t.Fatalf("Parse(%q) returned bad date %q", name, got)
			}
			if !d.After(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)) {
				t.Errorf("Parse(%q) at %s = %s, not in the future", name, now.Format(ISO), got)
			}
		}
	}
}
