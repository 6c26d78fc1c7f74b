package utils

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Layouts
const (
	ISODateLayout     = "2006-01-02"
	DisplayDateLayout = "January 2, 2006"
	ClockLayout       = "3:04PM"
)

var (
	twelveHourPattern = regexp.MustCompile(`(?i)^(\d{1,2})(?::(\d{2}))?\s*([AP])\.?\s*M\.?$`)
	twentyFourPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::\d{2})?$`)
)

// Clock is a parsed time of day
type Clock struct {
	Hour   int
	Minute int
}

// Minutes returns the minutes since midnight
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// String renders the clock the way booking sheets write it, e.g. "8:55PM"
func (c Clock) String() string {
	return time.Date(2000, 1, 1, c.Hour, c.Minute, 0, 0, time.UTC).Format(ClockLayout)
}

// ParseClock parses "8:55PM", "8 pm", "12:00 a.m." or "14:30".
// The second return value is false when the input matches neither form.
func ParseClock(value string) (Clock, bool) {
	s := strings.TrimSpace(value)
	if s == "" {
		return Clock{}, false
	}

	if m := twelveHourPattern.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour < 1 || hour > 12 || minute > 59 {
			return Clock{}, false
		}
		pm := strings.EqualFold(m[3], "P")
		switch {
		case pm && hour != 12:
			hour += 12
		case !pm && hour == 12:
			hour = 0
		}
		return Clock{Hour: hour, Minute: minute}, true
	}

	if m := twentyFourPattern.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour > 23 || minute > 59 {
			return Clock{}, false
		}
		return Clock{Hour: hour, Minute: minute}, true
	}

	return Clock{}, false
}

// MinutesSinceMidnight returns the parsed minutes of a booking time.
// Empty and unparseable values count as 00:00 so they sort first.
func MinutesSinceMidnight(value string) int {
	c, ok := ParseClock(value)
	if !ok {
		return 0
	}
	return c.Minutes()
}

var sheetDateLayouts = []string{
	ISODateLayout,
	"2006/01/02",
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"01/02/06",
	"1-2-2006",
	"01-02-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"Mon, Jan 2, 2006",
	"Monday, January 2, 2006",
	"2006-01-02 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04 PM",
	time.RFC3339,
}

// NormalizeSheetDate converts a date cell to ISO YYYY-MM-DD. It accepts
// Excel serial numbers (1900 date system) and the usual written layouts.
func NormalizeSheetDate(value string) (string, bool) {
	s := strings.TrimSpace(value)
	if s == "" {
		return "", false
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		// Plain years and tiny numbers are not dates.
		if serial < 1 || serial > 2958465 {
			return "", false
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return "", false
		}
		return t.Format(ISODateLayout), true
	}

	for _, layout := range sheetDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(ISODateLayout), true
		}
	}
	return "", false
}

// NormalizeSheetTime turns a time cell into booking text. Sheets that store
// the time as a day fraction (0.37 for 8:52AM) are rendered as "8:52AM";
// anything else is kept as written.
func NormalizeSheetTime(value string) string {
	s := strings.TrimSpace(value)
	fraction, err := strconv.ParseFloat(s, 64)
	if err != nil || fraction < 0 || fraction >= 1 || !strings.Contains(s, ".") {
		return s
	}
	total := int(fraction*24*60 + 0.5)
	if total >= 24*60 {
		total = 24*60 - 1
	}
	return Clock{Hour: total / 60, Minute: total % 60}.String()
}

// DisplayDate renders an ISO date as "March 15, 2024"; invalid input is returned unchanged.
func DisplayDate(iso string) string {
	t, err := time.Parse(ISODateLayout, iso)
	if err != nil {
		return iso
	}
	return t.Format(DisplayDateLayout)
}

// TomorrowIn returns tomorrow's ISO date in the given location
func TomorrowIn(now time.Time, loc *time.Location) string {
	return now.In(loc).AddDate(0, 0, 1).Format(ISODateLayout)
}

// TodayIn returns today's ISO date in the given location
func TodayIn(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(ISODateLayout)
}
