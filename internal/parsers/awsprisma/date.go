package awsprisma

import (
	"errors"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/xkilldash9x/scanimport/api/schemas"
)

// alertTimePrefix is how many characters of the alert time are parsed. Prisma
// renders times like "Sep 29, 2020 at 3:33:24 AM UTC"; the prefix keeps the
// calendar date and drops the clock part.
const alertTimePrefix = 12

// alertTimeLayouts are tried before the generic parser. They cover the
// formats Prisma exports actually use.
var alertTimeLayouts = []string{
	"Jan 2, 2006",
	"Jan 2 2006",
	"2006-01-02",
	"2006-01-02T15",
}

// dayFirstLayouts are the last resort for dates the generic parser reads
// month first and rejects, like "29/09/2020".
var dayFirstLayouts = []string{
	"2/1/2006",
	"2.1.2006",
	"2-1-2006",
}

// clockLayouts match values that carry only a time of day. The date comes
// from the clock.
var clockLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04PM",
	"3:04 PM",
}

var errEmptyDate = errors.New("string does not contain a date")

// parseAlertTime parses the first 12 characters of a raw alert time. Parts
// the value leaves out (the year, or the whole date) are taken from now.
func parseAlertTime(raw string, now time.Time) (time.Time, error) {
	value := strings.TrimSpace(prefix(raw, alertTimePrefix))
	if value == "" {
		return time.Time{}, &schemas.DateParseError{Value: raw, Err: errEmptyDate}
	}

	for _, layout := range alertTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}

	for _, layout := range clockLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			y, m, d := now.UTC().Date()
			return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
		}
	}

	t, err := dateparse.ParseIn(value, time.UTC, dateparse.RetryAmbiguousDateWithSwap(true))
	if err != nil {
		// The prefix often ends inside the clock part ("29/09/2020 0").
		datePart := strings.Fields(value)[0]
		var ok bool
		if t, ok = parseDayFirst(datePart); !ok {
			return time.Time{}, &schemas.DateParseError{Value: raw, Err: err}
		}
	}

	if t.Year() == 0 {
		t = time.Date(now.UTC().Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	}
	return t, nil
}

func parseDayFirst(value string) (time.Time, bool) {
	if t, err := dateparse.ParseIn(value, time.UTC, dateparse.PreferMonthFirst(false)); err == nil {
		return t, true
	}
	for _, layout := range dayFirstLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// prefix returns the first n characters (not bytes) of s.
func prefix(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
