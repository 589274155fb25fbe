// Package cohort holds the date-window parsing that gates every cohort
// query. The policy is fail closed: any blank or malformed bound yields
// "no range", and no range means an empty cohort — a bad request must
// never widen the audience to the whole user base.
package cohort

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Range is a half-open publication window: [From, Until). Until sits at
// the start of the day after date_to, so the whole final day is inside
// the window.
type Range struct {
	From  time.Time
	Until time.Time
}

// ParseRange turns the raw date_from/date_to query values into a Range.
// The second return value is the explicit ok/not-ok branch callers must
// take: not ok stands for the empty cohort, never for an error.
func ParseRange(dateFrom, dateTo string) (Range, bool) {
	from, ok := parseDay(dateFrom)
	if !ok {
		return Range{}, false
	}
	to, ok := parseDay(dateTo)
	if !ok {
		return Range{}, false
	}

	return Range{
		From:  from,
		Until: to.AddDate(0, 0, 1),
	}, true
}

func parseDay(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
