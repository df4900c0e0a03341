package metrics

import (
	"strings"
	"time"

	"reviewarena/internal/domain"
)

const (
	RangeWeek    = "week"
	RangeMonth   = "month"
	RangeQuarter = "quarter"
	RangeYear    = "year"
	RangeAll     = "all"

	DefaultRange = RangeMonth
)

// TimeRange is a closed window [Start, End]. A zero Start means "since the
// beginning", a zero End means "until now".
type TimeRange struct {
	Value string
	Start time.Time
	End   time.Time
}

// ResolveRange turns a range name into concrete bounds ending at now.
func ResolveRange(value string, now time.Time) (TimeRange, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		v = DefaultRange
	}

	tr := TimeRange{Value: v, End: now}
	switch v {
	case RangeWeek:
		tr.Start = now.AddDate(0, 0, -7)
	case RangeMonth:
		tr.Start = now.AddDate(0, -1, 0)
	case RangeQuarter:
		tr.Start = now.AddDate(0, -3, 0)
	case RangeYear:
		tr.Start = now.AddDate(-1, 0, 0)
	case RangeAll:
	default:
		return TimeRange{}, domain.BadRequest("invalid range, must be one of: week, month, quarter, year, all")
	}
	return tr, nil
}

func (r TimeRange) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}
