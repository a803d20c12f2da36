package domain

import (
	"fmt"
	"strings"
	"time"
)

// PeriodType is the granularity sales history is bucketed into
type PeriodType string

const (
	PeriodWeekly    PeriodType = "weekly"
	PeriodMonthly   PeriodType = "monthly"
	PeriodQuarterly PeriodType = "quarterly"
)

// ParsePeriodType accepts weekly, monthly or quarterly (case-insensitive)
func ParsePeriodType(s string) (PeriodType, error) {
	switch PeriodType(strings.ToLower(strings.TrimSpace(s))) {
	case PeriodWeekly:
		return PeriodWeekly, nil
	case PeriodMonthly:
		return PeriodMonthly, nil
	case PeriodQuarterly:
		return PeriodQuarterly, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriodType, s)
	}
}

// Valid reports whether the period type is one of the known granularities
func (p PeriodType) Valid() bool {
	switch p {
	case PeriodWeekly, PeriodMonthly, PeriodQuarterly:
		return true
	}
	return false
}

// Label formats t as the period bucket it falls into:
// weekly "YYYY-Www" (ISO week), monthly "YYYY-MM", quarterly "YYYY-Qn".
func (p PeriodType) Label(t time.Time) string {
	switch p {
	case PeriodWeekly:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case PeriodQuarterly:
		return fmt.Sprintf("%d-Q%d", t.Year(), quarterOf(t.Month()))
	default:
		return t.Format("2006-01")
	}
}

// ForecastLabel returns the label of the period that lies step periods after now.
// Monthly and quarterly labels are the "YYYY-MM" of the period start; weekly labels
// use the ISO week format so they line up with history.
func (p PeriodType) ForecastLabel(now time.Time, step int) string {
	switch p {
	case PeriodWeekly:
		return p.Label(now.AddDate(0, 0, 7*step))
	case PeriodQuarterly:
		start := time.Date(now.Year(), time.Month((quarterOf(now.Month())-1)*3+1), 1, 0, 0, 0, 0, now.Location())
		return start.AddDate(0, 3*step, 0).Format("2006-01")
	default:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return start.AddDate(0, step, 0).Format("2006-01")
	}
}

func quarterOf(m time.Month) int {
	return (int(m)-1)/3 + 1
}
