package aggregate

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/DaDevFox/task-systems/forecast-core/internal/domain"
)

// AnalyzeContinuity compares the number of periods present with the number the span
// between the first and last label should contain. Unparseable labels fall back to
// counting distinct labels; the report is always returned.
func (a *Aggregator) AnalyzeContinuity(periods []string, periodType domain.PeriodType) domain.ContinuityReport {
	report := domain.ContinuityReport{ActualPeriods: len(periods)}
	if len(periods) == 0 {
		return report
	}

	report.FirstPeriod = periods[0]
	report.LastPeriod = periods[len(periods)-1]

	expected, err := expectedPeriods(report.FirstPeriod, report.LastPeriod, periodType)
	if err != nil {
		a.logger.WithError(err).WithFields(logrus.Fields{
			"first_period": report.FirstPeriod,
			"last_period":  report.LastPeriod,
			"period_type":  periodType,
		}).Warn("Could not parse period labels, using distinct label count")
		expected = distinctLabels(periods)
	}

	report.ExpectedPeriods = expected
	if missing := expected - report.ActualPeriods; missing > 0 {
		report.MissingPeriods = missing
	}
	return report
}

func expectedPeriods(first, last string, periodType domain.PeriodType) (int, error) {
	start, err := parseLabel(first, periodType)
	if err != nil {
		return 0, err
	}
	end, err := parseLabel(last, periodType)
	if err != nil {
		return 0, err
	}

	switch periodType {
	case domain.PeriodWeekly:
		return int(end.Sub(start).Hours()/24)/7 + 1, nil
	case domain.PeriodQuarterly:
		return monthSpan(start, end)/3 + 1, nil
	default:
		return monthSpan(start, end) + 1, nil
	}
}

// parseLabel returns the first day of the period a label names
func parseLabel(label string, periodType domain.PeriodType) (time.Time, error) {
	var year, n int
	switch periodType {
	case domain.PeriodWeekly:
		if _, err := fmt.Sscanf(label, "%d-W%d", &year, &n); err != nil {
			return time.Time{}, fmt.Errorf("invalid weekly label %q: %w", label, err)
		}
		if n < 1 || n > 53 {
			return time.Time{}, fmt.Errorf("invalid ISO week in %q", label)
		}
		return isoWeekStart(year, n), nil
	case domain.PeriodQuarterly:
		if _, err := fmt.Sscanf(label, "%d-Q%d", &year, &n); err != nil {
			return time.Time{}, fmt.Errorf("invalid quarterly label %q: %w", label, err)
		}
		if n < 1 || n > 4 {
			return time.Time{}, fmt.Errorf("invalid quarter in %q", label)
		}
		return time.Date(year, time.Month((n-1)*3+1), 1, 0, 0, 0, 0, time.UTC), nil
	default:
		t, err := time.Parse("2006-01", label)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid monthly label %q: %w", label, err)
		}
		return t, nil
	}
}

// isoWeekStart returns the Monday of the given ISO week; week 1 contains January 4th
func isoWeekStart(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	return jan4.AddDate(0, 0, -offset+(week-1)*7)
}

func monthSpan(start, end time.Time) int {
	return (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
}

func distinctLabels(periods []string) int {
	seen := make(map[string]struct{}, len(periods))
	for _, p := range periods {
		if p != "" {
			seen[p] = struct{}{}
		}
	}
	return len(seen)
}
