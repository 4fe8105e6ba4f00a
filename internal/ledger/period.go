package ledger

import (
	"fmt"
	"strings"
	"time"
)

// allPeriodEpoch anchors the "all" period. Kept as a fixed date rather than
// the user's earliest transaction.
var allPeriodEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// CalculateDateRange maps a symbolic period token (day, week, month, year,
// all) to a concrete datetime interval anchored at the current UTC time.
// Weeks start on Monday.
func CalculateDateRange(period string) (time.Time, time.Time, error) {
	return calculateDateRangeAt(period, time.Now().UTC())
}

func calculateDateRangeAt(period string, now time.Time) (time.Time, time.Time, error) {
	var start, end time.Time

	switch strings.ToLower(period) {
	case "day":
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 0, 1).Add(-time.Microsecond)
	case "week":
		daysSinceMonday := (int(now.Weekday()) + 6) % 7
		monday := now.AddDate(0, 0, -daysSinceMonday)
		start = time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 0, 7).Add(-time.Microsecond)
	case "month":
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, 0).Add(-time.Microsecond)
	case "year":
		start = time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(1, 0, 0).Add(-time.Microsecond)
	case "all":
		start = allPeriodEpoch
		end = now
	default:
		return time.Time{}, time.Time{}, &ValidationError{
			Reason: fmt.Sprintf("Invalid period: '%s'. Must be one of: day, week, month, year, all", period),
		}
	}

	return start, end, nil
}
