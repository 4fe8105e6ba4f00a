package ledger

import (
	"testing"
	"time"
)

// a Thursday
var periodNow = time.Date(2026, 8, 27, 15, 30, 45, 0, time.UTC)

func TestCalculateDateRange_Day(t *testing.T) {
	start, end, err := calculateDateRangeAt("day", periodNow)
	if err != nil {
		t.Fatalf("calculateDateRangeAt(day) error = %v", err)
	}

	wantStart := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC).Add(-time.Microsecond)
	if !start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", start, wantStart)
	}
	if !end.Equal(wantEnd) {
		t.Errorf("end = %v, want %v", end, wantEnd)
	}
}

func TestCalculateDateRange_WeekStartsMonday(t *testing.T) {
	start, end, err := calculateDateRangeAt("week", periodNow)
	if err != nil {
		t.Fatalf("calculateDateRangeAt(week) error = %v", err)
	}

	wantStart := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC) // Monday
	if !start.Equal(wantStart) {
		t.Errorf("start = %v, want Monday %v", start, wantStart)
	}
	wantEnd := wantStart.AddDate(0, 0, 7).Add(-time.Microsecond)
	if !end.Equal(wantEnd) {
		t.Errorf("end = %v, want %v", end, wantEnd)
	}
}

func TestCalculateDateRange_WeekOnSunday(t *testing.T) {
	sunday := time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC)
	start, _, err := calculateDateRangeAt("week", sunday)
	if err != nil {
		t.Fatalf("calculateDateRangeAt(week) error = %v", err)
	}

	// Sunday belongs to the week that started the previous Monday
	wantStart := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	if !start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", start, wantStart)
	}
}

func TestCalculateDateRange_Month(t *testing.T) {
	start, end, err := calculateDateRangeAt("month", periodNow)
	if err != nil {
		t.Fatalf("calculateDateRangeAt(month) error = %v", err)
	}

	wantStart := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC).Add(-time.Microsecond)
	if !start.Equal(wantStart) || !end.Equal(wantEnd) {
		t.Errorf("range = [%v, %v], want [%v, %v]", start, end, wantStart, wantEnd)
	}
}

func TestCalculateDateRange_Year(t *testing.T) {
	start, end, err := calculateDateRangeAt("year", periodNow)
	if err != nil {
		t.Fatalf("calculateDateRangeAt(year) error = %v", err)
	}

	wantStart := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC).Add(-time.Microsecond)
	if !start.Equal(wantStart) || !end.Equal(wantEnd) {
		t.Errorf("range = [%v, %v], want [%v, %v]", start, end, wantStart, wantEnd)
	}
}

func TestCalculateDateRange_All(t *testing.T) {
	start, end, err := calculateDateRangeAt("all", periodNow)
	if err != nil {
		t.Fatalf("calculateDateRangeAt(all) error = %v", err)
	}

	if !start.Equal(allPeriodEpoch) {
		t.Errorf("start = %v, want epoch %v", start, allPeriodEpoch)
	}
	if !end.Equal(periodNow) {
		t.Errorf("end = %v, want now %v", end, periodNow)
	}
}

func TestCalculateDateRange_CaseInsensitive(t *testing.T) {
	if _, _, err := calculateDateRangeAt("MONTH", periodNow); err != nil {
		t.Errorf("calculateDateRangeAt(MONTH) error = %v, want nil", err)
	}
}

func TestCalculateDateRange_Invalid(t *testing.T) {
	for _, period := range []string{"", "fortnight", "quarter"} {
		_, _, err := calculateDateRangeAt(period, periodNow)
		if !IsValidation(err) {
			t.Errorf("calculateDateRangeAt(%q) error = %v, want validation error", period, err)
		}
	}
}
