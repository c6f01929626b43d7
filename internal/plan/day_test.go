package plan

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDayFromDate(t *testing.T) {
	tests := []struct {
		in   time.Time
		want DayLabel
	}{
		{date(2025, time.June, 2), Monday},
		{date(2025, time.June, 3), Tuesday},
		{date(2025, time.June, 4), Wednesday},
		{date(2025, time.June, 5), Thursday},
		{date(2025, time.June, 6), Friday},
		{date(2025, time.June, 7), Saturday},
		{date(2025, time.June, 8), Sunday},
	}
	for _, tt := range tests {
		if got := DayFromDate(tt.in); got != tt.want {
			t.Errorf("DayFromDate(%s) = %s, want %s", tt.in.Format("2006-01-02"), got, tt.want)
		}
	}
}

func TestDateFromDay(t *testing.T) {
	weekStart := date(2025, time.June, 2) // a Monday

	tests := []struct {
		day  DayLabel
		want time.Time
	}{
		{Monday, date(2025, time.June, 2)},
		{Wednesday, date(2025, time.June, 4)},
		{Sunday, date(2025, time.June, 8)},
	}
	for _, tt := range tests {
		if got := DateFromDay(tt.day, weekStart); !got.Equal(tt.want) {
			t.Errorf("DateFromDay(%s) = %s, want %s", tt.day, got.Format("2006-01-02"), tt.want.Format("2006-01-02"))
		}
	}
}

func TestDateFromDayPanicsOnInvalidLabel(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for out-of-range day label")
		}
	}()
	DateFromDay(DayLabel(9), date(2025, time.June, 2))
}

func TestStartOfWeek(t *testing.T) {
	monday := date(2025, time.June, 2)

	tests := []struct {
		name string
		in   time.Time
	}{
		{"monday itself", monday},
		{"midweek", date(2025, time.June, 4)},
		{"sunday", date(2025, time.June, 8)},
		{"midday time", time.Date(2025, time.June, 6, 14, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		if got := StartOfWeek(tt.in); !got.Equal(monday) {
			t.Errorf("%s: StartOfWeek(%s) = %s, want %s", tt.name, tt.in, got, monday)
		}
	}
}

func TestDayDateRoundTrip(t *testing.T) {
	// Every calendar date over a span covering month and year boundaries
	// must survive date -> day -> date.
	d := date(2024, time.December, 23)
	for i := 0; i < 100; i++ {
		day := DayFromDate(d)
		back := DateFromDay(day, StartOfWeek(d))
		if !back.Equal(d) {
			t.Fatalf("round trip failed for %s: got %s (day %s)", d.Format("2006-01-02"), back.Format("2006-01-02"), day)
		}
		d = d.AddDate(0, 0, 1)
	}
}

func TestParseDayLabel(t *testing.T) {
	tests := []struct {
		in      string
		want    DayLabel
		wantErr bool
	}{
		{"monday", Monday, false},
		{"Mon", Monday, false},
		{"SUNDAY", Sunday, false},
		{" wed ", Wednesday, false},
		{"fryday", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDayLabel(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDayLabel(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDayLabel(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDayLabel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseMealTime(t *testing.T) {
	tests := []struct {
		in      string
		want    MealTime
		wantErr bool
	}{
		{"breakfast", Breakfast, false},
		{"Lunch", Lunch, false},
		{"DINNER", Dinner, false},
		{"brunch", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseMealTime(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseMealTime(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseMealTime(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMealTime(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
