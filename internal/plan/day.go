package plan

import (
	"fmt"
	"strings"
	"time"
)

// DayLabel identifies a day of the week. Declaration order is the week
// order: Monday first, matching ISO-8601 weekday numbering.
type DayLabel int

const (
	Monday DayLabel = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

const daysPerWeek = 7

var dayNames = [daysPerWeek]string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

var dayFromName = map[string]DayLabel{
	"monday": Monday, "mon": Monday,
	"tuesday": Tuesday, "tue": Tuesday,
	"wednesday": Wednesday, "wed": Wednesday,
	"thursday": Thursday, "thu": Thursday,
	"friday": Friday, "fri": Friday,
	"saturday": Saturday, "sat": Saturday,
	"sunday": Sunday, "sun": Sunday,
}

// Valid reports whether d is one of the seven declared labels.
func (d DayLabel) Valid() bool {
	return d >= Monday && d <= Sunday
}

func (d DayLabel) String() string {
	if !d.Valid() {
		return fmt.Sprintf("DayLabel(%d)", int(d))
	}
	return dayNames[d]
}

// ParseDayLabel accepts full English day names or three-letter
// abbreviations, case-insensitive.
func ParseDayLabel(s string) (DayLabel, error) {
	d, ok := dayFromName[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unknown day label: %q", s)
	}
	return d, nil
}

func (d DayLabel) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid day label: %d", int(d))
	}
	return []byte(dayNames[d]), nil
}

func (d *DayLabel) UnmarshalText(text []byte) error {
	parsed, err := ParseDayLabel(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MealTime identifies one of the fixed meal slots in a day.
type MealTime int

const (
	Breakfast MealTime = iota
	Lunch
	Dinner
)

var mealTimeNames = [...]string{"breakfast", "lunch", "dinner"}

var mealTimeFromName = map[string]MealTime{
	"breakfast": Breakfast,
	"lunch":     Lunch,
	"dinner":    Dinner,
}

func (m MealTime) Valid() bool {
	return m >= Breakfast && m <= Dinner
}

func (m MealTime) String() string {
	if !m.Valid() {
		return fmt.Sprintf("MealTime(%d)", int(m))
	}
	return mealTimeNames[m]
}

func ParseMealTime(s string) (MealTime, error) {
	m, ok := mealTimeFromName[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unknown meal time: %q", s)
	}
	return m, nil
}

func (m MealTime) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid meal time: %d", int(m))
	}
	return []byte(mealTimeNames[m]), nil
}

func (m *MealTime) UnmarshalText(text []byte) error {
	parsed, err := ParseMealTime(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// DayFromDate returns the day-of-week label for a date using ISO weekday
// numbering (Monday first), regardless of the locale's native first day.
func DayFromDate(t time.Time) DayLabel {
	return DayLabel((int(t.Weekday()) + 6) % daysPerWeek)
}

// DateFromDay resolves a day label against a week anchor, returning the
// midnight date of that day within weekStart's week. Passing a label
// outside the fixed seven is a caller bug and panics.
func DateFromDay(d DayLabel, weekStart time.Time) time.Time {
	if !d.Valid() {
		panic(fmt.Sprintf("plan: day label out of range: %d", int(d)))
	}
	start := time.Date(weekStart.Year(), weekStart.Month(), weekStart.Day(), 0, 0, 0, 0, weekStart.Location())
	return start.AddDate(0, 0, int(d))
}

// StartOfWeek truncates t to the Monday of its week at midnight,
// preserving the location. For any date d,
// DateFromDay(DayFromDate(d), StartOfWeek(d)) == d.
func StartOfWeek(t time.Time) time.Time {
	offset := int(t.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += daysPerWeek
	}
	monday := t.AddDate(0, 0, -offset)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, t.Location())
}
