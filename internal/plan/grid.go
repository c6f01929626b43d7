package plan

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Mode selects how a plan addresses its days: a reusable template keyed
// by day-of-week, or a concrete week instance anchored to a start date.
type Mode int

const (
	Template Mode = iota
	Instance
)

var modeNames = [...]string{"template", "instance"}

func (m Mode) Valid() bool {
	return m == Template || m == Instance
}

func (m Mode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "template":
		return Template, nil
	case "instance":
		return Instance, nil
	}
	return 0, fmt.Errorf("unknown plan mode: %q", s)
}

func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid plan mode: %d", int(m))
	}
	return []byte(modeNames[m]), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// TempIDPrefix marks identifiers generated client-side before the owning
// record has been persisted. Persistence calls are skipped for them.
const TempIDPrefix = "tmp-"

// IsTempID reports whether id was generated locally and is not yet known
// to the server.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

// NewTempID returns a fresh not-yet-persisted identifier.
func NewTempID() string {
	return TempIDPrefix + uuid.NewString()
}

// RecipeRef points at a recipe placed on the grid. Title is denormalized
// for rendering; the ingredient list is resolved through the recipe
// store when a shopping list is generated.
type RecipeRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Assignment is one recipe placed into one (day, meal time) slot.
type Assignment struct {
	ID       string    `json:"id"`
	Day      DayLabel  `json:"day"`
	MealTime MealTime  `json:"meal_time"`
	Recipe   RecipeRef `json:"recipe"`
	Servings int       `json:"servings"`
}

// ErrUnknownAssignment is returned when an operation names an assignment
// id that is not in the grid. Hitting it indicates a caller bug (stale or
// fabricated id), not a user-recoverable condition.
var ErrUnknownAssignment = errors.New("unknown assignment id")

// ErrTemplateWeekStart is returned when SetWeekStart is called on a
// template plan, which has no date anchor.
var ErrTemplateWeekStart = errors.New("template plans have no week start")

// Grid is the in-memory collection of slot assignments for one plan.
// A slot may hold any number of assignments; assignment ids are unique
// within the grid and survive moves.
//
// A Grid is not safe for concurrent use. Callers serialize access, the
// HTTP layer through Manager.
type Grid struct {
	id          int64
	name        string
	mode        Mode
	weekStart   time.Time
	assignments []*Assignment
	byID        map[string]*Assignment
}

// NewGrid creates an empty grid. For instance mode, weekStart is
// truncated to the Monday of its week; templates ignore it.
func NewGrid(name string, mode Mode, weekStart time.Time) *Grid {
	g := &Grid{
		name: name,
		mode: mode,
		byID: make(map[string]*Assignment),
	}
	if mode == Instance {
		g.weekStart = StartOfWeek(weekStart)
	}
	return g
}

// Hydrate rebuilds a grid from persisted state, keeping server-assigned
// assignment ids.
func Hydrate(id int64, name string, mode Mode, weekStart time.Time, assignments []Assignment) *Grid {
	g := NewGrid(name, mode, weekStart)
	g.id = id
	for i := range assignments {
		a := assignments[i]
		g.assignments = append(g.assignments, &a)
		g.byID[a.ID] = &a
	}
	return g
}

func (g *Grid) ID() int64            { return g.id }
func (g *Grid) Name() string         { return g.name }
func (g *Grid) Mode() Mode           { return g.mode }
func (g *Grid) WeekStart() time.Time { return g.weekStart }
func (g *Grid) Len() int             { return len(g.assignments) }

// AddItem appends a new assignment to the given slot and returns its id.
// It never merges with assignments already in the slot.
func (g *Grid) AddItem(day DayLabel, mealTime MealTime, recipe RecipeRef, servings int) (string, error) {
	if !day.Valid() {
		return "", fmt.Errorf("invalid day label: %d", int(day))
	}
	if !mealTime.Valid() {
		return "", fmt.Errorf("invalid meal time: %d", int(mealTime))
	}
	if servings < 1 {
		return "", fmt.Errorf("servings must be positive, got %d", servings)
	}

	a := &Assignment{
		ID:       NewTempID(),
		Day:      day,
		MealTime: mealTime,
		Recipe:   recipe,
		Servings: servings,
	}
	g.assignments = append(g.assignments, a)
	g.byID[a.ID] = a
	return a.ID, nil
}

// RemoveItem deletes the assignment with the given id. Removing an id
// that is not present is a no-op.
func (g *Grid) RemoveItem(id string) {
	if _, ok := g.byID[id]; !ok {
		return
	}
	delete(g.byID, id)
	for i, a := range g.assignments {
		if a.ID == id {
			g.assignments = append(g.assignments[:i], g.assignments[i+1:]...)
			break
		}
	}
}

// MoveItem reassigns an existing assignment to a new slot in one step,
// preserving its id, recipe, and servings. This backs drag-and-drop.
func (g *Grid) MoveItem(id string, day DayLabel, mealTime MealTime) error {
	if !day.Valid() {
		return fmt.Errorf("invalid day label: %d", int(day))
	}
	if !mealTime.Valid() {
		return fmt.Errorf("invalid meal time: %d", int(mealTime))
	}
	a, ok := g.byID[id]
	if !ok {
		return fmt.Errorf("move %q: %w", id, ErrUnknownAssignment)
	}
	a.Day = day
	a.MealTime = mealTime
	return nil
}

// ClearItems empties the grid.
func (g *Grid) ClearItems() {
	g.assignments = g.assignments[:0]
	g.byID = make(map[string]*Assignment)
}

// SetWeekStart re-anchors an instance plan to a different week. Stored
// day labels are untouched; only their rendering back to dates changes.
func (g *Grid) SetWeekStart(t time.Time) error {
	if g.mode != Instance {
		return ErrTemplateWeekStart
	}
	g.weekStart = StartOfWeek(t)
	return nil
}

// Lookup returns a copy of the assignment with the given id.
func (g *Grid) Lookup(id string) (Assignment, bool) {
	a, ok := g.byID[id]
	if !ok {
		return Assignment{}, false
	}
	return *a, true
}

// Assignments returns a copy of all assignments in insertion order.
func (g *Grid) Assignments() []Assignment {
	out := make([]Assignment, 0, len(g.assignments))
	for _, a := range g.assignments {
		out = append(out, *a)
	}
	return out
}

// Slot returns copies of the assignments currently filed under
// (day, mealTime), in insertion order.
func (g *Grid) Slot(day DayLabel, mealTime MealTime) []Assignment {
	var out []Assignment
	for _, a := range g.assignments {
		if a.Day == day && a.MealTime == mealTime {
			out = append(out, *a)
		}
	}
	return out
}
