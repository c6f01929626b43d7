package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/wenqilu/mealweek/internal/plan"
)

// dateLayout is the storage format for week anchors and scheduled dates.
const dateLayout = "2006-01-02"

type MealPlanStore struct {
	db *sql.DB
}

func NewMealPlanStore(db *sql.DB) *MealPlanStore {
	return &MealPlanStore{db: db}
}

// PlanSummary is the listing row for saved plans.
type PlanSummary struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Mode      plan.Mode `json:"mode"`
	WeekStart time.Time `json:"week_start,omitzero"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Create persists an empty plan and returns its hydrated grid, so every
// open plan has a server id even before any assignment is saved.
func (s *MealPlanStore) Create(name string, mode plan.Mode, weekStart time.Time) (*plan.Grid, error) {
	var ws sql.NullString
	if mode == plan.Instance {
		weekStart = plan.StartOfWeek(weekStart)
		ws = sql.NullString{String: weekStart.Format(dateLayout), Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO meal_plans (name, mode, week_start) VALUES (?, ?, ?)`,
		name, mode.String(), ws,
	)
	if err != nil {
		return nil, fmt.Errorf("insert plan: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return plan.Hydrate(id, name, mode, weekStart, nil), nil
}

// Get rebuilds the grid for a plan, or returns (nil, nil) if it does
// not exist. Template rows resolve their day from the stored label;
// instance rows resolve it from the stored date. The plan package is
// the only place that conversion happens.
func (s *MealPlanStore) Get(id int64) (*plan.Grid, error) {
	var (
		name    string
		modeStr string
		ws      sql.NullString
	)
	err := s.db.QueryRow(`SELECT name, mode, week_start FROM meal_plans WHERE id = ?`, id).
		Scan(&name, &modeStr, &ws)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}

	mode, err := plan.ParseMode(modeStr)
	if err != nil {
		return nil, fmt.Errorf("plan %d: %w", id, err)
	}
	var weekStart time.Time
	if ws.Valid {
		weekStart, err = time.Parse(dateLayout, ws.String)
		if err != nil {
			return nil, fmt.Errorf("plan %d week start: %w", id, err)
		}
	}

	assignments, err := s.assignments(id, mode)
	if err != nil {
		return nil, err
	}
	return plan.Hydrate(id, name, mode, weekStart, assignments), nil
}

func (s *MealPlanStore) assignments(planID int64, mode plan.Mode) ([]plan.Assignment, error) {
	rows, err := s.db.Query(
		`SELECT a.id, a.day, a.scheduled_date, a.meal_time, a.recipe_id, a.servings, COALESCE(r.title, '')
		 FROM meal_plan_assignments a
		 LEFT JOIN recipes r ON r.id = a.recipe_id
		 WHERE a.plan_id = ?
		 ORDER BY a.sort_order ASC, a.id ASC`,
		planID,
	)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []plan.Assignment
	for rows.Next() {
		var (
			rowID    int64
			dayStr   sql.NullString
			dateStr  sql.NullString
			mealStr  string
			recipeID int64
			servings int
			title    string
		)
		if err := rows.Scan(&rowID, &dayStr, &dateStr, &mealStr, &recipeID, &servings, &title); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}

		var day plan.DayLabel
		switch mode {
		case plan.Template:
			day, err = plan.ParseDayLabel(dayStr.String)
			if err != nil {
				return nil, fmt.Errorf("assignment %d: %w", rowID, err)
			}
		case plan.Instance:
			date, err := time.Parse(dateLayout, dateStr.String)
			if err != nil {
				return nil, fmt.Errorf("assignment %d date: %w", rowID, err)
			}
			day = plan.DayFromDate(date)
		}

		mealTime, err := plan.ParseMealTime(mealStr)
		if err != nil {
			return nil, fmt.Errorf("assignment %d: %w", rowID, err)
		}

		assignments = append(assignments, plan.Assignment{
			ID:       strconv.FormatInt(rowID, 10),
			Day:      day,
			MealTime: mealTime,
			Recipe:   plan.RecipeRef{ID: recipeID, Title: title},
			Servings: servings,
		})
	}
	return assignments, rows.Err()
}

// Save replaces the persisted state of a plan with the grid's current
// assignments and returns the rehydrated grid, with server ids in place
// of any tmp ids. Saving is the only point where intermediate drag
// state reaches the database.
func (s *MealPlanStore) Save(g *plan.Grid) (*plan.Grid, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var ws sql.NullString
	if g.Mode() == plan.Instance {
		ws = sql.NullString{String: g.WeekStart().Format(dateLayout), Valid: true}
	}
	_, err = tx.Exec(
		`UPDATE meal_plans SET name = ?, week_start = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		g.Name(), ws, g.ID(),
	)
	if err != nil {
		return nil, fmt.Errorf("update plan: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM meal_plan_assignments WHERE plan_id = ?`, g.ID()); err != nil {
		return nil, fmt.Errorf("clear assignments: %w", err)
	}

	for i, a := range g.Assignments() {
		var day, date sql.NullString
		switch g.Mode() {
		case plan.Template:
			day = sql.NullString{String: a.Day.String(), Valid: true}
		case plan.Instance:
			date = sql.NullString{String: plan.DateFromDay(a.Day, g.WeekStart()).Format(dateLayout), Valid: true}
		}
		_, err := tx.Exec(
			`INSERT INTO meal_plan_assignments (plan_id, day, scheduled_date, meal_time, recipe_id, servings, sort_order)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			g.ID(), day, date, a.MealTime.String(), a.Recipe.ID, a.Servings, i,
		)
		if err != nil {
			return nil, fmt.Errorf("insert assignment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.Get(g.ID())
}

func (s *MealPlanStore) List() ([]PlanSummary, error) {
	rows, err := s.db.Query(`SELECT id, name, mode, week_start, updated_at FROM meal_plans ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var plans []PlanSummary
	for rows.Next() {
		var (
			p       PlanSummary
			modeStr string
			ws      sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Name, &modeStr, &ws, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		if p.Mode, err = plan.ParseMode(modeStr); err != nil {
			return nil, fmt.Errorf("plan %d: %w", p.ID, err)
		}
		if ws.Valid {
			if p.WeekStart, err = time.Parse(dateLayout, ws.String); err != nil {
				return nil, fmt.Errorf("plan %d week start: %w", p.ID, err)
			}
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

func (s *MealPlanStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM meal_plans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	return nil
}
