package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wenqilu/mealweek/internal/plan"
	"github.com/wenqilu/mealweek/internal/store"
	"github.com/wenqilu/mealweek/internal/websocket"
)

const weekStartLayout = "2006-01-02"

type PlanHandler struct {
	planStore   *store.MealPlanStore
	recipeStore *store.RecipeStore
	manager     *plan.Manager
	hub         *websocket.Hub
	logger      *slog.Logger
}

func NewPlanHandler(ps *store.MealPlanStore, rs *store.RecipeStore, m *plan.Manager, hub *websocket.Hub, logger *slog.Logger) *PlanHandler {
	return &PlanHandler{planStore: ps, recipeStore: rs, manager: m, hub: hub, logger: logger}
}

// gridResponse is the wire shape of an open grid. week_start is the
// Monday anchor for instance plans and absent for templates.
type gridResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Mode        plan.Mode         `json:"mode"`
	WeekStart   string            `json:"week_start,omitempty"`
	Assignments []plan.Assignment `json:"assignments"`
}

func gridView(g *plan.Grid) gridResponse {
	resp := gridResponse{
		ID:          g.ID(),
		Name:        g.Name(),
		Mode:        g.Mode(),
		Assignments: g.Assignments(),
	}
	if resp.Assignments == nil {
		resp.Assignments = []plan.Assignment{}
	}
	if g.Mode() == plan.Instance {
		resp.WeekStart = g.WeekStart().Format(weekStartLayout)
	}
	return resp
}

type createPlanRequest struct {
	Name      string `json:"name"`
	Mode      string `json:"mode"`
	WeekStart string `json:"week_start"`
}

func (h *PlanHandler) List(w http.ResponseWriter, r *http.Request) {
	plans, err := h.planStore.List()
	if err != nil {
		h.logger.Error("list plans", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list plans"})
		return
	}
	if plans == nil {
		plans = []store.PlanSummary{}
	}
	writeJSON(w, http.StatusOK, plans)
}

// Create persists a new empty plan and opens it for editing.
func (h *PlanHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	mode, err := plan.ParseMode(req.Mode)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "mode must be template or instance"})
		return
	}

	var weekStart time.Time
	if mode == plan.Instance {
		if req.WeekStart == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "week_start is required for instance plans"})
			return
		}
		weekStart, err = time.Parse(weekStartLayout, req.WeekStart)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "week_start must be YYYY-MM-DD"})
			return
		}
	}

	g, err := h.planStore.Create(req.Name, mode, weekStart)
	if err != nil {
		h.logger.Error("create plan", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create plan"})
		return
	}
	h.manager.Put(g)

	writeJSON(w, http.StatusCreated, gridView(g))
}

// Open returns the grid for a plan, loading it from the store if it is
// not already open. An already open grid is returned as-is, unsaved
// edits included.
func (h *PlanHandler) Open(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if g, ok := h.manager.Get(id); ok {
		writeJSON(w, http.StatusOK, gridView(g))
		return
	}

	g, err := h.planStore.Get(id)
	if err != nil {
		h.logger.Error("open plan", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load plan"})
		return
	}
	if g == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "plan not found"})
		return
	}
	h.manager.Put(g)
	writeJSON(w, http.StatusOK, gridView(g))
}

// Close discards the open grid without saving. Edits made since the last
// save are dropped.
func (h *PlanHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	h.manager.Close(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *PlanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.planStore.Delete(id); err != nil {
		h.logger.Error("delete plan", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete plan"})
		return
	}
	h.manager.Close(id)
	h.hub.Broadcast(websocket.NewMessage("plan", "deleted", strconv.FormatInt(id, 10), nil))
	w.WriteHeader(http.StatusNoContent)
}

type addItemRequest struct {
	Day      string `json:"day"`
	MealTime string `json:"meal_time"`
	RecipeID int64  `json:"recipe_id"`
	Servings int    `json:"servings"`
}

// AddItem places a recipe into a slot on the open grid. The returned
// assignment carries a tmp id until the plan is saved.
func (h *PlanHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	day, err := plan.ParseDayLabel(req.Day)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid day"})
		return
	}
	mealTime, err := plan.ParseMealTime(req.MealTime)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid meal_time"})
		return
	}
	if req.Servings == 0 {
		req.Servings = 1
	}

	recipe, err := h.recipeStore.GetRecipe(req.RecipeID)
	if err != nil {
		h.logger.Error("resolve recipe", "id", req.RecipeID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to resolve recipe"})
		return
	}
	if recipe == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "recipe not found"})
		return
	}

	var assignment plan.Assignment
	found, err := h.manager.Mutate(id, func(g *plan.Grid) error {
		itemID, err := g.AddItem(day, mealTime, plan.RecipeRef{ID: recipe.ID, Title: recipe.Title}, req.Servings)
		if err != nil {
			return err
		}
		assignment, _ = g.Lookup(itemID)
		return nil
	})
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "plan is not open"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("plan_item", "created", assignment.ID, map[string]any{"plan_id": id}))
	writeJSON(w, http.StatusCreated, assignment)
}

type moveItemRequest struct {
	Day      string `json:"day"`
	MealTime string `json:"meal_time"`
}

// MoveItem reassigns an item to a new slot in one step. This backs
// drag-and-drop, so the item keeps its id across the move.
func (h *PlanHandler) MoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	itemID := r.PathValue("item_id")

	var req moveItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	day, err := plan.ParseDayLabel(req.Day)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid day"})
		return
	}
	mealTime, err := plan.ParseMealTime(req.MealTime)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid meal_time"})
		return
	}

	var assignment plan.Assignment
	found, err := h.manager.Mutate(id, func(g *plan.Grid) error {
		if err := g.MoveItem(itemID, day, mealTime); err != nil {
			return err
		}
		assignment, _ = g.Lookup(itemID)
		return nil
	})
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "plan is not open"})
		return
	}
	if err != nil {
		if errors.Is(err, plan.ErrUnknownAssignment) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("plan_item", "moved", itemID, map[string]any{"plan_id": id}))
	writeJSON(w, http.StatusOK, assignment)
}

// RemoveItem deletes an item from the open grid. Removing an id that is
// already gone still succeeds.
func (h *PlanHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	itemID := r.PathValue("item_id")

	found, _ := h.manager.Mutate(id, func(g *plan.Grid) error {
		g.RemoveItem(itemID)
		return nil
	})
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "plan is not open"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("plan_item", "deleted", itemID, map[string]any{"plan_id": id}))
	w.WriteHeader(http.StatusNoContent)
}

// ClearItems empties the open grid.
func (h *PlanHandler) ClearItems(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	found, _ := h.manager.Mutate(id, func(g *plan.Grid) error {
		g.ClearItems()
		return nil
	})
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "plan is not open"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("plan", "cleared", strconv.FormatInt(id, 10), nil))
	w.WriteHeader(http.StatusNoContent)
}

type weekStartRequest struct {
	WeekStart string `json:"week_start"`
}

// SetWeekStart re-anchors an instance plan to a different week. Items
// keep their day-of-week slots; only the dates they resolve to change.
func (h *PlanHandler) SetWeekStart(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req weekStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	weekStart, err := time.Parse(weekStartLayout, req.WeekStart)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "week_start must be YYYY-MM-DD"})
		return
	}

	var view gridResponse
	found, err := h.manager.Mutate(id, func(g *plan.Grid) error {
		if err := g.SetWeekStart(weekStart); err != nil {
			return err
		}
		view = gridView(g)
		return nil
	})
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "plan is not open"})
		return
	}
	if err != nil {
		if errors.Is(err, plan.ErrTemplateWeekStart) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "template plans have no week start"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("plan", "updated", strconv.FormatInt(id, 10), nil))
	writeJSON(w, http.StatusOK, view)
}

// Save persists the open grid. Tmp assignment ids are replaced by server
// ids in the response, and the open grid is swapped for the saved state.
func (h *PlanHandler) Save(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	g, ok := h.manager.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "plan is not open"})
		return
	}

	saved, err := h.planStore.Save(g)
	if err != nil {
		h.logger.Error("save plan", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save plan"})
		return
	}
	h.manager.Put(saved)

	h.hub.Broadcast(websocket.NewMessage("plan", "saved", strconv.FormatInt(id, 10), nil))
	writeJSON(w, http.StatusOK, gridView(saved))
}
