package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/wenqilu/mealweek/internal/plan"
	"github.com/wenqilu/mealweek/internal/push"
	"github.com/wenqilu/mealweek/internal/shopping"
	"github.com/wenqilu/mealweek/internal/store"
	"github.com/wenqilu/mealweek/internal/websocket"
)

type ShoppingHandler struct {
	materializer  *shopping.Materializer
	shoppingStore *store.ShoppingStore
	manager       *plan.Manager
	planStore     *store.MealPlanStore
	hub           *websocket.Hub
	notifier      *Notifier
	logger        *slog.Logger
}

func NewShoppingHandler(m *shopping.Materializer, ss *store.ShoppingStore, mgr *plan.Manager, ps *store.MealPlanStore, hub *websocket.Hub, notifier *Notifier, logger *slog.Logger) *ShoppingHandler {
	return &ShoppingHandler{
		materializer:  m,
		shoppingStore: ss,
		manager:       mgr,
		planStore:     ps,
		hub:           hub,
		notifier:      notifier,
		logger:        logger,
	}
}

type generateRequest struct {
	Name string `json:"name"`
}

// Generate aggregates a plan's assignments into a shopping list. The
// open grid is used when the plan is being edited, so unsaved changes
// are reflected; otherwise the saved state is loaded. An empty plan is
// rejected without creating a list.
func (h *ShoppingHandler) Generate(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req generateRequest
	json.NewDecoder(r.Body).Decode(&req)

	g, ok := h.manager.Get(id)
	if !ok {
		g, err = h.planStore.Get(id)
		if err != nil {
			h.logger.Error("load plan for shopping list", "id", id, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load plan"})
			return
		}
		if g == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "plan not found"})
			return
		}
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = g.Name()
	}

	result, err := h.materializer.Materialize(name, g.Assignments())
	if errors.Is(err, shopping.ErrNothingToAggregate) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "plan has no resolvable ingredients"})
		return
	}
	if err != nil {
		h.logger.Error("generate shopping list", "plan_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to generate shopping list"})
		return
	}

	if result.Saved {
		h.hub.Broadcast(websocket.NewMessage("shopping_list", "created", result.List.ID, map[string]any{"plan_id": id}))
		h.notifier.ListReady(r.Context(), result.List)
	}
	writeJSON(w, http.StatusCreated, result)
}

// Latest returns the most recently generated list grouped by category.
func (h *ShoppingHandler) Latest(w http.ResponseWriter, r *http.Request) {
	result, err := h.materializer.Latest()
	if err != nil {
		h.logger.Error("latest shopping list", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load shopping list"})
		return
	}
	if result == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no shopping list yet"})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *ShoppingHandler) getList(w http.ResponseWriter, r *http.Request) *shopping.ShoppingList {
	listID := r.PathValue("id")
	list, err := h.shoppingStore.GetList(listID)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid list id"})
			return nil
		}
		h.logger.Error("get shopping list", "list_id", listID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load shopping list"})
		return nil
	}
	if list == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "shopping list not found"})
		return nil
	}
	return list
}

type addShoppingItemRequest struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
}

type itemResponse struct {
	Item    *shopping.ShoppingListItem `json:"item"`
	Warning string                     `json:"warning,omitempty"`
}

// AddItem appends a manually entered item to a list, auto-categorized
// by name.
func (h *ShoppingHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	list := h.getList(w, r)
	if list == nil {
		return
	}

	var req addShoppingItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	warning := h.materializer.AddItem(list, req.Name, req.Quantity)
	item := &list.Items[len(list.Items)-1]

	h.hub.Broadcast(websocket.NewMessage("shopping_item", "created", item.ID, map[string]any{"list_id": list.ID}))
	writeJSON(w, http.StatusCreated, itemResponse{Item: item, Warning: warning})
}

// Toggle flips one item's checked state. The new state is returned even
// when persistence fails; the failure surfaces as a warning.
func (h *ShoppingHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	list := h.getList(w, r)
	if list == nil {
		return
	}
	itemID := r.PathValue("item_id")

	warning, err := h.materializer.Toggle(list, itemID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("shopping_item", "updated", itemID, map[string]any{"list_id": list.ID}))
	writeJSON(w, http.StatusOK, itemResponse{Item: list.Item(itemID), Warning: warning})
}

// DeleteItem removes one item from a list.
func (h *ShoppingHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	list := h.getList(w, r)
	if list == nil {
		return
	}
	itemID := r.PathValue("item_id")
	if list.Item(itemID) == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	if err := h.shoppingStore.DeleteItem(itemID); err != nil {
		h.logger.Error("delete shopping item", "item_id", itemID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete item"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("shopping_item", "deleted", itemID, map[string]any{"list_id": list.ID}))
	w.WriteHeader(http.StatusNoContent)
}

type listResponse struct {
	List    *shopping.ShoppingList `json:"list"`
	Groups  []shopping.Group       `json:"groups"`
	Warning string                 `json:"warning,omitempty"`
}

// CheckAll marks every item on a list completed. Each item is its own
// update; a partial failure is reported once as a warning while the
// response still shows everything checked.
func (h *ShoppingHandler) CheckAll(w http.ResponseWriter, r *http.Request) {
	list := h.getList(w, r)
	if list == nil {
		return
	}

	var warning string
	if err := h.materializer.CheckAll(list); err != nil {
		h.logger.Warn("check all", "list_id", list.ID, "error", err)
		warning = err.Error()
	}

	h.hub.Broadcast(websocket.NewMessage("shopping_list", "updated", list.ID, nil))
	writeJSON(w, http.StatusOK, listResponse{List: list, Groups: shopping.GroupByCategory(list.Items), Warning: warning})
}

// ClearCompleted deletes every checked item. Items whose delete fails
// stay on the list and the failure is reported once as a warning.
func (h *ShoppingHandler) ClearCompleted(w http.ResponseWriter, r *http.Request) {
	list := h.getList(w, r)
	if list == nil {
		return
	}

	var warning string
	if err := h.materializer.ClearCompleted(list); err != nil {
		h.logger.Warn("clear completed", "list_id", list.ID, "error", err)
		warning = err.Error()
	}

	h.hub.Broadcast(websocket.NewMessage("shopping_list", "updated", list.ID, nil))
	writeJSON(w, http.StatusOK, listResponse{List: list, Groups: shopping.GroupByCategory(list.Items), Warning: warning})
}

// Notifier fans a push notification out to every registered device.
// A nil Notifier or one without VAPID keys disables push quietly.
type Notifier struct {
	pushStore *store.PushStore
	service   *push.Service
	logger    *slog.Logger
}

func NewNotifier(ps *store.PushStore, svc *push.Service, logger *slog.Logger) *Notifier {
	return &Notifier{pushStore: ps, service: svc, logger: logger}
}

// ListReady notifies every subscription that a shopping list was
// generated. Expired subscriptions are pruned; other send failures are
// logged and skipped.
func (n *Notifier) ListReady(ctx context.Context, list *shopping.ShoppingList) {
	if n == nil || n.service == nil {
		return
	}

	subs, err := n.pushStore.List()
	if err != nil {
		n.logger.Error("list push subscriptions", "error", err)
		return
	}

	payload := push.Payload{
		Title: "Shopping list ready",
		Body:  list.Name,
		URL:   "/shopping",
		Tag:   "shopping-list",
	}
	for _, sub := range subs {
		err := n.service.Send(ctx, &sub, payload)
		if errors.Is(err, push.ErrExpired) {
			if err := n.pushStore.DeleteByEndpoint(sub.Endpoint); err != nil {
				n.logger.Error("prune expired subscription", "error", err)
			}
			continue
		}
		if err != nil {
			n.logger.Warn("push send", "error", err)
		}
	}
}
