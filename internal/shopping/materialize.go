package shopping

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wenqilu/mealweek/internal/plan"
)

// ErrNothingToAggregate is returned when a plan's assignments produce no
// ingredients; the persistence collaborator is never contacted.
var ErrNothingToAggregate = errors.New("no ingredients to aggregate")

// WarningNotSaved is surfaced when a generated list could not be
// persisted and the caller is looking at a local-only copy.
const WarningNotSaved = "shopping list could not be saved to the server; showing a local copy"

// ListPersister is the shopping-list persistence collaborator. Item
// operations are independent, idempotent, per-item requests; there is no
// batch or transactional variant.
type ListPersister interface {
	CreateList(name string, items []ShoppingListItem) (*ShoppingList, error)
	CreateItem(listID string, item ShoppingListItem) (*ShoppingListItem, error)
	UpdateItem(itemID string, item ShoppingListItem) error
	DeleteItem(itemID string) error
	LatestList() (*ShoppingList, error)
}

// Result is a generated shopping list plus its grouped view and the
// outcome of the persistence attempt.
type Result struct {
	List    *ShoppingList `json:"list"`
	Groups  []Group       `json:"groups"`
	Saved   bool          `json:"saved"`
	Warning string        `json:"warning,omitempty"`
}

// Materializer turns a plan's assignments into a persisted, checkable
// shopping list, falling back to a local-only list when persistence is
// unavailable. Aggregation output must never be lost to a persistence
// failure.
type Materializer struct {
	aggregator *Aggregator
	persist    ListPersister
	logger     *slog.Logger
}

func NewMaterializer(aggregator *Aggregator, persist ListPersister, logger *slog.Logger) *Materializer {
	return &Materializer{aggregator: aggregator, persist: persist, logger: logger}
}

// Materialize aggregates the assignments and persists the result as a
// new list. An empty aggregation returns ErrNothingToAggregate without
// touching the persister. A persister failure yields a local-only list
// (tmp ids, unchecked) with a warning instead of an error.
func (m *Materializer) Materialize(name string, assignments []plan.Assignment) (*Result, error) {
	aggregated := m.aggregator.Aggregate(assignments)
	if len(aggregated) == 0 {
		return nil, ErrNothingToAggregate
	}

	items := make([]ShoppingListItem, 0, len(aggregated))
	for _, ing := range aggregated {
		items = append(items, ShoppingListItem{
			Name:     ing.Name,
			Quantity: ing.Quantity,
			Category: ing.Category,
		})
	}

	list, err := m.persist.CreateList(name, items)
	if err != nil {
		m.logger.Warn("create shopping list failed, falling back to local list", "error", err)
		list = localList(name, items)
		return &Result{
			List:    list,
			Groups:  GroupByCategory(list.Items),
			Warning: WarningNotSaved,
		}, nil
	}

	return &Result{
		List:   list,
		Groups: GroupByCategory(list.Items),
		Saved:  true,
	}, nil
}

func localList(name string, items []ShoppingListItem) *ShoppingList {
	local := make([]ShoppingListItem, len(items))
	copy(local, items)
	for i := range local {
		local[i].ID = plan.NewTempID()
	}
	return &ShoppingList{
		ID:        plan.NewTempID(),
		Name:      name,
		Items:     local,
		CreatedAt: time.Now().UTC(),
	}
}

// AddItem appends one manually entered item, auto-categorizing it. If
// the list or the create call is offline-only the item gets a tmp id
// and a warning is returned; the caller still sees the item.
func (m *Materializer) AddItem(list *ShoppingList, name, quantity string) (warning string) {
	item := ShoppingListItem{
		Name:     name,
		Quantity: quantity,
		Category: Categorize(name),
	}

	if plan.IsTempID(list.ID) {
		item.ID = plan.NewTempID()
		list.Items = append(list.Items, item)
		return ""
	}

	created, err := m.persist.CreateItem(list.ID, item)
	if err != nil {
		m.logger.Warn("create item failed, keeping local item", "list_id", list.ID, "error", err)
		item.ID = plan.NewTempID()
		list.Items = append(list.Items, item)
		return WarningNotSaved
	}
	list.Items = append(list.Items, *created)
	return ""
}

// Toggle flips an item's completed state. The flip is applied to the
// in-memory list immediately and kept even when the persistence call
// fails; the failure comes back as a warning, never a rollback. Items
// with tmp ids are pure local mutations.
func (m *Materializer) Toggle(list *ShoppingList, itemID string) (warning string, err error) {
	item := list.Item(itemID)
	if item == nil {
		return "", fmt.Errorf("toggle: unknown item id %q", itemID)
	}

	item.Completed = !item.Completed
	if plan.IsTempID(itemID) {
		return "", nil
	}

	if err := m.persist.UpdateItem(itemID, *item); err != nil {
		m.logger.Warn("toggle not persisted, keeping optimistic state", "item_id", itemID, "error", err)
		return "item state not saved to the server", nil
	}
	return "", nil
}

// CheckAll marks every item completed. Each persisted item is submitted
// as its own request; failures never stop the remaining attempts. The
// local state always ends fully checked, and a single summary error
// reports any partial failure.
func (m *Materializer) CheckAll(list *ShoppingList) error {
	var attempted int
	var failures []error

	for i := range list.Items {
		item := &list.Items[i]
		if item.Completed {
			continue
		}
		item.Completed = true
		if plan.IsTempID(item.ID) {
			continue
		}
		attempted++
		if err := m.persist.UpdateItem(item.ID, *item); err != nil {
			failures = append(failures, fmt.Errorf("item %s: %w", item.ID, err))
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("%d of %d item updates failed: %w", len(failures), attempted, errors.Join(failures...))
	}
	return nil
}

// ClearCompleted deletes every completed item, one request per persisted
// item, running to completion over all targets. Items whose delete fails
// stay on the list; the outcome is reported once as a summary error.
func (m *Materializer) ClearCompleted(list *ShoppingList) error {
	var attempted int
	var failures []error

	kept := list.Items[:0]
	for _, item := range list.Items {
		if !item.Completed {
			kept = append(kept, item)
			continue
		}
		if plan.IsTempID(item.ID) {
			continue // local-only item, nothing to delete remotely
		}
		attempted++
		if err := m.persist.DeleteItem(item.ID); err != nil {
			failures = append(failures, fmt.Errorf("item %s: %w", item.ID, err))
			kept = append(kept, item)
		}
	}
	list.Items = kept

	if len(failures) > 0 {
		return fmt.Errorf("%d of %d deletions failed: %w", len(failures), attempted, errors.Join(failures...))
	}
	return nil
}

// Latest fetches the most recent persisted list as a grouped result.
func (m *Materializer) Latest() (*Result, error) {
	list, err := m.persist.LatestList()
	if err != nil {
		return nil, fmt.Errorf("latest list: %w", err)
	}
	if list == nil {
		return nil, nil
	}
	return &Result{
		List:   list,
		Groups: GroupByCategory(list.Items),
		Saved:  true,
	}, nil
}
