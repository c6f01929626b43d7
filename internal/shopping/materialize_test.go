package shopping

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/wenqilu/mealweek/internal/model"
	"github.com/wenqilu/mealweek/internal/plan"
)

// fakePersister records calls and can be told to fail specific
// operations or specific item ids.
type fakePersister struct {
	nextID      int64
	lists       []*ShoppingList
	createErr   error
	updateErr   error
	failDeletes map[string]bool

	createListCalls int
	updateCalls     []string
	deleteCalls     []string
}

func newFakePersister() *fakePersister {
	return &fakePersister{nextID: 1, failDeletes: map[string]bool{}}
}

func (f *fakePersister) id() string {
	id := strconv.FormatInt(f.nextID, 10)
	f.nextID++
	return id
}

func (f *fakePersister) CreateList(name string, items []ShoppingListItem) (*ShoppingList, error) {
	f.createListCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	list := &ShoppingList{ID: f.id(), Name: name, CreatedAt: time.Now().UTC()}
	for _, item := range items {
		item.ID = f.id()
		list.Items = append(list.Items, item)
	}
	f.lists = append(f.lists, list)
	return list, nil
}

func (f *fakePersister) CreateItem(listID string, item ShoppingListItem) (*ShoppingListItem, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	item.ID = f.id()
	return &item, nil
}

func (f *fakePersister) UpdateItem(itemID string, item ShoppingListItem) error {
	f.updateCalls = append(f.updateCalls, itemID)
	return f.updateErr
}

func (f *fakePersister) DeleteItem(itemID string) error {
	f.deleteCalls = append(f.deleteCalls, itemID)
	if f.failDeletes[itemID] {
		return fmt.Errorf("delete %s: server error", itemID)
	}
	return nil
}

func (f *fakePersister) LatestList() (*ShoppingList, error) {
	if len(f.lists) == 0 {
		return nil, nil
	}
	return f.lists[len(f.lists)-1], nil
}

func testMaterializer(t *testing.T, recipes map[int64]*model.Recipe, persist ListPersister) *Materializer {
	t.Helper()
	logger := discardLogger()
	return NewMaterializer(NewAggregator(&fakeRecipeSource{recipes: recipes}, logger), persist, logger)
}

func weekAssignments() ([]plan.Assignment, map[int64]*model.Recipe) {
	recipes := map[int64]*model.Recipe{
		1: {ID: 1, Title: "番茄炒蛋", Ingredients: []model.Ingredient{
			{Name: "西红柿", Quantity: "2个"},
			{Name: "鸡蛋", Quantity: "3个"},
		}},
		2: {ID: 2, Title: "红烧肉", Ingredients: []model.Ingredient{
			{Name: "五花肉", Quantity: "500克"},
			{Name: "酱油", Quantity: "2勺"},
		}},
	}
	assignments := []plan.Assignment{
		assignment("a1", plan.Monday, plan.Lunch, 1),
		assignment("a2", plan.Tuesday, plan.Dinner, 2),
	}
	return assignments, recipes
}

func TestMaterializePersistsGroupedList(t *testing.T) {
	assignments, recipes := weekAssignments()
	persist := newFakePersister()
	m := testMaterializer(t, recipes, persist)

	result, err := m.Materialize("本周采购", assignments)
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if !result.Saved || result.Warning != "" {
		t.Errorf("saved=%v warning=%q, want persisted result", result.Saved, result.Warning)
	}
	if len(result.List.Items) != 4 {
		t.Fatalf("items = %d, want 4", len(result.List.Items))
	}
	for _, item := range result.List.Items {
		if plan.IsTempID(item.ID) {
			t.Errorf("item %q kept a temp id after successful save", item.Name)
		}
		if item.Completed {
			t.Errorf("item %q starts completed", item.Name)
		}
	}

	// Groups follow category display order: produce, meat, pantry, dairy.
	wantGroups := []Category{Produce, MeatSeafood, Pantry, DairyEgg}
	if len(result.Groups) != len(wantGroups) {
		t.Fatalf("groups = %d, want %d", len(result.Groups), len(wantGroups))
	}
	for i, c := range wantGroups {
		if result.Groups[i].Category != c {
			t.Errorf("group[%d] = %s, want %s", i, result.Groups[i].Category, c)
		}
	}
}

func TestMaterializeEmptyPlanSkipsPersister(t *testing.T) {
	persist := newFakePersister()
	m := testMaterializer(t, nil, persist)

	_, err := m.Materialize("empty", nil)
	if !errors.Is(err, ErrNothingToAggregate) {
		t.Fatalf("err = %v, want ErrNothingToAggregate", err)
	}
	if persist.createListCalls != 0 {
		t.Errorf("persister contacted %d times for an empty plan", persist.createListCalls)
	}
}

func TestMaterializeFallsBackToLocalList(t *testing.T) {
	assignments, recipes := weekAssignments()
	persist := newFakePersister()
	persist.createErr = errors.New("connection refused")
	m := testMaterializer(t, recipes, persist)

	result, err := m.Materialize("本周采购", assignments)
	if err != nil {
		t.Fatalf("materialize must not fail on persistence errors: %v", err)
	}
	if result.Saved {
		t.Error("result reported as saved despite persister failure")
	}
	if result.Warning != WarningNotSaved {
		t.Errorf("warning = %q, want %q", result.Warning, WarningNotSaved)
	}
	if len(result.List.Items) != 4 {
		t.Fatalf("local fallback lost items: %d, want 4", len(result.List.Items))
	}
	if !plan.IsTempID(result.List.ID) {
		t.Errorf("local list id = %q, want temp id", result.List.ID)
	}
	for _, item := range result.List.Items {
		if !plan.IsTempID(item.ID) {
			t.Errorf("local item %q has non-temp id %q", item.Name, item.ID)
		}
	}
}

func TestToggleOptimisticKeptOnFailure(t *testing.T) {
	persist := newFakePersister()
	persist.updateErr = errors.New("timeout")
	m := testMaterializer(t, nil, persist)

	list := &ShoppingList{ID: "1", Items: []ShoppingListItem{
		{ID: "10", Name: "西红柿", Category: Produce},
	}}

	warning, err := m.Toggle(list, "10")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if warning == "" {
		t.Error("expected a warning when persistence fails")
	}
	if !list.Items[0].Completed {
		t.Error("optimistic state was rolled back")
	}
}

func TestToggleTempItemIsPureLocal(t *testing.T) {
	persist := newFakePersister()
	m := testMaterializer(t, nil, persist)

	tempID := plan.NewTempID()
	list := &ShoppingList{ID: plan.NewTempID(), Items: []ShoppingListItem{
		{ID: tempID, Name: "大米", Category: Pantry},
	}}

	warning, err := m.Toggle(list, tempID)
	if err != nil || warning != "" {
		t.Fatalf("toggle temp item: warning=%q err=%v", warning, err)
	}
	if !list.Items[0].Completed {
		t.Error("temp item not toggled")
	}
	if len(persist.updateCalls) != 0 {
		t.Errorf("persister called %d times for a temp item", len(persist.updateCalls))
	}
}

func TestToggleUnknownItem(t *testing.T) {
	m := testMaterializer(t, nil, newFakePersister())
	list := &ShoppingList{ID: "1"}
	if _, err := m.Toggle(list, "999"); err == nil {
		t.Error("expected error for unknown item id")
	}
}

func TestCheckAllAttemptsEveryItem(t *testing.T) {
	persist := newFakePersister()
	persist.updateErr = errors.New("server error")
	m := testMaterializer(t, nil, persist)

	list := &ShoppingList{ID: "1", Items: []ShoppingListItem{
		{ID: "10", Name: "a"},
		{ID: "11", Name: "b"},
		{ID: "12", Name: "c", Completed: true},
	}}

	err := m.CheckAll(list)
	if err == nil {
		t.Fatal("expected summary error")
	}
	if !strings.Contains(err.Error(), "2 of 2") {
		t.Errorf("summary = %q, want both failures reported once", err)
	}
	// Local state is fully checked regardless.
	for _, item := range list.Items {
		if !item.Completed {
			t.Errorf("item %s left unchecked", item.ID)
		}
	}
	if len(persist.updateCalls) != 2 {
		t.Errorf("update calls = %d, want 2 (already-completed item skipped)", len(persist.updateCalls))
	}
}

func TestClearCompletedPartialFailure(t *testing.T) {
	persist := newFakePersister()
	persist.failDeletes["11"] = true
	m := testMaterializer(t, nil, persist)

	list := &ShoppingList{ID: "1", Items: []ShoppingListItem{
		{ID: "10", Name: "a", Completed: true},
		{ID: "11", Name: "b", Completed: true},
		{ID: "12", Name: "c", Completed: true},
	}}

	err := m.ClearCompleted(list)
	if err == nil {
		t.Fatal("expected summary error for partial failure")
	}
	if !strings.Contains(err.Error(), "1 of 3") {
		t.Errorf("summary = %q, want one failure out of three attempts", err)
	}
	// All three deletions were attempted despite the middle failure.
	if len(persist.deleteCalls) != 3 {
		t.Fatalf("delete calls = %d, want 3", len(persist.deleteCalls))
	}
	// Entries 1 and 3 removed, entry 2 retained.
	if len(list.Items) != 1 || list.Items[0].ID != "11" {
		t.Errorf("remaining items = %+v, want only item 11", list.Items)
	}
}

func TestClearCompletedKeepsUnchecked(t *testing.T) {
	persist := newFakePersister()
	m := testMaterializer(t, nil, persist)

	list := &ShoppingList{ID: "1", Items: []ShoppingListItem{
		{ID: "10", Name: "keep"},
		{ID: "11", Name: "drop", Completed: true},
		{ID: plan.NewTempID(), Name: "local drop", Completed: true},
	}}

	if err := m.ClearCompleted(list); err != nil {
		t.Fatalf("clear completed: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].Name != "keep" {
		t.Errorf("remaining = %+v, want only the unchecked item", list.Items)
	}
	// The temp item never produced a network call.
	if len(persist.deleteCalls) != 1 {
		t.Errorf("delete calls = %d, want 1", len(persist.deleteCalls))
	}
}

func TestAddItemAutoCategorizes(t *testing.T) {
	persist := newFakePersister()
	m := testMaterializer(t, nil, persist)

	list := &ShoppingList{ID: "1"}
	if warning := m.AddItem(list, "牛奶", "1盒"); warning != "" {
		t.Fatalf("unexpected warning: %q", warning)
	}
	if len(list.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(list.Items))
	}
	if list.Items[0].Category != DairyEgg {
		t.Errorf("category = %s, want %s", list.Items[0].Category, DairyEgg)
	}
	if plan.IsTempID(list.Items[0].ID) {
		t.Error("persisted item kept a temp id")
	}
}

func TestAddItemLocalFallback(t *testing.T) {
	persist := newFakePersister()
	persist.createErr = errors.New("offline")
	m := testMaterializer(t, nil, persist)

	list := &ShoppingList{ID: "1"}
	warning := m.AddItem(list, "纸巾", "2包")
	if warning == "" {
		t.Error("expected warning for unsaved item")
	}
	if len(list.Items) != 1 || !plan.IsTempID(list.Items[0].ID) {
		t.Errorf("items = %+v, want one temp-id item", list.Items)
	}
}
