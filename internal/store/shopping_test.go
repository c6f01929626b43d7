package store

import (
	"testing"

	"github.com/wenqilu/mealweek/internal/shopping"
)

func TestShoppingListCreateAndFetch(t *testing.T) {
	ss := NewShoppingStore(setupTestDB(t))

	list, err := ss.CreateList("本周采购", []shopping.ShoppingListItem{
		{Name: "西红柿", Quantity: "2个 + 1个", Category: shopping.Produce},
		{Name: "五花肉", Quantity: "500克", Category: shopping.MeatSeafood},
	})
	if err != nil {
		t.Fatalf("create list: %v", err)
	}
	if list.ID == "" {
		t.Fatal("list id not assigned")
	}
	if len(list.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(list.Items))
	}
	if list.Items[0].ID == "" {
		t.Error("item id not assigned")
	}
	if list.Items[0].Category != shopping.Produce {
		t.Errorf("category = %s, want %s", list.Items[0].Category, shopping.Produce)
	}
	if list.Items[0].Quantity != "2个 + 1个" {
		t.Errorf("quantity = %q, merged free text must be stored verbatim", list.Items[0].Quantity)
	}

	latest, err := ss.LatestList()
	if err != nil {
		t.Fatalf("latest list: %v", err)
	}
	if latest == nil || latest.ID != list.ID {
		t.Errorf("latest = %+v, want list %s", latest, list.ID)
	}
}

func TestShoppingLatestListEmpty(t *testing.T) {
	ss := NewShoppingStore(setupTestDB(t))
	latest, err := ss.LatestList()
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest != nil {
		t.Errorf("latest = %+v, want nil before any list exists", latest)
	}
}

func TestShoppingItemLifecycle(t *testing.T) {
	ss := NewShoppingStore(setupTestDB(t))

	list, err := ss.CreateList("l", nil)
	if err != nil {
		t.Fatalf("create list: %v", err)
	}

	item, err := ss.CreateItem(list.ID, shopping.ShoppingListItem{
		Name: "牛奶", Quantity: "1盒", Category: shopping.DairyEgg,
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}

	// Full-replace update.
	item.Completed = true
	item.Quantity = "2盒"
	if err := ss.UpdateItem(item.ID, *item); err != nil {
		t.Fatalf("update item: %v", err)
	}

	got, err := ss.GetList(list.ID)
	if err != nil {
		t.Fatalf("get list: %v", err)
	}
	if len(got.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(got.Items))
	}
	if !got.Items[0].Completed || got.Items[0].Quantity != "2盒" {
		t.Errorf("item = %+v after update", got.Items[0])
	}

	if err := ss.DeleteItem(item.ID); err != nil {
		t.Fatalf("delete item: %v", err)
	}
	// Deleting again is a no-op.
	if err := ss.DeleteItem(item.ID); err != nil {
		t.Fatalf("second delete: %v", err)
	}

	got, _ = ss.GetList(list.ID)
	if len(got.Items) != 0 {
		t.Errorf("items = %d after delete, want 0", len(got.Items))
	}
}

func TestShoppingStoreRejectsMalformedIDs(t *testing.T) {
	ss := NewShoppingStore(setupTestDB(t))
	if err := ss.UpdateItem("tmp-abc", shopping.ShoppingListItem{}); err == nil {
		t.Error("expected error for non-numeric item id")
	}
	if err := ss.DeleteItem("not-a-number"); err == nil {
		t.Error("expected error for non-numeric item id")
	}
}

func TestShoppingCategoryLabelPersistence(t *testing.T) {
	ss := NewShoppingStore(setupTestDB(t))

	list, err := ss.CreateList("l", []shopping.ShoppingListItem{
		{Name: "某种神秘粉末", Category: shopping.Other},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Labels are stored as display strings and must survive the round trip.
	got, _ := ss.GetList(list.ID)
	if got.Items[0].Category != shopping.Other {
		t.Errorf("category = %s, want %s", got.Items[0].Category, shopping.Other)
	}
}
