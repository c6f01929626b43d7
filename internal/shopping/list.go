package shopping

import "time"

// ShoppingList is a named, checkable list of entries. IDs are decimal
// strings once server-assigned; lists and items that only exist locally
// carry tmp-prefixed ids (see plan.TempIDPrefix) and are skipped by
// persistence calls.
type ShoppingList struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Items     []ShoppingListItem `json:"items"`
	CreatedAt time.Time          `json:"created_at"`
}

// ShoppingListItem is one categorized, mergeable line item. Quantity is
// free text and may be a concatenation like "2个 + 1个" after merging.
type ShoppingListItem struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Quantity  string   `json:"quantity"`
	Category  Category `json:"category"`
	Completed bool     `json:"completed"`
}

// Item returns a pointer to the item with the given id, or nil.
func (l *ShoppingList) Item(id string) *ShoppingListItem {
	for i := range l.Items {
		if l.Items[i].ID == id {
			return &l.Items[i]
		}
	}
	return nil
}

// Group is one category section of a grouped shopping list view.
type Group struct {
	Category Category           `json:"category"`
	Items    []ShoppingListItem `json:"items"`
}

// GroupByCategory splits items into category sections in display order,
// omitting empty sections. Item order within a section is preserved.
func GroupByCategory(items []ShoppingListItem) []Group {
	var groups []Group
	for _, c := range Categories() {
		var section []ShoppingListItem
		for _, item := range items {
			if item.Category == c {
				section = append(section, item)
			}
		}
		if len(section) > 0 {
			groups = append(groups, Group{Category: c, Items: section})
		}
	}
	return groups
}
