package store

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/wenqilu/mealweek/internal/shopping"
)

// ShoppingStore is the shopping-list persistence collaborator backing
// shopping.ListPersister. Item ids cross the boundary as decimal
// strings; tmp-prefixed ids never reach this layer.
type ShoppingStore struct {
	db *sql.DB
}

func NewShoppingStore(db *sql.DB) *ShoppingStore {
	return &ShoppingStore{db: db}
}

func parseItemID(itemID string) (int64, error) {
	id, err := strconv.ParseInt(itemID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid item id %q: %w", itemID, err)
	}
	return id, nil
}

func scanListItem(scanner interface{ Scan(...any) error }) (*shopping.ShoppingListItem, error) {
	var (
		item      shopping.ShoppingListItem
		id        int64
		category  string
		completed int
	)
	if err := scanner.Scan(&id, &item.Name, &item.Quantity, &category, &completed); err != nil {
		return nil, err
	}
	item.ID = strconv.FormatInt(id, 10)
	item.Category = shopping.CategoryFromLabel(category)
	item.Completed = completed != 0
	return &item, nil
}

const listItemCols = `id, name, quantity, category, completed`

// CreateList persists a list header with its entries in one transaction
// and returns the stored representation with server-assigned ids.
func (s *ShoppingStore) CreateList(name string, items []shopping.ShoppingListItem) (*shopping.ShoppingList, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`INSERT INTO shopping_lists (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("insert list: %w", err)
	}
	listID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	for i, item := range items {
		_, err := tx.Exec(
			`INSERT INTO shopping_list_items (list_id, name, quantity, category, completed, sort_order)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			listID, item.Name, item.Quantity, item.Category.Label(), boolToInt(item.Completed), i,
		)
		if err != nil {
			return nil, fmt.Errorf("insert item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetList(strconv.FormatInt(listID, 10))
}

// CreateItem appends one entry to an existing list.
func (s *ShoppingStore) CreateItem(listID string, item shopping.ShoppingListItem) (*shopping.ShoppingListItem, error) {
	id, err := parseItemID(listID)
	if err != nil {
		return nil, err
	}
	result, err := s.db.Exec(
		`INSERT INTO shopping_list_items (list_id, name, quantity, category, completed)
		 VALUES (?, ?, ?, ?, ?)`,
		id, item.Name, item.Quantity, item.Category.Label(), boolToInt(item.Completed),
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	itemID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+listItemCols+` FROM shopping_list_items WHERE id = ?`, itemID)
	created, err := scanListItem(row)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return created, nil
}

// UpdateItem replaces an item's full state. Updating an id that no
// longer exists is a no-op, keeping the call idempotent.
func (s *ShoppingStore) UpdateItem(itemID string, item shopping.ShoppingListItem) error {
	id, err := parseItemID(itemID)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`UPDATE shopping_list_items SET name = ?, quantity = ?, category = ?, completed = ? WHERE id = ?`,
		item.Name, item.Quantity, item.Category.Label(), boolToInt(item.Completed), id,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// DeleteItem removes an item; deleting an absent id is a no-op.
func (s *ShoppingStore) DeleteItem(itemID string) error {
	id, err := parseItemID(itemID)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(`DELETE FROM shopping_list_items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// GetList returns a list with its items, or (nil, nil) if absent.
func (s *ShoppingStore) GetList(listID string) (*shopping.ShoppingList, error) {
	id, err := parseItemID(listID)
	if err != nil {
		return nil, err
	}

	var list shopping.ShoppingList
	err = s.db.QueryRow(`SELECT id, name, created_at FROM shopping_lists WHERE id = ?`, id).
		Scan(&id, &list.Name, &list.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}
	list.ID = strconv.FormatInt(id, 10)

	rows, err := s.db.Query(
		`SELECT `+listItemCols+` FROM shopping_list_items WHERE list_id = ? ORDER BY sort_order ASC, id ASC`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanListItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list.Items = append(list.Items, *item)
	}
	return &list, rows.Err()
}

// LatestList returns the most recently created list, or (nil, nil) when
// none has been generated yet.
func (s *ShoppingStore) LatestList() (*shopping.ShoppingList, error) {
	var id int64
	err := s.db.QueryRow(`SELECT id FROM shopping_lists ORDER BY created_at DESC, id DESC LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest list: %w", err)
	}
	return s.GetList(strconv.FormatInt(id, 10))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
