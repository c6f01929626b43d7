package model

import "time"

type Recipe struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	CookingTime int          `json:"cooking_time,omitempty"` // minutes
	Difficulty  string       `json:"difficulty,omitempty"`
	CoverImage  string       `json:"cover_image,omitempty"`
	Ingredients []Ingredient `json:"ingredients"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Ingredient is one line of a recipe's ingredient list. Quantity is free
// text ("2个", "1斤", "a pinch"), never a structured unit.
type Ingredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
}
