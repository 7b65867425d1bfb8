package domain

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid")
)

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Shop struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	CategoryID int64  `json:"categoryId"`
	DateAdded  string `json:"dateAdded"` // DD/MM/YYYY
}

type Commercial struct {
	ID        int64  `json:"id"`
	ShopID    int64  `json:"shopId"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	DateAdded string `json:"dateAdded"`
}

// ShopRoom assigns a shop to a room of the floor plan. A room holds at most one shop.
type ShopRoom struct {
	RoomID int64 `json:"roomId"`
	ShopID int64 `json:"shopId"`
}

// MaxID returns the largest id in ids, or 0 when empty.
func MaxID[T any](items []T, id func(T) int64) int64 {
	var max int64
	for _, it := range items {
		if v := id(it); v > max {
			max = v
		}
	}
	return max
}
