package model

import "time"

const (
	// DefaultColor is applied to categories and cards created without a color.
	DefaultColor = "#6B7280"
	// DefaultCategoryIcon is applied to categories created without an icon.
	DefaultCategoryIcon = "category"
)

// Category classifies transactions of a single type for one owner.
type Category struct {
	CreatedAt time.Time
	ID        string
	OwnerID   string
	Name      string
	Color     string
	Icon      string
	Type      TransactionType
	IsActive  bool
}

// CategoryInput carries the fields accepted when creating a category.
type CategoryInput struct {
	Name  string
	Color string
	Icon  string
	Type  TransactionType
}

// CategoryPatch carries the fields accepted when editing a category.
// Nil fields are left untouched; the type of a category never changes.
type CategoryPatch struct {
	Name  *string
	Color *string
	Icon  *string
}

// CategoryFilter narrows category listings.
type CategoryFilter struct {
	Type TransactionType
}
