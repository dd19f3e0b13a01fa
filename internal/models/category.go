package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a canonical expense label. At most one category exists per
// case-insensitive trimmed name per user, and a category may only be
// auto-created when its name appears in the predefined catalog.
type Category struct {
	ID              uuid.UUID `db:"id"`
	UserID          uuid.UUID `db:"user_id"`
	Name            string    `db:"name"`
	IconName        string    `db:"icon_name"`
	BackgroundColor string    `db:"background_color"`
	CreatedAt       time.Time `db:"created_at"`
	LastUpdated     time.Time `db:"last_updated"`
}

// Uncategorized is the label given to expenses whose category could not be
// resolved. It is never a first-class Category row.
const Uncategorized = "Uncategorized"
