// Package catalog holds the local read models of users and items owned by
// other services.
package catalog

import (
	"context"
	"time"
)

// User is a projected user profile.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Item is a projected shareable item.
type Item struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"ownerId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Available   bool      `json:"available"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// IsOwnedBy reports whether userID owns the item.
func (i *Item) IsOwnedBy(userID int64) bool {
	return i.OwnerID == userID
}

// UserDirectory resolves users. Get fails with a NotFound domain error.
type UserDirectory interface {
	Get(ctx context.Context, id int64) (*User, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

// ItemDirectory resolves items. Get fails with a NotFound domain error.
type ItemDirectory interface {
	Get(ctx context.Context, id int64) (*Item, error)
	// GetForUpdate is Get holding a row lock inside a transaction.
	GetForUpdate(ctx context.Context, id int64) (*Item, error)
	ListByOwner(ctx context.Context, ownerID int64, offset, limit int) ([]*Item, int64, error)
}

// Projector applies upstream catalog changes to the local read models.
type Projector interface {
	UpsertUser(ctx context.Context, u *User) error
	UpsertItem(ctx context.Context, i *Item) error
}
