package product

import (
	"context"
	"time"

	"github.com/spf13/cast"
	"github.com/talkincode/productgate/internal/users"
)

// Event topics published on the process bus after successful writes
const (
	EventCreated = "product:created"
	EventUpdated = "product:updated"
	EventDeleted = "product:deleted"
)

// Product is the wire representation shared by both backends. The
// relational backend stringifies its surrogate key and fills the
// timestamps; the document backend echoes the caller-supplied id.
type Product struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Price     float64    `json:"price"`
	UserID    string     `json:"userId"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// ProductWithOwner is the composite returned by the with-user join
type ProductWithOwner struct {
	Product *Product    `json:"product"`
	User    *users.User `json:"user"`
}

// CreateInput carries raw request values. ID and Price stay untyped so
// numeric JSON ids and loosely typed prices can be coerced.
type CreateInput struct {
	ID     interface{} `json:"id"`
	Name   string      `json:"name"`
	Price  interface{} `json:"price"`
	UserID string      `json:"userId"`
}

// UpdateInput distinguishes absent fields from zero values; the document
// backend keeps the stored value for any nil field.
type UpdateInput struct {
	Name   *string     `json:"name"`
	Price  interface{} `json:"price"`
	UserID string      `json:"userId"`
}

// DeleteResult reports the removed id. A nil result from a store means
// the backend answers deletes with no body (204).
type DeleteResult struct {
	ID string `json:"deleted"`
}

// Store is the single CRUD contract the gateway presents. The active
// implementation is chosen once at startup and injected; handlers never
// branch on a backend flag.
type Store interface {
	Backend() string
	Create(ctx context.Context, in CreateInput) (*Product, error)
	List(ctx context.Context, userID string) ([]Product, error)
	Get(ctx context.Context, id string) (*Product, error)
	Update(ctx context.Context, id string, in UpdateInput) (*Product, error)
	Delete(ctx context.Context, id, userID string) (*DeleteResult, error)
	Ping(ctx context.Context) error
}

// OwnerJoiner is implemented by backends able to join a product with its
// owning user (relational only).
type OwnerJoiner interface {
	GetWithOwner(ctx context.Context, id string) (*ProductWithOwner, error)
}

// Seeder is implemented by backends supporting bulk fixture loads
// (document only).
type Seeder interface {
	Seed(ctx context.Context, userID string) (int, error)
}

// coercePrice enforces presence and numeric coercibility, nothing more.
// Negative values and other questionable prices pass through unchanged.
func coercePrice(v interface{}) (float64, bool) {
	if v == nil {
		return 0, false
	}
	price, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}
	return price, true
}
