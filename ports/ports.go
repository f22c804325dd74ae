// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/agendahof/accessgate/domain/entitlement"
)

// ErrNotFound is returned by stores when an entity does not exist.
var ErrNotFound = errors.New("not found")

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability. The evaluation core never reads the
// system clock directly; the reference time always flows in through here.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// -----------------------------------------------------------------------------
// Data Store Ports
// -----------------------------------------------------------------------------

// Role distinguishes clinic owners from their staff.
type Role string

const (
	RoleOwner Role = "owner"
	RoleStaff Role = "staff"
)

// Account is a principal profile (owner or staff member).
type Account struct {
	ID          string
	Email       string
	Name        string
	Role        Role
	Active      bool
	OwnerID     string // staff linkage; empty for owners
	TrialEndsAt string // raw trial-end metadata from the external system
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AccountStore persists principal profiles.
type AccountStore interface {
	// Get retrieves an account by ID.
	Get(ctx context.Context, id string) (Account, error)

	// Create stores a new account.
	Create(ctx context.Context, a Account) error

	// Update modifies an existing account.
	Update(ctx context.Context, a Account) error
}

// SubscriptionStore persists backend-billed subscription records.
// Records are written only by the billing webhook pipeline; the access
// service reads them.
type SubscriptionStore interface {
	// Get retrieves a record by ID.
	Get(ctx context.Context, id string) (entitlement.Record, error)

	// ListByOwner returns all non-cancelled records for an owner.
	ListByOwner(ctx context.Context, ownerID string) ([]entitlement.Record, error)

	// ListCancelledByOwner returns cancelled records for an owner.
	ListCancelledByOwner(ctx context.Context, ownerID string) ([]entitlement.Record, error)

	// Create stores a new record.
	Create(ctx context.Context, r entitlement.Record) error

	// Update modifies an existing record.
	Update(ctx context.Context, r entitlement.Record) error
}

// ReceiptStore persists validated store purchase receipts.
type ReceiptStore interface {
	// ListByOwner returns all receipts for an owner.
	ListByOwner(ctx context.Context, ownerID string) ([]entitlement.Receipt, error)

	// Put stores or replaces a receipt by transaction ID.
	Put(ctx context.Context, r entitlement.Receipt) error
}
