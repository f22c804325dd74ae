package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/agendahof/accessgate/ports"
)

// AccountStore implements ports.AccountStore using SQLite.
type AccountStore struct {
	db *DB
}

// NewAccountStore creates a new SQLite account store.
func NewAccountStore(db *DB) *AccountStore {
	return &AccountStore{db: db}
}

// Get retrieves an account by ID.
func (s *AccountStore) Get(ctx context.Context, id string) (ports.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, role, active, owner_id, trial_ends_at, created_at, updated_at
		FROM accounts
		WHERE id = ?
	`, id)

	var a ports.Account
	var role string
	var active int
	err := row.Scan(&a.ID, &a.Email, &a.Name, &role, &active, &a.OwnerID, &a.TrialEndsAt, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.Account{}, ports.ErrNotFound
	}
	if err != nil {
		return ports.Account{}, err
	}

	a.Role = ports.Role(role)
	a.Active = active == 1
	return a, nil
}

// Create stores a new account.
func (s *AccountStore) Create(ctx context.Context, a ports.Account) error {
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, email, name, role, active, owner_id, trial_ends_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.Email, a.Name, string(a.Role), boolToInt(a.Active), a.OwnerID, a.TrialEndsAt, a.CreatedAt, a.UpdatedAt)

	if err != nil && isUniqueConstraintError(err) {
		return ErrDuplicate
	}
	return err
}

// Update modifies an existing account.
func (s *AccountStore) Update(ctx context.Context, a ports.Account) error {
	a.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		SET email = ?, name = ?, role = ?, active = ?, owner_id = ?, trial_ends_at = ?, updated_at = ?
		WHERE id = ?
	`, a.Email, a.Name, string(a.Role), boolToInt(a.Active), a.OwnerID, a.TrialEndsAt, a.UpdatedAt, a.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// Ensure interface compliance.
var _ ports.AccountStore = (*AccountStore)(nil)
