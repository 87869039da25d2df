package postgres

import (
	"context"
	"fmt"

	"caby/internal/domain/user"
	"caby/internal/ports"
)

// UserRepo persists the minimal account records rides reference.
type UserRepo struct{}

func NewUserRepo() ports.UserStore {
	return &UserRepo{}
}

// EnsureRider upserts the rider row so the ride's foreign key always holds.
func (repo *UserRepo) EnsureRider(ctx context.Context, riderID, email string) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	u, err := user.NewRider(riderID, email)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO users (id, email, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, u.ID, u.Email, u.Role.String())
	if err != nil {
		return fmt.Errorf("upsert rider: %w", err)
	}
	return nil
}
