package domain

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
)

// User is the control panel account a nav is built for. Roles hold role
// handles in the order their preferences are consulted.
type User struct {
	ID        uuid.UUID
	Email     string
	Name      string
	Super     bool
	Roles     []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) HasRole(handle string) bool {
	return u != nil && slices.Contains(u.Roles, handle)
}

type UserRepository interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*User, error)
	Upsert(ctx context.Context, email, name string, super bool, roles []string) (*User, error)
}
