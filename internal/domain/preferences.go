package domain

import (
	"context"

	"github.com/google/uuid"
)

type PreferenceKind string

const (
	PreferenceKindUser    PreferenceKind = "user"
	PreferenceKindRole    PreferenceKind = "role"
	PreferenceKindDefault PreferenceKind = "default"
)

// PreferenceScope addresses one stored preference document. Key is empty for
// the default scope.
type PreferenceScope struct {
	Kind PreferenceKind
	Key  string
}

func UserScope(userID uuid.UUID) PreferenceScope {
	return PreferenceScope{Kind: PreferenceKindUser, Key: userID.String()}
}

func RoleScope(handle string) PreferenceScope {
	return PreferenceScope{Kind: PreferenceKindRole, Key: handle}
}

func DefaultScope() PreferenceScope {
	return PreferenceScope{Kind: PreferenceKindDefault}
}

func (s PreferenceScope) String() string {
	if s.Key == "" {
		return string(s.Kind)
	}
	return string(s.Kind) + ":" + s.Key
}

// PreferenceRepository stores raw YAML preference documents per scope.
// Get returns ErrPreferencesNotFound when nothing is stored.
type PreferenceRepository interface {
	Get(ctx context.Context, scope PreferenceScope) ([]byte, error)
	Put(ctx context.Context, scope PreferenceScope, document []byte) error
	Delete(ctx context.Context, scope PreferenceScope) error
}
