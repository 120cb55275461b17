package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/linaspasv/cms/internal/domain"
	"github.com/linaspasv/cms/internal/nav"
	"github.com/linaspasv/cms/internal/preferences"
)

// NavService builds control panel navs and manages the default nav
// preferences.
type NavService struct {
	registry *nav.Registry
	resolver *preferences.Resolver
	prefs    domain.PreferenceRepository
	users    domain.UserRepository
}

func NewNavService(registry *nav.Registry, prefs domain.PreferenceRepository, users domain.UserRepository) *NavService {
	return &NavService{
		registry: registry,
		resolver: preferences.NewResolver(prefs, preferences.NewMerger(preferences.NavKey)),
		prefs:    prefs,
		users:    users,
	}
}

// GetUserByID retrieves a user by internal ID.
func (s *NavService) GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// BuildNav builds the nav user sees: the defaults with the merged nav
// preferences of the user, its roles and the global defaults applied. Guests
// get the plain defaults.
func (s *NavService) BuildNav(ctx context.Context, user *domain.User) (*nav.Tree, error) {
	bag, err := s.resolver.All(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.build(ctx, bag), nil
}

// DefaultNav builds the nav as configured by the global default preferences,
// for editing.
func (s *NavService) DefaultNav(ctx context.Context, user *domain.User) (*nav.Tree, error) {
	if err := requireSuper(user); err != nil {
		return nil, err
	}
	bag, err := s.resolver.Default(ctx)
	if err != nil {
		return nil, err
	}
	return s.build(ctx, bag), nil
}

// UpdateDefaultNav replaces the nav key of the default preferences with
// document.
func (s *NavService) UpdateDefaultNav(ctx context.Context, user *domain.User, document []byte) error {
	if err := requireSuper(user); err != nil {
		return err
	}

	doc, err := preferences.ParseBag(document)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	store := preferences.NewStore(s.prefs, domain.DefaultScope())
	if doc.Empty() {
		if err := store.Remove(ctx, preferences.NavKey); err != nil {
			return err
		}
	} else if err := store.Set(ctx, preferences.NavKey, doc.Node()); err != nil {
		return err
	}
	if err := store.Save(ctx); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Default nav updated", "user_id", user.ID)
	return nil
}

// DestroyDefaultNav removes the nav key from the default preferences.
func (s *NavService) DestroyDefaultNav(ctx context.Context, user *domain.User) error {
	if err := requireSuper(user); err != nil {
		return err
	}

	store := preferences.NewStore(s.prefs, domain.DefaultScope())
	if err := store.Remove(ctx, preferences.NavKey); err != nil {
		return err
	}
	if err := store.Save(ctx); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Default nav reset", "user_id", user.ID)
	return nil
}

func (s *NavService) build(ctx context.Context, bag *preferences.Bag) *nav.Tree {
	node, ok := bag.Get(preferences.NavKey)
	if !ok {
		return s.registry.BuildWithoutPreferences()
	}
	doc := nav.DocumentFromNode(node)
	if doc.Empty() {
		slog.DebugContext(ctx, "Nav preferences carry no instructions")
		return s.registry.BuildWithoutPreferences()
	}
	return s.registry.Build(doc)
}

func requireSuper(user *domain.User) error {
	if user == nil || !user.Super {
		return domain.ErrForbidden
	}
	return nil
}
