package preferences

import (
	"context"
	"errors"
	"fmt"

	"github.com/linaspasv/cms/internal/domain"
	"gopkg.in/yaml.v3"
)

// Store edits the preferences of a single scope. The document is loaded on
// first use and written back by Save. A Store is not safe for concurrent use.
type Store struct {
	repo  domain.PreferenceRepository
	scope domain.PreferenceScope
	bag   *Bag
}

func NewStore(repo domain.PreferenceRepository, scope domain.PreferenceScope) *Store {
	return &Store{repo: repo, scope: scope}
}

func (s *Store) Scope() domain.PreferenceScope { return s.scope }

// All returns the loaded preferences.
func (s *Store) All(ctx context.Context) (*Bag, error) {
	if s.bag != nil {
		return s.bag, nil
	}
	bag, err := load(ctx, s.repo, s.scope)
	if err != nil {
		return nil, err
	}
	s.bag = bag
	return bag, nil
}

func (s *Store) Get(ctx context.Context, key string) (*yaml.Node, bool, error) {
	bag, err := s.All(ctx)
	if err != nil {
		return nil, false, err
	}
	node, ok := bag.Get(key)
	return node, ok, nil
}

func (s *Store) Set(ctx context.Context, key string, value any) error {
	bag, err := s.All(ctx)
	if err != nil {
		return err
	}
	return bag.Set(key, value)
}

func (s *Store) Remove(ctx context.Context, key string) error {
	bag, err := s.All(ctx)
	if err != nil {
		return err
	}
	bag.Remove(key)
	return nil
}

// Save writes the preferences back. An empty document deletes the scope.
func (s *Store) Save(ctx context.Context) error {
	if s.bag == nil {
		return nil
	}

	if s.bag.Empty() {
		if err := s.repo.Delete(ctx, s.scope); err != nil {
			return fmt.Errorf("failed to delete %s preferences: %w", s.scope, err)
		}
		return nil
	}

	data, err := s.bag.Marshal()
	if err != nil {
		return err
	}
	if err := s.repo.Put(ctx, s.scope, data); err != nil {
		return fmt.Errorf("failed to save %s preferences: %w", s.scope, err)
	}
	return nil
}

func load(ctx context.Context, repo domain.PreferenceRepository, scope domain.PreferenceScope) (*Bag, error) {
	data, err := repo.Get(ctx, scope)
	if errors.Is(err, domain.ErrPreferencesNotFound) {
		return NewBag(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s preferences: %w", scope, err)
	}

	bag, err := ParseBag(data)
	if err != nil {
		return nil, fmt.Errorf("invalid %s preferences: %w", scope, err)
	}
	return bag, nil
}
