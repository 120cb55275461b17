package preferences

import (
	"context"
	"fmt"

	"github.com/linaspasv/cms/internal/domain"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Resolver computes the effective preferences of a user from the user,
// role and default layers.
type Resolver struct {
	repo     domain.PreferenceRepository
	merger   *Merger
	defaults singleflight.Group
}

func NewResolver(repo domain.PreferenceRepository, merger *Merger) *Resolver {
	return &Resolver{repo: repo, merger: merger}
}

// Default loads the default preferences. Concurrent calls share one load,
// which runs detached from any single caller's cancellation. A cancelled
// caller returns early while the others keep waiting.
func (r *Resolver) Default(ctx context.Context) (*Bag, error) {
	loadCtx := context.WithoutCancel(ctx)
	ch := r.defaults.DoChan(domain.DefaultScope().String(), func() (any, error) {
		return load(loadCtx, r.repo, domain.DefaultScope())
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Bag).Clone(), nil
	}
}

// Layers loads the bags that apply to user, strongest first: the user's
// own, then each role in order, then the defaults.
func (r *Resolver) Layers(ctx context.Context, user *domain.User) ([]*Bag, error) {
	scopes := make([]domain.PreferenceScope, 0, len(user.Roles)+1)
	scopes = append(scopes, domain.UserScope(user.ID))
	for _, role := range user.Roles {
		scopes = append(scopes, domain.RoleScope(role))
	}

	layers := make([]*Bag, len(scopes)+1)
	g, gctx := errgroup.WithContext(ctx)
	for i, scope := range scopes {
		g.Go(func() error {
			bag, err := load(gctx, r.repo, scope)
			if err != nil {
				return err
			}
			layers[i] = bag
			return nil
		})
	}
	g.Go(func() error {
		bag, err := r.Default(gctx)
		if err != nil {
			return err
		}
		layers[len(scopes)] = bag
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load preference layers for user %s: %w", user.ID, err)
	}
	return layers, nil
}

// All returns the merged preferences of user. Guests have none.
func (r *Resolver) All(ctx context.Context, user *domain.User) (*Bag, error) {
	if user == nil {
		return NewBag(), nil
	}
	layers, err := r.Layers(ctx, user)
	if err != nil {
		return nil, err
	}
	return r.merger.Merge(layers...), nil
}
