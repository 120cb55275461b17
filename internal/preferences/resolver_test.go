package preferences

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/linaspasv/cms/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_GuestHasNoPreferences(t *testing.T) {
	repo := newMockPreferenceRepo(map[domain.PreferenceScope]string{domain.DefaultScope(): "locale: en"})

	bag, err := NewResolver(repo, NewMerger(NavKey)).All(context.Background(), nil)

	require.NoError(t, err)
	assert.True(t, bag.Empty())
	assert.Empty(t, repo.gets)
}

func TestResolver_MergesUserRolesDefault(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Roles: []string{"editor", "author"}}
	repo := newMockPreferenceRepo(map[domain.PreferenceScope]string{
		domain.UserScope(user.ID):  "locale: fr",
		domain.RoleScope("editor"): "theme: dark\nnav: {tools: '@remove'}",
		domain.RoleScope("author"): "theme: light\nstart_page: collections\nnav: {users: '@remove'}",
		domain.DefaultScope():      "locale: en\nstart_page: dashboard\nnav: {reorder: true}",
	})

	bag, err := NewResolver(repo, NewMerger(NavKey)).All(context.Background(), user)

	require.NoError(t, err)
	out, err := bag.Marshal()
	require.NoError(t, err)
	assert.YAMLEq(t, `
locale: fr
theme: dark
start_page: collections
nav: {tools: '@remove'}
`, string(out))
}

func TestResolver_LayersOrder(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Roles: []string{"editor"}}
	repo := newMockPreferenceRepo(map[domain.PreferenceScope]string{
		domain.UserScope(user.ID):  "layer: user",
		domain.RoleScope("editor"): "layer: editor",
		domain.DefaultScope():      "layer: default",
	})

	layers, err := NewResolver(repo, NewMerger()).Layers(context.Background(), user)

	require.NoError(t, err)
	require.Len(t, layers, 3)
	for i, want := range []string{"user", "editor", "default"} {
		node, ok := layers[i].Get("layer")
		require.True(t, ok)
		assert.Equal(t, want, node.Value)
	}
}

func TestResolver_LayerError(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Roles: []string{"broken"}}
	repo := newMockPreferenceRepo(nil)
	repo.getFn = func(_ context.Context, scope domain.PreferenceScope) ([]byte, error) {
		if scope == domain.RoleScope("broken") {
			return nil, errors.New("timeout")
		}
		return nil, domain.ErrPreferencesNotFound
	}

	_, err := NewResolver(repo, NewMerger()).All(context.Background(), user)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestResolver_DefaultReturnsCopies(t *testing.T) {
	repo := newMockPreferenceRepo(map[domain.PreferenceScope]string{domain.DefaultScope(): "locale: en"})
	r := NewResolver(repo, NewMerger())
	ctx := context.Background()

	first, err := r.Default(ctx)
	require.NoError(t, err)
	require.NoError(t, first.Set("locale", "de"))

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			bag, err := r.Default(ctx)
			assert.NoError(t, err)
			node, _ := bag.Get("locale")
			assert.Equal(t, "en", node.Value)
		})
	}
	wg.Wait()
}

func TestResolver_DefaultSurvivesCancelledCaller(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	var loadErrs []error
	var mu sync.Mutex

	repo := newMockPreferenceRepo(nil)
	repo.getFn = func(ctx context.Context, _ domain.PreferenceScope) ([]byte, error) {
		once.Do(func() { close(started) })
		<-release
		mu.Lock()
		loadErrs = append(loadErrs, ctx.Err())
		mu.Unlock()
		return []byte("locale: en"), nil
	}
	r := NewResolver(repo, NewMerger())

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := r.Default(ctx)
		firstErr <- err
	}()
	<-started

	secondBag := make(chan *Bag, 1)
	go func() {
		bag, err := r.Default(context.Background())
		assert.NoError(t, err)
		secondBag <- bag
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	bag := <-secondBag
	require.NotNil(t, bag)
	node, ok := bag.Get("locale")
	require.True(t, ok)
	assert.Equal(t, "en", node.Value)

	mu.Lock()
	defer mu.Unlock()
	for _, err := range loadErrs {
		assert.NoError(t, err)
	}
}
