package app

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/linaspasv/cms/internal/domain"
	"github.com/linaspasv/cms/internal/nav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	superUser = &domain.User{ID: uuid.MustParse("00000000-0000-0000-0000-000000000001"), Super: true}
	editor    = &domain.User{ID: uuid.MustParse("00000000-0000-0000-0000-000000000002"), Roles: []string{"editor"}}
)

func newTestNavService(repo *mockPreferenceRepo) *NavService {
	registry := nav.NewRegistry(nav.NewURLs("http://localhost", "cp", nil), nav.StaticCollections{{Handle: "pages", Title: "Pages"}})
	return NewNavService(registry, repo, &mockUserRepo{})
}

func TestBuildNav_GuestGetsDefaults(t *testing.T) {
	repo := newMockPreferenceRepo(map[domain.PreferenceScope]string{
		domain.DefaultScope(): "nav: {tools: {tools::forms: '@remove'}}",
	})

	tree, err := newTestNavService(repo).BuildNav(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"Top Level", "Content", "Fields", "Tools", "Users", "Preferences"}, tree.Keys())
	assert.Contains(t, tree.Get("Tools").Displays(), "Forms")
}

func TestBuildNav_RoleNavReplacesDefaultNav(t *testing.T) {
	repo := newMockPreferenceRepo(map[domain.PreferenceScope]string{
		domain.RoleScope("editor"): "nav: {tools: {tools::forms: '@remove'}}",
		domain.DefaultScope():      "nav: {fields: {fields::blueprints: '@remove'}}",
	})

	tree, err := newTestNavService(repo).BuildNav(context.Background(), editor)

	require.NoError(t, err)
	assert.NotContains(t, tree.Get("Tools").Displays(), "Forms")
	assert.Contains(t, tree.Get("Fields").Displays(), "Blueprints")
}

func TestBuildNav_FallsBackToDefaultNav(t *testing.T) {
	repo := newMockPreferenceRepo(map[domain.PreferenceScope]string{
		domain.UserScope(editor.ID): "locale: fr",
		domain.DefaultScope():       "nav: {top_level: {content::collections::pages: '@alias'}}",
	})

	tree, err := newTestNavService(repo).BuildNav(context.Background(), editor)

	require.NoError(t, err)
	assert.Equal(t, []string{"Dashboard", "Pages"}, tree.Get("Top Level").Displays())
}

func TestBuildNav_PreferenceError(t *testing.T) {
	repo := newMockPreferenceRepo(nil)
	repo.getFn = func(context.Context, domain.PreferenceScope) ([]byte, error) {
		return nil, errors.New("connection refused")
	}

	_, err := newTestNavService(repo).BuildNav(context.Background(), editor)

	assert.ErrorContains(t, err, "connection refused")
}

func TestDefaultNav_RequiresSuper(t *testing.T) {
	svc := newTestNavService(newMockPreferenceRepo(nil))
	ctx := context.Background()

	_, err := svc.DefaultNav(ctx, editor)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = svc.DefaultNav(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, svc.UpdateDefaultNav(ctx, editor, []byte("reorder: true")), domain.ErrForbidden)
	assert.ErrorIs(t, svc.DestroyDefaultNav(ctx, editor), domain.ErrForbidden)
}

func TestDefaultNav_IgnoresUserPreferences(t *testing.T) {
	repo := newMockPreferenceRepo(map[domain.PreferenceScope]string{
		domain.UserScope(superUser.ID): "nav: {users: {users::groups: '@remove'}}",
		domain.DefaultScope():          "nav: {tools: {tools::forms: '@remove'}}",
	})

	tree, err := newTestNavService(repo).DefaultNav(context.Background(), superUser)

	require.NoError(t, err)
	assert.NotContains(t, tree.Get("Tools").Displays(), "Forms")
	assert.Contains(t, tree.Get("Users").Displays(), "Groups")
}

func TestDefaultNav_WithoutPreferences(t *testing.T) {
	tree, err := newTestNavService(newMockPreferenceRepo(nil)).DefaultNav(context.Background(), superUser)

	require.NoError(t, err)
	assert.Equal(t, []string{"Forms", "Updates", "Addons", "Utilities", "GraphQL"}, tree.Get("Tools").Displays())
}

func TestUpdateDefaultNav_KeepsOtherPreferences(t *testing.T) {
	repo := newMockPreferenceRepo(map[domain.PreferenceScope]string{
		domain.DefaultScope(): "locale: en\nnav: {tools: {tools::forms: '@remove'}}",
	})
	svc := newTestNavService(repo)
	ctx := context.Background()

	require.NoError(t, svc.UpdateDefaultNav(ctx, superUser, []byte(`{"users": {"users::groups": "@remove"}}`)))

	assert.YAMLEq(t, `
locale: en
nav:
  users:
    users::groups: '@remove'
`, repo.docs[domain.DefaultScope()])

	tree, err := svc.DefaultNav(ctx, superUser)
	require.NoError(t, err)
	assert.Contains(t, tree.Get("Tools").Displays(), "Forms")
	assert.NotContains(t, tree.Get("Users").Displays(), "Groups")
}

func TestUpdateDefaultNav_InvalidDocument(t *testing.T) {
	svc := newTestNavService(newMockPreferenceRepo(nil))

	err := svc.UpdateDefaultNav(context.Background(), superUser, []byte("[not, a, mapping]"))

	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestDestroyDefaultNav(t *testing.T) {
	repo := newMockPreferenceRepo(map[domain.PreferenceScope]string{
		domain.DefaultScope(): "nav: {tools: {tools::forms: '@remove'}}",
	})
	svc := newTestNavService(repo)
	ctx := context.Background()

	require.NoError(t, svc.DestroyDefaultNav(ctx, superUser))

	assert.Equal(t, []domain.PreferenceScope{domain.DefaultScope()}, repo.deletes)
	tree, err := svc.DefaultNav(ctx, superUser)
	require.NoError(t, err)
	assert.Contains(t, tree.Get("Tools").Displays(), "Forms")
}
