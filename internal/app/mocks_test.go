package app

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/linaspasv/cms/internal/domain"
)

// --- Mock implementations ---

type mockUserRepo struct {
	getByIDFn func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	upsertFn  func(ctx context.Context, email, name string, super bool, roles []string) (*domain.User, error)
}

func (m *mockUserRepo) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, userID)
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepo) Upsert(ctx context.Context, email, name string, super bool, roles []string) (*domain.User, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, email, name, super, roles)
	}
	return nil, errors.New("not implemented")
}

type mockPreferenceRepo struct {
	mu      sync.Mutex
	docs    map[domain.PreferenceScope]string
	deletes []domain.PreferenceScope
	getFn   func(ctx context.Context, scope domain.PreferenceScope) ([]byte, error)
}

func newMockPreferenceRepo(docs map[domain.PreferenceScope]string) *mockPreferenceRepo {
	if docs == nil {
		docs = make(map[domain.PreferenceScope]string)
	}
	return &mockPreferenceRepo{docs: docs}
}

func (m *mockPreferenceRepo) Get(ctx context.Context, scope domain.PreferenceScope) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, scope)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[scope]
	if !ok {
		return nil, domain.ErrPreferencesNotFound
	}
	return []byte(doc), nil
}

func (m *mockPreferenceRepo) Put(_ context.Context, scope domain.PreferenceScope, document []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[scope] = string(document)
	return nil
}

func (m *mockPreferenceRepo) Delete(_ context.Context, scope domain.PreferenceScope) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, scope)
	m.deletes = append(m.deletes, scope)
	return nil
}

type mockPageLookup struct {
	findByURLFn func(ctx context.Context, path string) (*domain.Page, error)
}

func (m *mockPageLookup) FindByURL(ctx context.Context, path string) (*domain.Page, error) {
	if m.findByURLFn != nil {
		return m.findByURLFn(ctx, path)
	}
	return nil, domain.ErrPageNotFound
}
