package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/swapnilsubhashpatil/Secrets/internal/database"
	"github.com/swapnilsubhashpatil/Secrets/internal/models"
	"github.com/swapnilsubhashpatil/Secrets/internal/testutil"
	"github.com/swapnilsubhashpatil/Secrets/pkg/utils"
)

type MockSecretStore struct {
	mock.Mock
}

func (m *MockSecretStore) CreateSecret(ctx context.Context, userID uuid.UUID, content string) (*models.Secret, error) {
	args := m.Called(ctx, userID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Secret), args.Error(1)
}

func (m *MockSecretStore) ListSecrets(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Secret, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Secret), args.Error(1)
}

func (m *MockSecretStore) UpdateSecret(ctx context.Context, userID, secretID uuid.UUID, content string) (*models.Secret, error) {
	args := m.Called(ctx, userID, secretID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Secret), args.Error(1)
}

func (m *MockSecretStore) DeleteSecret(ctx context.Context, userID, secretID uuid.UUID) error {
	args := m.Called(ctx, userID, secretID)
	return args.Error(0)
}

func TestSecretSubmit(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("creates when no id is given", func(t *testing.T) {
		db := new(MockSecretStore)
		svc := NewSecretService(db)

		created := testutil.TestSecret(userID)
		db.On("CreateSecret", ctx, userID, "my new secret").Return(created, nil)

		secret, err := svc.Submit(ctx, userID, nil, "my new secret")
		require.NoError(t, err)
		assert.Equal(t, created.ID, secret.ID)
		db.AssertNotCalled(t, "UpdateSecret")
	})

	t.Run("updates when an id is given", func(t *testing.T) {
		db := new(MockSecretStore)
		svc := NewSecretService(db)

		existing := testutil.TestSecret(userID)
		existing.Content = "updated"
		db.On("UpdateSecret", ctx, userID, existing.ID, "updated").Return(existing, nil)

		secret, err := svc.Submit(ctx, userID, &existing.ID, "updated")
		require.NoError(t, err)
		assert.Equal(t, "updated", secret.Content)
		db.AssertNotCalled(t, "CreateSecret")
	})

	t.Run("rejects empty content before storage", func(t *testing.T) {
		db := new(MockSecretStore)
		svc := NewSecretService(db)

		_, err := svc.Submit(ctx, userID, nil, "")
		assert.ErrorIs(t, err, ErrEmptySecret)
		db.AssertNotCalled(t, "CreateSecret")
	})

	t.Run("rejects whitespace-only content", func(t *testing.T) {
		db := new(MockSecretStore)
		svc := NewSecretService(db)

		_, err := svc.Submit(ctx, userID, nil, "   \t\n  ")
		assert.ErrorIs(t, err, ErrEmptySecret)
	})

	t.Run("preserves interior and surrounding whitespace", func(t *testing.T) {
		db := new(MockSecretStore)
		svc := NewSecretService(db)

		// Validation trims a copy; storage keeps the original
		db.On("CreateSecret", ctx, userID, "  padded  ").Return(testutil.TestSecret(userID), nil)

		_, err := svc.Submit(ctx, userID, nil, "  padded  ")
		require.NoError(t, err)
		db.AssertExpectations(t)
	})

	t.Run("updating a foreign or missing secret yields not found", func(t *testing.T) {
		db := new(MockSecretStore)
		svc := NewSecretService(db)

		otherID := uuid.New()
		db.On("UpdateSecret", ctx, userID, otherID, "content").Return(nil, database.ErrNotFound)

		_, err := svc.Submit(ctx, userID, &otherID, "content")
		assert.ErrorIs(t, err, ErrSecretNotFound)
	})
}

func TestSecretList(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("passes pagination through", func(t *testing.T) {
		db := new(MockSecretStore)
		svc := NewSecretService(db)

		db.On("ListSecrets", ctx, userID, 50, 100).Return([]models.Secret{}, nil)

		secrets, err := svc.List(ctx, userID, utils.Page{Limit: 50, Offset: 100})
		require.NoError(t, err)
		assert.NotNil(t, secrets)
		assert.Empty(t, secrets)
	})
}

func TestSecretDelete(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	secretID := uuid.New()

	t.Run("deletes an owned secret", func(t *testing.T) {
		db := new(MockSecretStore)
		svc := NewSecretService(db)

		db.On("DeleteSecret", ctx, userID, secretID).Return(nil)

		assert.NoError(t, svc.Delete(ctx, userID, secretID))
	})

	t.Run("missing or foreign secret yields not found", func(t *testing.T) {
		db := new(MockSecretStore)
		svc := NewSecretService(db)

		db.On("DeleteSecret", ctx, userID, secretID).Return(database.ErrNotFound)

		assert.ErrorIs(t, svc.Delete(ctx, userID, secretID), ErrSecretNotFound)
	})
}
