package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/swapnilsubhashpatil/Secrets/internal/models"
	"github.com/swapnilsubhashpatil/Secrets/internal/services"
	"github.com/swapnilsubhashpatil/Secrets/internal/testutil"
	"github.com/swapnilsubhashpatil/Secrets/pkg/utils"
)

type MockSessionResolver struct {
	mock.Mock
}

func (m *MockSessionResolver) Resolve(ctx context.Context, token string) (*models.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func TestSessionAuth(t *testing.T) {
	user := testutil.TestUser()

	t.Run("valid session injects identity into context", func(t *testing.T) {
		resolver := new(MockSessionResolver)
		session := testutil.TestSession(user)
		resolver.On("Resolve", mock.Anything, session.Token).Return(session, nil)

		var gotID, gotEmail, gotToken interface{}
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := GetUserID(r.Context())
			require.True(t, ok)
			gotID = id
			email, _ := GetUserEmail(r.Context())
			gotEmail = email
			token, _ := GetSessionToken(r.Context())
			gotToken = token
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/api/secrets", nil)
		testutil.SetCookie(req, utils.SessionCookieName, session.Token)
		rec := httptest.NewRecorder()

		SessionAuth(resolver)(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, user.ID, gotID)
		assert.Equal(t, user.Email, gotEmail)
		assert.Equal(t, session.Token, gotToken)
	})

	t.Run("missing cookie yields 401 without reaching the handler", func(t *testing.T) {
		resolver := new(MockSessionResolver)

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not be reached")
		})

		req := httptest.NewRequest(http.MethodGet, "/api/secrets", nil)
		rec := httptest.NewRecorder()

		SessionAuth(resolver)(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		resolver.AssertNotCalled(t, "Resolve")
	})

	t.Run("unknown or expired session yields 401", func(t *testing.T) {
		resolver := new(MockSessionResolver)
		resolver.On("Resolve", mock.Anything, "dead-token").
			Return(nil, services.ErrSessionNotFound)

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not be reached")
		})

		req := httptest.NewRequest(http.MethodGet, "/api/secrets", nil)
		testutil.SetCookie(req, utils.SessionCookieName, "dead-token")
		rec := httptest.NewRecorder()

		SessionAuth(resolver)(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestContextAccessors(t *testing.T) {
	t.Run("empty context yields ok=false", func(t *testing.T) {
		ctx := context.Background()

		_, ok := GetUserID(ctx)
		assert.False(t, ok)
		_, ok = GetUserEmail(ctx)
		assert.False(t, ok)
		_, ok = GetSessionToken(ctx)
		assert.False(t, ok)
	})

	t.Run("WithUser round-trips identity", func(t *testing.T) {
		user := testutil.TestUser()
		ctx := WithUser(context.Background(), user.ID, user.Email)

		id, ok := GetUserID(ctx)
		require.True(t, ok)
		assert.Equal(t, user.ID, id)

		email, ok := GetUserEmail(ctx)
		require.True(t, ok)
		assert.Equal(t, user.Email, email)
	})
}
