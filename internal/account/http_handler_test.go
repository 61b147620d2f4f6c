package account

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookcatalog/internal/httpx"
	"bookcatalog/internal/testutil"
)

func newTestRouter(t *testing.T) (*MockRepository, http.Handler) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(repo, testutil.TestSecret, time.Hour))

	r := chi.NewRouter()
	handler.RegisterOpen(r)
	r.Group(func(r chi.Router) {
		r.Use(httpx.AuthMiddleware(testutil.TestSecret))
		handler.RegisterClosed(r)
	})
	return repo, r
}

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHTTPHandler_Register(t *testing.T) {
	repo, h := newTestRouter(t)

	t.Run("created", func(t *testing.T) {
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		w := do(h, testutil.NewRequest(http.MethodPost, "/auth/register", map[string]string{
			"email":    "reader@example.com",
			"username": "reader",
			"password": "Secret#123",
			"phone":    "+1 206 555 0100",
		}))
		assert.Equal(t, http.StatusCreated, w.Code)
		body := testutil.DecodeBody(w)
		assert.Equal(t, "reader@example.com", body["email"])
		assert.NotContains(t, body, "PasswordHash")
	})

	t.Run("validation names json fields", func(t *testing.T) {
		w := do(h, testutil.NewRequest(http.MethodPost, "/auth/register", map[string]string{
			"email":    "not-an-email",
			"username": "reader",
			"password": "weak",
		}))
		require.Equal(t, http.StatusBadRequest, w.Code)

		var body httpx.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "VALIDATION_ERROR", body.Code)
		fields := make([]string, 0, len(body.Details))
		for _, d := range body.Details {
			fields = append(fields, d.Field)
		}
		assert.ElementsMatch(t, []string{"email", "password"}, fields)
	})

	t.Run("duplicate", func(t *testing.T) {
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(ErrAlreadyExists)

		w := do(h, testutil.NewRequest(http.MethodPost, "/auth/register", map[string]string{
			"email":    "reader@example.com",
			"username": "reader",
			"password": "Secret#123",
		}))
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestHTTPHandler_Login(t *testing.T) {
	repo, h := newTestRouter(t)
	hash := hashed(t, "Secret#123")

	t.Run("ok", func(t *testing.T) {
		repo.EXPECT().GetByEmail(gomock.Any(), "reader@example.com").
			Return(Account{ID: "acc-1", Role: RoleUser, PasswordHash: hash}, nil)

		w := do(h, testutil.NewRequest(http.MethodPost, "/auth/login", map[string]string{
			"email": "reader@example.com", "password": "Secret#123",
		}))
		require.Equal(t, http.StatusOK, w.Code)
		body := testutil.DecodeBody(w)
		assert.NotEmpty(t, body["accessToken"])
		assert.Equal(t, "acc-1", body["id"])
		assert.Equal(t, RoleUser, body["role"])
	})

	t.Run("bad password", func(t *testing.T) {
		repo.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).
			Return(Account{ID: "acc-1", Role: RoleUser, PasswordHash: hash}, nil)

		w := do(h, testutil.NewRequest(http.MethodPost, "/auth/login", map[string]string{
			"email": "reader@example.com", "password": "Nope#1234",
		}))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHTTPHandler_ChangePassword(t *testing.T) {
	repo, h := newTestRouter(t)
	token := testutil.GenerateTestToken(testutil.TestSecret, "acc-1", RoleUser)
	hash := hashed(t, "Secret#123")
	owner := Account{ID: "acc-1", Email: "reader@example.com", PasswordHash: hash}

	body := func(email, oldPw, newPw string) map[string]string {
		return map[string]string{"email": email, "oldPassword": oldPw, "newPassword": newPw}
	}

	tests := []struct {
		name    string
		body    map[string]string
		setup   func()
		status  int
		message string
	}{
		{"invalid email", body("nope", "Secret#123", "Fresh#4567"), nil, http.StatusBadRequest, MsgInvalidEmail},
		{"invalid old password", body("reader@example.com", "short", "Fresh#4567"), nil, http.StatusBadRequest, MsgInvalidOldPassword},
		{"invalid new password", body("reader@example.com", "Secret#123", "short"), nil, http.StatusBadRequest, MsgInvalidNewPassword},
		{
			"unknown email", body("ghost@example.com", "Secret#123", "Fresh#4567"),
			func() { repo.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(Account{}, ErrNotFound) },
			http.StatusBadRequest, MsgEmailNotFound,
		},
		{
			"wrong old password", body("reader@example.com", "Wrong#1234", "Fresh#4567"),
			func() { repo.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(owner, nil) },
			http.StatusBadRequest, MsgPasswordMismatch,
		},
		{
			"someone else's account", body("other@example.com", "Secret#123", "Fresh#4567"),
			func() {
				repo.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(Account{ID: "acc-9", PasswordHash: hash}, nil)
			},
			http.StatusForbidden, MsgNotOwner,
		},
		{
			"updated", body("reader@example.com", "Secret#123", "Fresh#4567"),
			func() {
				repo.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(owner, nil)
				repo.EXPECT().UpdatePassword(gomock.Any(), "acc-1", hash, gomock.Any()).Return(nil)
			},
			http.StatusOK, MsgPasswordUpdated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}
			w := do(h, testutil.NewRequestWithAuth(http.MethodPost, "/credentials/changePassword", tt.body, token))
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.message, testutil.DecodeBody(w)["message"])
		})
	}

	t.Run("requires token", func(t *testing.T) {
		w := do(h, testutil.NewRequest(http.MethodPost, "/credentials/changePassword", body("reader@example.com", "Secret#123", "Fresh#4567")))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHTTPHandler_TokenTest(t *testing.T) {
	repo, h := newTestRouter(t)
	token := testutil.GenerateTestToken(testutil.TestSecret, "acc-1", RoleUser)

	t.Run("reports stored role", func(t *testing.T) {
		repo.EXPECT().GetByID(gomock.Any(), "acc-1").Return(Account{ID: "acc-1", Role: RoleAdmin}, nil)

		w := do(h, testutil.NewRequestWithAuth(http.MethodGet, "/jwt_test", nil, token))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Your token is valid and your role is: ADMIN", testutil.DecodeBody(w)["message"])
	})

	t.Run("account removed", func(t *testing.T) {
		repo.EXPECT().GetByID(gomock.Any(), "acc-1").Return(Account{}, ErrNotFound)

		w := do(h, testutil.NewRequestWithAuth(http.MethodGet, "/jwt_test", nil, token))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, httpx.MsgInvalidToken, testutil.DecodeBody(w)["message"])
	})

	t.Run("expired token", func(t *testing.T) {
		w := do(h, testutil.NewRequestWithAuth(http.MethodGet, "/jwt_test", nil, testutil.GenerateExpiredToken(testutil.TestSecret, "acc-1", RoleAdmin)))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
