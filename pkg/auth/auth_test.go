package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adrianliechti/ingester/pkg/auth"
	"github.com/adrianliechti/ingester/pkg/auth/header"
	"github.com/adrianliechti/ingester/pkg/auth/static"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearer(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	_, err := auth.Bearer(r)
	require.ErrorIs(t, err, auth.ErrMissingToken)

	r.Header.Set("Authorization", "Basic abc")

	_, err = auth.Bearer(r)
	require.ErrorIs(t, err, auth.ErrInvalidToken)

	r.Header.Set("Authorization", "Bearer secret")

	token, err := auth.Bearer(r)
	require.NoError(t, err)
	assert.Equal(t, "secret", token)
}

func TestMiddleware(t *testing.T) {
	token, err := static.New("secret")
	require.NoError(t, err)

	proxy, err := header.New()
	require.NoError(t, err)

	var user string

	h := auth.Middleware(token, proxy)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user = auth.User(r.Context())
	}))

	tests := []struct {
		name    string
		headers map[string]string
		status  int
		user    string
	}{
		{"anonymous", nil, http.StatusUnauthorized, ""},
		{"wrong token", map[string]string{"Authorization": "Bearer nope"}, http.StatusUnauthorized, ""},
		{"token", map[string]string{"Authorization": "Bearer secret"}, http.StatusOK, "static"},
		{"forwarded user", map[string]string{"X-Forwarded-User": "jane@example.com"}, http.StatusOK, "jane@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user = ""

			r := httptest.NewRequest(http.MethodPost, "/v1/extract", nil)

			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}

			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.user, user)
		})
	}
}

func TestMiddlewareOpen(t *testing.T) {
	called := false

	h := auth.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.True(t, called)
}
