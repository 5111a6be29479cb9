package server_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adrianliechti/ingester/config"
	"github.com/adrianliechti/ingester/pkg/auth"
	"github.com/adrianliechti/ingester/pkg/auth/static"
	"github.com/adrianliechti/ingester/pkg/ingester"
	"github.com/adrianliechti/ingester/server"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer(t *testing.T) {
	authorizer, err := static.New("secret")
	require.NoError(t, err)

	s, err := server.New(&config.Config{
		Authorizers: []auth.Provider{authorizer},
		Ingester:    ingester.New(),
	})

	require.NoError(t, err)

	tests := []struct {
		name string

		method string
		target string
		token  string

		code int
	}{
		{"health without token", http.MethodGet, "/healthz", "", http.StatusOK},
		{"stats without token", http.MethodGet, "/v1/stats", "", http.StatusUnauthorized},
		{"stats with wrong token", http.MethodGet, "/v1/stats", "guess", http.StatusUnauthorized},
		{"stats", http.MethodGet, "/v1/stats", "secret", http.StatusOK},
		{"mcp not enabled", http.MethodPost, "/mcp", "secret", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)

			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}

			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, req)

			assert.Equal(t, tt.code, rec.Code)
		})
	}
}
