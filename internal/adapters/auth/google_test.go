package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"eventregistration/internal/domain"
)

func newGoogleServer(t *testing.T, userinfo map[string]any) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-1","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/oauth2/v2/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(userinfo)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestGoogle(srv *httptest.Server) *Google {
	return NewGoogle(GoogleConfig{
		ClientID:         "client-id",
		ClientSecret:     "client-secret",
		RedirectURL:      "http://localhost:8080/auth/google/callback",
		Endpoint:         oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"},
		UserInfoEndpoint: srv.URL + "/",
	})
}

func TestGoogle_AuthCodeURL(t *testing.T) {
	g := NewGoogle(GoogleConfig{ClientID: "client-id", RedirectURL: "http://localhost/cb"})
	u, err := url.Parse(g.AuthCodeURL("state-123"))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "accounts.google.com", u.Host)
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Contains(t, q.Get("scope"), "email")
}

func TestGoogle_Exchange(t *testing.T) {
	srv := newGoogleServer(t, map[string]any{"email": "Asha@Example.com", "name": "Asha Rao", "verified_email": true})
	g := newTestGoogle(srv)

	got, err := g.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, domain.Identity{Name: "Asha Rao", Email: "asha@example.com"}, *got)
}

func TestGoogle_Exchange_Errors(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		userinfo map[string]any
	}{
		{"missing code", "", nil},
		{"bad code", "bad-code", nil},
		{"no email", "good-code", map[string]any{"name": "A"}},
		{"unverified", "good-code", map[string]any{"email": "a@example.com", "verified_email": false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newGoogleServer(t, tt.userinfo)
			_, err := newTestGoogle(srv).Exchange(context.Background(), tt.code)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrUnauthorized))
		})
	}
}
