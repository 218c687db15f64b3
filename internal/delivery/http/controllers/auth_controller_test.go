package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventregistration/internal/delivery/http/middleware"
	"eventregistration/internal/domain"
)

type fakeProvider struct {
	identity *domain.Identity
	err      error
	gotState string
	gotCode  string
}

func (p *fakeProvider) AuthCodeURL(state string) string {
	p.gotState = state
	return "https://accounts.example.com/auth?state=" + url.QueryEscape(state)
}

func (p *fakeProvider) Exchange(ctx context.Context, code string) (*domain.Identity, error) {
	p.gotCode = code
	return p.identity, p.err
}

type fakeIssuer struct {
	token  string
	expiry time.Duration
}

func (i *fakeIssuer) Issue(identity domain.Identity, expiry time.Duration) (string, error) {
	i.expiry = expiry
	return i.token, nil
}

func responseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func newAuthController(provider *fakeProvider, reg *mockRegistrationService) *AuthController {
	return NewAuthController(testLogger(), provider, &fakeIssuer{token: "signed-token"}, reg, 12*time.Hour, true)
}

func TestAuthController_Login(t *testing.T) {
	provider := &fakeProvider{}
	ctrl := newAuthController(provider, &mockRegistrationService{})

	w := httptest.NewRecorder()
	ctrl.Login(w, httptest.NewRequest(http.MethodGet, "/auth/google/login", nil))

	require.Equal(t, http.StatusFound, w.Code)
	state := responseCookie(w, stateCookieName)
	require.NotNil(t, state)
	assert.NotEmpty(t, state.Value)
	assert.True(t, state.HttpOnly)
	assert.True(t, state.Secure)
	assert.Equal(t, state.Value, provider.gotState)
	assert.Contains(t, w.Header().Get("Location"), "https://accounts.example.com/auth")
}

func callbackRequest(state, cookieState, code string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state="+state+"&code="+code, nil)
	if cookieState != "" {
		req.AddCookie(&http.Cookie{Name: stateCookieName, Value: cookieState})
	}
	return req
}

func TestAuthController_Callback(t *testing.T) {
	alice := domain.NewIdentity("Alice", "alice@example.com")

	tests := []struct {
		name         string
		req          *http.Request
		reg          *mockRegistrationService
		wantStatus   int
		wantLocation string
		wantSession  bool
	}{
		{
			name:         "new attendee goes to the form",
			req:          callbackRequest("abc", "abc", "code-1"),
			reg:          &mockRegistrationService{status: &domain.RegistrationStatus{State: domain.StateNotRegistered}},
			wantStatus:   http.StatusFound,
			wantLocation: domain.RedirectRegister,
			wantSession:  true,
		},
		{
			name:         "registered attendee goes home",
			req:          callbackRequest("abc", "abc", "code-1"),
			reg:          &mockRegistrationService{status: &domain.RegistrationStatus{State: domain.StateRegistered, Redirect: domain.RedirectHome}},
			wantStatus:   http.StatusFound,
			wantLocation: domain.RedirectHome,
			wantSession:  true,
		},
		{
			name:         "status failure still signs in",
			req:          callbackRequest("abc", "abc", "code-1"),
			reg:          &mockRegistrationService{err: errors.New("db down")},
			wantStatus:   http.StatusFound,
			wantLocation: domain.RedirectRegister,
			wantSession:  true,
		},
		{
			name:       "state mismatch",
			req:        callbackRequest("abc", "xyz", "code-1"),
			reg:        &mockRegistrationService{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing state cookie",
			req:        callbackRequest("abc", "", "code-1"),
			reg:        &mockRegistrationService{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "provider reported an error",
			req:        httptest.NewRequest(http.MethodGet, "/auth/google/callback?error=access_denied", nil),
			reg:        &mockRegistrationService{},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{identity: &alice}
			ctrl := newAuthController(provider, tt.reg)
			w := httptest.NewRecorder()
			ctrl.Callback(w, tt.req)

			require.Equal(t, tt.wantStatus, w.Code)
			session := responseCookie(w, middleware.SessionCookieName)
			if !tt.wantSession {
				assert.Nil(t, session)
				assert.Empty(t, provider.gotCode)
				return
			}
			assert.Equal(t, tt.wantLocation, w.Header().Get("Location"))
			require.NotNil(t, session)
			assert.Equal(t, "signed-token", session.Value)
			assert.Equal(t, int((12 * time.Hour).Seconds()), session.MaxAge)
			assert.Equal(t, "code-1", provider.gotCode)
			assert.Equal(t, "alice@example.com", tt.reg.gotEmail)
		})
	}
}

func TestAuthController_Callback_ExchangeFails(t *testing.T) {
	provider := &fakeProvider{err: domain.ErrUnauthorized}
	ctrl := newAuthController(provider, &mockRegistrationService{})
	w := httptest.NewRecorder()
	ctrl.Callback(w, callbackRequest("abc", "abc", "bad"))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, responseCookie(w, middleware.SessionCookieName))
}

func TestAuthController_Logout(t *testing.T) {
	tests := []struct {
		callback string
		want     string
	}{
		{"", domain.RedirectRegister},
		{"/home", "/home"},
		{"https://evil.example.com", domain.RedirectRegister},
		{"//evil.example.com", domain.RedirectRegister},
	}
	for _, tt := range tests {
		t.Run(tt.callback, func(t *testing.T) {
			ctrl := newAuthController(&fakeProvider{}, &mockRegistrationService{})
			w := httptest.NewRecorder()
			ctrl.Logout(w, httptest.NewRequest(http.MethodPost, "/auth/logout?callbackUrl="+url.QueryEscape(tt.callback), nil))

			require.Equal(t, http.StatusOK, w.Code)
			session := responseCookie(w, middleware.SessionCookieName)
			require.NotNil(t, session)
			assert.Equal(t, -1, session.MaxAge)
			data := decodeEnvelope(t, w).Data.(map[string]any)
			assert.Equal(t, tt.want, data["redirect"])
		})
	}
}
