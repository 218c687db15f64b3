package controllers

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"
	"time"

	h "eventregistration/internal/delivery/http/helpers"
	"eventregistration/internal/delivery/http/middleware"
	"eventregistration/internal/domain"
)

const (
	stateCookieName = "oauth_state"
	stateTTL        = 10 * time.Minute
)

// LogoutResponse is the data of POST /auth/logout.
type LogoutResponse struct {
	Redirect string `json:"redirect"`
}

type AuthController struct {
	Logger       *slog.Logger
	Provider     domain.IdentityProvider
	Issuer       domain.TokenIssuer
	Registration domain.RegistrationService
	SessionTTL   time.Duration
	CookieSecure bool
}

func NewAuthController(logger *slog.Logger, provider domain.IdentityProvider, issuer domain.TokenIssuer, registration domain.RegistrationService, sessionTTL time.Duration, cookieSecure bool) *AuthController {
	return &AuthController{
		Logger:       logger,
		Provider:     provider,
		Issuer:       issuer,
		Registration: registration,
		SessionTTL:   sessionTTL,
		CookieSecure: cookieSecure,
	}
}

func newState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (c *AuthController) setCookie(w http.ResponseWriter, name, value string, maxAge time.Duration) {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(maxAge.Seconds()),
	}
	if maxAge < 0 {
		cookie.MaxAge = -1
	}
	http.SetCookie(w, cookie)
}

// Login godoc
// @Summary Start Google sign-in
// @Description Redirects the browser to Google with a one-time state stored in a cookie.
// @Tags auth
// @Success 302 "Redirect to Google"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/google/login [get]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	state, err := newState()
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "generate oauth state", "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "internal server error")
		return
	}
	c.setCookie(w, stateCookieName, state, stateTTL)
	http.Redirect(w, r, c.Provider.AuthCodeURL(state), http.StatusFound)
}

// Callback godoc
// @Summary Finish Google sign-in
// @Description Verifies state, exchanges the code, sets the session cookie and redirects to /host, /home or /register.
// @Tags auth
// @Param state query string true "OAuth state"
// @Param code query string true "Authorization code"
// @Success 302 "Redirect to the next view"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/google/callback [get]
func (c *AuthController) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if errParam := q.Get("error"); errParam != "" {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "sign-in was cancelled: "+errParam)
		return
	}
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != q.Get("state") {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid oauth state")
		return
	}
	c.setCookie(w, stateCookieName, "", -1)

	identity, err := c.Provider.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	token, err := c.Issuer.Issue(*identity, c.SessionTTL)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	c.setCookie(w, middleware.SessionCookieName, token, c.SessionTTL)

	redirect := domain.RedirectRegister
	status, err := c.Registration.Status(r.Context(), *identity, "")
	if err != nil {
		c.Logger.WarnContext(r.Context(), "status lookup after sign-in failed", "email", identity.Email, "err", err)
	} else if status.Redirect != "" {
		redirect = status.Redirect
	}
	c.Logger.InfoContext(r.Context(), "signed in", "email", identity.Email, "redirect", redirect)
	http.Redirect(w, r, redirect, http.StatusFound)
}

// Logout godoc
// @Summary Sign out
// @Description Clears the session cookie. callbackUrl must be a local path; anything else falls back to /register.
// @Tags auth
// @Produce json
// @Param callbackUrl query string false "Where to go after sign-out"
// @Success 200 {object} helpers.APIResponse "data contains controllers.LogoutResponse"
// @Router /auth/logout [post]
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	c.setCookie(w, middleware.SessionCookieName, "", -1)
	h.WriteJSONSuccess(w, http.StatusOK, LogoutResponse{Redirect: localRedirect(r.URL.Query().Get("callbackUrl"))})
}

// localRedirect accepts only same-origin absolute paths.
func localRedirect(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return domain.RedirectRegister
	}
	return target
}
