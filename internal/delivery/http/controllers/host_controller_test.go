package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventregistration/internal/delivery/http/helpers"
	"eventregistration/internal/domain"
)

type mockHostService struct {
	listing    *domain.RegistrantListing
	registrant *domain.Registrant
	deletion   *domain.DeletionResult
	archive    []*domain.ArchiveEntry
	notify     *domain.NotifyResult
	err        error

	gotQuery     string
	gotEmail     string
	gotConfirmed bool
}

func (m *mockHostService) ListRegistrants(ctx context.Context, identity domain.Identity, query string) (*domain.RegistrantListing, error) {
	m.gotQuery = query
	return m.listing, m.err
}

func (m *mockHostService) GetRegistrant(ctx context.Context, identity domain.Identity, email string) (*domain.Registrant, error) {
	m.gotEmail = email
	return m.registrant, m.err
}

func (m *mockHostService) DeleteRegistrant(ctx context.Context, identity domain.Identity, email string, confirmed bool) (*domain.DeletionResult, error) {
	m.gotEmail, m.gotConfirmed = email, confirmed
	return m.deletion, m.err
}

func (m *mockHostService) ListArchive(ctx context.Context, identity domain.Identity) ([]*domain.ArchiveEntry, error) {
	return m.archive, m.err
}

func (m *mockHostService) NotifyAll(ctx context.Context, identity domain.Identity) (*domain.NotifyResult, error) {
	return m.notify, m.err
}

func newHostRouter(svc domain.HostService) *http.ServeMux {
	ctrl := NewHostController(testLogger(), svc, 3*time.Second)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /host/registrants", ctrl.ListRegistrants)
	mux.HandleFunc("GET /host/registrants/{email}", ctrl.GetRegistrant)
	mux.HandleFunc("DELETE /host/registrants/{email}", ctrl.DeleteRegistrant)
	mux.HandleFunc("GET /host/archive", ctrl.ListArchive)
	mux.HandleFunc("POST /host/notifications", ctrl.NotifyAll)
	return mux
}

func TestHostController_ForbiddenRedirects(t *testing.T) {
	svc := &mockHostService{err: domain.ErrForbidden}
	mux := newHostRouter(svc)

	for _, target := range []struct{ method, path string }{
		{http.MethodGet, "/host/registrants"},
		{http.MethodGet, "/host/registrants/a@example.com"},
		{http.MethodDelete, "/host/registrants/a@example.com?confirm=true"},
		{http.MethodGet, "/host/archive"},
		{http.MethodPost, "/host/notifications"},
	} {
		t.Run(target.method+" "+target.path, func(t *testing.T) {
			req := withIdentity(httptest.NewRequest(target.method, target.path, nil), "someone@example.com")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			require.Equal(t, http.StatusForbidden, w.Code)
			assert.Equal(t, "3; url=/register", w.Header().Get("Refresh"))
			resp := decodeEnvelope(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, helpers.ErrCodeForbidden, resp.Error.Code)
			assert.Equal(t, "/register", resp.Data.(map[string]any)["redirect"])
		})
	}
}

func TestHostController_Unauthenticated(t *testing.T) {
	w := httptest.NewRecorder()
	newHostRouter(&mockHostService{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/host/registrants", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHostController_ListRegistrants(t *testing.T) {
	regs := make([]*domain.Registrant, 0, 5)
	for i := 1; i <= 5; i++ {
		regs = append(regs, &domain.Registrant{Email: fmt.Sprintf("r%d@example.com", i), LuckyNumber: i})
	}
	svc := &mockHostService{listing: &domain.RegistrantListing{Registrants: regs, Total: 9, Shown: 5}}
	mux := newHostRouter(svc)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, withIdentity(httptest.NewRequest(http.MethodGet, "/host/registrants?q=vijay", nil), "host@example.com"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "vijay", svc.gotQuery)
	data := decodeEnvelope(t, w).Data.(map[string]any)
	assert.Equal(t, "Showing 5 of 9", data["summary"])
	assert.Len(t, data["registrants"], 5)
	assert.Nil(t, data["pagination"])

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, withIdentity(httptest.NewRequest(http.MethodGet, "/host/registrants?page=2&page_size=2", nil), "host@example.com"))
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeEnvelope(t, w).Data.(map[string]any)
	page := data["registrants"].([]any)
	require.Len(t, page, 2)
	assert.Equal(t, "r3@example.com", page[0].(map[string]any)["email"])
	assert.Equal(t, float64(3), data["pagination"].(map[string]any)["total_pages"])
}

func TestHostController_GetRegistrant(t *testing.T) {
	svc := &mockHostService{err: domain.ErrNotFound}
	w := httptest.NewRecorder()
	newHostRouter(svc).ServeHTTP(w, withIdentity(httptest.NewRequest(http.MethodGet, "/host/registrants/missing@example.com", nil), "host@example.com"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "missing@example.com", svc.gotEmail)
}

func TestHostController_DeleteRegistrant(t *testing.T) {
	archived := &domain.ArchivedRegistrant{ID: "arch-1", Email: "a@example.com"}

	tests := []struct {
		name          string
		path          string
		svc           *mockHostService
		wantStatus    int
		wantConfirmed bool
		wantWarning   bool
		wantCode      string
	}{
		{
			name:          "deleted",
			path:          "/host/registrants/a@example.com?confirm=true",
			svc:           &mockHostService{deletion: &domain.DeletionResult{Email: "a@example.com", Archive: archived}},
			wantStatus:    http.StatusOK,
			wantConfirmed: true,
		},
		{
			name:          "mirror diverged",
			path:          "/host/registrants/a@example.com?confirm=true",
			svc:           &mockHostService{deletion: &domain.DeletionResult{Email: "a@example.com", Archive: archived, MirrorDiverged: true}},
			wantStatus:    http.StatusOK,
			wantConfirmed: true,
			wantWarning:   true,
		},
		{
			name:          "deleted concurrently",
			path:          "/host/registrants/a@example.com?confirm=true",
			svc:           &mockHostService{deletion: &domain.DeletionResult{Email: "a@example.com", Archive: archived, FailedStep: domain.StepDelete, AlreadyDeleted: true}, err: fmt.Errorf("delete registrant: %w", domain.ErrNotFound)},
			wantStatus:    http.StatusNotFound,
			wantConfirmed: true,
			wantCode:      helpers.ErrCodeNotFound,
		},
		{
			name:       "unconfirmed",
			path:       "/host/registrants/a@example.com",
			svc:        &mockHostService{err: domain.ErrConfirmationRequired},
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:          "partial after archive",
			path:          "/host/registrants/a@example.com?confirm=1",
			svc:           &mockHostService{deletion: &domain.DeletionResult{Email: "a@example.com", Archive: archived, FailedStep: domain.StepDelete}, err: fmt.Errorf("%w: %w", domain.ErrDeletePartial, errors.New("db down"))},
			wantStatus:    http.StatusInternalServerError,
			wantConfirmed: true,
			wantCode:      helpers.ErrCodeInternalError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			newHostRouter(tt.svc).ServeHTTP(w, withIdentity(httptest.NewRequest(http.MethodDelete, tt.path, nil), "host@example.com"))

			require.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantConfirmed, tt.svc.gotConfirmed)
			resp := decodeEnvelope(t, w)
			if tt.wantCode != "" {
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantCode, resp.Error.Code)
			}
			if tt.svc.deletion != nil {
				data := resp.Data.(map[string]any)
				assert.NotNil(t, data["result"])
				_, hasWarning := data["warning"]
				assert.Equal(t, tt.wantWarning, hasWarning)
			}
		})
	}
}

func TestHostController_NotifyAll(t *testing.T) {
	svc := &mockHostService{notify: &domain.NotifyResult{Message: "Emails sent successfully", Sent: 3, Total: 3}}
	w := httptest.NewRecorder()
	newHostRouter(svc).ServeHTTP(w, withIdentity(httptest.NewRequest(http.MethodPost, "/host/notifications", nil), "host@example.com"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Emails sent successfully", decodeEnvelope(t, w).Data.(map[string]any)["message"])

	svc = &mockHostService{err: &domain.NotificationError{Sent: 1, Total: 3, Err: errors.New("send to bob@example.com: ses: Throttling")}}
	w = httptest.NewRecorder()
	newHostRouter(svc).ServeHTTP(w, withIdentity(httptest.NewRequest(http.MethodPost, "/host/notifications", nil), "host@example.com"))
	require.Equal(t, http.StatusBadGateway, w.Code)
	resp := decodeEnvelope(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "failed to send notifications (sent 1 of 3)", resp.Error.Message)
	assert.NotContains(t, w.Body.String(), "bob@example.com")
	assert.NotContains(t, w.Body.String(), "Throttling")

	svc = &mockHostService{err: fmt.Errorf("%w: no registrants to notify", domain.ErrInvalidInput)}
	w = httptest.NewRecorder()
	newHostRouter(svc).ServeHTTP(w, withIdentity(httptest.NewRequest(http.MethodPost, "/host/notifications", nil), "host@example.com"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHostController_ListArchive(t *testing.T) {
	svc := &mockHostService{archive: []*domain.ArchiveEntry{{
		ArchivedRegistrant: &domain.ArchivedRegistrant{ID: "1", Email: "a@example.com"},
		DeletedAtDisplay:   "14 Mar 2026, 3:00:00 PM IST",
	}}}
	w := httptest.NewRecorder()
	newHostRouter(svc).ServeHTTP(w, withIdentity(httptest.NewRequest(http.MethodGet, "/host/archive", nil), "host@example.com"))
	require.Equal(t, http.StatusOK, w.Code)
	entries := decodeEnvelope(t, w).Data.([]any)
	require.Len(t, entries, 1)
	entry := entries[0].(map[string]any)
	assert.Equal(t, "a@example.com", entry["email"])
	assert.Equal(t, "14 Mar 2026, 3:00:00 PM IST", entry["deleted_at_display"])
}
