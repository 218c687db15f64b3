package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"eventregistration/internal/delivery/http/helpers"
	"eventregistration/internal/delivery/http/middleware"
	"eventregistration/internal/domain"
)

// HostDeniedResponse is the data sent with a 403 to a non-host identity.
type HostDeniedResponse struct {
	Redirect string `json:"redirect"`
}

// HostListResponse is the data of GET /host/registrants.
type HostListResponse struct {
	Registrants []*domain.Registrant    `json:"registrants"`
	Total       int                     `json:"total"`
	Shown       int                     `json:"shown"`
	Summary     string                  `json:"summary"`
	Pagination  *helpers.PaginationMeta `json:"pagination,omitempty"`
}

// DeleteResponse is the data of DELETE /host/registrants/{email}.
type DeleteResponse struct {
	Result  *domain.DeletionResult `json:"result"`
	Warning string                 `json:"warning,omitempty"`
}

type HostController struct {
	Logger    *slog.Logger
	Service   domain.HostService
	DenyGrace time.Duration
}

func NewHostController(logger *slog.Logger, svc domain.HostService, denyGrace time.Duration) *HostController {
	return &HostController{
		Logger:    logger,
		Service:   svc,
		DenyGrace: denyGrace,
	}
}

// writeError answers a non-host with 403 and a delayed redirect to the registration form.
func (c *HostController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrForbidden) {
		w.Header().Set("Refresh", fmt.Sprintf("%d; url=%s", int(c.DenyGrace.Seconds()), domain.RedirectRegister))
		helpers.WriteJSONResponse(w, http.StatusForbidden, HostDeniedResponse{Redirect: domain.RedirectRegister},
			helpers.ErrCodeForbidden, "you do not have access to this page")
		return
	}
	writeServiceError(w, r, c.Logger, err)
}

func (c *HostController) identity(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
	}
	return identity, ok
}

// ListRegistrants godoc
// @Summary List and search registrants
// @Description Host only. q filters case-insensitively across every field. Without page or page_size the whole filtered list is returned.
// @Tags host
// @Produce json
// @Security BearerAuth
// @Param q query string false "Search text"
// @Param page query int false "Page number (1-based)"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} helpers.APIResponse "data contains controllers.HostListResponse"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /host/registrants [get]
func (c *HostController) ListRegistrants(w http.ResponseWriter, r *http.Request) {
	identity, ok := c.identity(w, r)
	if !ok {
		return
	}
	listing, err := c.Service.ListRegistrants(r.Context(), identity, r.URL.Query().Get("q"))
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	resp := HostListResponse{
		Registrants: listing.Registrants,
		Total:       listing.Total,
		Shown:       listing.Shown,
		Summary:     "Showing " + strconv.Itoa(listing.Shown) + " of " + strconv.Itoa(listing.Total),
	}
	q := r.URL.Query()
	if q.Has("page") || q.Has("page_size") {
		params := helpers.ParsePagination(r)
		start, end := params.Window(len(listing.Registrants))
		resp.Registrants = listing.Registrants[start:end]
		meta := helpers.NewPaginationMeta(params.Page, params.PageSize, listing.Shown)
		resp.Pagination = &meta
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, resp)
}

// GetRegistrant godoc
// @Summary Inspect a registrant
// @Tags host
// @Produce json
// @Security BearerAuth
// @Param email path string true "Registrant email"
// @Success 200 {object} helpers.APIResponse "data contains domain.Registrant"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /host/registrants/{email} [get]
func (c *HostController) GetRegistrant(w http.ResponseWriter, r *http.Request) {
	identity, ok := c.identity(w, r)
	if !ok {
		return
	}
	reg, err := c.Service.GetRegistrant(r.Context(), identity, r.PathValue("email"))
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reg)
}

// DeleteRegistrant godoc
// @Summary Archive and delete a registrant
// @Description Host only. Requires confirm=true. Copies the registrant to the archive, deletes the active record, then removes the spreadsheet row. A failed spreadsheet step is reported in warning; a failure after archiving returns the partial result with the error.
// @Tags host
// @Produce json
// @Security BearerAuth
// @Param email path string true "Registrant email"
// @Param confirm query bool true "Must be true"
// @Success 200 {object} helpers.APIResponse "data contains controllers.DeleteResponse"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error, data holds the partial result"
// @Router /host/registrants/{email} [delete]
func (c *HostController) DeleteRegistrant(w http.ResponseWriter, r *http.Request) {
	identity, ok := c.identity(w, r)
	if !ok {
		return
	}
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))

	res, err := c.Service.DeleteRegistrant(r.Context(), identity, r.PathValue("email"), confirmed)
	if err != nil {
		if res != nil && res.AlreadyDeleted {
			helpers.WriteJSONResponse(w, http.StatusNotFound, DeleteResponse{Result: res},
				helpers.ErrCodeNotFound, "registrant was already deleted by another request")
			return
		}
		if res != nil && res.Archive != nil {
			c.Logger.ErrorContext(r.Context(), "deletion stopped after archiving", "email", res.Email, "failed_step", res.FailedStep, "err", err)
			helpers.WriteJSONResponse(w, http.StatusInternalServerError, DeleteResponse{Result: res},
				helpers.ErrCodeInternalError, "registrant was archived but could not be deleted")
			return
		}
		c.writeError(w, r, err)
		return
	}
	resp := DeleteResponse{Result: res}
	if res.MirrorDiverged {
		resp.Warning = "registrant deleted, but the spreadsheet row could not be removed"
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, resp)
}

// ListArchive godoc
// @Summary List archived registrants
// @Description Host only. Ordered by deletion time, oldest first, with the time rendered in the display timezone.
// @Tags host
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains []domain.ArchiveEntry"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /host/archive [get]
func (c *HostController) ListArchive(w http.ResponseWriter, r *http.Request) {
	identity, ok := c.identity(w, r)
	if !ok {
		return
	}
	entries, err := c.Service.ListArchive(r.Context(), identity)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, entries)
}

// NotifyAll godoc
// @Summary Email every registrant
// @Description Host only. Sends the reminder email to every active registrant, stopping at the first relay failure.
// @Tags host
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains domain.NotifyResult"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (no registrants)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 502 {object} helpers.APIResponse "error.code: bad_gateway"
// @Router /host/notifications [post]
func (c *HostController) NotifyAll(w http.ResponseWriter, r *http.Request) {
	identity, ok := c.identity(w, r)
	if !ok {
		return
	}
	res, err := c.Service.NotifyAll(r.Context(), identity)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, res)
}
