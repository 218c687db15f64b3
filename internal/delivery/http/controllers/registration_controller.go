package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"eventregistration/internal/delivery/http/helpers"
	"eventregistration/internal/delivery/http/middleware"
	"eventregistration/internal/domain"
	"eventregistration/internal/phone"
)

// RegisterRequest is the request body for POST /registrations. Name defaults to the
// signed-in name; guest_count is only read when bringing_guests is true.
type RegisterRequest struct {
	Name           string          `json:"name"`
	Phone          string          `json:"phone"`
	Country        string          `json:"country"`
	IsDonor        bool            `json:"is_donor"`
	IsAuthor       bool            `json:"is_author"`
	IsVolunteer    bool            `json:"is_volunteer"`
	Slot           string          `json:"slot"`
	Remarks        string          `json:"remarks"`
	BringingGuests bool            `json:"bringing_guests"`
	GuestCount     GuestCountInput `json:"guest_count" swaggertype:"integer"`

	guestCount *int
}

// Validate implements helpers.Validator. Field rules live in the service; this only
// checks that guest_count is a number.
func (r *RegisterRequest) Validate() []string {
	r.guestCount = nil
	raw := strings.TrimSpace(string(r.GuestCount))
	if !r.BringingGuests || raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return []string{"guest_count must be a number"}
	}
	r.guestCount = &n
	return nil
}

// GuestCountInput accepts guest_count as a JSON number or as a numeric string from a form select.
type GuestCountInput string

func (g *GuestCountInput) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*g = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*g = GuestCountInput(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("guest_count must be a number")
	}
	*g = GuestCountInput(n.String())
	return nil
}

func (r *RegisterRequest) form() domain.RegistrationForm {
	return domain.RegistrationForm{
		Name:           r.Name,
		Phone:          r.Phone,
		Country:        r.Country,
		IsDonor:        r.IsDonor,
		IsAuthor:       r.IsAuthor,
		IsVolunteer:    r.IsVolunteer,
		Slot:           domain.Slot(r.Slot),
		Remarks:        r.Remarks,
		BringingGuests: r.BringingGuests,
		GuestCount:     r.guestCount,
	}
}

// RegistrationSuccessResponse is the success envelope for POST /registrations.
type RegistrationSuccessResponse struct {
	Data  *domain.RegistrationResult `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

type RegistrationController struct {
	Logger         *slog.Logger
	Service        domain.RegistrationService
	DefaultCountry string
}

func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService, defaultCountry string) *RegistrationController {
	return &RegistrationController{
		Logger:         logger,
		Service:        svc,
		DefaultCountry: defaultCountry,
	}
}

// Status godoc
// @Summary Registration status of the signed-in user
// @Description Host gets state "host" and redirect /host; a registered user gets "registered" and /home; anyone else gets "not_registered" with the available slots and a detected country.
// @Tags registration
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains domain.RegistrationStatus"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /registration/status [get]
func (c *RegistrationController) Status(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	status, err := c.Service.Status(r.Context(), identity, helpers.ClientIP(r))
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, status)
}

// Register godoc
// @Summary Submit a registration
// @Description Validates the form, assigns a unique lucky number between 1 and 1000, stores the registrant and mirrors it to the spreadsheet. Idempotent: returns 201 when created, 200 with the existing record when already registered.
// @Tags registration
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.RegisterRequest true "Registration form"
// @Success 200 {object} controllers.RegistrationSuccessResponse "Already registered"
// @Success 201 {object} controllers.RegistrationSuccessResponse "Registration created"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: capacity_exhausted or conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /registrations [post]
func (c *RegistrationController) Register(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req RegisterRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	res, err := c.Service.Register(r.Context(), identity, req.form())
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	if res.Created {
		helpers.WriteJSONSuccess(w, http.StatusCreated, res)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, res)
}

// Me godoc
// @Summary Confirmation view
// @Description Returns the signed-in user's registration, including the lucky number.
// @Tags registration
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains domain.Registrant"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /registrations/me [get]
func (c *RegistrationController) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	reg, err := c.Service.Me(r.Context(), identity)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reg)
}

// FormatPhone godoc
// @Summary Validate and format a phone number
// @Description Formats phone for country (ISO 3166-1 alpha-2, defaults to the configured country). Used by the form to show the national grouping and the stored international form.
// @Tags registration
// @Produce json
// @Security BearerAuth
// @Param phone query string true "Phone number"
// @Param country query string false "Country code, e.g. IN"
// @Success 200 {object} helpers.APIResponse "data contains phone.Number and calling_code"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /phone/format [get]
func (c *RegistrationController) FormatPhone(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	country := strings.TrimSpace(q.Get("country"))
	if country == "" {
		country = c.DefaultCountry
	}
	num, err := phone.Parse(q.Get("phone"), country)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, PhoneFormatResponse{Number: num, CallingCode: phone.CallingCode(num.Region)})
}

// PhoneFormatResponse is the data of GET /phone/format.
type PhoneFormatResponse struct {
	phone.Number
	CallingCode string `json:"calling_code"`
}
