package domain

import "context"

// Redirect targets returned to the front end.
const (
	RedirectRegister = "/register"
	RedirectHome     = "/home"
	RedirectHost     = "/host"
)

// RegistrationState is where an identity stands in the registration workflow.
type RegistrationState string

const (
	StateHost          RegistrationState = "host"
	StateRegistered    RegistrationState = "registered"
	StateNotRegistered RegistrationState = "not_registered"
)

// RegistrationStatus is the outcome of the duplicate check made on sign-in.
// swagger:model RegistrationStatus
type RegistrationStatus struct {
	State      RegistrationState `json:"state"`
	Redirect   string            `json:"redirect,omitempty"`
	Registrant *Registrant       `json:"registrant,omitempty"`
	Slots      []Slot            `json:"slots,omitempty"`
	Country    string            `json:"country,omitempty"`
}

// RegistrationForm is the attendee-submitted part of a registration.
// Name and email come from the identity unless Name is overridden.
type RegistrationForm struct {
	Name           string
	Phone          string
	Country        string
	IsDonor        bool
	IsAuthor       bool
	IsVolunteer    bool
	Slot           Slot
	Remarks        string
	BringingGuests bool
	GuestCount     *int
}

// RegistrationResult is returned by a successful Register call.
// swagger:model RegistrationResult
type RegistrationResult struct {
	Registrant *Registrant `json:"registrant"`
	// Created is false when the identity was already registered.
	Created  bool   `json:"created"`
	Redirect string `json:"redirect"`
	// MirrorWarning is set when the spreadsheet mirror could not be updated.
	MirrorWarning string `json:"mirror_warning,omitempty"`
}

// Allocation is the result of a lucky number draw.
type Allocation struct {
	Number    int
	Attempts  int
	Exhausted bool
}

// LuckyNumberAllocator draws a lucky number not held by any active registrant.
type LuckyNumberAllocator interface {
	Allocate(ctx context.Context) (Allocation, error)
}

// RegistrationService defines the attendee-facing registration workflow.
type RegistrationService interface {
	Status(ctx context.Context, identity Identity, clientIP string) (*RegistrationStatus, error)
	Register(ctx context.Context, identity Identity, form RegistrationForm) (*RegistrationResult, error)
	Me(ctx context.Context, identity Identity) (*Registrant, error)
}
