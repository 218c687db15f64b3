package domain

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// Lucky numbers are drawn from the closed range [MinLuckyNumber, MaxLuckyNumber].
const (
	MinLuckyNumber = 1
	MaxLuckyNumber = 1000

	MaxRemarksLength = 200
	MaxGuestCount    = 2
)

// Slot is one of the fixed time slots an attendee can book.
type Slot string

const (
	SlotMorning   Slot = "10:00 AM - 1:00 PM"
	SlotAfternoon Slot = "2:00 PM - 5:00 PM"
	SlotEvening   Slot = "6:00 PM - 9:00 PM"
)

// Slots lists the valid slots in display order.
func Slots() []Slot {
	return []Slot{SlotMorning, SlotAfternoon, SlotEvening}
}

// Valid reports whether s is one of the enumerated slots.
func (s Slot) Valid() bool {
	for _, v := range Slots() {
		if s == v {
			return true
		}
	}
	return false
}

// Registrant is an active registration, keyed by email.
// swagger:model Registrant
type Registrant struct {
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	LuckyNumber int       `json:"lucky_number"`
	IsDonor     bool      `json:"is_donor"`
	IsAuthor    bool      `json:"is_author"`
	IsVolunteer bool      `json:"is_volunteer"`
	Slot        Slot      `json:"slot"`
	Remarks     string    `json:"remarks,omitempty"`
	GuestCount  int       `json:"guest_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Roles returns the human labels of the role flags that are set, e.g. ["Donor", "Author"].
func (r *Registrant) Roles() []string {
	var roles []string
	if r.IsDonor {
		roles = append(roles, "Donor")
	}
	if r.IsAuthor {
		roles = append(roles, "Author")
	}
	if r.IsVolunteer {
		roles = append(roles, "Volunteer")
	}
	return roles
}

// RolesLabel joins Roles with " & ", or returns "None".
func (r *Registrant) RolesLabel() string {
	roles := r.Roles()
	if len(roles) == 0 {
		return "None"
	}
	return strings.Join(roles, " & ")
}

// MirrorRow flattens the registrant into the spreadsheet column order
// lucky number, name, email, phone, author, donor, volunteer, slot, remarks, guest count.
func (r *Registrant) MirrorRow() []any {
	return []any{
		r.LuckyNumber,
		r.Name,
		r.Email,
		r.Phone,
		r.IsAuthor,
		r.IsDonor,
		r.IsVolunteer,
		string(r.Slot),
		r.Remarks,
		r.GuestCount,
	}
}

// MirrorEmailColumn is the zero-based column of the email in MirrorRow.
const MirrorEmailColumn = 2

// SearchText returns the lower-cased fields a host search matches against.
func (r *Registrant) SearchText() []string {
	fields := []string{
		strings.ToLower(r.Name),
		strings.ToLower(r.Email),
		strings.ToLower(r.Phone),
		strconv.Itoa(r.LuckyNumber),
		strings.ToLower(string(r.Slot)),
		strings.ToLower(r.Remarks),
		strconv.Itoa(r.GuestCount),
	}
	for _, role := range r.Roles() {
		fields = append(fields, strings.ToLower(role))
	}
	return fields
}

// ArchivedRegistrant is an append-only snapshot of a deleted registrant.
// swagger:model ArchivedRegistrant
type ArchivedRegistrant struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	LuckyNumber int       `json:"lucky_number"`
	IsDonor     bool      `json:"is_donor"`
	IsAuthor    bool      `json:"is_author"`
	IsVolunteer bool      `json:"is_volunteer"`
	Slot        Slot      `json:"slot"`
	Remarks     string    `json:"remarks,omitempty"`
	GuestCount  int       `json:"guest_count"`
	DeletedAt   time.Time `json:"deleted_at"`
}

// NewArchivedRegistrant snapshots r with the given archive ID and deletion time.
func NewArchivedRegistrant(id string, r *Registrant, deletedAt time.Time) *ArchivedRegistrant {
	return &ArchivedRegistrant{
		ID:          id,
		Email:       r.Email,
		Name:        r.Name,
		Phone:       r.Phone,
		LuckyNumber: r.LuckyNumber,
		IsDonor:     r.IsDonor,
		IsAuthor:    r.IsAuthor,
		IsVolunteer: r.IsVolunteer,
		Slot:        r.Slot,
		Remarks:     r.Remarks,
		GuestCount:  r.GuestCount,
		DeletedAt:   deletedAt,
	}
}

// RegistrantRepository defines storage for active registrants.
type RegistrantRepository interface {
	// GetByEmail returns ErrNotFound when no active registrant has the email.
	GetByEmail(ctx context.Context, email string) (*Registrant, error)
	// Upsert inserts or updates the registrant keyed by email. Returns ErrLuckyNumberTaken
	// when another registrant already holds the lucky number.
	Upsert(ctx context.Context, r *Registrant) error
	ExistsByLuckyNumber(ctx context.Context, n int) (bool, error)
	Count(ctx context.Context) (int, error)
	// DeleteByEmail returns ErrNotFound when no row was removed.
	DeleteByEmail(ctx context.Context, email string) error
	List(ctx context.Context) ([]*Registrant, error)
}

// ArchiveRepository defines append-only storage for archived registrants.
type ArchiveRepository interface {
	Create(ctx context.Context, a *ArchivedRegistrant) error
	// ListByDeletedAt returns every archived row ordered by deletion time ascending.
	ListByDeletedAt(ctx context.Context) ([]*ArchivedRegistrant, error)
}
