package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"eventregistration/internal/domain"
	"eventregistration/internal/phone"
)

// BuildRegistrant validates form for identity and returns the registrant to persist,
// without a lucky number. It makes no network calls; failures are *domain.ValidationError.
func BuildRegistrant(identity domain.Identity, form domain.RegistrationForm, defaultCountry string) (*domain.Registrant, error) {
	var errs []string

	name := strings.TrimSpace(form.Name)
	if name == "" {
		name = identity.Name
	}
	if name == "" {
		errs = append(errs, "name is required")
	}

	country := strings.TrimSpace(form.Country)
	if country == "" {
		country = defaultCountry
	}
	var intl string
	if num, err := phone.Parse(form.Phone, country); err != nil {
		errs = append(errs, fmt.Sprintf("phone number is not valid for %s", strings.ToUpper(country)))
	} else {
		intl = num.International
	}

	if form.Slot == "" {
		errs = append(errs, "slot is required")
	} else if !form.Slot.Valid() {
		errs = append(errs, "slot must be one of the available time slots")
	}

	guests := 0
	if form.BringingGuests {
		switch {
		case form.GuestCount == nil:
			errs = append(errs, "guest count is required when bringing guests")
		case *form.GuestCount < 1 || *form.GuestCount > domain.MaxGuestCount:
			errs = append(errs, fmt.Sprintf("guest count must be between 1 and %d", domain.MaxGuestCount))
		default:
			guests = *form.GuestCount
		}
	}

	remarks := strings.TrimSpace(form.Remarks)
	if utf8.RuneCountInString(remarks) > domain.MaxRemarksLength {
		errs = append(errs, fmt.Sprintf("remarks must be at most %d characters", domain.MaxRemarksLength))
	}

	if len(errs) > 0 {
		return nil, &domain.ValidationError{Messages: errs}
	}
	return &domain.Registrant{
		Email:       identity.Email,
		Name:        name,
		Phone:       intl,
		IsDonor:     form.IsDonor,
		IsAuthor:    form.IsAuthor,
		IsVolunteer: form.IsVolunteer,
		Slot:        form.Slot,
		Remarks:     remarks,
		GuestCount:  guests,
	}, nil
}
