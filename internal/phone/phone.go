// Package phone validates attendee phone numbers and renders them in the
// international form stored on a registrant.
package phone

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// ErrInvalid is returned for input that is not a valid number for the region.
var ErrInvalid = errors.New("invalid phone number")

// Number is a validated phone number.
type Number struct {
	// Region is the ISO 3166-1 alpha-2 region the number belongs to, e.g. "IN".
	Region string `json:"region"`
	// International is the persisted form, e.g. "+91 98765 43210".
	International string `json:"international"`
	// Display is the national digit grouping without the country code, e.g. "98765 43210".
	Display string `json:"display"`
	// E164 is the compact form, e.g. "+919876543210".
	E164 string `json:"e164"`
}

// Parse validates raw against region. Input that starts with "+" carries its own
// country code and only has to be a valid number; anything else must be valid
// for region.
func Parse(raw, region string) (Number, error) {
	raw = strings.TrimSpace(raw)
	region = strings.ToUpper(strings.TrimSpace(region))
	if raw == "" {
		return Number{}, fmt.Errorf("%w: empty", ErrInvalid)
	}
	num, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return Number{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if strings.HasPrefix(raw, "+") {
		if !phonenumbers.IsValidNumber(num) {
			return Number{}, fmt.Errorf("%w: %q", ErrInvalid, raw)
		}
		region = phonenumbers.GetRegionCodeForNumber(num)
	} else if !phonenumbers.IsValidNumberForRegion(num, region) {
		return Number{}, fmt.Errorf("%w: %q is not a valid %s number", ErrInvalid, raw, region)
	}

	intl := phonenumbers.Format(num, phonenumbers.INTERNATIONAL)
	prefix := fmt.Sprintf("+%d ", num.GetCountryCode())
	return Number{
		Region:        region,
		International: intl,
		Display:       strings.TrimPrefix(intl, prefix),
		E164:          phonenumbers.Format(num, phonenumbers.E164),
	}, nil
}

// CallingCode returns the country calling code for region, e.g. "+91" for "IN",
// or "" for an unknown region.
func CallingCode(region string) string {
	code := phonenumbers.GetCountryCodeForRegion(strings.ToUpper(strings.TrimSpace(region)))
	if code == 0 {
		return ""
	}
	return fmt.Sprintf("+%d", code)
}
