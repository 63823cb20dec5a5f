package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidDetails = errors.New("invalid address details")

var validate = validator.New()

// Details is the address form filled in after a location was chosen on
// the map. MainAddress and SubAddress come from the location step.
type Details struct {
	Apartment   string `json:"apartment" validate:"required"`
	Landmark    string `json:"landmark" validate:"required"`
	MainAddress string `json:"address"`
	SubAddress  string `json:"subAddress"`
	State       string `json:"state" validate:"required"`
	District    string `json:"district" validate:"required"`
	Pincode     string `json:"pincode" validate:"required,numeric"`
}

func (d Details) trimmed() Details {
	return Details{
		Apartment:   strings.TrimSpace(d.Apartment),
		Landmark:    strings.TrimSpace(d.Landmark),
		MainAddress: strings.TrimSpace(d.MainAddress),
		SubAddress:  strings.TrimSpace(d.SubAddress),
		State:       strings.TrimSpace(d.State),
		District:    strings.TrimSpace(d.District),
		Pincode:     strings.TrimSpace(d.Pincode),
	}
}

func (d Details) Validate() error {
	if err := validate.Struct(d.trimmed()); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			return fmt.Errorf("%w: %s", ErrInvalidDetails, strings.Join(fields, ", "))
		}
		return err
	}
	return nil
}

// FullAddress joins the non-blank parts into one line:
// apartment, landmark, address, sub address, district, state, pincode.
func (d Details) FullAddress() string {
	t := d.trimmed()
	parts := []string{t.Apartment, t.Landmark, t.MainAddress, t.SubAddress, t.District, t.State, t.Pincode}
	return JoinNonBlank(parts...)
}

func JoinNonBlank(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
