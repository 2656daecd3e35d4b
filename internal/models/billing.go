package models

import (
	"fmt"
	"strings"
)

// BillingInfo holds the contact and address details collected at checkout
type BillingInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
}

// RequiredBillingFields lists the fields that must be filled before payment
var RequiredBillingFields = []string{
	"firstName", "lastName", "email", "phone", "address1", "city", "state", "zipCode", "country",
}

func (b *BillingInfo) field(name string) (*string, bool) {
	switch name {
	case "firstName":
		return &b.FirstName, true
	case "lastName":
		return &b.LastName, true
	case "email":
		return &b.Email, true
	case "phone":
		return &b.Phone, true
	case "address1":
		return &b.Address1, true
	case "address2":
		return &b.Address2, true
	case "city":
		return &b.City, true
	case "state":
		return &b.State, true
	case "zipCode":
		return &b.ZipCode, true
	case "country":
		return &b.Country, true
	default:
		return nil, false
	}
}

// Set assigns a field by its form name. No validation happens here.
func (b *BillingInfo) Set(name, value string) error {
	ptr, ok := b.field(name)
	if !ok {
		return fmt.Errorf("%w: unknown billing field %q", ErrInvalidInput, name)
	}
	*ptr = value
	return nil
}

// Get returns a field by its form name
func (b *BillingInfo) Get(name string) (string, bool) {
	ptr, ok := b.field(name)
	if !ok {
		return "", false
	}
	return *ptr, true
}

// Validate returns the field level errors for the current billing state
func (b BillingInfo) Validate() ValidationErrors {
	errs := ValidationErrors{}

	for _, name := range RequiredBillingFields {
		value, _ := b.Get(name)
		if strings.TrimSpace(value) == "" {
			errs.Add(name, MsgRequired)
		}
	}

	if b.Email != "" && !IsValidEmail(b.Email) {
		errs["email"] = MsgInvalidEmail
	}

	return errs
}

// FullName returns first and last name joined
func (b BillingInfo) FullName() string {
	return strings.TrimSpace(b.FirstName + " " + b.LastName)
}
