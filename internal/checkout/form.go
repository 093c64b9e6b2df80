package checkout

import (
	"fmt"
	"net/mail"
	"sort"
	"strings"
)

const (
	DefaultCountry        = "India"
	PaymentCashOnDelivery = "cod"
)

// Countries the storefront ships to
var Countries = []string{"India", "United States", "Canada", "United Kingdom"}

// Form is the shipping and payment form submitted at checkout
type Form struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	City          string `json:"city"`
	State         string `json:"state"`
	PostalCode    string `json:"postal_code"`
	Country       string `json:"country"`
	PaymentMethod string `json:"payment_method"`
}

// ValidationError maps form field names to what is wrong with them
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("invalid checkout form: %s", strings.Join(names, ", "))
}

// Normalize trims every field and fills in the form defaults
func (f Form) Normalize() Form {
	out := Form{
		FirstName:     strings.TrimSpace(f.FirstName),
		LastName:      strings.TrimSpace(f.LastName),
		Email:         strings.TrimSpace(f.Email),
		Phone:         strings.TrimSpace(f.Phone),
		Address:       strings.TrimSpace(f.Address),
		City:          strings.TrimSpace(f.City),
		State:         strings.TrimSpace(f.State),
		PostalCode:    strings.TrimSpace(f.PostalCode),
		Country:       strings.TrimSpace(f.Country),
		PaymentMethod: strings.TrimSpace(f.PaymentMethod),
	}
	if out.Country == "" {
		out.Country = DefaultCountry
	}
	if out.PaymentMethod == "" {
		out.PaymentMethod = PaymentCashOnDelivery
	}
	return out
}

// Validate reports every invalid field at once. Call it on a normalized form.
func (f Form) Validate() error {
	fields := make(map[string]string)
	required := []struct {
		name  string
		value string
	}{
		{"first_name", f.FirstName},
		{"last_name", f.LastName},
		{"email", f.Email},
		{"phone", f.Phone},
		{"address", f.Address},
		{"city", f.City},
		{"state", f.State},
		{"postal_code", f.PostalCode},
	}
	for _, r := range required {
		if r.value == "" {
			fields[r.name] = "is required"
		}
	}

	if f.Email != "" {
		if addr, err := mail.ParseAddress(f.Email); err != nil || addr.Address != f.Email {
			fields["email"] = "is not a valid email address"
		}
	}
	if !contains(Countries, f.Country) {
		fields["country"] = "is not a supported country"
	}
	if f.PaymentMethod != PaymentCashOnDelivery {
		fields["payment_method"] = "is not a supported payment method"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (f Form) FullName() string {
	return strings.TrimSpace(f.FirstName + " " + f.LastName)
}

// ShippingAddress is the single-line address printed on the confirmation
func (f Form) ShippingAddress() string {
	return fmt.Sprintf("%s, %s, %s %s, %s", f.Address, f.City, f.State, f.PostalCode, f.Country)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
