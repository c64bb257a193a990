package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ShippingAddress is an immutable delivery address captured on an order.
type ShippingAddress struct {
	recipient  string
	phone      string
	line1      string
	line2      string
	city       string
	state      string
	postalCode string
	country    string
}

// AddressOption configures optional ShippingAddress fields
type AddressOption func(*ShippingAddress)

// WithLine2 sets the second address line
func WithLine2(line2 string) AddressOption {
	return func(a *ShippingAddress) {
		a.line2 = strings.TrimSpace(line2)
	}
}

// WithPhone sets the contact phone number
func WithPhone(phone string) AddressOption {
	return func(a *ShippingAddress) {
		a.phone = strings.TrimSpace(phone)
	}
}

// WithCountry overrides the default country
func WithCountry(country string) AddressOption {
	return func(a *ShippingAddress) {
		if c := strings.TrimSpace(country); c != "" {
			a.country = c
		}
	}
}

// NewShippingAddress creates a ShippingAddress.
// Recipient, line1, city and postal code are required.
func NewShippingAddress(recipient, line1, city, state, postalCode string, opts ...AddressOption) (ShippingAddress, error) {
	addr := ShippingAddress{
		recipient:  strings.TrimSpace(recipient),
		line1:      strings.TrimSpace(line1),
		city:       strings.TrimSpace(city),
		state:      strings.TrimSpace(state),
		postalCode: strings.TrimSpace(postalCode),
		country:    "India",
	}
	for _, opt := range opts {
		opt(&addr)
	}

	switch {
	case addr.recipient == "":
		return ShippingAddress{}, errors.New("recipient cannot be empty")
	case addr.line1 == "":
		return ShippingAddress{}, errors.New("address line cannot be empty")
	case addr.city == "":
		return ShippingAddress{}, errors.New("city cannot be empty")
	case addr.postalCode == "":
		return ShippingAddress{}, errors.New("postal code cannot be empty")
	}
	if len(addr.line1) > 200 || len(addr.line2) > 200 {
		return ShippingAddress{}, fmt.Errorf("address line cannot exceed 200 characters")
	}
	if len(addr.postalCode) > 20 {
		return ShippingAddress{}, fmt.Errorf("postal code cannot exceed 20 characters")
	}
	return addr, nil
}

func (a ShippingAddress) Recipient() string  { return a.recipient }
func (a ShippingAddress) Phone() string      { return a.phone }
func (a ShippingAddress) Line1() string      { return a.line1 }
func (a ShippingAddress) Line2() string      { return a.line2 }
func (a ShippingAddress) City() string       { return a.city }
func (a ShippingAddress) State() string      { return a.state }
func (a ShippingAddress) PostalCode() string { return a.postalCode }
func (a ShippingAddress) Country() string    { return a.country }

// IsEmpty returns true if no address has been set
func (a ShippingAddress) IsEmpty() bool {
	return a.recipient == "" && a.line1 == "" && a.city == ""
}

// String returns a single-line rendering of the address
func (a ShippingAddress) String() string {
	if a.IsEmpty() {
		return ""
	}
	parts := make([]string, 0, 7)
	for _, p := range []string{a.recipient, a.line1, a.line2, a.city, a.state, a.postalCode, a.country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// AddressDTO is the serialized form used for JSON columns and API payloads
type AddressDTO struct {
	Recipient  string `json:"recipient"`
	Phone      string `json:"phone,omitempty"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country,omitempty"`
}

// ToDTO converts the address into its serialized form
func (a ShippingAddress) ToDTO() AddressDTO {
	return AddressDTO{
		Recipient:  a.recipient,
		Phone:      a.phone,
		Line1:      a.line1,
		Line2:      a.line2,
		City:       a.city,
		State:      a.state,
		PostalCode: a.postalCode,
		Country:    a.country,
	}
}

// ToAddress validates the DTO and builds a ShippingAddress
func (d AddressDTO) ToAddress() (ShippingAddress, error) {
	return NewShippingAddress(d.Recipient, d.Line1, d.City, d.State, d.PostalCode,
		WithLine2(d.Line2), WithPhone(d.Phone), WithCountry(d.Country))
}

// MarshalJSON implements json.Marshaler
func (a ShippingAddress) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.ToDTO())
}

// UnmarshalJSON implements json.Unmarshaler, applying the same validation as NewShippingAddress
func (a *ShippingAddress) UnmarshalJSON(data []byte) error {
	var v AddressDTO
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.Recipient == "" && v.Line1 == "" && v.City == "" {
		*a = ShippingAddress{}
		return nil
	}
	addr, err := v.ToAddress()
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// Value implements driver.Valuer so the address is stored as a JSON column
func (a ShippingAddress) Value() (driver.Value, error) {
	if a.IsEmpty() {
		return nil, nil
	}
	return json.Marshal(a.ToDTO())
}

// Scan implements sql.Scanner
func (a *ShippingAddress) Scan(value any) error {
	if value == nil {
		*a = ShippingAddress{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ShippingAddress", value)
	}
	return a.UnmarshalJSON(data)
}
