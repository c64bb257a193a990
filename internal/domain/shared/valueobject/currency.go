package valueobject

import (
	"fmt"
	"strings"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	INR Currency = "INR" // Indian Rupee (default)
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
)

// DefaultCurrency is the default currency for the storefront
const DefaultCurrency = INR

var supportedCurrencies = map[Currency]struct{}{
	INR: {}, USD: {}, EUR: {}, GBP: {},
}

// ParseCurrency normalizes a currency code, falling back to DefaultCurrency when empty.
func ParseCurrency(code string) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return DefaultCurrency, nil
	}
	c := Currency(code)
	if _, ok := supportedCurrencies[c]; !ok {
		return "", fmt.Errorf("unsupported currency: %s", code)
	}
	return c, nil
}

// String returns the currency code
func (c Currency) String() string {
	return string(c)
}
