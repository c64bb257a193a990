package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShippingAddress(t *testing.T) {
	t.Run("valid address with defaults", func(t *testing.T) {
		addr, err := NewShippingAddress(" Asha Rao ", "12 MG Road", "Bengaluru", "KA", "560001")
		require.NoError(t, err)
		assert.Equal(t, "Asha Rao", addr.Recipient())
		assert.Equal(t, "India", addr.Country())
		assert.Equal(t, "Asha Rao, 12 MG Road, Bengaluru, KA, 560001, India", addr.String())
	})

	t.Run("missing required fields", func(t *testing.T) {
		_, err := NewShippingAddress("", "12 MG Road", "Bengaluru", "KA", "560001")
		assert.Error(t, err)
		_, err = NewShippingAddress("Asha", "", "Bengaluru", "KA", "560001")
		assert.Error(t, err)
		_, err = NewShippingAddress("Asha", "12 MG Road", "", "KA", "560001")
		assert.Error(t, err)
		_, err = NewShippingAddress("Asha", "12 MG Road", "Bengaluru", "KA", "")
		assert.Error(t, err)
	})

	t.Run("options", func(t *testing.T) {
		addr, err := NewShippingAddress("Asha", "12 MG Road", "Bengaluru", "KA", "560001",
			WithLine2("Floor 3"), WithPhone("9999999999"), WithCountry("IN"))
		require.NoError(t, err)
		assert.Equal(t, "Floor 3", addr.Line2())
		assert.Equal(t, "9999999999", addr.Phone())
		assert.Equal(t, "IN", addr.Country())
	})
}

func TestShippingAddress_JSONAndScan(t *testing.T) {
	addr, err := NewShippingAddress("Asha", "12 MG Road", "Bengaluru", "KA", "560001")
	require.NoError(t, err)

	v, err := addr.Value()
	require.NoError(t, err)

	var scanned ShippingAddress
	require.NoError(t, scanned.Scan(v))
	assert.Equal(t, addr, scanned)

	var bad ShippingAddress
	assert.Error(t, json.Unmarshal([]byte(`{"recipient":"Asha","line1":"x","city":"y"}`), &bad))

	var empty ShippingAddress
	require.NoError(t, empty.Scan(nil))
	assert.True(t, empty.IsEmpty())
}

func TestParseCurrency(t *testing.T) {
	c, err := ParseCurrency("")
	require.NoError(t, err)
	assert.Equal(t, INR, c)

	c, err = ParseCurrency(" usd ")
	require.NoError(t, err)
	assert.Equal(t, USD, c)

	_, err = ParseCurrency("XYZ")
	assert.Error(t, err)
}
