package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZodiacSigns(t *testing.T) {
	p := Product{Zodiac: "Aries, leo ,SCORPIO"}
	assert.Equal(t, []string{"aries", "leo", "scorpio"}, p.ZodiacSigns())

	assert.Nil(t, Product{}.ZodiacSigns())
	assert.Empty(t, Product{Zodiac: " , "}.ZodiacSigns())
}

func TestHasZodiac(t *testing.T) {
	p := Product{Zodiac: "aries,leo"}
	assert.True(t, p.HasZodiac("LEO"))
	assert.True(t, p.HasZodiac(" aries "))
	assert.False(t, p.HasZodiac("pisces"))
}

func TestParseStatuses(t *testing.T) {
	status, err := ParseOrderStatus("Shipped")
	assert.NoError(t, err)
	assert.Equal(t, OrderStatusShipped, status)
	_, err = ParseOrderStatus("teleported")
	assert.Error(t, err)

	pay, err := ParsePaymentStatus("PAID")
	assert.NoError(t, err)
	assert.Equal(t, PaymentStatusPaid, pay)
	_, err = ParsePaymentStatus("refunded")
	assert.Error(t, err)

	method, err := ParsePaymentMethod("CashApp")
	assert.NoError(t, err)
	assert.Equal(t, PaymentMethodCashApp, method)
	_, err = ParsePaymentMethod("paypal")
	assert.Error(t, err)
}
