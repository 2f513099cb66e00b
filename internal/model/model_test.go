package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidPaymentStatus(t *testing.T) {
	assert.True(t, IsValidPaymentStatus(PaymentStatusVerified))
	assert.True(t, IsValidPaymentStatus(PaymentStatusUnverified))
	assert.False(t, IsValidPaymentStatus(""))
	assert.False(t, IsValidPaymentStatus("已核销"))
}

func TestPaymentJSON(t *testing.T) {
	p := Payment{
		ID:           "p1",
		Date:         "2023-10-12",
		CustomerID:   "c1",
		CustomerName: "A",
		Amount:       decimal.NewFromFloat(45000.5),
		Status:       PaymentStatusUnverified,
	}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, `"amount":45000.5`)
	assert.Contains(t, s, `"businessDate":null`)
	assert.Contains(t, s, `"customerId":"c1"`)

	var back Payment
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"12.30"}`), &back))
	assert.True(t, back.Amount.Equal(decimal.RequireFromString("12.3")))
}

func TestAccountJSONHidesPassword(t *testing.T) {
	data, err := json.Marshal(Account{ID: DefaultAccountID, Username: "u", Password: "hash"})
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(data), "hash"))
}

func TestNow(t *testing.T) {
	ts := Now()
	parsed, err := time.Parse(TimestampLayout, ts)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(ts, "Z"))
	assert.WithinDuration(t, time.Now(), parsed, 5*time.Second)
}
