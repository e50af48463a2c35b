package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_PublicStripsCredentials(t *testing.T) {
	u := &User{
		ID:                 "u-1",
		Email:              "designer@example.com",
		Name:               "Dana",
		PasswordHash:       "$2a$10$secret",
		SubscriptionStatus: SubscriptionActive,
		StripeCustomerID:   "cus_123",
		CreatedAt:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	raw, err := json.Marshal(u.Public())
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "secret")
	assert.NotContains(t, string(raw), "cus_123")
	assert.Contains(t, string(raw), `"email":"designer@example.com"`)
	assert.Contains(t, string(raw), `"subscription_status":"active"`)
}

func TestItemFilter_Match(t *testing.T) {
	it := &Item{Category: "ui", Status: ItemStatusPending}

	tests := []struct {
		name   string
		filter ItemFilter
		want   bool
	}{
		{name: "empty filter", filter: ItemFilter{}, want: true},
		{name: "category match", filter: ItemFilter{Category: "ui"}, want: true},
		{name: "category mismatch", filter: ItemFilter{Category: "bug"}, want: false},
		{name: "both match", filter: ItemFilter{Category: "ui", Status: ItemStatusPending}, want: true},
		{name: "status mismatch", filter: ItemFilter{Category: "ui", Status: ItemStatusClosed}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(it))
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Designer@Example.COM", want: "designer@example.com"},
		{in: "  spaced@example.com \t", want: "spaced@example.com"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeEmail(tt.in))
	}
}

func TestUserCacheKey(t *testing.T) {
	assert.Equal(t, "user:u-1", UserCacheKey("u-1"))
}
