package pagination_test

import (
	"testing"
	"time"

	"github.com/galexy/pennyledger/internal/utils/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeToken(t *testing.T) {
	effectiveDate := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	transactionID := "txn-abc"

	token := pagination.EncodeToken(effectiveDate, transactionID)
	require.NotEmpty(t, token)

	gotDate, gotID, err := pagination.DecodeToken(token)
	require.NoError(t, err)
	assert.True(t, gotDate.Equal(effectiveDate))
	assert.Equal(t, transactionID, gotID)
}

func TestDecodeToken_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "not base64", token: "%%%not-base64%%%"},
		{name: "missing separator", token: "bm8tc2VwYXJhdG9y"}, // "no-separator"
		{name: "bad date", token: "bm90LWEtZGF0ZXx0eG4tYWJj"},  // "not-a-date|txn-abc"
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := pagination.DecodeToken(tt.token)
			assert.Error(t, err)
		})
	}
}
