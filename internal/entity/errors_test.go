package entity_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"vault_dashboard/internal/entity"
)

func TestParseNetwork(t *testing.T) {
	tests := []struct {
		input   string
		want    entity.Network
		wantErr bool
	}{
		{"", entity.NetworkMainnet, false},
		{"mainnet", entity.NetworkMainnet, false},
		{"testnet", entity.NetworkTestnet, false},
		{"MAINNET", entity.NetworkMainnet, false},
		{"devnet", "", true},
	}
	for _, tt := range tests {
		got, err := entity.ParseNetwork(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		assert.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestNetworkErrorWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := &entity.NetworkError{Op: "fetch vault info", Cause: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "CORS")
}

func TestAPIErrorMessagePassthrough(t *testing.T) {
	err := &entity.APIError{Op: "fetch vault info", StatusCode: 404, Message: "vault not found"}
	assert.Equal(t, "vault not found", err.Error())
}

func TestIsConfigurationError(t *testing.T) {
	assert.True(t, entity.IsConfigurationError(entity.ErrMissingAPIKey))
	assert.True(t, entity.IsConfigurationError(fmt.Errorf("setup: %w", entity.ErrMissingAPIKey)))
	assert.False(t, entity.IsConfigurationError(errors.New("other")))
}

func TestOutcomeHelpers(t *testing.T) {
	ok := entity.Outcome(42)
	assert.True(t, ok.OK())
	assert.Equal(t, 42, *ok.Data)

	failed := entity.OutcomeErr[int](errors.New("boom"))
	assert.False(t, failed.OK())
	assert.Nil(t, failed.Data)
	assert.Equal(t, "boom", failed.Error)
}
