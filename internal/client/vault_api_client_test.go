package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vault_dashboard/internal/client"
	"vault_dashboard/internal/entity"
)

const testAPIKey = "test-key"

// newTestClient spins up an httptest upstream and a client pointed at it,
// returning a counter of requests that actually reached the server.
func newTestClient(t *testing.T, handler http.HandlerFunc) (client.VaultAPIClient, *atomic.Int64) {
	t.Helper()

	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	return client.NewVaultAPIClient(server.URL, testAPIKey, zap.NewNop()), &requests
}

func jsonResponse(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestGetVaultInfoParsesSuccessfulResponse(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/vault/CVAULT123", r.URL.Path)
		assert.Equal(t, "Bearer "+testAPIKey, r.Header.Get("Authorization"))
		assert.Equal(t, "testnet", r.URL.Query().Get("network"))

		jsonResponse(t, w, http.StatusOK, map[string]any{
			"name":   "Blend USDC Vault",
			"symbol": "bUSDC",
			"apy":    8.42,
			"roles":  map[string]string{"manager": "GMANAGER"},
			"fees":   map[string]float64{"vaultFee": 50, "protocolFee": 25},
			"assets": []map[string]any{
				{
					"address": "CASSET1",
					"symbol":  "USDC",
					"strategies": []map[string]any{
						{"address": "CSTRAT1", "name": "Blend", "paused": false},
						{"address": "CSTRAT2", "name": "YieldBlox", "paused": true},
					},
				},
			},
		})
	})

	info, err := c.GetVaultInfo(context.Background(), "CVAULT123", entity.NetworkTestnet)

	require.NoError(t, err)
	assert.Equal(t, "Blend USDC Vault", info.Name)
	assert.Equal(t, "bUSDC", info.Symbol)
	assert.InDelta(t, 8.42, info.APY, 1e-9)
	assert.Equal(t, "GMANAGER", info.Roles.Manager)
	require.Len(t, info.Assets, 1)
	require.Len(t, info.Assets[0].Strategies, 2)
	assert.True(t, info.Assets[0].Strategies[1].Paused)
}

func TestGetVaultInfoToleratesMissingFields(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(t, w, http.StatusOK, map[string]any{"name": "Bare"})
	})

	info, err := c.GetVaultInfo(context.Background(), "CVAULT123", entity.NetworkMainnet)

	require.NoError(t, err)
	assert.Equal(t, "Bare", info.Name)
	assert.Empty(t, info.Assets)
	assert.Zero(t, info.APY)
}

func TestMissingAPIKeyFailsFastWithoutNetworkCall(t *testing.T) {
	t.Parallel()

	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	t.Cleanup(server.Close)

	c := client.NewVaultAPIClient(server.URL, "", zap.NewNop())
	ctx := context.Background()

	_, infoErr := c.GetVaultInfo(ctx, "CVAULT123", entity.NetworkMainnet)
	_, apyErr := c.GetVaultAPY(ctx, "CVAULT123", entity.NetworkMainnet)
	_, historyErr := c.GetVaultHistory(ctx, "CVAULT123", entity.NetworkMainnet, entity.HistoryParams{})
	_, reportErr := c.GetVaultReport(ctx, "CVAULT123", entity.NetworkMainnet)
	_, balanceErr := c.GetVaultBalance(ctx, "CVAULT123", "GUSER", entity.NetworkMainnet)
	_, factoryErr := c.GetFactoryAddress(ctx, entity.NetworkMainnet)

	for _, err := range []error{infoErr, apyErr, historyErr, reportErr, balanceErr, factoryErr} {
		require.Error(t, err)
		assert.True(t, entity.IsConfigurationError(err))
	}
	assert.Zero(t, requests.Load(), "no HTTP request may be issued without a credential")
}

func TestAPIErrorUsesEnvelopeMessage(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(t, w, http.StatusNotFound, map[string]string{"message": "vault not found"})
	})

	_, err := c.GetVaultInfo(context.Background(), "CMISSING", entity.NetworkMainnet)

	require.Error(t, err)
	var apiErr *entity.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "vault not found", apiErr.Message)
	assert.Equal(t, "vault not found", err.Error())
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestAPIErrorFallsBackToErrorField(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(t, w, http.StatusForbidden, map[string]string{"error": "invalid token"})
	})

	_, err := c.GetVaultAPY(context.Background(), "CVAULT123", entity.NetworkMainnet)

	var apiErr *entity.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "invalid token", apiErr.Message)
}

func TestAPIErrorGeneratesFallbackForNonEnvelopeBody(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	})

	_, err := c.GetVaultInfo(context.Background(), "CVAULT123", entity.NetworkMainnet)

	var apiErr *entity.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "fetch vault info failed: 502 Bad Gateway")
	assert.Contains(t, apiErr.Message, "upstream exploded")
}

func TestTransportFailureYieldsNetworkError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close() // connection refused from here on

	c := client.NewVaultAPIClient(serverURL, testAPIKey, zap.NewNop())

	_, err := c.GetVaultInfo(context.Background(), "CVAULT123", entity.NetworkMainnet)

	require.Error(t, err)
	var netErr *entity.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Contains(t, err.Error(), "connectivity")
	assert.False(t, entity.IsConfigurationError(err))
}

func TestEmptyVaultAddressRejectedBeforeNetwork(t *testing.T) {
	t.Parallel()

	c, requests := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := c.GetVaultInfo(context.Background(), "  ", entity.NetworkMainnet)

	require.ErrorIs(t, err, entity.ErrEmptyVaultAddress)
	assert.Zero(t, requests.Load())
}

func TestHistoryQueryChangesOnlyInterval(t *testing.T) {
	t.Parallel()

	queries := make(chan url.Values, 2)
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		queries <- r.URL.Query()
		jsonResponse(t, w, http.StatusOK, map[string]any{"history": []any{}})
	})

	ctx := context.Background()
	base := entity.HistoryParams{Period: entity.Period30D, Interval: entity.IntervalDaily}

	_, err := c.GetVaultHistory(ctx, "CVAULT123", entity.NetworkMainnet, base)
	require.NoError(t, err)

	changed := base
	changed.Interval = entity.IntervalWeekly
	_, err = c.GetVaultHistory(ctx, "CVAULT123", entity.NetworkMainnet, changed)
	require.NoError(t, err)

	first, second := <-queries, <-queries
	assert.Equal(t, "daily", first.Get("interval"))
	assert.Equal(t, "weekly", second.Get("interval"))

	first.Del("interval")
	second.Del("interval")
	assert.Equal(t, first, second, "all parameters other than interval must be unchanged")
}

func TestHistoryOmitsUnsetDateBounds(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		assert.False(t, query.Has("startDate"))
		assert.False(t, query.Has("endDate"))
		assert.Equal(t, "all", query.Get("period"))
		jsonResponse(t, w, http.StatusOK, map[string]any{"history": []any{}})
	})

	_, err := c.GetVaultHistory(context.Background(), "CVAULT123", entity.NetworkMainnet, entity.HistoryParams{
		Period:   entity.PeriodAll,
		Interval: entity.IntervalDaily,
	})
	require.NoError(t, err)
}

func TestGetVaultReportPassesBodyThrough(t *testing.T) {
	t.Parallel()

	raw := `{"performance":{"sharpe":1.3},"unmodeled":[1,2,3]}`
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/vault/CVAULT123/report", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(raw))
	})

	report, err := c.GetVaultReport(context.Background(), "CVAULT123", entity.NetworkMainnet)

	require.NoError(t, err)
	assert.JSONEq(t, raw, string(report))
}

func TestGetVaultBalanceRequiresUserAddress(t *testing.T) {
	t.Parallel()

	c, requests := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := c.GetVaultBalance(context.Background(), "CVAULT123", "", entity.NetworkMainnet)

	require.Error(t, err)
	assert.Zero(t, requests.Load())
}

func TestGetVaultBalanceSendsFromParameter(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/vault/CVAULT123/balance", r.URL.Path)
		assert.Equal(t, "GUSER", r.URL.Query().Get("from"))
		jsonResponse(t, w, http.StatusOK, map[string]string{
			"shares":          "12500000",
			"underlyingValue": "13000000",
		})
	})

	balance, err := c.GetVaultBalance(context.Background(), "CVAULT123", "GUSER", entity.NetworkMainnet)

	require.NoError(t, err)
	assert.Equal(t, "12500000", balance.Shares)
	assert.Equal(t, "13000000", balance.UnderlyingValue)
}

func TestGetFactoryAddress(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/factory/address", r.URL.Path)
		assert.Equal(t, "mainnet", r.URL.Query().Get("network"))
		jsonResponse(t, w, http.StatusOK, map[string]string{"address": "CFACTORY"})
	})

	factory, err := c.GetFactoryAddress(context.Background(), entity.NetworkMainnet)

	require.NoError(t, err)
	assert.Equal(t, "CFACTORY", factory.Address)
}

func TestSuccessWithMalformedJSONReturnsError(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	})

	_, err := c.GetVaultInfo(context.Background(), "CVAULT123", entity.NetworkMainnet)

	require.Error(t, err)
	var apiErr *entity.APIError
	assert.False(t, errors.As(err, &apiErr), "a 2xx decode failure is not an API error")
}
