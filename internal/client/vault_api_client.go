package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"vault_dashboard/internal/entity"
	"vault_dashboard/pkg/metrics"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var jsonx = jsoniter.ConfigCompatibleWithStandardLibrary

// VaultAPIClient defines the interface for the upstream vault API. Every
// operation issues exactly one fresh request: no retries, no client-imposed
// timeout, no caching. A context deadline, when present, is honored.
type VaultAPIClient interface {
	GetVaultInfo(ctx context.Context, vaultAddress string, network entity.Network) (*entity.VaultInfo, error)
	GetVaultAPY(ctx context.Context, vaultAddress string, network entity.Network) (*entity.VaultAPY, error)
	GetVaultHistory(ctx context.Context, vaultAddress string, network entity.Network, params entity.HistoryParams) (*entity.HistoryResult, error)
	GetVaultReport(ctx context.Context, vaultAddress string, network entity.Network) (json.RawMessage, error)
	GetVaultBalance(ctx context.Context, vaultAddress, userAddress string, network entity.Network) (*entity.VaultBalance, error)
	GetFactoryAddress(ctx context.Context, network entity.Network) (*entity.FactoryAddress, error)
}

// errorEnvelope is the assumed shape of upstream error bodies.
type errorEnvelope struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// vaultAPIClientImpl is the fasthttp implementation of VaultAPIClient.
type vaultAPIClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	apiKey  string
	logger  *zap.Logger
}

// NewVaultAPIClient creates a new vault API client. The apiKey may be empty;
// in that case every operation fails fast with a configuration error instead
// of reaching the network.
func NewVaultAPIClient(baseURL, apiKey string, logger *zap.Logger) VaultAPIClient {
	return &vaultAPIClientImpl{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		logger:  logger.Named("VaultAPIClient"),
	}
}

// GetVaultInfo implements the VaultAPIClient interface.
func (c *vaultAPIClientImpl) GetVaultInfo(ctx context.Context, vaultAddress string, network entity.Network) (*entity.VaultInfo, error) {
	if strings.TrimSpace(vaultAddress) == "" {
		return nil, entity.ErrEmptyVaultAddress
	}
	body, err := c.doGet(ctx, "fetch vault info", "/vault/"+vaultAddress, networkQuery(network))
	if err != nil {
		return nil, err
	}
	var info entity.VaultInfo
	if err := jsonx.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vault info response: %w", err)
	}
	return &info, nil
}

// GetVaultAPY implements the VaultAPIClient interface.
func (c *vaultAPIClientImpl) GetVaultAPY(ctx context.Context, vaultAddress string, network entity.Network) (*entity.VaultAPY, error) {
	if strings.TrimSpace(vaultAddress) == "" {
		return nil, entity.ErrEmptyVaultAddress
	}
	body, err := c.doGet(ctx, "fetch vault APY", "/vault/"+vaultAddress+"/apy", networkQuery(network))
	if err != nil {
		return nil, err
	}
	var apy entity.VaultAPY
	if err := jsonx.Unmarshal(body, &apy); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vault APY response: %w", err)
	}
	return &apy, nil
}

// GetVaultHistory implements the VaultAPIClient interface. StartDate and
// EndDate are forwarded only when set.
func (c *vaultAPIClientImpl) GetVaultHistory(ctx context.Context, vaultAddress string, network entity.Network, params entity.HistoryParams) (*entity.HistoryResult, error) {
	if strings.TrimSpace(vaultAddress) == "" {
		return nil, entity.ErrEmptyVaultAddress
	}
	query := networkQuery(network)
	if params.Period != "" {
		query.Set("period", string(params.Period))
	}
	if params.Interval != "" {
		query.Set("interval", string(params.Interval))
	}
	if params.StartDate != "" {
		query.Set("startDate", params.StartDate)
	}
	if params.EndDate != "" {
		query.Set("endDate", params.EndDate)
	}

	body, err := c.doGet(ctx, "fetch vault history", "/vault/"+vaultAddress+"/history", query)
	if err != nil {
		return nil, err
	}
	var history entity.HistoryResult
	if err := jsonx.Unmarshal(body, &history); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vault history response: %w", err)
	}
	return &history, nil
}

// GetVaultReport implements the VaultAPIClient interface. The report body is
// passed through untouched; no schema is imposed on it.
func (c *vaultAPIClientImpl) GetVaultReport(ctx context.Context, vaultAddress string, network entity.Network) (json.RawMessage, error) {
	if strings.TrimSpace(vaultAddress) == "" {
		return nil, entity.ErrEmptyVaultAddress
	}
	body, err := c.doGet(ctx, "fetch vault report", "/vault/"+vaultAddress+"/report", networkQuery(network))
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// GetVaultBalance implements the VaultAPIClient interface.
func (c *vaultAPIClientImpl) GetVaultBalance(ctx context.Context, vaultAddress, userAddress string, network entity.Network) (*entity.VaultBalance, error) {
	if strings.TrimSpace(vaultAddress) == "" {
		return nil, entity.ErrEmptyVaultAddress
	}
	if strings.TrimSpace(userAddress) == "" {
		return nil, fmt.Errorf("user address is required")
	}
	query := networkQuery(network)
	query.Set("from", userAddress)

	body, err := c.doGet(ctx, "fetch vault balance", "/vault/"+vaultAddress+"/balance", query)
	if err != nil {
		return nil, err
	}
	var balance entity.VaultBalance
	if err := jsonx.Unmarshal(body, &balance); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vault balance response: %w", err)
	}
	return &balance, nil
}

// GetFactoryAddress implements the VaultAPIClient interface.
func (c *vaultAPIClientImpl) GetFactoryAddress(ctx context.Context, network entity.Network) (*entity.FactoryAddress, error) {
	body, err := c.doGet(ctx, "fetch factory address", "/factory/address", networkQuery(network))
	if err != nil {
		return nil, err
	}
	var factory entity.FactoryAddress
	if err := jsonx.Unmarshal(body, &factory); err != nil {
		return nil, fmt.Errorf("failed to unmarshal factory address response: %w", err)
	}
	return &factory, nil
}

// doGet issues one authenticated GET and normalizes the result. Query
// parameters are URL-encoded via url.Values.Encode, which sorts keys, so the
// serialized query is stable regardless of insertion order.
func (c *vaultAPIClientImpl) doGet(ctx context.Context, op, path string, query url.Values) ([]byte, error) {
	if c.apiKey == "" {
		c.logger.Warn("Vault API call attempted without a configured API key", zap.String("op", op))
		return nil, entity.ErrMissingAPIKey
	}

	requestURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		requestURL += "?" + encoded
	}

	c.logger.Debug("Requesting vault API", zap.String("op", op), zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetContentTypeBytes([]byte("application/json"))
	req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+c.apiKey)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.Do(req, resp)
	}
	if err != nil {
		metrics.ObserveUpstreamRequest(op, "network_error")
		c.logger.Error("Vault API request failed at transport level",
			zap.String("op", op), zap.String("url", requestURL), zap.Error(err))
		return nil, &entity.NetworkError{Op: op, Cause: err}
	}

	rawBody := append([]byte(nil), resp.Body()...)
	status := resp.StatusCode()

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		metrics.ObserveUpstreamRequest(op, "api_error")
		c.logger.Error("Vault API request returned an error status",
			zap.String("op", op),
			zap.String("url", requestURL),
			zap.Int("statusCode", status),
			zap.ByteString("responseBody", rawBody))
		return nil, &entity.APIError{
			Op:         op,
			StatusCode: status,
			Message:    extractErrorMessage(op, status, rawBody),
		}
	}

	metrics.ObserveUpstreamRequest(op, "success")
	return rawBody, nil
}

// extractErrorMessage pulls the message or error field out of an upstream
// error body. When the body is not the expected envelope it falls back to a
// generated "<op> failed: <status> <statusText>" string, with the raw body
// appended when non-empty.
func extractErrorMessage(op string, status int, body []byte) string {
	var envelope errorEnvelope
	if err := jsonx.Unmarshal(body, &envelope); err == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}

	msg := fmt.Sprintf("%s failed: %d %s", op, status, http.StatusText(status))
	if text := strings.TrimSpace(string(body)); text != "" {
		msg += ": " + text
	}
	return msg
}

// networkQuery builds the query parameters shared by every endpoint.
func networkQuery(network entity.Network) url.Values {
	query := url.Values{}
	query.Set("network", network.String())
	return query
}
