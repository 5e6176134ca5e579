package restapi

import (
	"errors"
	"net/http"
	"strings"

	"vault_dashboard/internal/entity"
	"vault_dashboard/internal/pkg/format"
	"vault_dashboard/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VaultDisplay carries the UI-ready strings derived from a dashboard view.
// All amount fields follow the canonical 2-decimal-with-commas convention.
type VaultDisplay struct {
	Name              string `json:"name"`
	Symbol            string `json:"symbol"`
	APY               string `json:"apy"`
	TotalManagedFunds string `json:"totalManagedFunds"`
	TVLCompact        string `json:"tvlCompact"`
	PricePerShare     string `json:"pricePerShare"`
	VaultFee          string `json:"vaultFee"`
	ProtocolFee       string `json:"protocolFee"`
}

// DashboardResponse is the analyze/view response envelope.
type DashboardResponse struct {
	View    service.DashboardView `json:"view"`
	Display VaultDisplay          `json:"display"`
}

// VaultHandler handles HTTP requests for vault data.
type VaultHandler struct {
	svc    *service.VaultService
	store  *service.DashboardStore
	logger *zap.Logger
}

// NewVaultHandler creates a new VaultHandler.
func NewVaultHandler(svc *service.VaultService, store *service.DashboardStore, logger *zap.Logger) *VaultHandler {
	return &VaultHandler{
		svc:    svc,
		store:  store,
		logger: logger.Named("VaultHandler"),
	}
}

// requestScope extracts and validates the vault address and network selector
// shared by every vault-scoped route. It writes the error response itself and
// returns ok=false when the request is unusable.
func (h *VaultHandler) requestScope(c *gin.Context) (address string, network entity.Network, ok bool) {
	address = strings.TrimSpace(c.Param("address"))
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": entity.ErrEmptyVaultAddress.Error()})
		return "", "", false
	}

	network, err := entity.ParseNetwork(c.Query("network"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", "", false
	}
	return address, network, true
}

func historyParamsFromQuery(c *gin.Context) entity.HistoryParams {
	return entity.HistoryParams{
		Period:    entity.HistoryPeriod(c.DefaultQuery("period", string(entity.PeriodAll))),
		Interval:  entity.HistoryInterval(c.DefaultQuery("interval", string(entity.IntervalDaily))),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
	}
}

// GetVaultInfoHandler handles GET /vaults/:address.
func (h *VaultHandler) GetVaultInfoHandler(c *gin.Context) {
	address, network, ok := h.requestScope(c)
	if !ok {
		return
	}
	info, err := h.svc.API().GetVaultInfo(c.Request.Context(), address, network)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// GetVaultAPYHandler handles GET /vaults/:address/apy.
func (h *VaultHandler) GetVaultAPYHandler(c *gin.Context) {
	address, network, ok := h.requestScope(c)
	if !ok {
		return
	}
	apy, err := h.svc.API().GetVaultAPY(c.Request.Context(), address, network)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, apy)
}

// GetVaultHistoryHandler handles GET /vaults/:address/history. The response
// carries both the raw history result and the derived chart series.
func (h *VaultHandler) GetVaultHistoryHandler(c *gin.Context) {
	address, network, ok := h.requestScope(c)
	if !ok {
		return
	}
	history, err := h.svc.FetchHistory(c.Request.Context(), address, network, historyParamsFromQuery(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"history":     history,
		"chartSeries": format.ToChartSeries(history),
	})
}

// GetVaultReportHandler handles GET /vaults/:address/report. The upstream
// report JSON is passed through untouched.
func (h *VaultHandler) GetVaultReportHandler(c *gin.Context) {
	address, network, ok := h.requestScope(c)
	if !ok {
		return
	}
	report, err := h.svc.API().GetVaultReport(c.Request.Context(), address, network)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", report)
}

// GetVaultBalanceHandler handles GET /vaults/:address/balance?from=G...
func (h *VaultHandler) GetVaultBalanceHandler(c *gin.Context) {
	address, network, ok := h.requestScope(c)
	if !ok {
		return
	}
	userAddress := strings.TrimSpace(c.Query("from"))
	if userAddress == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'from' (user address) is required"})
		return
	}
	balance, err := h.svc.API().GetVaultBalance(c.Request.Context(), address, userAddress, network)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"balance":                  balance,
		"sharesFormatted":          format.FormatStroopsWithCommas(balance.Shares),
		"underlyingValueFormatted": format.FormatStroopsWithCommas(balance.UnderlyingValue),
	})
}

// GetFactoryAddressHandler handles GET /factory/address.
func (h *VaultHandler) GetFactoryAddressHandler(c *gin.Context) {
	network, err := entity.ParseNetwork(c.Query("network"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	factory, err := h.svc.FactoryAddress(c.Request.Context(), network)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, factory)
}

// AnalyzeVaultHandler handles POST /vaults/:address/analyze: the settle-all
// combined fetch. The response always has HTTP 200 with per-part outcomes;
// partial upstream failures are reported inside the corresponding part.
func (h *VaultHandler) AnalyzeVaultHandler(c *gin.Context) {
	address, network, ok := h.requestScope(c)
	if !ok {
		return
	}
	view, err := h.store.Analyze(c.Request.Context(), address, network)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, DashboardResponse{View: view, Display: buildDisplay(view)})
}

// RefreshHistoryHandler handles POST /vaults/:address/history/refresh: a
// period/interval change against an existing view. Stale responses (overtaken
// by a newer refresh) report applied=false and return the current view as-is.
func (h *VaultHandler) RefreshHistoryHandler(c *gin.Context) {
	address, network, ok := h.requestScope(c)
	if !ok {
		return
	}
	view, applied, err := h.store.RefreshHistory(c.Request.Context(), address, network, historyParamsFromQuery(c))
	if err != nil {
		// Previous history stays displayed; only the error text travels along.
		c.JSON(statusForError(err), gin.H{
			"error":   err.Error(),
			"applied": applied,
			"view":    view,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"applied": applied,
		"view":    view,
		"display": buildDisplay(view),
	})
}

// GetViewHandler handles GET /vaults/:address/view.
func (h *VaultHandler) GetViewHandler(c *gin.Context) {
	address, network, ok := h.requestScope(c)
	if !ok {
		return
	}
	view, found := h.store.View(address, network)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "no dashboard view for this vault: analyze it first"})
		return
	}
	c.JSON(http.StatusOK, DashboardResponse{View: view, Display: buildDisplay(view)})
}

// buildDisplay renders the UI-ready strings for a view. Missing parts render
// as their zero display values; nothing here can fail.
func buildDisplay(view service.DashboardView) VaultDisplay {
	var display VaultDisplay

	if info := view.Info.Data; info != nil {
		display.Name = info.Name
		display.Symbol = info.Symbol
		apy := info.APY
		display.APY = format.FormatPercentage(&apy)
		vaultFee := info.Fees.VaultFeeBps / 100
		protocolFee := info.Fees.ProtocolFeeBps / 100
		display.VaultFee = format.FormatPercentage(&vaultFee)
		display.ProtocolFee = format.FormatPercentage(&protocolFee)
	} else {
		display.APY = format.FormatPercentage(nil)
		display.VaultFee = format.FormatPercentage(nil)
		display.ProtocolFee = format.FormatPercentage(nil)
	}

	// The dedicated APY endpoint wins over the snapshot on the info record.
	if apy := view.APY.Data; apy != nil {
		display.APY = format.FormatPercentage(&apy.APY)
	}

	if history := view.History.Data; history != nil && history.CurrentState != nil {
		state := history.CurrentState
		display.TotalManagedFunds = format.FormatStroopsWithCommas(state.TotalManagedFunds)
		display.TVLCompact = format.FormatCompact(format.StroopsToDecimal(state.TotalManagedFunds))
		// Price per share arrives pre-converted; no stroop division here.
		display.PricePerShare = format.FormatDecimal(format.ParseFloatOrZero(state.PricePerShare))
	} else {
		display.TotalManagedFunds = format.FormatWithCommas(0)
		display.TVLCompact = format.FormatCompact(0)
		display.PricePerShare = format.FormatDecimal(0)
	}

	return display
}

// writeError maps the error taxonomy onto HTTP statuses.
func (h *VaultHandler) writeError(c *gin.Context, err error) {
	h.logger.Warn("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(statusForError(err), gin.H{"error": err.Error()})
}

func statusForError(err error) int {
	var apiErr *entity.APIError
	var netErr *entity.NetworkError
	switch {
	case errors.Is(err, entity.ErrEmptyVaultAddress):
		return http.StatusBadRequest
	case entity.IsConfigurationError(err):
		return http.StatusInternalServerError
	case errors.As(err, &apiErr):
		if apiErr.StatusCode >= http.StatusBadRequest {
			return apiErr.StatusCode
		}
		return http.StatusBadGateway
	case errors.As(err, &netErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
