package service

import (
	"context"
	"sync"
	"time"

	"vault_dashboard/internal/entity"
	"vault_dashboard/internal/pkg/format"
	"vault_dashboard/pkg/metrics"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// DashboardView is the display state for one vault on one network: the
// combined overview plus the chart series derived from its history. Nothing
// is persisted; views live in memory until their TTL expires, mirroring the
// discard-on-next-search lifecycle of the dashboard.
type DashboardView struct {
	Address     string                                    `json:"address"`
	Network     entity.Network                            `json:"network"`
	Info        entity.FetchOutcome[entity.VaultInfo]     `json:"info"`
	APY         entity.FetchOutcome[entity.VaultAPY]      `json:"apy"`
	History     entity.FetchOutcome[entity.HistoryResult] `json:"history"`
	ChartSeries []entity.ChartPoint                       `json:"chartSeries"`
	Params      entity.HistoryParams                      `json:"-"`
	UpdatedAt   time.Time                                 `json:"updatedAt"`
}

// viewEntry guards one view's state together with its history request
// sequencing counter.
type viewEntry struct {
	mu     sync.Mutex
	view   DashboardView
	issued uint64 // last history request token handed out
}

// DashboardStore owns the in-memory dashboard views.
type DashboardStore struct {
	svc    *VaultService
	views  *cache.Cache
	logger *zap.Logger
}

// NewDashboardStore creates a store whose views expire after ttl.
func NewDashboardStore(svc *VaultService, ttl, cleanupInterval time.Duration, logger *zap.Logger) *DashboardStore {
	return &DashboardStore{
		svc:    svc,
		views:  cache.New(ttl, cleanupInterval),
		logger: logger.Named("DashboardStore"),
	}
}

func viewKey(vaultAddress string, network entity.Network) string {
	return network.String() + ":" + vaultAddress
}

// entry returns the live entry for a vault, creating it if absent.
func (s *DashboardStore) entry(vaultAddress string, network entity.Network) *viewEntry {
	key := viewKey(vaultAddress, network)
	if cached, found := s.views.Get(key); found {
		if e, ok := cached.(*viewEntry); ok {
			return e
		}
	}
	e := &viewEntry{view: DashboardView{Address: vaultAddress, Network: network}}
	s.views.Set(key, e, cache.DefaultExpiration)
	return e
}

// Analyze runs the settle-all overview fetch and seeds (or replaces) the view
// for the vault. The returned snapshot is a copy and safe to serialize.
func (s *DashboardStore) Analyze(ctx context.Context, vaultAddress string, network entity.Network) (DashboardView, error) {
	overview, err := s.svc.AnalyzeVault(ctx, vaultAddress, network)
	if err != nil {
		return DashboardView{}, err
	}

	e := s.entry(vaultAddress, network)
	e.mu.Lock()
	defer e.mu.Unlock()

	e.view.Info = overview.Info
	e.view.APY = overview.APY
	e.view.History = overview.History
	e.view.ChartSeries = format.ToChartSeries(overview.History.Data)
	e.view.Params = entity.HistoryParams{Period: entity.PeriodAll, Interval: entity.IntervalDaily}
	e.view.UpdatedAt = time.Now()

	return e.view, nil
}

// RefreshHistory re-fetches only the history portion of a view under
// monotonic request sequencing: each call takes a strictly increasing token,
// and a completion is applied only if its token is still the latest issued.
// Responses overtaken by a newer request are dropped silently, so a slow
// in-flight fetch can never overwrite the result of a more recent selection.
//
// On failure the previously displayed history is left untouched and only the
// new error message is attached. The bool result reports whether this call's
// response was applied.
func (s *DashboardStore) RefreshHistory(ctx context.Context, vaultAddress string, network entity.Network, params entity.HistoryParams) (DashboardView, bool, error) {
	e := s.entry(vaultAddress, network)

	e.mu.Lock()
	e.issued++
	token := e.issued
	e.mu.Unlock()

	history, err := s.svc.FetchHistory(ctx, vaultAddress, network, params)

	e.mu.Lock()
	defer e.mu.Unlock()

	if token < e.issued {
		metrics.StaleHistoryResponsesTotal.Inc()
		s.logger.Debug("Dropping stale history response",
			zap.String("vault", vaultAddress),
			zap.Uint64("token", token),
			zap.Uint64("latest", e.issued))
		return e.view, false, nil
	}

	if err != nil {
		e.view.History.Error = err.Error()
		e.view.UpdatedAt = time.Now()
		return e.view, true, err
	}

	e.view.History = entity.Outcome(*history)
	e.view.ChartSeries = format.ToChartSeries(history)
	e.view.Params = params
	e.view.UpdatedAt = time.Now()
	return e.view, true, nil
}

// View returns a snapshot of the current display state for a vault, if one
// exists and has not expired.
func (s *DashboardStore) View(vaultAddress string, network entity.Network) (DashboardView, bool) {
	cached, found := s.views.Get(viewKey(vaultAddress, network))
	if !found {
		return DashboardView{}, false
	}
	e, ok := cached.(*viewEntry)
	if !ok {
		return DashboardView{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view, true
}
