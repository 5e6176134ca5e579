package service

import (
	"context"
	"time"

	"vault_dashboard/internal/client"
	"vault_dashboard/internal/entity"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// factoryCacheTTL bounds how long a factory address is reused before being
// re-fetched. Factory deployments are effectively immutable per network, so
// the TTL is generous.
const factoryCacheTTL = 30 * time.Minute

// VaultOverview is the combined result of the initial "analyze vault" action.
// Each part carries its own outcome so the dashboard can render partial data
// when only some endpoints fail.
type VaultOverview struct {
	Address string                                    `json:"address"`
	Network entity.Network                            `json:"network"`
	Info    entity.FetchOutcome[entity.VaultInfo]     `json:"info"`
	APY     entity.FetchOutcome[entity.VaultAPY]      `json:"apy"`
	History entity.FetchOutcome[entity.HistoryResult] `json:"history"`
}

// VaultService coordinates upstream fetches for the dashboard.
type VaultService struct {
	api          client.VaultAPIClient
	logger       *zap.Logger
	factoryCache *cache.Cache
}

// NewVaultService creates a new VaultService.
func NewVaultService(api client.VaultAPIClient, logger *zap.Logger) *VaultService {
	return &VaultService{
		api:          api,
		logger:       logger.Named("VaultService"),
		factoryCache: cache.New(factoryCacheTTL, 10*time.Minute),
	}
}

// API exposes the underlying vault API client for passthrough endpoints.
func (s *VaultService) API() client.VaultAPIClient {
	return s.api
}

// AnalyzeVault fetches vault info, APY and history concurrently with
// settle-all semantics: every fetch runs to completion and records its own
// outcome, and a failure in one never blocks or aborts the others.
func (s *VaultService) AnalyzeVault(ctx context.Context, vaultAddress string, network entity.Network) (*VaultOverview, error) {
	if vaultAddress == "" {
		return nil, entity.ErrEmptyVaultAddress
	}

	s.logger.Debug("Analyzing vault",
		zap.String("vault", vaultAddress),
		zap.String("network", network.String()))

	overview := &VaultOverview{
		Address: vaultAddress,
		Network: network,
	}

	// The group context is deliberately ignored: each goroutine swallows its
	// error into an outcome, so no failure cancels the siblings.
	var g errgroup.Group
	g.Go(func() error {
		info, err := s.api.GetVaultInfo(ctx, vaultAddress, network)
		if err != nil {
			s.logger.Warn("Vault info fetch failed", zap.String("vault", vaultAddress), zap.Error(err))
			overview.Info = entity.OutcomeErr[entity.VaultInfo](err)
			return nil
		}
		overview.Info = entity.Outcome(*info)
		return nil
	})
	g.Go(func() error {
		apy, err := s.api.GetVaultAPY(ctx, vaultAddress, network)
		if err != nil {
			s.logger.Warn("Vault APY fetch failed", zap.String("vault", vaultAddress), zap.Error(err))
			overview.APY = entity.OutcomeErr[entity.VaultAPY](err)
			return nil
		}
		overview.APY = entity.Outcome(*apy)
		return nil
	})
	g.Go(func() error {
		history, err := s.api.GetVaultHistory(ctx, vaultAddress, network, entity.HistoryParams{
			Period:   entity.PeriodAll,
			Interval: entity.IntervalDaily,
		})
		if err != nil {
			s.logger.Warn("Vault history fetch failed", zap.String("vault", vaultAddress), zap.Error(err))
			overview.History = entity.OutcomeErr[entity.HistoryResult](err)
			return nil
		}
		overview.History = entity.Outcome(*history)
		return nil
	})
	_ = g.Wait()

	return overview, nil
}

// FetchHistory issues a single fresh history request.
func (s *VaultService) FetchHistory(ctx context.Context, vaultAddress string, network entity.Network, params entity.HistoryParams) (*entity.HistoryResult, error) {
	return s.api.GetVaultHistory(ctx, vaultAddress, network, params)
}

// FactoryAddress resolves the factory contract address for a network, served
// from a TTL cache between upstream fetches.
func (s *VaultService) FactoryAddress(ctx context.Context, network entity.Network) (*entity.FactoryAddress, error) {
	key := "factory:" + network.String()
	if cached, found := s.factoryCache.Get(key); found {
		if factory, ok := cached.(*entity.FactoryAddress); ok {
			return factory, nil
		}
	}

	factory, err := s.api.GetFactoryAddress(ctx, network)
	if err != nil {
		return nil, err
	}
	s.factoryCache.Set(key, factory, cache.DefaultExpiration)
	return factory, nil
}
