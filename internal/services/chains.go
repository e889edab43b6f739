package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pulse-network/backend/internal/chain"
	"github.com/pulse-network/backend/internal/chain/evm"
	"github.com/pulse-network/backend/internal/chain/stacks"
	"github.com/pulse-network/backend/internal/config"
	"github.com/pulse-network/backend/internal/facade"
	"github.com/pulse-network/backend/internal/leaderboard"
)

// ChainSet is every constructed adapter plus the facade fronting
// them. Deployments without a configured contract are simply absent:
// the facade then resolves those states to none.
type ChainSet struct {
	Facade   *facade.Facade
	Adapters map[leaderboard.Filter]chain.Adapter
}

// BuildChains constructs the per-deployment adapters from config and
// registers them with a fresh facade.
func BuildChains(ctx context.Context, cfg *config.Config, log *zap.Logger) (*ChainSet, error) {
	set := &ChainSet{
		Facade:   facade.New(log),
		Adapters: make(map[leaderboard.Filter]chain.Adapter),
	}

	if cfg.BaseMainnetContract != "" {
		a, err := evm.NewAdapter(ctx, evm.Endpoint{
			ChainID:         evm.BaseMainnetChainID,
			RPCURL:          cfg.BaseMainnetRPCURL,
			ContractAddress: cfg.BaseMainnetContract,
			ExplorerURL:     cfg.BaseMainnetExplorer,
		}, chain.NetworkMainnet, cfg.EVMSignerKey, log)
		if err != nil {
			return nil, fmt.Errorf("base mainnet adapter: %w", err)
		}
		set.Facade.RegisterBase(evm.BaseMainnetChainID, a)
		set.Adapters[leaderboard.FilterBaseMainnet] = a
	}
	if cfg.BaseTestnetContract != "" {
		a, err := evm.NewAdapter(ctx, evm.Endpoint{
			ChainID:         evm.BaseSepoliaChainID,
			RPCURL:          cfg.BaseTestnetRPCURL,
			ContractAddress: cfg.BaseTestnetContract,
			ExplorerURL:     cfg.BaseTestnetExplorer,
		}, chain.NetworkTestnet, cfg.EVMSignerKey, log)
		if err != nil {
			return nil, fmt.Errorf("base testnet adapter: %w", err)
		}
		set.Facade.RegisterBase(evm.BaseSepoliaChainID, a)
		set.Adapters[leaderboard.FilterBaseTestnet] = a
	}

	var session stacks.WalletSession
	if cfg.StacksWalletRPCURL != "" {
		session = stacks.NewRPCSession(cfg.StacksWalletRPCURL, log)
	}
	strategy := stacks.ReadStrategy(cfg.StacksReadStrategy)
	if strategy != stacks.ReadCombined && strategy != stacks.ReadSequential {
		strategy = stacks.ReadCombined
	}

	if cfg.StacksMainnetContract != "" {
		addr, name, err := splitContractID(cfg.StacksMainnetContract)
		if err != nil {
			return nil, fmt.Errorf("stacks mainnet contract: %w", err)
		}
		a := stacks.NewAdapter(stacks.Endpoint{
			APIURL:          cfg.StacksMainnetAPIURL,
			ContractAddress: addr,
			ContractName:    name,
			ExplorerURL:     cfg.StacksMainnetExplorer,
		}, chain.NetworkMainnet, session, strategy, log)
		set.Facade.RegisterStacks(chain.NetworkMainnet, a)
		set.Adapters[leaderboard.FilterStacksMainnet] = a
	}
	if cfg.StacksTestnetContract != "" {
		addr, name, err := splitContractID(cfg.StacksTestnetContract)
		if err != nil {
			return nil, fmt.Errorf("stacks testnet contract: %w", err)
		}
		a := stacks.NewAdapter(stacks.Endpoint{
			APIURL:          cfg.StacksTestnetAPIURL,
			ContractAddress: addr,
			ContractName:    name,
			ExplorerURL:     cfg.StacksTestnetExplorer,
		}, chain.NetworkTestnet, session, strategy, log)
		set.Facade.RegisterStacks(chain.NetworkTestnet, a)
		set.Adapters[leaderboard.FilterStacksTestnet] = a
	}

	return set, nil
}

// BuildLeaderboard wires the board service: config seeds, the
// registered-address source, one fetcher per constructed adapter.
func BuildLeaderboard(cfg *config.Config, set *ChainSet, source leaderboard.AddressSource, rdb *redis.Client, log *zap.Logger) *leaderboard.Service {
	seeds := map[leaderboard.Filter][]string{
		leaderboard.FilterBaseMainnet:   cfg.SeedBaseMainnet,
		leaderboard.FilterBaseTestnet:   cfg.SeedBaseTestnet,
		leaderboard.FilterStacksMainnet: cfg.SeedStacksMainnet,
		leaderboard.FilterStacksTestnet: cfg.SeedStacksTestnet,
	}
	svc := leaderboard.NewService(seeds, source, rdb, cfg.LeaderboardCacheTTL, log)
	for filter, adapter := range set.Adapters {
		svc.RegisterFetcher(filter, leaderboard.NewAdapterFetcher(adapter))
	}
	return svc
}

func splitContractID(id string) (address, name string, err error) {
	parts := strings.SplitN(id, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("want address.name, got %q", id)
	}
	return parts[0], parts[1], nil
}
