package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/pulse-network/backend/internal/chain"
	"github.com/pulse-network/backend/internal/config"
	"github.com/pulse-network/backend/internal/db"
	"github.com/pulse-network/backend/internal/discovery"
	"github.com/pulse-network/backend/internal/leaderboard"
	"github.com/pulse-network/backend/internal/models"
	"github.com/pulse-network/backend/internal/repositories"
	"github.com/pulse-network/backend/internal/services"
)

// scanTarget is one explorer page the discovery pass crawls for
// player addresses, tied to the board filter the finds feed.
type scanTarget struct {
	url    string
	family chain.Family
	filter leaderboard.Filter
}

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, int32(cfg.PostgresMaxConns), log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repos
	addressRepo := repositories.NewAddressRepo(pool)
	snapshotRepo := repositories.NewSnapshotRepo(pool)

	// Services
	chains, err := services.BuildChains(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to set up chain adapters", zap.Error(err))
	}
	boards := services.BuildLeaderboard(cfg, chains, addressRepo, rdb, log)
	scanner := discovery.NewScanner(cfg.ExplorerFetchTimeoutMS, cfg.ExplorerFetchMaxRetries, log)
	targets := scanTargets(cfg, chains)

	log.Info("worker started")

	// First pass immediately, so the API has a snapshot to fall back
	// on right after a fresh deploy instead of waiting one interval.
	runSnapshots(ctx, boards, snapshotRepo, cfg, log)
	runDiscovery(ctx, scanner, targets, addressRepo, log)

	// Then on tickers
	snapshotTicker := time.NewTicker(cfg.SnapshotInterval)
	discoveryTicker := time.NewTicker(cfg.DiscoveryInterval)
	defer snapshotTicker.Stop()
	defer discoveryTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-snapshotTicker.C:
			runSnapshots(ctx, boards, snapshotRepo, cfg, log)
		case <-discoveryTicker.C:
			runDiscovery(ctx, scanner, targets, addressRepo, log)
		case <-sigCh:
			log.Info("shutting down worker")
			cancel()
			return
		case <-ctx.Done():
			return
		}
	}
}

// runSnapshots rebuilds every board that has a registered fetcher and
// persists it, so the API can serve a recent board when live chain
// reads are failing.
func runSnapshots(ctx context.Context, boards *leaderboard.Service, snapshotRepo *repositories.SnapshotRepo, cfg *config.Config, log *zap.Logger) {
	for _, filter := range leaderboard.Filters() {
		board, err := boards.Build(ctx, filter, "")
		if err != nil {
			log.Error("failed to build board", zap.String("filter", string(filter)), zap.Error(err))
			continue
		}
		if err := snapshotRepo.Save(ctx, board); err != nil {
			log.Error("failed to save snapshot", zap.String("filter", string(filter)), zap.Error(err))
			continue
		}
		log.Info("snapshot saved",
			zap.String("filter", string(filter)),
			zap.Int("entries", len(board.Entries)),
		)
	}

	if err := snapshotRepo.Prune(ctx, cfg.SnapshotKeep); err != nil {
		log.Error("failed to prune snapshots", zap.Error(err))
	}
}

func runDiscovery(ctx context.Context, scanner *discovery.Scanner, targets []scanTarget, addressRepo *repositories.AddressRepo, log *zap.Logger) {
	for _, t := range targets {
		result, err := scanner.ScanPage(ctx, t.url, t.family)
		if err != nil {
			log.Warn("explorer scan failed", zap.String("url", t.url), zap.Error(err))
			continue
		}

		registered := 0
		for _, address := range result.Addresses {
			if err := addressRepo.Register(ctx, address, t.filter, models.AddressSourceDiscovered); err != nil {
				log.Error("failed to register address", zap.String("address", address), zap.Error(err))
				continue
			}
			registered++
		}
		log.Info("explorer scanned",
			zap.String("filter", string(t.filter)),
			zap.Int("found", len(result.Addresses)),
			zap.Int("registered", registered),
		)

		time.Sleep(1 * time.Second) // rate limiting
	}
}

// scanTargets lists the contract pages of every configured deployment.
// Players interacting with a contract show up in its explorer activity,
// which is how the boards grow beyond seeds and logins.
func scanTargets(cfg *config.Config, chains *services.ChainSet) []scanTarget {
	var targets []scanTarget
	add := func(filter leaderboard.Filter, family chain.Family, explorerURL, contract string) {
		if contract == "" {
			return
		}
		targets = append(targets, scanTarget{
			url:    explorerAddressURL(explorerURL, contract),
			family: family,
			filter: filter,
		})
	}

	add(leaderboard.FilterBaseMainnet, chain.FamilyEVM, cfg.BaseMainnetExplorer, cfg.BaseMainnetContract)
	add(leaderboard.FilterBaseTestnet, chain.FamilyEVM, cfg.BaseTestnetExplorer, cfg.BaseTestnetContract)
	add(leaderboard.FilterStacksMainnet, chain.FamilyStacks, cfg.StacksMainnetExplorer, cfg.StacksMainnetContract)
	add(leaderboard.FilterStacksTestnet, chain.FamilyStacks, cfg.StacksTestnetExplorer, cfg.StacksTestnetContract)

	// Only scan deployments we can actually fetch profiles for.
	filtered := targets[:0]
	for _, t := range targets {
		if _, ok := chains.Adapters[t.filter]; ok {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// explorerAddressURL builds the address page URL, keeping any query
// string the base carries (the Hiro explorer selects testnet that way).
func explorerAddressURL(base, contract string) string {
	path, query, found := strings.Cut(base, "?")
	u := strings.TrimRight(path, "/") + "/address/" + contract
	if found {
		u += "?" + query
	}
	return u
}
