package leaderboard

import (
	"context"
	"fmt"

	"github.com/pulse-network/backend/internal/chain"
)

// Fetcher pulls one address's profile for the network it fronts.
type Fetcher interface {
	FetchProfile(ctx context.Context, address string) (chain.Profile, error)
}

// StatsSource is implemented by fetchers whose contract exposes
// aggregate totals beyond the known address set.
type StatsSource interface {
	GlobalStats(ctx context.Context) (totalUsers, totalPoints int, err error)
}

// AdapterFetcher reads profiles through a chain adapter's refresh
// path and its snapshot cache.
type AdapterFetcher struct {
	adapter chain.Adapter
}

func NewAdapterFetcher(a chain.Adapter) *AdapterFetcher {
	return &AdapterFetcher{adapter: a}
}

func (f *AdapterFetcher) FetchProfile(ctx context.Context, address string) (chain.Profile, error) {
	f.adapter.RefreshData(ctx, address)
	profile, ok := f.adapter.Profile(address)
	if !ok {
		return chain.Profile{}, fmt.Errorf("no profile data for %s", address)
	}
	return profile, nil
}

type globalStatser interface {
	GlobalStats(ctx context.Context) (totalUsers, totalPoints int, err error)
}

// GlobalStats passes through the adapter's aggregate read when the
// underlying implementation has one.
func (f *AdapterFetcher) GlobalStats(ctx context.Context) (int, int, error) {
	src, ok := f.adapter.(globalStatser)
	if !ok {
		return 0, 0, fmt.Errorf("adapter exposes no global stats")
	}
	return src.GlobalStats(ctx)
}
