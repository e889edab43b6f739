// Package leaderboard aggregates quest profiles across every
// supported chain/network combination into ranked boards.
package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pulse-network/backend/internal/chain"
)

// Filter names one chain/network combination.
type Filter string

const (
	FilterBaseMainnet   Filter = "base-mainnet"
	FilterBaseTestnet   Filter = "base-testnet"
	FilterStacksMainnet Filter = "stacks-mainnet"
	FilterStacksTestnet Filter = "stacks-testnet"

	// FilterAll marks a board merged across every network. It has no
	// fetcher of its own and is absent from Filters().
	FilterAll Filter = "all"
)

// Filters lists every supported combination.
func Filters() []Filter {
	return []Filter{FilterBaseMainnet, FilterBaseTestnet, FilterStacksMainnet, FilterStacksTestnet}
}

// Entry is one ranked row. Network records which board the row was
// fetched from, so merged boards stay attributable.
type Entry struct {
	Rank          int    `json:"rank"`
	Address       string `json:"address"`
	Display       string `json:"display"`
	Network       Filter `json:"network"`
	TotalPoints   int    `json:"total_points"`
	PointsDisplay string `json:"points_display"`
	CurrentStreak int    `json:"current_streak"`
	LongestStreak int    `json:"longest_streak"`
	Level         int    `json:"level"`
}

// FormatCompact renders a point total the way UI lists show it:
// 1234567 -> "1.2M", 5400 -> "5.4K", smaller values verbatim.
func FormatCompact(n int) string {
	switch {
	case n >= 1_000_000:
		return strconv.FormatFloat(float64(n)/1_000_000, 'f', 1, 64) + "M"
	case n >= 1_000:
		return strconv.FormatFloat(float64(n)/1_000, 'f', 1, 64) + "K"
	default:
		return strconv.Itoa(n)
	}
}

// Stats summarizes a board.
type Stats struct {
	TotalUsers  int     `json:"total_users"`
	TotalPoints int     `json:"total_points"`
	MaxStreak   int     `json:"max_streak"`
	AvgLevel    float64 `json:"avg_level"`
}

// Board is a fully built leaderboard for one filter.
type Board struct {
	Filter    Filter    `json:"filter"`
	Entries   []Entry   `json:"entries"`
	Stats     Stats     `json:"stats"`
	FetchedAt time.Time `json:"fetched_at"`
}

// AddressSource supplies additional candidate addresses for a filter
// beyond the static seed list, e.g. discovered or registered ones.
type AddressSource interface {
	Addresses(ctx context.Context, filter Filter) ([]string, error)
}

// Service builds and caches leaderboards. Candidate addresses come
// from the seed list, the optional address source, and the caller's
// connected address when it belongs to the requested filter.
type Service struct {
	fetchers map[Filter]Fetcher
	stats    map[Filter]StatsSource
	seeds    map[Filter][]string
	source   AddressSource
	rdb      *redis.Client
	cacheTTL time.Duration
	log      *zap.Logger
}

func NewService(seeds map[Filter][]string, source AddressSource, rdb *redis.Client, cacheTTL time.Duration, log *zap.Logger) *Service {
	return &Service{
		fetchers: make(map[Filter]Fetcher),
		stats:    make(map[Filter]StatsSource),
		seeds:    seeds,
		source:   source,
		rdb:      rdb,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

func (s *Service) RegisterFetcher(filter Filter, f Fetcher) {
	s.fetchers[filter] = f
	if src, ok := f.(StatsSource); ok {
		s.stats[filter] = src
	}
}

func cacheKey(filter Filter) string { return "lb:" + string(filter) }

// Get returns the board for the filter, serving from the redis cache
// when possible. A connected address makes the board caller-specific,
// so those requests bypass the cache.
func (s *Service) Get(ctx context.Context, filter Filter, connected string) (*Board, error) {
	useCache := s.rdb != nil && connected == ""
	if useCache {
		raw, err := s.rdb.Get(ctx, cacheKey(filter)).Bytes()
		if err == nil {
			var board Board
			if err := json.Unmarshal(raw, &board); err == nil {
				return &board, nil
			}
			// Unreadable cache entry: rebuild below.
		}
	}

	board, err := s.Build(ctx, filter, connected)
	if err != nil {
		return nil, err
	}

	if useCache {
		if raw, err := json.Marshal(board); err == nil {
			if err := s.rdb.Set(ctx, cacheKey(filter), raw, s.cacheTTL).Err(); err != nil {
				s.log.Warn("leaderboard cache write failed", zap.String("filter", string(filter)), zap.Error(err))
			}
		}
	}
	return board, nil
}

// Build fetches every candidate's profile concurrently and assembles
// the ranked board. Addresses with no points (including fetch
// failures) are skipped rather than shown as zero rows.
func (s *Service) Build(ctx context.Context, filter Filter, connected string) (*Board, error) {
	fetcher, ok := s.fetchers[filter]
	if !ok {
		return nil, fmt.Errorf("no fetcher registered for filter %q", filter)
	}

	candidates := s.candidates(ctx, filter, connected)

	type result struct {
		address string
		profile chain.Profile
	}
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []result
	)
	for _, address := range candidates {
		wg.Add(1)
		go func(address string) {
			defer wg.Done()
			profile, err := fetcher.FetchProfile(ctx, address)
			if err != nil {
				s.log.Debug("leaderboard fetch skipped",
					zap.String("filter", string(filter)),
					zap.String("address", address),
					zap.Error(err))
				return
			}
			mu.Lock()
			results = append(results, result{address: address, profile: profile})
			mu.Unlock()
		}(address)
	}
	wg.Wait()

	entries := make([]Entry, 0, len(results))
	for _, r := range results {
		if r.profile.TotalPoints == 0 {
			continue
		}
		entries = append(entries, Entry{
			Address:       r.address,
			Display:       chain.DisplayAddress(r.address),
			Network:       filter,
			TotalPoints:   r.profile.TotalPoints,
			PointsDisplay: FormatCompact(r.profile.TotalPoints),
			CurrentStreak: r.profile.CurrentStreak,
			LongestStreak: r.profile.LongestStreak,
			Level:         r.profile.Level,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalPoints > entries[j].TotalPoints
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	board := &Board{
		Filter:    filter,
		Entries:   entries,
		Stats:     s.buildStats(ctx, filter, entries),
		FetchedAt: time.Now().UTC(),
	}
	return board, nil
}

// Merged builds one board spanning every network with a registered
// fetcher: the per-network entries are combined, re-sorted, and
// ranked across the whole set, with one stats block over the merged
// entries. Per-network caching still applies through Get.
func (s *Service) Merged(ctx context.Context, connected string) (*Board, error) {
	var entries []Entry
	built := 0
	for _, filter := range Filters() {
		if _, ok := s.fetchers[filter]; !ok {
			continue
		}
		board, err := s.Get(ctx, filter, connected)
		if err != nil {
			s.log.Warn("merged board skips network",
				zap.String("filter", string(filter)),
				zap.Error(err))
			continue
		}
		built++
		entries = append(entries, board.Entries...)
	}
	if built == 0 {
		return nil, fmt.Errorf("no network boards available")
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalPoints > entries[j].TotalPoints
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	stats := entryStats(entries)
	for _, filter := range Filters() {
		s.applyGlobalStats(ctx, filter, &stats)
	}

	return &Board{
		Filter:    FilterAll,
		Entries:   entries,
		Stats:     stats,
		FetchedAt: time.Now().UTC(),
	}, nil
}

func (s *Service) candidates(ctx context.Context, filter Filter, connected string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(address string) {
		if address == "" {
			return
		}
		if _, dup := seen[address]; dup {
			return
		}
		seen[address] = struct{}{}
		out = append(out, address)
	}

	for _, address := range s.seeds[filter] {
		add(address)
	}
	if s.source != nil {
		extra, err := s.source.Addresses(ctx, filter)
		if err != nil {
			s.log.Warn("address source failed", zap.String("filter", string(filter)), zap.Error(err))
		}
		for _, address := range extra {
			add(address)
		}
	}
	if matchesFilter(connected, filter) {
		add(connected)
	}
	return out
}

// matchesFilter reports whether an address belongs on the filter's
// board. An EVM address carries no network information in its text,
// so it matches either base filter; Stacks addresses match only
// their own network.
func matchesFilter(address string, filter Filter) bool {
	c := chain.Classify(address)
	switch filter {
	case FilterBaseMainnet, FilterBaseTestnet:
		return c.Family == chain.FamilyEVM
	case FilterStacksMainnet:
		return c.Family == chain.FamilyStacks && c.Network == chain.NetworkMainnet
	case FilterStacksTestnet:
		return c.Family == chain.FamilyStacks && c.Network == chain.NetworkTestnet
	default:
		return false
	}
}

func (s *Service) buildStats(ctx context.Context, filter Filter, entries []Entry) Stats {
	stats := entryStats(entries)
	s.applyGlobalStats(ctx, filter, &stats)
	return stats
}

func entryStats(entries []Entry) Stats {
	stats := Stats{TotalUsers: len(entries)}
	var levelSum int
	for _, e := range entries {
		stats.TotalPoints += e.TotalPoints
		if e.CurrentStreak > stats.MaxStreak {
			stats.MaxStreak = e.CurrentStreak
		}
		levelSum += e.Level
	}
	if len(entries) > 0 {
		stats.AvgLevel = math.Round(float64(levelSum)/float64(len(entries))*10) / 10
	}
	return stats
}

// applyGlobalStats folds in the contract's own totals where the chain
// exposes them. The Base contract tracks every participant, not just
// the addresses this board knows about; merging via max keeps the
// summary from undercounting either side.
func (s *Service) applyGlobalStats(ctx context.Context, filter Filter, stats *Stats) {
	src, ok := s.stats[filter]
	if !ok {
		return
	}
	users, points, err := src.GlobalStats(ctx)
	if err != nil {
		s.log.Debug("global stats unavailable", zap.String("filter", string(filter)), zap.Error(err))
		return
	}
	if users > stats.TotalUsers {
		stats.TotalUsers = users
	}
	if points > stats.TotalPoints {
		stats.TotalPoints = points
	}
}
