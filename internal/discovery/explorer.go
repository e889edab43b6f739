// Package discovery scrapes block-explorer pages for the contract's
// recent participants. The seeded leaderboard only knows a handful of
// addresses; scanning the explorer's transaction list widens the
// candidate set without running an indexer.
package discovery

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/pulse-network/backend/internal/chain"
	"github.com/pulse-network/backend/internal/chain/stacks"
)

var (
	// Word boundary keeps 66-char transaction hashes from matching
	// as 42-char addresses.
	evmAddrRE    = regexp.MustCompile(`0x[0-9a-fA-F]{40}\b`)
	stacksAddrRE = regexp.MustCompile(`S[PT][0-9A-Z]{38,40}`)
)

// ScanResult is one explorer page's worth of candidate addresses.
type ScanResult struct {
	Addresses []string  `json:"addresses"`
	FetchedAt time.Time `json:"fetched_at"`
}

type Scanner struct {
	httpClient *http.Client
	log        *zap.Logger
	maxRetries int
}

func NewScanner(timeoutMS, maxRetries int, log *zap.Logger) *Scanner {
	return &Scanner{
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutMS) * time.Millisecond,
		},
		log:        log,
		maxRetries: maxRetries,
	}
}

// ScanPage fetches one explorer page and extracts wallet addresses of
// the requested family.
func (s *Scanner) ScanPage(ctx context.Context, url string, family chain.Family) (*ScanResult, error) {
	var doc *goquery.Document
	var lastErr error

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(attempt+1) * 500 * time.Millisecond)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
			time.Sleep(time.Duration(attempt+1) * 500 * time.Millisecond)
			continue
		}

		doc, err = goquery.NewDocumentFromReader(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		lastErr = nil
		break
	}

	if lastErr != nil {
		return nil, lastErr
	}

	addrs := extractAddresses(doc, family)
	s.log.Debug("explorer page scanned",
		zap.String("url", url),
		zap.String("family", string(family)),
		zap.Int("addresses", len(addrs)))

	return &ScanResult{Addresses: addrs, FetchedAt: time.Now()}, nil
}

// extractAddresses pulls addresses out of the page. Address-shaped
// links are preferred; the page text is the fallback for explorers
// that render addresses as plain cells.
func extractAddresses(doc *goquery.Document, family chain.Family) []string {
	seen := make(map[string]struct{})

	collect := func(text string) {
		for _, match := range matchesFor(text, family) {
			if !valid(match, family) {
				continue
			}
			seen[match] = struct{}{}
		}
	}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok && strings.Contains(href, "address") {
			collect(href)
		}
		collect(strings.TrimSpace(sel.Text()))
	})
	if len(seen) == 0 {
		collect(doc.Text())
	}

	out := make([]string, 0, len(seen))
	for addr := range seen {
		out = append(out, addr)
	}
	sort.Strings(out)
	return out
}

func matchesFor(text string, family chain.Family) []string {
	switch family {
	case chain.FamilyEVM:
		return evmAddrRE.FindAllString(text, -1)
	case chain.FamilyStacks:
		return stacksAddrRE.FindAllString(strings.ToUpper(text), -1)
	default:
		return nil
	}
}

// valid weeds out regex matches that only look like addresses. Stacks
// matches carry a checksum, so they can be verified outright; EVM
// matches are re-checked against the structural classifier.
func valid(address string, family chain.Family) bool {
	switch family {
	case chain.FamilyEVM:
		return chain.Classify(address).Family == chain.FamilyEVM
	case chain.FamilyStacks:
		_, _, err := stacks.DecodeAddress(address)
		return err == nil
	default:
		return false
	}
}
