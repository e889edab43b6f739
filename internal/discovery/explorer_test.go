package discovery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/pulse-network/backend/internal/chain"
)

const explorerPage = `
<html><body>
<table>
<tr>
  <td><a href="/address/0xcF0A164b64b92Fa6262e312cDB60a12c302e8F1c">0xcF0A...8F1c</a></td>
  <td><a href="/tx/0xdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef">tx</a></td>
</tr>
<tr>
  <td><a href="/address/0x22E7AA46aDDF743c99322212852dB2FA17b404b2">0x22E7...04b2</a></td>
  <td><a href="/address/0xcF0A164b64b92Fa6262e312cDB60a12c302e8F1c">repeat</a></td>
</tr>
<tr>
  <td><a href="/address/SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7">SP2J6Z...9EJ7</a></td>
  <td><a href="/address/SP0000000000000000000000000000000000000000">bad checksum</a></td>
</tr>
</table>
</body></html>`

func docFrom(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func TestExtractAddressesEVM(t *testing.T) {
	got := extractAddresses(docFrom(t, explorerPage), chain.FamilyEVM)
	want := []string{
		"0x22E7AA46aDDF743c99322212852dB2FA17b404b2",
		"0xcF0A164b64b92Fa6262e312cDB60a12c302e8F1c",
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("address %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExtractAddressesStacksVerifiesChecksum(t *testing.T) {
	got := extractAddresses(docFrom(t, explorerPage), chain.FamilyStacks)
	if len(got) != 1 || got[0] != "SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7" {
		t.Fatalf("got %v, want only the checksum-valid address", got)
	}
}

func TestExtractAddressesFallsBackToPageText(t *testing.T) {
	page := `<html><body><pre>from 0xcF0A164b64b92Fa6262e312cDB60a12c302e8F1c to contract</pre></body></html>`
	got := extractAddresses(docFrom(t, page), chain.FamilyEVM)
	if len(got) != 1 {
		t.Fatalf("got %v, want one address from page text", got)
	}
}

func TestScanPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(explorerPage))
	}))
	defer srv.Close()

	s := NewScanner(5000, 0, zap.NewNop())
	res, err := s.ScanPage(context.Background(), srv.URL, chain.FamilyEVM)
	if err != nil {
		t.Fatalf("ScanPage: %v", err)
	}
	if len(res.Addresses) != 2 {
		t.Errorf("got %d addresses, want 2", len(res.Addresses))
	}
	if res.FetchedAt.IsZero() {
		t.Error("FetchedAt not set")
	}
}

func TestScanPageRetriesThenFails(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := NewScanner(5000, 2, zap.NewNop())
	if _, err := s.ScanPage(context.Background(), srv.URL, chain.FamilyEVM); err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if hits != 3 {
		t.Errorf("server hit %d times, want 3", hits)
	}
}
