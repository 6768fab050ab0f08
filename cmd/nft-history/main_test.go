package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainsCommand(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, newApp(&out).Run([]string{"nft-history", "chains"}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{"eth-main", "arbitrum-main", "optimism-main", "poly-main", "bsc-main", "eth-goerli"}, lines)
}

func TestLookupCommand(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cli-key", r.Header.Get("X-API-KEY"))
		switch {
		case strings.HasPrefix(r.URL.Path, "/nfts/"):
			_, _ = w.Write([]byte(`{"id":"7","name":"Cool Cat #7","recent_price":{"price_usd":"1234.5"}}`))
		case strings.HasPrefix(r.URL.Path, "/transfers/"):
			_, _ = w.Write([]byte(`{"results":[{"from_address":"0x0","to_address":"0x1","transfer_type":"mint"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(upstream.Close)

	t.Chdir(t.TempDir())
	t.Setenv("BLOCKSPAN_BASE_URL", upstream.URL)
	t.Setenv("BLOCKSPAN_API_KEY", "cli-key")
	t.Setenv("LOG_LEVEL", "disabled")

	var out bytes.Buffer
	err := newApp(&out).Run([]string{"nft-history", "--config", "missing.yaml", "lookup", "--contract", "0xabc", "--token-id", "7"})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Cool Cat #7")
	assert.Contains(t, text, "Image not available.")
	assert.Contains(t, text, "Recent Price USD: 1234.50")
	assert.Contains(t, text, "mint")
}

func TestLookupCommandRequiresFlags(t *testing.T) {
	var out bytes.Buffer
	err := newApp(&out).Run([]string{"nft-history", "lookup", "--contract", "0xabc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token-id")
}
