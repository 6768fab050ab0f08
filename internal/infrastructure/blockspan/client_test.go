package blockspan

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpozdnikin/nft-history/internal/domain"
)

type recordedRequest struct {
	endpoint string
	status   int
}

type observerStub struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (o *observerStub) ObserveRequest(endpoint string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.requests = append(o.requests, recordedRequest{endpoint: endpoint, status: status})
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *observerStub) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	observer := &observerStub{}
	client := NewClient(Config{BaseURL: server.URL, APIKey: "test-key"}, observer, zerolog.Nop())
	return client, observer
}

func TestFetchNFT(t *testing.T) {
	client, observer := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/nfts/contract/0xabc/token/7", r.URL.Path)
		assert.Equal(t, "eth-main", r.URL.Query().Get("chain"))
		assert.Equal(t, "test-key", r.Header.Get("X-API-KEY"))
		assert.Equal(t, "application/json", r.Header.Get("accept"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "7",
			"name": "Cool Cat #7",
			"token_name": "Cool Cats",
			"rarity_rank": 120,
			"cached_images": {"medium_500_500": "https://cdn/7.png"},
			"recent_price": {"price": "0.123456", "price_usd": "1234.5", "price_currency": "ETH"}
		}`))
	})

	nft, err := client.FetchNFT(context.Background(), "0xabc", "7", domain.ChainEthMain)
	require.NoError(t, err)
	require.NotNil(t, nft)
	assert.Equal(t, "Cool Cat #7", nft.Name.String())
	assert.Equal(t, "120", nft.RarityRank.String())
	assert.Equal(t, "https://cdn/7.png", nft.MediumImage())
	require.NotNil(t, nft.RecentPrice)
	assert.Equal(t, "ETH", nft.RecentPrice.PriceCurrency.String())
	assert.Equal(t, []recordedRequest{{endpoint: "nft", status: http.StatusOK}}, observer.requests)
}

func TestFetchTransfers(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transfers/contract/0xabc/token/7", r.URL.Path)
		assert.Equal(t, "poly-main", r.URL.Query().Get("chain"))
		assert.Equal(t, "25", r.URL.Query().Get("page_size"))
		assert.Equal(t, "test-key", r.Header.Get("X-API-KEY"))

		_, _ = w.Write([]byte(`{
			"chain": "poly-main",
			"total": 3,
			"cursor": null,
			"per_page": "25",
			"results": [
				{"from_address": "0x0", "to_address": "0x1", "transfer_type": "mint", "block_timestamp": "2022-01-01T00:00:00.000Z", "quantity": "1"},
				{"from_address": "0x1", "to_address": "0x2", "transfer_type": "sale", "block_timestamp": "2022-02-01T00:00:00.000Z", "quantity": "1"},
				{"from_address": "0x2", "to_address": "0x3", "transfer_type": "transfer", "block_timestamp": "2022-03-01T00:00:00.000Z", "quantity": "1"}
			]
		}`))
	})

	transfers, err := client.FetchTransfers(context.Background(), "0xabc", "7", domain.ChainPolyMain)
	require.NoError(t, err)
	require.Len(t, transfers, 3)
	assert.Equal(t, "mint", transfers[0].TransferType.String())
	assert.Equal(t, "sale", transfers[1].TransferType.String())
	assert.Equal(t, "0x3", transfers[2].ToAddress.String())
}

func TestFetchTransfersResultsShape(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantNil bool
	}{
		{name: "missing results", body: `{"chain":"eth-main"}`, wantNil: true},
		{name: "null results", body: `{"results":null}`, wantNil: true},
		{name: "empty results", body: `{"results":[]}`, wantNil: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			transfers, err := client.FetchTransfers(context.Background(), "0xabc", "1", domain.ChainEthMain)
			require.NoError(t, err)
			assert.Equal(t, tt.wantNil, transfers == nil)
			assert.Empty(t, transfers)
		})
	}
}

func TestFetchNFTBodyShape(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantNil bool
	}{
		{name: "null body", body: `null`, wantNil: true},
		{name: "empty object", body: `{}`, wantNil: false},
		{name: "record", body: `{"id":"1","name":"Cool Cat #1"}`, wantNil: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			nft, err := client.FetchNFT(context.Background(), "0xabc", "1", domain.ChainEthMain)
			require.NoError(t, err)
			assert.Equal(t, tt.wantNil, nft == nil)
		})
	}
}

func TestClientErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"message":"bad key"}`, wantErr: domain.ErrInvalidAPIKey},
		{name: "not found", status: http.StatusNotFound, body: `{"message":"not found"}`, wantErr: domain.ErrInvalidInput},
		{name: "bad request", status: http.StatusBadRequest, body: `{}`, wantErr: domain.ErrInvalidInput},
		{name: "server error", status: http.StatusInternalServerError, body: ``, wantErr: domain.ErrInvalidInput},
		{name: "malformed body", status: http.StatusOK, body: `{"id":`, wantErr: domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, observer := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			nft, err := client.FetchNFT(context.Background(), "0xabc", "1", domain.ChainEthMain)
			require.Error(t, err)
			assert.Nil(t, nft)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)

			transfers, err := client.FetchTransfers(context.Background(), "0xabc", "1", domain.ChainEthMain)
			require.Error(t, err)
			assert.Nil(t, transfers)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)

			require.Len(t, observer.requests, 2)
			assert.Equal(t, tt.status, observer.requests[1].status)
		})
	}
}

func TestClientNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	observer := &observerStub{}
	client := NewClient(Config{BaseURL: baseURL, APIKey: "k"}, observer, zerolog.Nop())

	_, err := client.FetchNFT(context.Background(), "0xabc", "1", domain.ChainEthMain)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.False(t, errors.Is(err, domain.ErrInvalidAPIKey))
	assert.Equal(t, []recordedRequest{{endpoint: "nft", status: 0}}, observer.requests)
}

func TestClientEscapesPathSegments(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/nfts/contract/0x a/token/1/2", r.URL.Path)
		assert.Equal(t, "/nfts/contract/0x%20a/token/1%2F2", r.URL.RawPath)
		_, _ = w.Write([]byte(`{"id":"1"}`))
	})

	_, err := client.FetchNFT(context.Background(), "0x a", "1/2", domain.ChainEthMain)
	require.NoError(t, err)
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(Config{}, nil, zerolog.Nop())
	assert.Equal(t, DefaultBaseURL, client.baseURL)
	assert.Equal(t, DefaultPageSize, client.pageSize)
	assert.NotNil(t, client.httpClient)
}
