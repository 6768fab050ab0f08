package blockspan

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/kpozdnikin/nft-history/internal/domain"
)

const (
	DefaultBaseURL  = "https://api.blockspan.com/v1"
	DefaultPageSize = 25

	apiKeyHeader = "X-API-KEY"

	endpointNFT       = "nft"
	endpointTransfers = "transfers"
)

// Observer receives one call per upstream request. Status is 0 when no
// response was received.
type Observer interface {
	ObserveRequest(endpoint string, status int, elapsed time.Duration)
}

type Config struct {
	BaseURL  string
	APIKey   string
	PageSize int
	// HTTPClient defaults to a client without a timeout; the request context
	// is the only deadline.
	HTTPClient *http.Client
}

type Client struct {
	baseURL    string
	apiKey     string
	pageSize   int
	httpClient *http.Client
	observer   Observer
	log        zerolog.Logger
}

func NewClient(cfg Config, observer Observer, log zerolog.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		pageSize:   pageSize,
		httpClient: httpClient,
		observer:   observer,
		log:        log.With().Str("component", "blockspan").Logger(),
	}
}

// TransferPage is the body of the transfers endpoint.
type TransferPage struct {
	Chain   string            `json:"chain"`
	Total   int               `json:"total"`
	Cursor  domain.Scalar     `json:"cursor"`
	PerPage domain.Scalar     `json:"per_page"`
	Results []domain.Transfer `json:"results"`
}

// FetchNFT looks up the metadata of a single token. A null body yields a nil
// record without an error.
func (c *Client) FetchNFT(ctx context.Context, contract, tokenID string, chain domain.Chain) (*domain.NFT, error) {
	query := url.Values{}
	query.Set("chain", chain.String())

	var nft *domain.NFT
	if err := c.get(ctx, endpointNFT, tokenPath("nfts", contract, tokenID), query, &nft); err != nil {
		return nil, err
	}
	return nft, nil
}

// FetchTransfers returns the first page of transfers of a token in the order
// the provider sent them. A body without results yields a nil slice.
func (c *Client) FetchTransfers(ctx context.Context, contract, tokenID string, chain domain.Chain) ([]domain.Transfer, error) {
	query := url.Values{}
	query.Set("chain", chain.String())
	query.Set("page_size", strconv.Itoa(c.pageSize))

	var page TransferPage
	if err := c.get(ctx, endpointTransfers, tokenPath("transfers", contract, tokenID), query, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

func tokenPath(resource, contract, tokenID string) string {
	return fmt.Sprintf("/%s/contract/%s/token/%s", resource, url.PathEscape(contract), url.PathEscape(tokenID))
}

func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values, out interface{}) error {
	reqURL := c.baseURL + path + "?" + query.Encode()
	log := c.log.With().Str("endpoint", endpoint).Str("path", path).Logger()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return errors.Wrapf(domain.ErrInvalidInput, "creating request: %v", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(endpoint, 0, start)
		log.Warn().Err(err).Msg("blockspan request failed")
		return errors.Wrapf(domain.ErrInvalidInput, "requesting %s: %v", endpoint, err)
	}
	defer resp.Body.Close()
	c.observe(endpoint, resp.StatusCode, start)

	if resp.StatusCode == http.StatusUnauthorized {
		log.Warn().Int("status", resp.StatusCode).Msg("blockspan rejected api key")
		return errors.Wrapf(domain.ErrInvalidAPIKey, "requesting %s", endpoint)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn().Int("status", resp.StatusCode).Msg("unexpected blockspan status")
		return errors.Wrapf(domain.ErrInvalidInput, "unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Warn().Err(err).Msg("undecodable blockspan response")
		return errors.Wrapf(domain.ErrInvalidInput, "decoding %s response: %v", endpoint, err)
	}

	log.Debug().Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("blockspan request done")
	return nil
}

func (c *Client) observe(endpoint string, status int, start time.Time) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveRequest(endpoint, status, time.Since(start))
}
