package paramsprovider

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"golang.org/x/time/rate"
)

// Config configures a Client against a Babylon-style network-info API.
type Config struct {
	// APIURL is the full network-info endpoint, e.g.
	// https://staking-api.babylonlabs.io/v2/network-info.
	APIURL string

	// RateLimit bounds outbound requests per second.
	RateLimit int

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration
}

// DefaultConfig returns the package's default client configuration.
func DefaultConfig() *Config {
	return &Config{
		APIURL:    "https://staking-api.babylonlabs.io/v2/network-info",
		RateLimit: 2,
		Timeout:   10 * time.Second,
	}
}

// Client fetches versioned staking parameters over HTTP.
type Client struct {
	cfg         *Config
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// NewClient constructs a Client. A nil cfg uses DefaultConfig.
func NewClient(cfg *Config) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	return &Client{
		cfg:         cfg,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimit),
	}
}

// FetchLatest retrieves the full parameter set from the API and returns
// the highest-versioned entry.
func (c *Client) FetchLatest(ctx context.Context) (*VersionedParams, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.APIURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching staking parameters: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("params API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parsing params response: %w", err)
	}

	latest := parsed.latest()
	if latest == nil {
		return nil, ErrNoParams
	}

	return latest, nil
}

// parseXOnlyPubKey decodes a hex-encoded public key, accepting both a
// 33-byte compressed encoding and a 32-byte x-only encoding, and always
// returns the 32-byte x-only form.
func parseXOnlyPubKey(hexStr string) ([]byte, error) {
	raw, err := hex.DecodeString(hexStr)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}

	switch len(raw) {
	case 33:
		parsed, err := btcec.ParsePubKey(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPubKeyHex, err)
		}
		return schnorr.SerializePubKey(parsed), nil
	case 32:
		if _, err := schnorr.ParsePubKey(raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPubKeyHex, err)
		}
		return raw, nil
	default:
		return nil, fmt.Errorf(
			"%w: expected 32 or 33 bytes, got %d",
			ErrInvalidPubKeyHex, len(raw),
		)
	}
}
