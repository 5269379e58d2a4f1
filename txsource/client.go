package txsource

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"golang.org/x/time/rate"
)

// Config configures a Client against a mempool.space-compatible REST API.
type Config struct {
	// BaseURL is the API's base URL, e.g. https://mempool.space/api.
	BaseURL string

	// RateLimit bounds outbound requests per second.
	RateLimit int

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// RetryAttempts is the number of retries after a failed request.
	RetryAttempts int

	// RetryDelay is the base delay between retries; later attempts back
	// off linearly from it.
	RetryDelay time.Duration
}

// DefaultConfig returns the package's default client configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:       "https://mempool.space/api",
		RateLimit:     10,
		Timeout:       30 * time.Second,
		RetryAttempts: 3,
		RetryDelay:    time.Second,
	}
}

// Client fetches confirmed transactions from a public indexer, supplying
// the prev_tx arguments C5's PSBT builders need, with client-side rate
// limiting and bounded retries.
type Client struct {
	cfg         *Config
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	cache       *txCache
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
		cache:       newTxCache(defaultCacheCapacity),
	}
}

// FetchTransaction retrieves a confirmed transaction by txid and
// reconstructs it as a *wire.MsgTx, suitable as a prev_tx/source_tx/
// staking_tx argument to the btcstaking package's PSBT builders. Results
// are kept in the Client's bounded in-memory LRU cache (at most
// defaultCacheCapacity transactions; the least recently used are evicted).
func (c *Client) FetchTransaction(ctx context.Context, txid chainhash.Hash) (*wire.MsgTx, error) {
	if tx, ok := c.cache.get(txid); ok {
		return tx, nil
	}

	respBody, err := c.doRequest(ctx, fmt.Sprintf("/tx/%s", txid.String()))
	if err != nil {
		return nil, err
	}

	var resp transactionResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("parsing transaction response: %w: %v",
			ErrMalformedResponse, err)
	}

	tx, err := toMsgTx(&resp)
	if err != nil {
		return nil, err
	}

	c.cache.put(txid, tx)

	return tx, nil
}

// toMsgTx reconstructs the wire-format transaction from the indexer's JSON
// view of it. Witness data is not part of this API's response and is left
// empty: every caller of FetchTransaction only needs outpoints, sequences,
// and output value/scripts, never input witnesses.
func toMsgTx(resp *transactionResponse) (*wire.MsgTx, error) {
	tx := wire.NewMsgTx(resp.Version)
	tx.LockTime = resp.Locktime

	for i, in := range resp.Vin {
		prevHash, err := chainhash.NewHashFromStr(in.TxID)
		if err != nil {
			return nil, fmt.Errorf(
				"parsing input %d txid %q: %w: %v",
				i, in.TxID, ErrMalformedResponse, err,
			)
		}
		txIn := wire.NewTxIn(wire.NewOutPoint(prevHash, in.Vout), nil, nil)
		txIn.Sequence = in.Sequence
		tx.AddTxIn(txIn)
	}

	for i, out := range resp.Vout {
		pkScript, err := hex.DecodeString(out.ScriptPubKey)
		if err != nil {
			return nil, fmt.Errorf(
				"decoding output %d script: %w: %v",
				i, ErrMalformedResponse, err,
			)
		}
		tx.AddTxOut(wire.NewTxOut(out.Value, pkScript))
	}

	return tx, nil
}

// doRequest performs a rate-limited GET with bounded, backing-off retries.
func (c *Client) doRequest(ctx context.Context, path string) ([]byte, error) {
	url := c.cfg.BaseURL + path

	var lastErr error
	for attempt := 0; attempt <= c.cfg.RetryAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("building request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			if attempt < c.cfg.RetryAttempts {
				time.Sleep(c.cfg.RetryDelay * time.Duration(attempt+1))
				continue
			}
			return nil, lastErr
		}

		body, err := readAndClose(resp)
		if err != nil {
			return nil, err
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, fmt.Errorf("%s: %w", txidFromPath(path), ErrNotFound)
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return body, nil
		case resp.StatusCode == http.StatusTooManyRequests,
			resp.StatusCode >= 500:
			lastErr = fmt.Errorf("server returned %d: %s",
				resp.StatusCode, body)
			if attempt < c.cfg.RetryAttempts {
				time.Sleep(c.cfg.RetryDelay * time.Duration(attempt+1))
				continue
			}
		default:
			return nil, fmt.Errorf("unexpected status %d: %s",
				resp.StatusCode, body)
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w",
		c.cfg.RetryAttempts+1, lastErr)
}

func readAndClose(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}

func txidFromPath(path string) string {
	const prefix = "/tx/"
	if len(path) > len(prefix) && path[:len(prefix)] == prefix {
		return path[len(prefix):]
	}
	return path
}
