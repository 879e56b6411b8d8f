// Package biscoint implements the exchange gateway against the Biscoint
// REST API (HMAC-signed POST endpoints, JSON envelope with a data field).
package biscoint

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/lzkill/bsc-arbitrage-check/internal/config"
	"github.com/lzkill/bsc-arbitrage-check/internal/gateway/exchange"
	"github.com/lzkill/bsc-arbitrage-check/internal/pkg/retry"
	"github.com/lzkill/bsc-arbitrage-check/internal/types"
)

const (
	offerEndpoint  = "v2/offer"
	tradesEndpoint = "v2/trades"
)

// Client wraps the Biscoint REST API interactions required by the
// reconciliation engine.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	apiKey     string
	apiSecret  string
	nowFn      func() time.Time
}

var _ exchange.Gateway = (*Client)(nil)

// NewClient constructs a Biscoint client from configuration.
func NewClient(cfg config.ExchangeConfig) (*Client, error) {
	raw := strings.TrimSpace(cfg.APIURL)
	if raw == "" {
		return nil, fmt.Errorf("exchange.api_url cannot be empty")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing exchange.api_url failed: %w", err)
	}
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     strings.TrimSpace(cfg.APIKey),
		apiSecret:  strings.TrimSpace(cfg.APISecret),
		nowFn:      time.Now,
	}, nil
}

// SetHTTPClient sets the HTTP client for testing.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

func (c *Client) Name() string { return "biscoint" }

// RecentTrades fetches the most recent confirmed executions.
func (c *Client) RecentTrades(ctx context.Context, limit int) ([]types.Execution, error) {
	body, err := c.post(ctx, tradesEndpoint, map[string]any{"length": limit})
	if err != nil {
		return nil, err
	}
	data := gjson.GetBytes(body, "data")
	if !data.IsArray() {
		return nil, fmt.Errorf("biscoint trades: unexpected response shape")
	}
	execs := make([]types.Execution, 0, len(data.Array()))
	for _, item := range data.Array() {
		offerID := item.Get("offerId").String()
		if offerID == "" {
			continue
		}
		date := item.Get("date").String()
		executedAt, err := time.Parse(time.RFC3339, date)
		if err != nil {
			return nil, fmt.Errorf("biscoint trades: bad date %q: %w", date, err)
		}
		execs = append(execs, types.Execution{OfferID: offerID, ExecutedAt: executedAt.UTC()})
	}
	return execs, nil
}

// Quote fetches a fresh executable offer for the requested amount.
func (c *Client) Quote(ctx context.Context, req exchange.QuoteRequest) (*types.Offer, error) {
	payload := map[string]any{
		"base":    req.Base,
		"amount":  req.Amount.String(),
		"op":      string(req.Op),
		"isQuote": req.IsQuote,
	}
	body, err := c.post(ctx, offerEndpoint, payload)
	if err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("%w: %s", exchange.ErrQuoteRejected, apiErr.message)
		}
		return nil, err
	}
	data := gjson.GetBytes(body, "data")
	if !data.Exists() {
		return nil, fmt.Errorf("biscoint offer: empty response")
	}
	offer, err := parseOffer(data)
	if err != nil {
		return nil, err
	}
	return offer, nil
}

func parseOffer(data gjson.Result) (*types.Offer, error) {
	baseAmount, err := decimal.NewFromString(data.Get("baseAmount").String())
	if err != nil {
		return nil, fmt.Errorf("biscoint offer: bad baseAmount: %w", err)
	}
	quoteAmount, err := decimal.NewFromString(data.Get("quoteAmount").String())
	if err != nil {
		return nil, fmt.Errorf("biscoint offer: bad quoteAmount: %w", err)
	}
	efPrice, err := decimal.NewFromString(data.Get("efPrice").String())
	if err != nil {
		return nil, fmt.Errorf("biscoint offer: bad efPrice: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339, data.Get("createdAt").String())
	if err != nil {
		return nil, fmt.Errorf("biscoint offer: bad createdAt: %w", err)
	}
	expiresAt, err := time.Parse(time.RFC3339, data.Get("expiresAt").String())
	if err != nil {
		return nil, fmt.Errorf("biscoint offer: bad expiresAt: %w", err)
	}
	return &types.Offer{
		ID:          uuid.New(),
		OfferID:     data.Get("offerId").String(),
		APIKeyID:    data.Get("apiKeyId").String(),
		Op:          types.OfferOp(data.Get("op").String()),
		Base:        data.Get("base").String(),
		Quote:       data.Get("quote").String(),
		BaseAmount:  baseAmount,
		QuoteAmount: quoteAmount,
		EfPrice:     efPrice,
		IsQuote:     data.Get("isQuote").Bool(),
		CreatedAt:   createdAt.UTC(),
		ExpiresAt:   expiresAt.UTC(),
		Raw:         json.RawMessage(data.Raw),
	}, nil
}

// post signs and sends one API call. Network failures and 5xx responses are
// marked transient so the retry wrapper replays them; 4xx responses are
// business rejections and surface as ErrQuoteRejected.
func (c *Client) post(ctx context.Context, endpoint string, payload map[string]any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	nonce := strconv.FormatInt(c.nowFn().UnixMicro(), 10)
	target := c.baseURL.JoinPath(endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("BSCNT-NONCE", nonce)
	req.Header.Set("BSCNT-APIKEY", c.apiKey)
	req.Header.Set("BSCNT-SIGN", c.sign(endpoint, nonce, body))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, retry.Transient(fmt.Errorf("biscoint %s: %w", endpoint, err))
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, retry.Transient(fmt.Errorf("biscoint %s: read body: %w", endpoint, err))
	}
	switch {
	case resp.StatusCode >= 500:
		return nil, retry.Transient(fmt.Errorf("biscoint %s: status %d", endpoint, resp.StatusCode))
	case resp.StatusCode >= 400:
		message := gjson.GetBytes(respBody, "message").String()
		return nil, &apiError{status: resp.StatusCode, message: message, endpoint: endpoint}
	}
	return respBody, nil
}

type apiError struct {
	status   int
	message  string
	endpoint string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("biscoint %s: %s (status %d)", e.endpoint, e.message, e.status)
}

// sign computes the request signature: HMAC-SHA384 over the endpoint, nonce
// and base64-encoded body.
func (c *Client) sign(endpoint, nonce string, body []byte) string {
	encoded := base64.StdEncoding.EncodeToString(body)
	mac := hmac.New(sha512.New384, []byte(c.apiSecret))
	mac.Write([]byte(endpoint + nonce + encoded))
	return hex.EncodeToString(mac.Sum(nil))
}
