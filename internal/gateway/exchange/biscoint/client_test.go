package biscoint

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/lzkill/bsc-arbitrage-check/internal/config"
	"github.com/lzkill/bsc-arbitrage-check/internal/gateway/exchange"
	"github.com/lzkill/bsc-arbitrage-check/internal/pkg/retry"
	"github.com/lzkill/bsc-arbitrage-check/internal/types"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(config.ExchangeConfig{
		APIURL:         server.URL,
		APIKey:         "test-key",
		APISecret:      "test-secret",
		TimeoutSeconds: 5,
	})
	require.NoError(t, err)
	return client
}

func TestRecentTrades(t *testing.T) {
	var gotPath string
	var gotHeaders http.Header
	var gotBody []byte
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotHeaders = r.Header.Clone()
		gotBody, _ = io.ReadAll(r.Body)
		fmt.Fprint(w, `{"message":"","data":[
			{"offerId":"of-1","date":"2026-01-10T12:00:00Z","op":"buy"},
			{"offerId":"of-2","date":"2026-01-10T12:05:00Z","op":"sell"}
		]}`)
	})

	execs, err := client.RecentTrades(context.Background(), 20)
	require.NoError(t, err)
	require.Len(t, execs, 2)
	assert.Equal(t, "of-1", execs[0].OfferID)
	assert.Equal(t, time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC), execs[0].ExecutedAt)
	assert.Equal(t, "of-2", execs[1].OfferID)

	assert.Equal(t, "/v2/trades", gotPath)
	assert.Equal(t, int64(20), gjson.GetBytes(gotBody, "length").Int())

	// The signature must be HMAC-SHA384 over endpoint + nonce + base64(body).
	assert.Equal(t, "test-key", gotHeaders.Get("BSCNT-APIKEY"))
	nonce := gotHeaders.Get("BSCNT-NONCE")
	require.NotEmpty(t, nonce)
	mac := hmac.New(sha512.New384, []byte("test-secret"))
	mac.Write([]byte("v2/trades" + nonce + base64.StdEncoding.EncodeToString(gotBody)))
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), gotHeaders.Get("BSCNT-SIGN"))
}

func TestQuote(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/offer", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "BTC", gjson.GetBytes(body, "base").String())
		assert.Equal(t, "sell", gjson.GetBytes(body, "op").String())
		assert.Equal(t, "0.5", gjson.GetBytes(body, "amount").String())
		fmt.Fprint(w, `{"message":"","data":{
			"offerId":"of-9",
			"apiKeyId":"ak-1",
			"base":"BTC","quote":"BRL","op":"sell",
			"baseAmount":"0.5","quoteAmount":"150000","efPrice":"300000",
			"isQuote":false,
			"createdAt":"2026-01-10T12:00:00Z",
			"expiresAt":"2026-01-10T12:00:15Z"
		}}`)
	})

	offer, err := client.Quote(context.Background(), exchange.QuoteRequest{
		Base:   "BTC",
		Amount: decimal.RequireFromString("0.5"),
		Op:     types.OfferOpSell,
	})
	require.NoError(t, err)
	assert.Equal(t, "of-9", offer.OfferID)
	assert.Equal(t, types.OfferOpSell, offer.Op)
	assert.True(t, offer.EfPrice.Equal(decimal.RequireFromString("300000")))
	assert.True(t, offer.BaseAmount.Equal(decimal.RequireFromString("0.5")))
	assert.Equal(t, time.Date(2026, 1, 10, 12, 0, 15, 0, time.UTC), offer.ExpiresAt)
	assert.NotEmpty(t, offer.Raw)
}

func TestQuote_RejectionIsNotTransient(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"message":"Invalid amount"}`)
	})

	_, err := client.Quote(context.Background(), exchange.QuoteRequest{
		Base:   "BTC",
		Amount: decimal.RequireFromString("0.000001"),
		Op:     types.OfferOpSell,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, exchange.ErrQuoteRejected)
	assert.False(t, retry.IsTransient(err))
	assert.Contains(t, err.Error(), "Invalid amount")
}

func TestServerErrorsAreTransient(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.RecentTrades(context.Background(), 10)
	require.Error(t, err)
	assert.True(t, retry.IsTransient(err))

	_, err = client.Quote(context.Background(), exchange.QuoteRequest{
		Base:   "BTC",
		Amount: decimal.RequireFromString("1"),
		Op:     types.OfferOpSell,
	})
	require.Error(t, err)
	assert.True(t, retry.IsTransient(err))
	assert.NotErrorIs(t, err, exchange.ErrQuoteRejected)
}
