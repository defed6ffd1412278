package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/rustyeddy/papertrade/market"
)

// DefaultURL is CoinGecko's public API. The free tier needs no key but
// is rate limited, hence the client-side limiter.
const DefaultURL = "https://api.coingecko.com/api/v3"

// coinIDs maps asset symbols to CoinGecko coin ids.
var coinIDs = map[market.Symbol]string{
	market.BTC: "bitcoin",
	market.ETH: "ethereum",
	market.SOL: "solana",
}

// Client fetches live prices and OHLC history. Fetch failures are
// absorbed: GetQuote falls back to the last good quote marked Stale, so
// a flaky feed degrades to stale data instead of an error in the core.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        logrus.FieldLogger

	mu    sync.Mutex
	cache map[market.Symbol]market.Quote
}

type Option func(*Client)

// WithBaseURL points the client at a different endpoint (tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithRateLimit sets the request budget in requests per minute.
func WithRateLimit(perMinute int) Option {
	return func(c *Client) {
		if perMinute > 0 {
			c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
		}
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) { c.log = log }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		// ~30 requests/minute fits comfortably under the free tier.
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 1),
		log:     logrus.StandardLogger(),
		cache:   make(map[market.Symbol]market.Quote),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type simplePrice struct {
	USD       float64 `json:"usd"`
	USDChange float64 `json:"usd_24h_change"`
}

// GetQuote returns the current price and 24h change for a real asset.
// On fetch or decode failure the last known good quote is returned with
// Stale set; with no cached quote at all the error is returned.
func (c *Client) GetQuote(ctx context.Context, symbol market.Symbol) (market.Quote, error) {
	coinID, ok := coinIDs[symbol]
	if !ok {
		return market.Quote{}, fmt.Errorf("feed: no live feed for %q", symbol)
	}

	q, err := c.fetchQuote(ctx, symbol, coinID)
	if err != nil {
		c.log.WithError(err).WithField("asset", symbol).Warn("feed: quote fetch failed")
		return c.stale(symbol, err)
	}

	c.mu.Lock()
	c.cache[symbol] = q
	c.mu.Unlock()

	return q, nil
}

func (c *Client) fetchQuote(ctx context.Context, symbol market.Symbol, coinID string) (market.Quote, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return market.Quote{}, err
	}

	u := fmt.Sprintf("%s/simple/price?%s", c.baseURL, url.Values{
		"ids":                {coinID},
		"vs_currencies":      {"usd"},
		"include_24hr_change": {"true"},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return market.Quote{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return market.Quote{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return market.Quote{}, fmt.Errorf("feed: status %d", resp.StatusCode)
	}

	var body map[string]simplePrice
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return market.Quote{}, err
	}

	data, ok := body[coinID]
	if !ok || data.USD <= 0 {
		return market.Quote{}, fmt.Errorf("feed: no data for %s", coinID)
	}

	return market.Quote{
		Symbol:           symbol,
		Price:            data.USD,
		Change24h:        data.USD * data.USDChange / 100,
		ChangePercent24h: data.USDChange,
		Time:             time.Now(),
	}, nil
}

func (c *Client) stale(symbol market.Symbol, err error) (market.Quote, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if q, ok := c.cache[symbol]; ok {
		q.Stale = true
		return q, nil
	}
	return market.Quote{}, err
}

// GetCandles fetches OHLC history for the last n days. Rows come back
// as [timestamp_ms, open, high, low, close].
func (c *Client) GetCandles(ctx context.Context, symbol market.Symbol, days int) ([]market.Candle, error) {
	coinID, ok := coinIDs[symbol]
	if !ok {
		return nil, fmt.Errorf("feed: no live feed for %q", symbol)
	}
	if days <= 0 {
		days = 1
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/coins/%s/ohlc?%s", c.baseURL, coinID, url.Values{
		"vs_currency": {"usd"},
		"days":        {fmt.Sprint(days)},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed: status %d", resp.StatusCode)
	}

	var rows [][]float64
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, err
	}

	candles := make([]market.Candle, 0, len(rows))
	for _, row := range rows {
		if len(row) < 5 {
			continue
		}
		candles = append(candles, market.Candle{
			Time:  time.UnixMilli(int64(row[0])).UTC(),
			Open:  row[1],
			High:  row[2],
			Low:   row[3],
			Close: row[4],
		})
	}
	return candles, nil
}
