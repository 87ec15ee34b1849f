// Package oanda fetches XAUUSD candles from the OANDA v3 REST API. It is
// the market-data collaborator: the core only ever sees the time-ordered,
// deduplicated candles this client returns.
package oanda

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"GoldDesk/internal/domain/models"
	"GoldDesk/internal/domain/repository"
	xhttp "GoldDesk/pkg/http"
	applogger "GoldDesk/pkg/logger"
)

// Config holds OANDA API settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Instrument  string
	Granularity string
	Price       string // "M" for mid candles
	Timeout     time.Duration
	PageSize    int
}

// Client implements repository.MarketSource over the instrument candles
// endpoint, with cursor pagination.
type Client struct {
	cfg    Config
	http   *xhttp.Client
	logger *applogger.Logger
}

var _ repository.MarketSource = (*Client)(nil)

func NewClient(cfg Config, logger *applogger.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api-fxpractice.oanda.com"
	}
	if cfg.Granularity == "" {
		cfg.Granularity = "M5"
	}
	if cfg.Price == "" {
		cfg.Price = "M"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.PageSize <= 0 || cfg.PageSize > 5000 {
		cfg.PageSize = 5000
	}
	return &Client{
		cfg:    cfg,
		http:   xhttp.NewClient(xhttp.WithTimeout(cfg.Timeout)),
		logger: logger,
	}
}

type candlesResponse struct {
	Candles []struct {
		Complete bool   `json:"complete"`
		Time     string `json:"time"`
		Volume   int64  `json:"volume"`
		Mid      struct {
			O string `json:"o"`
			H string `json:"h"`
			L string `json:"l"`
			C string `json:"c"`
		} `json:"mid"`
	} `json:"candles"`
}

func (c *Client) endpoint() string {
	return fmt.Sprintf("%s/v3/instruments/%s/candles", c.cfg.BaseURL, c.cfg.Instrument)
}

func (c *Client) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
}

// Fetch pages through [from, to), keeping only completed candles. After the
// first page the cursor advances one microsecond past the last candle and
// includeFirst flips off, so page edges never duplicate.
func (c *Client) Fetch(ctx context.Context, from, to time.Time) ([]models.Candle, error) {
	cursor := from.UTC()
	to = to.UTC()
	includeFirst := true

	var out []models.Candle
	for cursor.Before(to) {
		var resp candlesResponse
		err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
			Method:  xhttp.MethodGet,
			URL:     c.endpoint(),
			Headers: c.headers(),
			QueryParams: map[string][]string{
				"from":         {cursor.Format(time.RFC3339)},
				"to":           {to.Format(time.RFC3339)},
				"granularity":  {c.cfg.Granularity},
				"price":        {c.cfg.Price},
				"count":        {strconv.Itoa(c.cfg.PageSize)},
				"includeFirst": {strconv.FormatBool(includeFirst)},
			},
		}, &resp)
		if err != nil {
			return nil, fmt.Errorf("oanda fetch: %w", err)
		}
		if len(resp.Candles) == 0 {
			break
		}

		var lastTime time.Time
		for _, raw := range resp.Candles {
			if !raw.Complete {
				continue
			}
			candle, err := c.parseCandle(raw.Time, raw.Mid.O, raw.Mid.H, raw.Mid.L, raw.Mid.C, raw.Volume)
			if err != nil {
				if c.logger != nil {
					c.logger.Warn("oanda: dropping malformed candle", applogger.Error(err))
				}
				continue
			}
			out = append(out, candle)
			lastTime = candle.Time
		}
		if lastTime.IsZero() {
			break
		}
		cursor = lastTime.Add(time.Microsecond)
		includeFirst = false
	}
	return out, nil
}

// Latest returns the most recent completed candles.
func (c *Client) Latest(ctx context.Context, count int) ([]models.Candle, error) {
	if count <= 0 {
		count = 1
	}
	var resp candlesResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     c.endpoint(),
		Headers: c.headers(),
		QueryParams: map[string][]string{
			"count":       {strconv.Itoa(count)},
			"granularity": {c.cfg.Granularity},
			"price":       {c.cfg.Price},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("oanda latest: %w", err)
	}
	out := make([]models.Candle, 0, len(resp.Candles))
	for _, raw := range resp.Candles {
		if !raw.Complete {
			continue
		}
		candle, err := c.parseCandle(raw.Time, raw.Mid.O, raw.Mid.H, raw.Mid.L, raw.Mid.C, raw.Volume)
		if err != nil {
			continue
		}
		out = append(out, candle)
	}
	return out, nil
}

func (c *Client) parseCandle(ts, o, h, l, cl string, volume int64) (models.Candle, error) {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return models.Candle{}, fmt.Errorf("parse time %q: %w", ts, err)
	}
	open, err1 := strconv.ParseFloat(o, 64)
	high, err2 := strconv.ParseFloat(h, 64)
	low, err3 := strconv.ParseFloat(l, 64)
	closep, err4 := strconv.ParseFloat(cl, 64)
	for _, err := range []error{err1, err2, err3, err4} {
		if err != nil {
			return models.Candle{}, fmt.Errorf("parse price: %w", err)
		}
	}
	candle := models.Candle{
		Time: t.UTC(), Open: open, High: high, Low: low, Close: closep,
		Volume: float64(volume),
	}
	if err := candle.Validate(); err != nil {
		return models.Candle{}, err
	}
	return candle, nil
}
