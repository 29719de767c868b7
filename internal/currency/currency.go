// Package currency converts amounts between currencies using the latest
// published rates of exchangerate-api.com.
package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/convertpro/internal/convert"
	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the exchangerate-api v6 endpoint.
const DefaultBaseURL = "https://v6.exchangerate-api.com"

const (
	msgKeyMissing = "API key missing."
	msgInvalid    = "Invalid currency conversion."
)

// Config holds configuration for the currency converter.
type Config struct {
	// APIKey for exchangerate-api.com. Without it every conversion fails
	// with a configuration error and no request is sent.
	APIKey string

	// BaseURL of the provider, defaults to DefaultBaseURL.
	BaseURL string

	// Timeout for a single lookup, defaults to 10s.
	Timeout time.Duration

	// RequestsPerMinute limits calls to the provider, defaults to 30.
	RequestsPerMinute int

	// Cache of rate tables, optional.
	Cache RateCache

	// HTTPClient overrides the client used for lookups.
	HTTPClient *http.Client

	Logger *log.Logger
}

// Converter converts amounts between currencies.
type Converter struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      RateCache
	logger     *log.Logger
}

// latestResponse is the subset of the provider payload we read.
type latestResponse struct {
	Result          string             `json:"result"`
	ErrorType       string             `json:"error-type"`
	BaseCode        string             `json:"base_code"`
	ConversionRates map[string]float64 `json:"conversion_rates"`
}

// NewConverter creates a currency converter.
func NewConverter(cfg Config) *Converter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = 30
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default().WithPrefix("currency")
	}

	return &Converter{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: cfg.HTTPClient,
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), cfg.RequestsPerMinute),
		cache:      cfg.Cache,
		logger:     cfg.Logger,
	}
}

// Convert converts amount from one currency to another using the latest rate
// anchored at from. The converted amount is rounded to two decimals.
func (c *Converter) Convert(ctx context.Context, amount float64, from, to string) convert.Result {
	if c.apiKey == "" {
		return convert.Fail(convert.KindCurrencyConfigMissing, msgKeyMissing, nil)
	}

	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))

	rates, failure := c.rates(ctx, from)
	if failure != nil {
		return convert.Failed(failure)
	}

	r, ok := rates[to]
	if !ok || r == 0 {
		return convert.Fail(convert.KindCurrencyLookupFailed, msgInvalid,
			fmt.Errorf("no %s rate for base %s", to, from))
	}

	return convert.Numeric(round2(amount*r), to)
}

func (c *Converter) rates(ctx context.Context, base string) (Rates, *convert.Failure) {
	if c.cache != nil {
		if rates, ok := c.cache.Get(ctx, base); ok {
			c.logger.Debug("rates from cache", "base", base)
			return rates, nil
		}
	}

	rates, failure := c.fetch(ctx, base)
	if failure != nil {
		return nil, failure
	}

	if c.cache != nil {
		if err := c.cache.Put(ctx, base, rates); err != nil {
			c.logger.Warn("could not cache rates", "base", base, "err", err)
		}
	}
	return rates, nil
}

func (c *Converter) fetch(ctx context.Context, base string) (Rates, *convert.Failure) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, transportFailure(fmt.Errorf("rate limit wait cancelled: %w", err))
	}

	endpoint := fmt.Sprintf("%s/v6/%s/latest/%s", c.baseURL, url.PathEscape(c.apiKey), url.PathEscape(base))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, transportFailure(fmt.Errorf("failed to create request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// the URL carries the API key, keep it out of messages and logs
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		c.logger.Warn("rate lookup failed", "base", base, "err", err)
		return nil, transportFailure(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	var payload latestResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&payload)

	if resp.StatusCode != http.StatusOK {
		return nil, convert.NewFailure(convert.KindCurrencyLookupFailed, msgInvalid,
			fmt.Errorf("provider returned %s (%s)", resp.Status, payload.ErrorType))
	}
	if decodeErr != nil {
		return nil, convert.NewFailure(convert.KindCurrencyLookupFailed, msgInvalid,
			fmt.Errorf("failed to decode response: %w", decodeErr))
	}
	if payload.ConversionRates == nil {
		return nil, convert.NewFailure(convert.KindCurrencyLookupFailed, msgInvalid,
			errors.New("response has no conversion_rates"))
	}

	return Rates(payload.ConversionRates), nil
}

func transportFailure(err error) *convert.Failure {
	return convert.NewFailure(convert.KindCurrencyTransportError, fmt.Sprintf("Error: %v", err), err)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
