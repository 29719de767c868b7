package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/convertpro/internal/advisor"
	"github.com/charmbracelet/convertpro/internal/currency"
	"github.com/charmbracelet/convertpro/internal/dispatch"
	"github.com/charmbracelet/convertpro/internal/router"
	"github.com/charmbracelet/convertpro/internal/speech"
	"github.com/charmbracelet/convertpro/internal/units"
	"github.com/charmbracelet/convertpro/utils"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Credentials are read from the environment, optionally seeded from a .env
// file. Either key may be empty; the matching backend then reports a
// configuration failure instead of calling out.
type Credentials struct {
	GroqAPIKey         string `env:"GROQ_API_KEY"`
	ExchangeRateAPIKey string `env:"EXCHANGE_RATE_API_KEY"`
}

func loadCredentials() (Credentials, error) {
	if path := viper.GetString("env_file"); path != "" {
		// existing variables win over the file
		if err := godotenv.Load(utils.ExpandPath(path)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Warn("Could not load env file", "path", path, "err", err)
		}
	}

	creds, err := env.ParseAs[Credentials]()
	if err != nil {
		return Credentials{}, fmt.Errorf("error parsing credentials: %w", err)
	}
	return creds, nil
}

// app holds the long-lived services of one run.
type app struct {
	dispatcher *dispatch.Dispatcher
	router     *router.Router
	queue      *speech.Queue
	cache      currency.RateCache
}

func newApp(recognizer speech.Recognizer) (*app, error) {
	creds, err := loadCredentials()
	if err != nil {
		return nil, err
	}

	r, err := router.New(viper.GetStringSlice("currency.codes"))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	a := &app{router: r, cache: newRateCache()}

	unitConverter := units.NewConverter(units.WithLogger(log.Default().WithPrefix("units")))
	currencyConverter := currency.NewConverter(currency.Config{
		APIKey:            creds.ExchangeRateAPIKey,
		BaseURL:           viper.GetString("currency.base_url"),
		Timeout:           viper.GetDuration("currency.timeout"),
		RequestsPerMinute: viper.GetInt("currency.requests_per_minute"),
		Cache:             a.cache,
	})
	advisorClient := advisor.NewClient(advisor.Config{
		APIKey:            creds.GroqAPIKey,
		Endpoint:          viper.GetString("advisor.endpoint"),
		Model:             viper.GetString("advisor.model"),
		Timeout:           viper.GetDuration("advisor.timeout"),
		RequestsPerMinute: viper.GetInt("advisor.requests_per_minute"),
	})

	opts := []dispatch.Option{
		dispatch.WithEcho(viper.GetBool("speech.echo")),
		dispatch.WithRecognizer(recognizer),
	}

	a.queue, err = newSpeechQueue()
	if err != nil {
		_ = a.cache.Close()
		return nil, err
	}
	if a.queue != nil {
		opts = append(opts, dispatch.WithSpeaker(a.queue))
	}

	a.dispatcher = dispatch.New(unitConverter, currencyConverter, advisorClient, r, opts...)
	a.dispatcher.SetSpeak(speak)

	log.Debug("application ready",
		"engine", engine,
		"speak", a.dispatcher.Speaking(),
		"currencies", len(r.Currencies()),
		"model", advisorClient.Model(),
	)
	return a, nil
}

// newSpeechQueue starts the speech worker for the configured engine. It
// returns nil when speech is off for good: engine none, or an engine whose
// tools are missing.
func newSpeechQueue() (*speech.Queue, error) {
	if engine == speech.EngineNone {
		return nil, nil
	}

	speaker, err := speech.NewSpeaker(speech.SpeakerConfig{
		Engine:   engine,
		Voice:    viper.GetString("speech.voice"),
		Rate:     viper.GetInt("speech.rate"),
		Language: viper.GetString("speech.gtts.language"),
		Slow:     viper.GetBool("speech.gtts.slow"),
	})
	if errors.Is(err, speech.ErrEngineNotAvailable) {
		log.Warn("Speech output disabled", "engine", engine, "err", err)
		return nil, nil
	}
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return speech.NewQueue(speaker, speech.WithObserver(func(text string, err error) {
		if err == nil {
			log.Debug("spoke", "chars", len(text))
		}
	})), nil
}

// newRateCache picks Redis when an address is configured, memory otherwise.
func newRateCache() currency.RateCache {
	ttl := viper.GetDuration("currency.cache.ttl")
	if ttl <= 0 {
		return noCache{}
	}

	if addr := viper.GetString("currency.cache.redis.addr"); addr != "" {
		c, err := currency.NewRedisCache(currency.RedisConfig{
			Addr:     addr,
			Password: viper.GetString("currency.cache.redis.password"),
			DB:       viper.GetInt("currency.cache.redis.db"),
			TTL:      ttl,
		})
		if err == nil {
			log.Debug("Using redis rate cache", "addr", addr)
			return c
		}
		log.Warn("Could not connect to redis, caching rates in memory", "addr", addr, "err", err)
	}
	return currency.NewMemoryCache(viper.GetInt("currency.cache.size"), ttl)
}

// Close waits for queued speech, then releases the cache.
func (a *app) Close() error {
	var errs []error
	if a.queue != nil {
		ctx, cancel := context.WithTimeout(context.Background(), viper.GetDuration("speech.shutdown_timeout"))
		defer cancel()
		if err := a.queue.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.cache.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// noCache disables rate caching.
type noCache struct{}

func (noCache) Get(context.Context, string) (currency.Rates, bool) { return nil, false }
func (noCache) Put(context.Context, string, currency.Rates) error { return nil }
func (noCache) Close() error { return nil }
