// Package dispatch routes conversion requests to their backend and hands
// successful results to the speech queue.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/convertpro/internal/convert"
	"github.com/charmbracelet/convertpro/internal/speech"
	"github.com/charmbracelet/log"
)

// UnitConverter converts between physical units.
type UnitConverter interface {
	Convert(value float64, from, to string) convert.Result
}

// CurrencyConverter converts between currencies.
type CurrencyConverter interface {
	Convert(ctx context.Context, amount float64, from, to string) convert.Result
}

// Advisor answers free-text questions.
type Advisor interface {
	Ask(ctx context.Context, query string) convert.Result
}

// Router classifies spoken utterances.
type Router interface {
	Route(utterance string) (convert.Request, *convert.Failure)
}

// Speaker accepts utterances without blocking.
type Speaker interface {
	Enqueue(text string) error
}

// Dispatcher ties the backends, the router and the speech queue together.
type Dispatcher struct {
	units      UnitConverter
	currency   CurrencyConverter
	advisor    Advisor
	router     Router
	recognizer speech.Recognizer
	speaker    Speaker
	logger     *log.Logger

	speak atomic.Bool
	echo  bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithSpeaker sets where successful results are vocalized.
func WithSpeaker(s Speaker) Option {
	return func(d *Dispatcher) {
		d.speaker = s
	}
}

// WithRecognizer sets the voice input backend used by Listen.
func WithRecognizer(r speech.Recognizer) Option {
	return func(d *Dispatcher) {
		d.recognizer = r
	}
}

// WithEcho controls whether recognized phrases are read back ("You said ...").
func WithEcho(echo bool) Option {
	return func(d *Dispatcher) {
		d.echo = echo
	}
}

// WithLogger sets the dispatcher logger.
func WithLogger(l *log.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// New creates a dispatcher. Speech output is on when a speaker is given.
func New(units UnitConverter, currency CurrencyConverter, advisor Advisor, router Router, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		units:    units,
		currency: currency,
		advisor:  advisor,
		router:   router,
		logger:   log.Default().WithPrefix("dispatch"),
		echo:     true,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.speak.Store(d.speaker != nil)
	return d
}

// SetSpeak turns speech output on or off. It has no effect without a speaker.
func (d *Dispatcher) SetSpeak(on bool) {
	d.speak.Store(on && d.speaker != nil)
}

// Speaking reports whether results are currently vocalized.
func (d *Dispatcher) Speaking() bool {
	return d.speak.Load()
}

// Dispatch runs req against its backend. Successful results are also
// enqueued for speech.
func (d *Dispatcher) Dispatch(ctx context.Context, req convert.Request) convert.Result {
	var res convert.Result

	switch r := req.(type) {
	case convert.UnitRequest:
		res = d.units.Convert(r.Value, r.From, r.To)
	case convert.CurrencyRequest:
		res = d.currency.Convert(ctx, r.Amount, r.From, r.To)
	case convert.FreeTextRequest:
		res = d.advisor.Ask(ctx, r.Query)
	default:
		res = convert.Fail(convert.KindProviderError, "Unsupported request.", fmt.Errorf("unsupported request %T", req))
	}

	if res.OK() {
		d.logger.Debug("conversion succeeded", "request", req.Describe())
		for _, u := range utterances(res) {
			d.say(u)
		}
	} else {
		d.logger.Info("conversion failed", "kind", res.Failure.Kind, "err", res.Failure)
	}
	return res
}

// HandleUtterance reads the phrase back, routes it and dispatches it.
func (d *Dispatcher) HandleUtterance(ctx context.Context, utterance string) (convert.Request, convert.Result) {
	if d.echo && strings.TrimSpace(utterance) != "" {
		d.say("You said: " + utterance)
	}

	req, failure := d.router.Route(utterance)
	if failure != nil {
		d.logger.Info("utterance not routed", "kind", failure.Kind, "utterance", utterance)
		return nil, convert.Failed(failure)
	}
	return req, d.Dispatch(ctx, req)
}

// Listen captures one spoken phrase and handles it. The recognized phrase is
// returned alongside the result so it can be shown.
func (d *Dispatcher) Listen(ctx context.Context) (string, convert.Request, convert.Result) {
	if d.recognizer == nil {
		return "", nil, convert.Fail(convert.KindSpeechRequestError, "Voice input is not configured.", nil)
	}

	utterance, err := d.recognizer.Listen(ctx)
	if err != nil {
		d.logger.Warn("recognition failed", "err", err)
		if errors.Is(err, speech.ErrNotUnderstood) {
			return "", nil, convert.Fail(convert.KindSpeechRecognitionFailed, "Could not understand audio.", err)
		}
		return "", nil, convert.Fail(convert.KindSpeechRequestError,
			fmt.Sprintf("Could not request results from the speech service: %v", err), err)
	}

	req, res := d.HandleUtterance(ctx, utterance)
	return utterance, req, res
}

func (d *Dispatcher) say(text string) {
	if !d.speak.Load() {
		return
	}
	if err := d.speaker.Enqueue(text); err != nil {
		d.logger.Debug("utterance dropped", "err", err)
	}
}

// utterances returns what to say for a successful result. Language model
// answers are markdown; they are reduced to plain text and queued one
// sentence at a time.
func utterances(res convert.Result) []string {
	if res.IsText() {
		return speech.Sentences(speech.PlainText(res.Text))
	}
	return []string{res.Speech()}
}
