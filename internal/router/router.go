// Package router turns a spoken utterance into a conversion request.
//
// The only structured command is
//
//	convert <value> <source> [ignored ...] <target>
//
// matched case-insensitively on the verb. Only the token right after the
// value and the final token name units or currencies; words in between
// ("to", "into", "in", or anything else) are ignored. A phrase that does not
// start with "convert" or has fewer than three words goes to the language
// model verbatim.
package router

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/convertpro/internal/convert"
	"golang.org/x/text/currency"
)

// DefaultCurrencies are the codes offered by the currency form.
var DefaultCurrencies = []string{
	"USD", "EUR", "GBP", "INR", "JPY", "CAD", "AUD", "PKR",
	"CNY", "SGD", "AED", "CHF", "MYR", "THB", "SAR", "NZD",
}

var commandPattern = regexp.MustCompile(
	`^(?i:convert)\s+(?P<value>\S+)\s+(?P<source>\S+)(?:\s+(?:\S+\s+)*?(?P<target>\S+))?$`,
)

var (
	valueGroup  = commandPattern.SubexpIndex("value")
	sourceGroup = commandPattern.SubexpIndex("source")
	targetGroup = commandPattern.SubexpIndex("target")
)

// Router classifies utterances.
type Router struct {
	currencies map[string]bool
	codes      []string
}

// New creates a router that treats codes as currencies. Every code must be a
// valid ISO 4217 currency.
func New(codes []string) (*Router, error) {
	if len(codes) == 0 {
		codes = DefaultCurrencies
	}

	r := &Router{currencies: make(map[string]bool, len(codes))}
	for _, c := range codes {
		unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(c)))
		if err != nil {
			return nil, fmt.Errorf("invalid currency code %q: %w", c, err)
		}
		if code := unit.String(); !r.currencies[code] {
			r.currencies[code] = true
			r.codes = append(r.codes, code)
		}
	}
	return r, nil
}

// IsCurrency reports whether code, in any case, is a configured currency.
func (r *Router) IsCurrency(code string) bool {
	return r.currencies[strings.ToUpper(code)]
}

// Currencies returns the configured codes in configuration order, without
// duplicates.
func (r *Router) Currencies() []string {
	return append([]string(nil), r.codes...)
}

// Route classifies utterance. A numeric parse failure in a convert command
// is returned as a NumericParseError failure and never falls back to the
// language model.
func (r *Router) Route(utterance string) (convert.Request, *convert.Failure) {
	// recognizers may emit any Unicode space; the grammar only knows ASCII
	trimmed := strings.Join(strings.Fields(utterance), " ")
	if trimmed == "" {
		return nil, convert.NewFailure(convert.KindSpeechRecognitionFailed, "Nothing was said.", nil)
	}

	m := commandPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return convert.FreeTextRequest{Query: utterance}, nil
	}

	raw := m[valueGroup]
	value, err := strconv.ParseFloat(raw, 64)
	if err == nil && (math.IsNaN(value) || math.IsInf(value, 0)) {
		err = fmt.Errorf("%q is not a finite number", raw)
	}
	if err != nil {
		return nil, convert.NewFailure(convert.KindNumericParseError,
			fmt.Sprintf("Invalid format: %q is not a number. Say \"convert 10 kg to pounds\".", raw), err)
	}

	source := m[sourceGroup]
	target := m[targetGroup]
	if target == "" {
		target = source
	}

	if r.IsCurrency(source) && r.IsCurrency(target) {
		return convert.CurrencyRequest{
			Amount: value,
			From:   strings.ToUpper(source),
			To:     strings.ToUpper(target),
		}, nil
	}
	return convert.UnitRequest{Value: value, From: source, To: target}, nil
}
