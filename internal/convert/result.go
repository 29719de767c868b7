package convert

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Payload tells which fields of a successful Result are meaningful.
type Payload int

const (
	// PayloadNone is the zero value, used by failed results.
	PayloadNone Payload = iota

	// PayloadNumeric results carry Value and Label.
	PayloadNumeric

	// PayloadText results carry Text.
	PayloadText
)

// Result is the outcome of a single conversion. Exactly one of the success
// payloads or Failure is meaningful.
type Result struct {
	Payload Payload

	// Value and Label are set for unit and currency conversions.
	Value float64
	Label string

	// Text is set for language model answers.
	Text string

	Failure *Failure
}

// Numeric returns a successful numeric result.
func Numeric(value float64, label string) Result {
	return Result{Payload: PayloadNumeric, Value: value, Label: label}
}

// Answer returns a successful free-text result.
func Answer(text string) Result {
	return Result{Payload: PayloadText, Text: text}
}

// Failed wraps a failure into a result.
func Failed(f *Failure) Result {
	return Result{Failure: f}
}

// Fail builds a failed result in one call.
func Fail(kind FailureKind, message string, cause error) Result {
	return Failed(NewFailure(kind, message, cause))
}

// OK reports whether the result carries a payload.
func (r Result) OK() bool {
	return r.Failure == nil
}

// Err returns the failure as an error, or nil.
func (r Result) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}

// IsText reports whether the result is a free-text answer.
func (r Result) IsText() bool {
	return r.OK() && r.Payload == PayloadText
}

// Display renders the result for the screen.
func (r Result) Display() string {
	switch {
	case r.Failure != nil:
		return r.Failure.Message
	case r.IsText():
		return r.Text
	default:
		return fmt.Sprintf("%s %s", FormatValue(r.Value, true), r.Label)
	}
}

// Speech renders the result as an utterance. Failures are not spoken.
func (r Result) Speech() string {
	switch {
	case r.Failure != nil:
		return ""
	case r.IsText():
		return r.Text
	default:
		return fmt.Sprintf("The result is %s %s", FormatValue(r.Value, false), r.Label)
	}
}

const (
	// decimals shown for values of magnitude one and above
	displayDecimals = 4

	// significant digits kept for values below one
	displaySignificant = 4

	// below this magnitude values switch to exponent notation
	maxDisplayDecimals = 12
)

// FormatValue rounds v for presentation: four decimals from one upwards,
// four significant digits below one. Thousands separators are added when
// commas is set.
func FormatValue(v float64, commas bool) string {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	decimals := displayDecimals
	if math.Abs(v) < 1 {
		decimals = displaySignificant - 1 - decimalExponent(v)
		if decimals > maxDisplayDecimals {
			return strconv.FormatFloat(v, 'g', displaySignificant, 64)
		}
	}

	// round first, so separators and trimming never cut digits off
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', decimals, 64), 64)
	if commas {
		return humanize.CommafWithDigits(rounded, decimals)
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

// decimalExponent returns the power of ten of v once rounded to
// displaySignificant digits.
func decimalExponent(v float64) int {
	s := strconv.FormatFloat(v, 'e', displaySignificant-1, 64)
	exp, _ := strconv.Atoi(s[strings.IndexByte(s, 'e')+1:])
	return exp
}
