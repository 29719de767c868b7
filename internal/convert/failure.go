package convert

import (
	"errors"
	"fmt"
)

// FailureKind identifies why a conversion did not produce a value.
type FailureKind string

const (
	// Unit conversion
	KindDimensionalMismatch FailureKind = "DIMENSIONAL_MISMATCH"
	KindUnknownUnit         FailureKind = "UNKNOWN_UNIT"

	// Currency conversion
	KindCurrencyConfigMissing  FailureKind = "CURRENCY_CONFIG_MISSING"
	KindCurrencyLookupFailed   FailureKind = "CURRENCY_LOOKUP_FAILED"
	KindCurrencyTransportError FailureKind = "CURRENCY_TRANSPORT_ERROR"

	// Voice input
	KindSpeechRecognitionFailed FailureKind = "SPEECH_RECOGNITION_FAILED"
	KindSpeechRequestError      FailureKind = "SPEECH_REQUEST_ERROR"
	KindNumericParseError       FailureKind = "NUMERIC_PARSE_ERROR"

	// Language model
	KindProviderError FailureKind = "PROVIDER_ERROR"
)

// Sentinel errors, one per kind, so callers can use errors.Is on a Failure.
var (
	ErrDimensionalMismatch     = errors.New("dimensional mismatch")
	ErrUnknownUnit             = errors.New("unknown unit")
	ErrCurrencyConfigMissing   = errors.New("currency API key missing")
	ErrCurrencyLookupFailed    = errors.New("currency lookup failed")
	ErrCurrencyTransport       = errors.New("currency transport error")
	ErrSpeechRecognitionFailed = errors.New("speech recognition failed")
	ErrSpeechRequest           = errors.New("speech request error")
	ErrNumericParse            = errors.New("numeric parse error")
	ErrProvider                = errors.New("language model provider error")
)

var kindErrors = map[FailureKind]error{
	KindDimensionalMismatch:     ErrDimensionalMismatch,
	KindUnknownUnit:             ErrUnknownUnit,
	KindCurrencyConfigMissing:   ErrCurrencyConfigMissing,
	KindCurrencyLookupFailed:    ErrCurrencyLookupFailed,
	KindCurrencyTransportError:  ErrCurrencyTransport,
	KindSpeechRecognitionFailed: ErrSpeechRecognitionFailed,
	KindSpeechRequestError:      ErrSpeechRequest,
	KindNumericParseError:       ErrNumericParse,
	KindProviderError:           ErrProvider,
}

// Failure describes a conversion that did not succeed. Message is meant for
// the user; Cause keeps the underlying error for logs.
type Failure struct {
	Kind    FailureKind
	Message string
	Cause   error
}

// NewFailure creates a failure of the given kind.
func NewFailure(kind FailureKind, message string, cause error) *Failure {
	return &Failure{Kind: kind, Message: message, Cause: cause}
}

// Error implements the error interface.
func (f *Failure) Error() string {
	if f.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Cause)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// Unwrap returns the cause.
func (f *Failure) Unwrap() error {
	return f.Cause
}

// Is reports whether target is the sentinel error for this failure's kind.
func (f *Failure) Is(target error) bool {
	sentinel, ok := kindErrors[f.Kind]
	return ok && sentinel == target
}
