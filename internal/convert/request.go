package convert

import (
	"fmt"
	"strconv"
)

// Request is one of UnitRequest, CurrencyRequest or FreeTextRequest.
type Request interface {
	// Describe returns a short human readable form of the request.
	Describe() string

	isRequest()
}

// UnitRequest asks for a physical unit conversion.
type UnitRequest struct {
	Value float64
	From  string
	To    string
}

// CurrencyRequest asks for a currency conversion. Codes are ISO 4217.
type CurrencyRequest struct {
	Amount float64
	From   string
	To     string
}

// FreeTextRequest is forwarded to the language model as is.
type FreeTextRequest struct {
	Query string
}

func (UnitRequest) isRequest()     {}
func (CurrencyRequest) isRequest() {}
func (FreeTextRequest) isRequest() {}

// Describe implements Request.
func (r UnitRequest) Describe() string {
	return fmt.Sprintf("%s %s to %s", formatNumber(r.Value), r.From, r.To)
}

// Describe implements Request.
func (r CurrencyRequest) Describe() string {
	return fmt.Sprintf("%s %s to %s", formatNumber(r.Amount), r.From, r.To)
}

// Describe implements Request.
func (r FreeTextRequest) Describe() string {
	return r.Query
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
