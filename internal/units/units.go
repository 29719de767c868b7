// Package units converts scalar values between named physical units. The
// dimensional analysis itself is done by go-units; this package only resolves
// the names a user types or says and turns library errors into results.
package units

import (
	"fmt"
	"math"
	"strings"

	gounits "github.com/bcicen/go-units"
	"github.com/charmbracelet/convertpro/internal/convert"
	"github.com/charmbracelet/log"
	"github.com/sahilm/fuzzy"
)

// maxSuggestions caps the "did you mean" list for unknown units.
const maxSuggestions = 3

// Converter resolves unit names and converts values between them.
type Converter struct {
	logger *log.Logger
	names  []string
}

// Unit is a resolved unit: the name shown to users and the registry unit
// that does the arithmetic.
type Unit struct {
	Name     string
	Quantity string
	unit     gounits.Unit
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger used for conversion diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(c *Converter) {
		c.logger = l
	}
}

// NewConverter creates a unit converter over the catalogue and the rest of
// the go-units registry.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		logger: log.Default().WithPrefix("units"),
	}
	for _, opt := range opts {
		opt(c)
	}

	// registry names hidden behind a catalogue name are not suggested
	seen := make(map[string]bool)
	for _, e := range index {
		seen[e.unit.Name] = true
	}
	for _, cat := range categories {
		for _, name := range cat.Units {
			seen[name] = true
			c.names = append(c.names, name)
		}
	}
	for _, u := range gounits.All() {
		if !seen[u.Name] && !shadowed[u.Name] {
			c.names = append(c.names, u.Name)
		}
	}
	return c
}

// Convert converts value from one unit to another. It never panics and never
// returns a Go error: unknown names and incompatible dimensions come back as
// failed results.
func (c *Converter) Convert(value float64, from, to string) convert.Result {
	fromUnit, err := c.Lookup(from)
	if err != nil {
		return convert.Failed(c.unknown(from, err))
	}
	toUnit, err := c.Lookup(to)
	if err != nil {
		return convert.Failed(c.unknown(to, err))
	}

	if fromUnit.Quantity != toUnit.Quantity {
		c.logger.Debug("incompatible units", "from", fromUnit.Name, "fromQuantity", fromUnit.Quantity,
			"to", toUnit.Name, "toQuantity", toUnit.Quantity)
		return convert.Fail(convert.KindDimensionalMismatch, "Invalid conversion.",
			fmt.Errorf("cannot convert %s (%s) to %s (%s)", fromUnit.Name, fromUnit.Quantity, toUnit.Name, toUnit.Quantity))
	}

	if fromUnit.unit.Name == toUnit.unit.Name {
		return convert.Numeric(value, toUnit.Name)
	}

	v, err := gounits.ConvertFloat(value, fromUnit.unit, toUnit.unit)
	if err != nil {
		// go-units found no conversion path between two units of the same
		// quantity; to the user this is still an invalid conversion.
		return convert.Fail(convert.KindDimensionalMismatch, "Invalid conversion.", err)
	}
	if math.IsNaN(v.Float()) || math.IsInf(v.Float(), 0) {
		return convert.Fail(convert.KindDimensionalMismatch, "Invalid conversion.",
			fmt.Errorf("%v %s has no finite value in %s", value, fromUnit.Name, toUnit.Name))
	}

	return convert.Numeric(v.Float(), toUnit.Name)
}

// Lookup resolves a unit by name, symbol or plural form. Catalogue names
// win over the registry; spaces, underscores and hyphens are
// interchangeable ("nautical_mile", "watt hour").
func (c *Converter) Lookup(name string) (Unit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Unit{}, fmt.Errorf("empty unit name")
	}

	keys := candidates(name)
	for _, key := range keys {
		if e, ok := index[key]; ok {
			return Unit{Name: e.name, Quantity: e.unit.Quantity, unit: e.unit}, nil
		}
	}

	var lastErr error
	for _, candidate := range append([]string{name}, keys...) {
		u, err := gounits.Find(candidate)
		if err == nil && !shadowed[u.Name] {
			return Unit{Name: u.Name, Quantity: u.Quantity, unit: u}, nil
		}
		if err == nil {
			err = fmt.Errorf("unit %q not found", candidate)
		}
		lastErr = err
	}
	return Unit{}, lastErr
}

// Suggest returns up to maxSuggestions known unit names close to name.
func (c *Converter) Suggest(name string) []string {
	matches := fuzzy.Find(normalize(name), c.names)
	out := make([]string, 0, maxSuggestions)
	for _, m := range matches {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, m.Str)
	}
	return out
}

func (c *Converter) unknown(name string, err error) *convert.Failure {
	msg := fmt.Sprintf("Unknown unit %q.", name)
	if s := c.Suggest(name); len(s) > 0 {
		msg = fmt.Sprintf("%s Did you mean %s?", msg, strings.Join(s, ", "))
	}
	return convert.NewFailure(convert.KindUnknownUnit, msg, err)
}

// shadowed registry units are reachable only through the catalogue name
// that replaces them, so "gallon" never means the imperial gallon.
var shadowed = map[string]bool{
	"gallon": true, "quart": true, "pint": true, "fluid ounce": true,
	"ton": true, "bar": true, "month": true,
	"kilobyte": true, "megabyte": true, "gigabyte": true,
	"terabyte": true, "petabyte": true, "exabyte": true,
}

// candidates lists the normalized spellings tried for a unit name, singular
// forms after the literal one.
func candidates(name string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	normalized := normalize(name)
	add(normalized)

	// plural forms: "pounds", "inches", "feet"
	if irregular, ok := irregularPlurals[normalized]; ok {
		add(irregular)
	}
	switch {
	case strings.HasSuffix(normalized, "ches"), strings.HasSuffix(normalized, "shes"):
		add(strings.TrimSuffix(normalized, "es"))
	case strings.HasSuffix(normalized, "s") && len(normalized) > 2:
		add(strings.TrimSuffix(normalized, "s"))
	}
	return out
}

var irregularPlurals = map[string]string{
	"feet":        "foot",
	"square feet": "square foot",
}
