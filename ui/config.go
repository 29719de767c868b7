package ui

import "github.com/charmbracelet/convertpro/internal/units"

// Config contains TUI-specific configuration.
type Config struct {
	GlamourMaxWidth uint
	GlamourStyle    string `env:"GLAMOUR_STYLE"`
	EnableMouse     bool

	// Currency codes listed under the currency form.
	Currencies []string

	// Unit categories offered by the unit form, in display order. Defaults
	// to the full catalogue.
	UnitCategories []units.Category

	// Section shown on start: "unit", "currency" or "ask".
	StartSection string

	// For debugging the UI
	AltScreen      bool `env:"CONVERTPRO_ALT_SCREEN"      envDefault:"true"`
	GlamourEnabled bool `env:"CONVERTPRO_ENABLE_GLAMOUR" envDefault:"true"`
}
