package units

import (
	"errors"
	"math"
	"testing"

	"github.com/charmbracelet/convertpro/internal/convert"
)

const tolerance = 1e-9

func TestConverter_RoundTrip(t *testing.T) {
	c := NewConverter()

	pairs := []struct {
		from, to string
		value    float64
	}{
		{"kilogram", "pound", 10},
		{"meter", "foot", 3.5},
		{"kilometer", "mile", 42.195},
		{"liter", "milliliter", 0.75},
		{"celsius", "fahrenheit", 37},
		{"second", "hour", 5400},
	}

	for _, p := range pairs {
		t.Run(p.from+"->"+p.to, func(t *testing.T) {
			there := c.Convert(p.value, p.from, p.to)
			if !there.OK() {
				t.Fatalf("Convert(%v, %s, %s) failed: %v", p.value, p.from, p.to, there.Failure)
			}
			back := c.Convert(there.Value, p.to, p.from)
			if !back.OK() {
				t.Fatalf("Convert back failed: %v", back.Failure)
			}
			if diff := math.Abs(back.Value - p.value); diff > tolerance*math.Max(1, math.Abs(p.value)) {
				t.Errorf("round trip %v -> %v -> %v, diff %g", p.value, there.Value, back.Value, diff)
			}
		})
	}
}

func TestConverter_KnownValue(t *testing.T) {
	c := NewConverter()

	res := c.Convert(1000, "gram", "kilogram")
	if !res.OK() {
		t.Fatalf("unexpected failure: %v", res.Failure)
	}
	if math.Abs(res.Value-1) > tolerance {
		t.Errorf("1000 gram = %v kilogram, want 1", res.Value)
	}
	if res.Label != "kilogram" {
		t.Errorf("Label = %q, want %q", res.Label, "kilogram")
	}
}

func TestConverter_DimensionalMismatch(t *testing.T) {
	c := NewConverter()

	pairs := [][2]string{
		{"kilogram", "meter"},
		{"second", "liter"},
		{"celsius", "gram"},
	}
	for _, p := range pairs {
		res := c.Convert(1, p[0], p[1])
		if res.OK() {
			t.Errorf("Convert(1, %s, %s) = %v, want failure", p[0], p[1], res.Value)
			continue
		}
		if res.Failure.Kind != convert.KindDimensionalMismatch {
			t.Errorf("Kind = %s, want %s", res.Failure.Kind, convert.KindDimensionalMismatch)
		}
		if !errors.Is(res.Failure, convert.ErrDimensionalMismatch) {
			t.Error("failure does not match ErrDimensionalMismatch")
		}
	}
}

func TestConverter_UnknownUnit(t *testing.T) {
	c := NewConverter()

	res := c.Convert(1, "flurbs", "meter")
	if res.OK() {
		t.Fatal("expected failure for unknown unit")
	}
	if res.Failure.Kind != convert.KindUnknownUnit {
		t.Errorf("Kind = %s, want %s", res.Failure.Kind, convert.KindUnknownUnit)
	}
}

func TestConverter_LookupPlurals(t *testing.T) {
	c := NewConverter()

	for _, name := range []string{"pounds", "meters", "Kilograms", "feet", "inches"} {
		if _, err := c.Lookup(name); err != nil {
			t.Errorf("Lookup(%q) failed: %v", name, err)
		}
	}
}

func TestCandidates(t *testing.T) {
	got := candidates("Nautical_Miles")
	want := []string{"nautical miles", "nautical mile"}
	if len(got) != len(want) {
		t.Fatalf("candidates = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("candidates[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestConverter_Catalogue(t *testing.T) {
	c := NewConverter()

	for _, cat := range Categories() {
		base := cat.Units[0]
		for _, name := range cat.Units {
			t.Run(cat.Name+"/"+name, func(t *testing.T) {
				u, err := c.Lookup(name)
				if err != nil {
					t.Fatalf("Lookup(%q) failed: %v", name, err)
				}
				if u.Name != name {
					t.Errorf("Lookup(%q).Name = %q", name, u.Name)
				}

				there := c.Convert(3.5, name, base)
				if !there.OK() {
					t.Fatalf("Convert(3.5, %s, %s) failed: %v", name, base, there.Failure)
				}
				back := c.Convert(there.Value, base, name)
				if !back.OK() {
					t.Fatalf("Convert back failed: %v", back.Failure)
				}
				if diff := math.Abs(back.Value - 3.5); diff > 1e-9 {
					t.Errorf("round trip 3.5 -> %v -> %v", there.Value, back.Value)
				}
			})
		}
	}
}

func TestConverter_Values(t *testing.T) {
	c := NewConverter()

	tests := []struct {
		value    float64
		from, to string
		want     float64
	}{
		{1, "liter", "gallon", 0.264172052358},
		{1, "gallon", "quart", 4},
		{1, "quart", "pint", 2},
		{1, "pint", "cup", 2},
		{1, "cup", "fluid ounce", 8},
		{1, "fluid ounce", "tablespoon", 2},
		{1, "tablespoon", "teaspoon", 3},
		{1, "kilogram", "ton", 0.00110231131092},
		{1, "ton", "pound", 2000},
		{1, "kilobyte", "byte", 1000},
		{1, "gigabyte", "megabyte", 1000},
		{1, "bar", "pascal", 100000},
		{1, "atmosphere", "pascal", 101325},
		{1, "year", "month", 12},
		{1, "week", "day", 7},
		{1, "nautical mile", "meter", 1852},
		{5, "kilowatt", "horsepower", 6.70511004},
		{3, "acre", "hectare", 1.21405692672},
		{100, "kilometer/hour", "meter/second", 27.7777777778},
		{1, "knot", "kilometer/hour", 1.852},
		{1, "kilowatt-hour", "joule", 3.6e6},
		{1, "kilocalorie", "joule", 4184},
		{1, "pound-force", "newton", 4.4482216152605},
		{1, "gigahertz", "kilohertz", 1e6},
		{1, "megabit per second", "kilobit per second", 1000},
		{30, "miles per gallon", "liters per 100 km", 7.84048611},
		{5, "liters per 100 km", "kilometers per liter", 20},
	}

	for _, tc := range tests {
		t.Run(tc.from+"->"+tc.to, func(t *testing.T) {
			res := c.Convert(tc.value, tc.from, tc.to)
			if !res.OK() {
				t.Fatalf("unexpected failure: %v", res.Failure)
			}
			if diff := math.Abs(res.Value - tc.want); diff > 1e-6*math.Max(1, math.Abs(tc.want)) {
				t.Errorf("%v %s = %v %s, want %v", tc.value, tc.from, res.Value, tc.to, tc.want)
			}
		})
	}
}

func TestConverter_SpokenForms(t *testing.T) {
	c := NewConverter()

	tests := map[string]string{
		"kw":           "kilowatt",
		"HP":           "horsepower",
		"square_meter": "square meter",
		"Acres":        "acre",
		"mph":          "mile/hour",
		"knots":        "knot",
		"kWh":          "kilowatt-hour",
		"gallons":      "gallon",
		"tons":         "ton",
		"MB":           "megabyte",
		"Mbps":         "megabit per second",
		"l/100km":      "liters per 100 km",
		"square_feet":  "square foot",
		"watt_hours":   "watt-hour",
	}
	for in, want := range tests {
		u, err := c.Lookup(in)
		if err != nil {
			t.Errorf("Lookup(%q) failed: %v", in, err)
			continue
		}
		if u.Name != want {
			t.Errorf("Lookup(%q) = %q, want %q", in, u.Name, want)
		}
	}
}

func TestConverter_SameUnit(t *testing.T) {
	c := NewConverter()

	res := c.Convert(3, "meter", "meters")
	if !res.OK() || res.Value != 3 {
		t.Errorf("Convert(3, meter, meters) = %+v", res)
	}
}

func TestConverter_NonFiniteResult(t *testing.T) {
	c := NewConverter()

	res := c.Convert(0, "miles per gallon", "liters per 100 km")
	if res.OK() {
		t.Fatalf("Convert(0 mpg) = %v, want failure", res.Value)
	}
	if res.Failure.Kind != convert.KindDimensionalMismatch {
		t.Errorf("Kind = %s, want %s", res.Failure.Kind, convert.KindDimensionalMismatch)
	}
}
