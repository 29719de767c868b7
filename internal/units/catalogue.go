package units

import (
	"strings"

	gounits "github.com/bcicen/go-units"
)

// Category groups the units offered for one kind of quantity.
type Category struct {
	Name  string
	Units []string
}

// categories is the unit catalogue shown to users, in display order.
var categories = []Category{
	{"Length", []string{"meter", "kilometer", "mile", "foot", "inch", "centimeter", "millimeter", "yard", "nautical mile"}},
	{"Mass/Weight", []string{"kilogram", "gram", "pound", "ounce", "ton", "stone", "milligram", "microgram"}},
	{"Volume", []string{"liter", "milliliter", "gallon", "quart", "pint", "cup", "fluid ounce", "tablespoon", "teaspoon"}},
	{"Area", []string{"square meter", "square kilometer", "acre", "hectare", "square foot", "square mile", "square yard", "square inch"}},
	{"Temperature", []string{"celsius", "fahrenheit", "kelvin"}},
	{"Time", []string{"second", "minute", "hour", "day", "week", "month", "year"}},
	{"Speed", []string{"meter/second", "kilometer/hour", "mile/hour", "foot/second", "knot"}},
	{"Energy", []string{"joule", "kilojoule", "calorie", "kilocalorie", "BTU", "electronvolt", "watt-hour", "kilowatt-hour"}},
	{"Power", []string{"watt", "kilowatt", "megawatt", "horsepower"}},
	{"Pressure", []string{"pascal", "bar", "atmosphere", "psi", "torr"}},
	{"Data Storage", []string{"byte", "kilobyte", "megabyte", "gigabyte", "terabyte", "petabyte", "exabyte"}},
	{"Fuel Efficiency", []string{"miles per gallon", "kilometers per liter", "liters per 100 km"}},
	{"Digital Speed", []string{"bit per second", "kilobit per second", "megabit per second", "gigabit per second", "terabit per second"}},
	{"Frequency", []string{"hertz", "kilohertz", "megahertz", "gigahertz"}},
	{"Force", []string{"newton", "kilonewton", "pound-force", "dyne"}},
}

// Categories returns the unit catalogue in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	for i, c := range categories {
		out[i] = Category{Name: c.Name, Units: append([]string(nil), c.Units...)}
	}
	return out
}

// Units missing from go-units, or defined there differently from the US
// customary and SI meanings users expect ("gallon" is the US gallon, "ton"
// the short ton, "kilobyte" 1000 bytes, "bar" 100 kPa).
var (
	area  = gounits.UnitOptionQuantity("area")
	speed = gounits.UnitOptionQuantity("speed")

	energy    = gounits.UnitOptionQuantity("energy")
	power     = gounits.UnitOptionQuantity("power")
	force     = gounits.UnitOptionQuantity("force")
	frequency = gounits.UnitOptionQuantity("frequency")
	economy   = gounits.UnitOptionQuantity("fuel economy")
	dataRate  = gounits.UnitOptionQuantity("data rate")

	nauticalMile = gounits.NewUnit("nautical mile", "nmi", gounits.Length)
	shortTon     = gounits.NewUnit("short ton", "", gounits.Mass, gounits.US)

	cup        = gounits.NewUnit("cup", "", gounits.Volume, gounits.US)
	tablespoon = gounits.NewUnit("tablespoon", "tbsp", gounits.Volume, gounits.US)
	teaspoon   = gounits.NewUnit("teaspoon", "tsp", gounits.Volume, gounits.US)

	squareMeter     = gounits.NewUnit("square meter", "m²", area, gounits.SI)
	squareKilometer = gounits.NewUnit("square kilometer", "km²", area, gounits.SI)
	hectare         = gounits.NewUnit("hectare", "ha", area, gounits.SI)
	acre            = gounits.NewUnit("acre", "ac", area, gounits.US)
	squareFoot      = gounits.NewUnit("square foot", "ft²", area, gounits.BI, gounits.UnitOptionPlural("square feet"))
	squareMile      = gounits.NewUnit("square mile", "mi²", area, gounits.BI)
	squareYard      = gounits.NewUnit("square yard", "yd²", area, gounits.BI)
	squareInch      = gounits.NewUnit("square inch", "in²", area, gounits.BI, gounits.UnitOptionPlural("square inches"))

	week         = gounits.NewUnit("week", "wk", gounits.Time)
	averageMonth = gounits.NewUnit("average month", "", gounits.Time)

	meterPerSecond   = gounits.NewUnit("meter/second", "m/s", speed, gounits.SI)
	kilometerPerHour = gounits.NewUnit("kilometer/hour", "km/h", speed, gounits.SI)
	milePerHour      = gounits.NewUnit("mile/hour", "mph", speed, gounits.BI)
	footPerSecond    = gounits.NewUnit("foot/second", "ft/s", speed, gounits.BI)
	knot             = gounits.NewUnit("knot", "kn", speed)

	joule        = gounits.NewUnit("joule", "J", energy, gounits.SI)
	kilojoule    = gounits.Kilo(joule)
	calorie      = gounits.NewUnit("calorie", "cal", energy)
	kilocalorie  = gounits.Kilo(calorie)
	btu          = gounits.NewUnit("BTU", "Btu", energy, gounits.BI, gounits.UnitOptionPlural("BTU"))
	electronvolt = gounits.NewUnit("electronvolt", "eV", energy)
	wattHour     = gounits.NewUnit("watt-hour", "Wh", energy, gounits.UnitOptionPlural("watt-hours"))
	kilowattHour = gounits.Kilo(wattHour, gounits.UnitOptionPlural("kilowatt-hours"))

	watt       = gounits.NewUnit("watt", "W", power, gounits.SI)
	kilowatt   = gounits.Kilo(watt)
	megawatt   = gounits.Mega(watt)
	horsepower = gounits.NewUnit("horsepower", "hp", power, gounits.BI, gounits.UnitOptionPlural("none"))

	standardBar = gounits.NewUnit("standard bar", "", gounits.Pressure, gounits.SI)
	atmosphere  = gounits.NewUnit("atmosphere", "", gounits.Pressure)

	decimalKilobyte = gounits.NewUnit("decimal kilobyte", "kB", gounits.Data, gounits.SI)
	decimalMegabyte = gounits.NewUnit("decimal megabyte", "", gounits.Data, gounits.SI)
	decimalGigabyte = gounits.NewUnit("decimal gigabyte", "", gounits.Data, gounits.SI)
	decimalTerabyte = gounits.NewUnit("decimal terabyte", "", gounits.Data, gounits.SI)
	decimalPetabyte = gounits.NewUnit("decimal petabyte", "", gounits.Data, gounits.SI)
	decimalExabyte  = gounits.NewUnit("decimal exabyte", "", gounits.Data, gounits.SI)

	milesPerGallon     = gounits.NewUnit("miles per gallon", "mpg", economy, gounits.US, gounits.UnitOptionPlural("none"))
	kilometersPerLiter = gounits.NewUnit("kilometers per liter", "km/L", economy, gounits.SI, gounits.UnitOptionPlural("none"))
	litersPer100Km     = gounits.NewUnit("liters per 100 km", "L/100km", economy, gounits.SI, gounits.UnitOptionPlural("none"))

	bitPerSecond     = gounits.NewUnit("bit per second", "bps", dataRate, gounits.UnitOptionPlural("bits per second"))
	kilobitPerSecond = gounits.Kilo(bitPerSecond, gounits.UnitOptionPlural("kilobits per second"))
	megabitPerSecond = gounits.Mega(bitPerSecond, gounits.UnitOptionPlural("megabits per second"))
	gigabitPerSecond = gounits.Giga(bitPerSecond, gounits.UnitOptionPlural("gigabits per second"))
	terabitPerSecond = gounits.Tera(bitPerSecond, gounits.UnitOptionPlural("terabits per second"))

	hertz     = gounits.NewUnit("hertz", "Hz", frequency, gounits.SI, gounits.UnitOptionPlural("none"))
	kilohertz = gounits.Kilo(hertz)
	megahertz = gounits.Mega(hertz)
	gigahertz = gounits.Giga(hertz)

	newton     = gounits.NewUnit("newton", "N", force, gounits.SI)
	kilonewton = gounits.Kilo(newton)
	poundForce = gounits.NewUnit("pound-force", "lbf", force, gounits.BI, gounits.UnitOptionPlural("none"))
	dyne       = gounits.NewUnit("dyne", "dyn", force)
)

const (
	// kilometers per liter in one US mile per gallon
	kmPerLiterPerMPG = 1.609344 / 3.785411784

	// liters per 100 km = 100 / (km per liter)
	consumptionScale = 100.0
)

func init() {
	gounits.NewRatioConversion(nauticalMile, gounits.Meter, 1852)
	gounits.NewRatioConversion(shortTon, gounits.Pound, 2000)

	gounits.NewRatioConversion(cup, gounits.MilliLiter, 236.5882365)
	gounits.NewRatioConversion(tablespoon, gounits.MilliLiter, 14.78676478125)
	gounits.NewRatioConversion(teaspoon, gounits.MilliLiter, 4.92892159375)

	gounits.NewRatioConversion(squareKilometer, squareMeter, 1e6)
	gounits.NewRatioConversion(hectare, squareMeter, 1e4)
	gounits.NewRatioConversion(acre, squareMeter, 4046.8564224)
	gounits.NewRatioConversion(squareFoot, squareMeter, 0.09290304)
	gounits.NewRatioConversion(squareMile, squareMeter, 2589988.110336)
	gounits.NewRatioConversion(squareYard, squareMeter, 0.83612736)
	gounits.NewRatioConversion(squareInch, squareMeter, 0.00064516)

	gounits.NewRatioConversion(week, gounits.Day, 7)
	gounits.NewRatioConversion(averageMonth, gounits.Year, 1.0/12)

	gounits.NewRatioConversion(kilometerPerHour, meterPerSecond, 1/3.6)
	gounits.NewRatioConversion(milePerHour, meterPerSecond, 0.44704)
	gounits.NewRatioConversion(footPerSecond, meterPerSecond, 0.3048)
	gounits.NewRatioConversion(knot, meterPerSecond, 1852.0/3600)

	gounits.NewRatioConversion(calorie, joule, 4.184)
	gounits.NewRatioConversion(btu, joule, 1055.05585262)
	gounits.NewRatioConversion(electronvolt, joule, 1.602176634e-19)
	gounits.NewRatioConversion(wattHour, joule, 3600)

	gounits.NewRatioConversion(horsepower, watt, 745.69987158227022)

	gounits.NewRatioConversion(standardBar, gounits.Pascal, 1e5)
	gounits.NewRatioConversion(atmosphere, gounits.Pascal, 101325)

	gounits.NewRatioConversion(decimalKilobyte, gounits.Byte, 1e3)
	gounits.NewRatioConversion(decimalMegabyte, gounits.Byte, 1e6)
	gounits.NewRatioConversion(decimalGigabyte, gounits.Byte, 1e9)
	gounits.NewRatioConversion(decimalTerabyte, gounits.Byte, 1e12)
	gounits.NewRatioConversion(decimalPetabyte, gounits.Byte, 1e15)
	gounits.NewRatioConversion(decimalExabyte, gounits.Byte, 1e18)

	gounits.NewRatioConversion(milesPerGallon, kilometersPerLiter, kmPerLiterPerMPG)
	// consumption is the reciprocal of economy
	gounits.NewConversionFromFn(kilometersPerLiter, litersPer100Km, reciprocal, "100 / x")
	gounits.NewConversionFromFn(litersPer100Km, kilometersPerLiter, reciprocal, "100 / x")

	gounits.NewRatioConversion(poundForce, newton, 4.4482216152605)
	gounits.NewRatioConversion(dyne, newton, 1e-5)

	for name, u := range catalogueUnits() {
		index[normalize(name)] = entry{name: name, unit: u}
	}
	for alias, name := range aliases {
		index[normalize(alias)] = index[normalize(name)]
	}
}

func reciprocal(x float64) float64 {
	return consumptionScale / x
}

// entry pairs a display name with the registry unit behind it.
type entry struct {
	name string
	unit gounits.Unit
}

// index resolves normalized catalogue names and aliases without going
// through gounits.Find, whose match order is not stable for shared symbols.
var index = map[string]entry{}

func catalogueUnits() map[string]gounits.Unit {
	return map[string]gounits.Unit{
		"meter": gounits.Meter, "kilometer": gounits.KiloMeter, "mile": gounits.Mile,
		"foot": gounits.Foot, "inch": gounits.Inch, "centimeter": gounits.CentiMeter,
		"millimeter": gounits.MilliMeter, "yard": gounits.Yard, "nautical mile": nauticalMile,

		"kilogram": gounits.KiloGram, "gram": gounits.Gram, "pound": gounits.Pound,
		"ounce": gounits.Ounce, "ton": shortTon, "stone": gounits.Stone,
		"milligram": gounits.MilliGram, "microgram": gounits.MicroGram,

		"liter": gounits.Liter, "milliliter": gounits.MilliLiter, "gallon": gounits.FluidGallon,
		"quart": gounits.FluidQuart, "pint": gounits.FluidPint, "cup": cup,
		"fluid ounce": gounits.CustomaryFluidOunce, "tablespoon": tablespoon, "teaspoon": teaspoon,

		"square meter": squareMeter, "square kilometer": squareKilometer, "acre": acre,
		"hectare": hectare, "square foot": squareFoot, "square mile": squareMile,
		"square yard": squareYard, "square inch": squareInch,

		"celsius": gounits.Celsius, "fahrenheit": gounits.Fahrenheit, "kelvin": gounits.Kelvin,

		"second": gounits.Second, "minute": gounits.Minute, "hour": gounits.Hour,
		"day": gounits.Day, "week": week, "month": averageMonth, "year": gounits.Year,

		"meter/second": meterPerSecond, "kilometer/hour": kilometerPerHour,
		"mile/hour": milePerHour, "foot/second": footPerSecond, "knot": knot,

		"joule": joule, "kilojoule": kilojoule, "calorie": calorie, "kilocalorie": kilocalorie,
		"BTU": btu, "electronvolt": electronvolt, "watt-hour": wattHour, "kilowatt-hour": kilowattHour,

		"watt": watt, "kilowatt": kilowatt, "megawatt": megawatt, "horsepower": horsepower,

		"pascal": gounits.Pascal, "bar": standardBar, "atmosphere": atmosphere,
		"psi": gounits.Psi, "torr": gounits.Torr,

		"byte": gounits.Byte, "kilobyte": decimalKilobyte, "megabyte": decimalMegabyte,
		"gigabyte": decimalGigabyte, "terabyte": decimalTerabyte, "petabyte": decimalPetabyte,
		"exabyte": decimalExabyte,

		"miles per gallon": milesPerGallon, "kilometers per liter": kilometersPerLiter,
		"liters per 100 km": litersPer100Km,

		"bit per second": bitPerSecond, "kilobit per second": kilobitPerSecond,
		"megabit per second": megabitPerSecond, "gigabit per second": gigabitPerSecond,
		"terabit per second": terabitPerSecond,

		"hertz": hertz, "kilohertz": kilohertz, "megahertz": megahertz, "gigahertz": gigahertz,

		"newton": newton, "kilonewton": kilonewton, "pound-force": poundForce, "dyne": dyne,
	}
}

// aliases maps extra spellings and symbols to catalogue names. Keys are
// matched case-insensitively, so symbols that only differ by case are left
// to the registry.
var aliases = map[string]string{
	"m": "meter", "metre": "meter", "metres": "meter", "km": "kilometer", "kilometre": "kilometer",
	"mi": "mile", "ft": "foot", "in": "inch", "cm": "centimeter", "mm": "millimeter",
	"yd": "yard", "nmi": "nautical mile", "nm": "nautical mile",

	"kg": "kilogram", "g": "gram", "lb": "pound", "lbs": "pound", "oz": "ounce",
	"tons": "ton", "short ton": "ton", "st": "stone", "mg": "milligram", "ug": "microgram",
	"µg": "microgram",

	"l": "liter", "litre": "liter", "ml": "milliliter", "millilitre": "milliliter",
	"gal": "gallon", "qt": "quart", "pt": "pint", "fl oz": "fluid ounce", "floz": "fluid ounce",
	"fluid ounces": "fluid ounce", "tbsp": "tablespoon", "tsp": "teaspoon",

	"m2": "square meter", "m²": "square meter", "sqm": "square meter",
	"km2": "square kilometer", "km²": "square kilometer", "ha": "hectare", "acres": "acre",
	"square feet": "square foot", "sqft": "square foot", "ft2": "square foot", "ft²": "square foot",
	"mi2": "square mile", "sqmi": "square mile", "yd2": "square yard", "sqyd": "square yard",
	"square inches": "square inch", "in2": "square inch", "sqin": "square inch",

	"s": "second", "sec": "second", "secs": "second", "min": "minute", "mins": "minute", "hr": "hour",
	"hrs": "hour", "h": "hour", "wk": "week", "yr": "year",

	"m/s": "meter/second", "mps": "meter/second", "meters per second": "meter/second",
	"km/h": "kilometer/hour", "kmh": "kilometer/hour", "kph": "kilometer/hour",
	"kilometers per hour": "kilometer/hour", "mph": "mile/hour", "miles per hour": "mile/hour",
	"ft/s": "foot/second", "fps": "foot/second", "feet per second": "foot/second", "kn": "knot", "kt": "knot",
	"knots": "knot",

	"j": "joule", "kj": "kilojoule", "cal": "calorie", "kcal": "kilocalorie", "btu": "BTU",
	"btus": "BTU", "ev": "electronvolt", "electron volt": "electronvolt", "wh": "watt-hour",
	"kwh": "kilowatt-hour",

	"w": "watt", "kw": "kilowatt", "mw": "megawatt", "hp": "horsepower",

	"pa": "pascal", "atm": "atmosphere", "atmospheres": "atmosphere",

	"b": "byte", "kb": "kilobyte", "mb": "megabyte", "gb": "gigabyte", "tb": "terabyte",
	"pb": "petabyte", "eb": "exabyte",

	"mpg": "miles per gallon", "mile per gallon": "miles per gallon",
	"km/l": "kilometers per liter", "kpl": "kilometers per liter",
	"kilometer per liter": "kilometers per liter", "kilometres per litre": "kilometers per liter",
	"l/100km": "liters per 100 km", "l/100 km": "liters per 100 km",
	"liter per 100 km": "liters per 100 km", "litres per 100 km": "liters per 100 km",

	"bps": "bit per second", "bits per second": "bit per second",
	"kbps": "kilobit per second", "kilobits per second": "kilobit per second",
	"mbps": "megabit per second", "megabits per second": "megabit per second",
	"gbps": "gigabit per second", "gigabits per second": "gigabit per second",
	"tbps": "terabit per second", "terabits per second": "terabit per second",

	"hz": "hertz", "khz": "kilohertz", "mhz": "megahertz", "ghz": "gigahertz",

	"n": "newton", "kilonewtons": "kilonewton", "lbf": "pound-force", "pound force": "pound-force",
	"dyn": "dyne",
}

// normalize folds case and treats underscores, hyphens and repeated
// whitespace as a single space, so "Square_Meter" and "square  meter" agree.
func normalize(name string) string {
	name = strings.ToLower(name)
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	return strings.Join(strings.Fields(name), " ")
}
