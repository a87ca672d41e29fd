package units

// Symbols of the SI base dimensions.
const (
	Length            = "L"
	Time              = "t"
	Temperature       = "T"
	Current           = "i"
	AmountOfSubstance = "N"
	LuminousIntensity = "J"
	Mass              = "M"
)

// SIUnits returns the SI base units. The gram, not the kilogram, is
// registered so that "kg" is an ordinary prefixed unit; its factor is
// relative to the kilogram.
func SIUnits() UnitTable {
	return UnitTable{
		"m":   NewUnit(1, map[string]float64{Length: 1}),
		"s":   NewUnit(1, map[string]float64{Time: 1}),
		"K":   NewUnit(1, map[string]float64{Temperature: 1}),
		"A":   NewUnit(1, map[string]float64{Current: 1}),
		"mol": NewUnit(1, map[string]float64{AmountOfSubstance: 1}),
		"cd":  NewUnit(1, map[string]float64{LuminousIntensity: 1}),
		"g":   NewUnit(1e-3, map[string]float64{Mass: 1}),
	}
}

// SIPrefixes returns the one letter SI prefixes from yocto to yotta and the
// empty identity prefix. Deca ("da") has two letters and is not included.
func SIPrefixes() PrefixTable {
	return PrefixTable{
		"Y": 1e24,
		"Z": 1e21,
		"E": 1e18,
		"P": 1e15,
		"T": 1e12,
		"G": 1e9,
		"M": 1e6,
		"k": 1e3,
		"h": 1e2,
		"":  1e0,
		"d": 1e-1,
		"c": 1e-2,
		"m": 1e-3,
		"u": 1e-6,
		"n": 1e-9,
		"p": 1e-12,
		"f": 1e-15,
		"a": 1e-18,
		"z": 1e-21,
		"y": 1e-24,
	}
}

// New returns a Translator with the SI units and prefixes registered. Every
// call returns an independent Translator.
func New() *Translator {
	t := NewBasic()
	// Neither call can fail on empty tables with one letter prefixes.
	if err := t.RegisterUnits(SIUnits(), false); err != nil {
		panic(err)
	}
	if err := t.RegisterPrefixes(SIPrefixes(), false); err != nil {
		panic(err)
	}
	return t
}
