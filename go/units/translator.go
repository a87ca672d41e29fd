// Package units translates unit expressions such as "m/s" or
// "(kg.s)2/(m3/K)3/A-2" into a scalar factor and a dimension vector, and
// formats dimension vectors back into unit expressions.
//
// A Translator owns two lookup tables: units (symbol to Unit) and one letter
// prefixes (symbol to multiplier). NewBasic starts with both empty, New
// starts with the SI base units and prefixes.
//
// Expression grammar:
//
//	kg        unit, optionally with a one letter prefix
//	m2, s-1   exponent applied to the preceding unit or group
//	m.s       multiplication of sibling atoms
//	m/s.K     everything after '/' up to the end of the group is inverted
//	(m3/K)-3  parenthesised groups, an exponent applies to the whole group
//
// A Translator is not safe for concurrent registration. Translate and
// ReverseLookup may be called concurrently; the only state they touch is the
// cache of translated expressions, which is safe for concurrent use.
package units

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"
	lru "github.com/hashicorp/golang-lru"
	"go.dimquant.dev/dimquant/go/dimension"
	"go.dimquant.dev/dimquant/go/skerr"
	"go.dimquant.dev/dimquant/go/sklog"
)

var (
	// ErrLexical is returned when the expression contains a character that
	// is not part of the grammar.
	ErrLexical = errors.New("invalid character in unit expression")

	// ErrSyntax is returned for well formed tokens in an impossible order,
	// e.g. unbalanced parentheses or an exponent with nothing to apply to.
	ErrSyntax = errors.New("invalid unit expression")

	// ErrNotFound is the category of all failed symbol lookups.
	ErrNotFound = errors.New("not found")

	// ErrUnknownUnit is returned when the base unit of a prefixed symbol is
	// not registered.
	ErrUnknownUnit = fmt.Errorf("unknown unit: %w", ErrNotFound)

	// ErrUnknownPrefix is returned when the base unit of a prefixed symbol
	// is registered but its prefix is not.
	ErrUnknownPrefix = fmt.Errorf("unknown prefix: %w", ErrNotFound)

	// ErrNoReverseUnit is returned by ReverseLookup for a dimension no atomic
	// unit is registered for.
	ErrNoReverseUnit = fmt.Errorf("no unit for dimension: %w", ErrNotFound)

	// ErrMalformedUnit is returned for an unregistered symbol too short to
	// be split into prefix and unit.
	ErrMalformedUnit = errors.New("unrecognized unit symbol")

	// ErrDuplicate is returned when registering a symbol that already exists
	// without override.
	ErrDuplicate = errors.New("symbol already registered")

	// ErrPrefixLength is returned when registering a prefix of more than one
	// character.
	ErrPrefixLength = errors.New("prefixes must be at most one character")

	// ErrPrefixLetter is returned when registering a one character prefix
	// that is not an ASCII letter, which the lexer could never produce.
	ErrPrefixLetter = errors.New("prefixes must be ASCII letters")
)

// Unit states that one unit equals Factor times the base dimensions.
type Unit struct {
	Factor     float64          `json:"factor"`
	Dimensions dimension.Vector `json:"dimensions"`
}

// NewUnit is a convenience constructor.
func NewUnit(factor float64, dims map[string]float64) Unit {
	return Unit{Factor: factor, Dimensions: dimension.New(dims)}
}

// Pow returns u raised to exp: the factor is raised and the dimensions
// scaled.
func (u Unit) Pow(exp float64) Unit {
	return Unit{
		Factor:     math.Pow(u.Factor, exp),
		Dimensions: u.Dimensions.Scale(exp),
	}
}

// Mul returns the product of u and o.
func (u Unit) Mul(o Unit) Unit {
	return Unit{
		Factor:     u.Factor * o.Factor,
		Dimensions: u.Dimensions.Add(o.Dimensions),
	}
}

// Scale returns u with its factor multiplied by k.
func (u Unit) Scale(k float64) Unit {
	return Unit{
		Factor:     u.Factor * k,
		Dimensions: dimension.FromExponents(u.Dimensions),
	}
}

// String returns e.g. "0.001 {M:1}".
func (u Unit) String() string {
	return fmt.Sprintf("%g %s", u.Factor, u.Dimensions)
}

// one is the dimensionless unit with factor 1.
var one = Unit{Factor: 1}

// UnitTable maps unit symbols to units.
type UnitTable map[string]Unit

// PrefixTable maps one letter prefixes to multipliers. The empty string is
// the identity prefix.
type PrefixTable map[string]float64

// translateCacheSize is the number of translated expressions a Translator
// remembers.
const translateCacheSize = 1024

// Translator converts between unit expressions and Units.
type Translator struct {
	units    UnitTable
	prefixes PrefixTable

	// translated maps expressions to their Unit. Purged on registration.
	translated *lru.Cache
}

// NewBasic returns a Translator with empty lookup tables.
func NewBasic() *Translator {
	c, err := lru.New(translateCacheSize)
	if err != nil {
		// Only fails for a non-positive size.
		panic(err)
	}
	return &Translator{
		units:      UnitTable{},
		prefixes:   PrefixTable{},
		translated: c,
	}
}

// Translate parses expr and returns the factor and dimensions it stands
// for, e.g. "cm.s-2" is 0.01 {L:1 t:-2}.
func (t *Translator) Translate(expr string) (Unit, error) {
	if cached, ok := t.translated.Get(expr); ok {
		return cached.(Unit), nil
	}
	u, err := newEvaluator(t, expr).eval()
	if err != nil {
		return Unit{}, skerr.Wrapf(err, "translating %q", expr)
	}
	_ = t.translated.Add(expr, u)
	return u, nil
}

// resolveUnit looks up a single unit symbol, either registered as is or as
// a one letter prefix followed by a registered unit.
func (t *Translator) resolveUnit(symbol string) (Unit, error) {
	if u, ok := t.units[symbol]; ok {
		return u, nil
	}
	if len(symbol) < 2 {
		return Unit{}, skerr.Fmt("%q cannot be split into prefix and unit: %w", symbol, ErrMalformedUnit)
	}
	prefix, base := symbol[:1], symbol[1:]
	u, ok := t.units[base]
	if !ok {
		return Unit{}, skerr.Fmt("symbol %q: %w", base, ErrUnknownUnit)
	}
	mult, ok := t.prefixes[prefix]
	if !ok {
		return Unit{}, skerr.Fmt("prefix %q of unit %q: %w", prefix, base, ErrUnknownPrefix)
	}
	return u.Scale(mult), nil
}

// atomicSymbol returns the single dimension of u, if u has exactly one
// dimension and its exponent is 1.
func atomicSymbol(u Unit) (string, bool) {
	if u.Dimensions.Len() != 1 {
		return "", false
	}
	sym := u.Dimensions.Symbols()[0]
	return sym, u.Dimensions.Get(sym) == 1
}

// reverseUnit picks the registered symbol that represents the base
// dimension sym: an atomic unit with factor 1 if there is one, otherwise the
// shortest, then alphabetically first, atomic unit.
func (t *Translator) reverseUnit(sym string) (string, bool) {
	var candidates []string
	for name, u := range t.units {
		if s, ok := atomicSymbol(u); ok && s == sym {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	sort.Slice(candidates, func(i, j int) bool {
		if len(candidates[i]) != len(candidates[j]) {
			return len(candidates[i]) < len(candidates[j])
		}
		return candidates[i] < candidates[j]
	})
	for _, name := range candidates {
		if t.units[name].Factor == 1 {
			return name, true
		}
	}
	return candidates[0], true
}

// ReverseLookup formats dims as a unit expression, e.g. {L:1 t:-1} becomes
// "m.s-1". Dimensions are emitted in sorted symbol order and joined with
// '.'; an exponent of exactly 1 is omitted. Only units with a single
// dimension of exponent 1 take part in the lookup.
func (t *Translator) ReverseLookup(dims dimension.Exponents) (string, error) {
	v, err := dimension.Coerce(dims)
	if err != nil {
		return "", skerr.Wrapf(err, "reverse lookup")
	}
	parts := make([]string, 0, v.Len())
	for _, sym := range v.Symbols() {
		name, ok := t.reverseUnit(sym)
		if !ok {
			return "", skerr.Fmt("dimension %q: %w", sym, ErrNoReverseUnit)
		}
		if exp := v.Get(sym); exp != 1 {
			name += dimension.FormatExponent(exp)
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, "."), nil
}

// duplicates returns an error listing every key of incoming that is already
// in existing, or nil.
func duplicates[V any](kind string, existing map[string]V, incoming map[string]V) error {
	var errs *multierror.Error
	for _, sym := range sortedKeys(incoming) {
		if _, ok := existing[sym]; ok {
			errs = multierror.Append(errs, fmt.Errorf("%s %q: %w", kind, sym, ErrDuplicate))
		}
	}
	return errs.ErrorOrNil()
}

func isASCIILetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RegisterUnits adds table to the unit lookup table. If override is true
// the current table is replaced by a copy of table. Otherwise registering a
// symbol that already exists fails with ErrDuplicate and nothing is added.
func (t *Translator) RegisterUnits(table UnitTable, override bool) error {
	if override {
		t.units = make(UnitTable, len(table))
	} else if err := duplicates("unit", t.units, table); err != nil {
		return skerr.Wrapf(err, "registering %d units", len(table))
	}
	for sym, u := range table {
		t.units[sym] = Unit{Factor: u.Factor, Dimensions: dimension.FromExponents(u.Dimensions)}
	}
	t.translated.Purge()
	sklog.Debugf("Registered %d units (override=%t), %d known", len(table), override, len(t.units))
	return nil
}

// RegisterPrefixes adds table to the prefix lookup table. Every key must be
// empty or a single ASCII letter, otherwise ErrPrefixLength or
// ErrPrefixLetter is returned and nothing is registered. The override and
// duplicate rules are those of RegisterUnits.
func (t *Translator) RegisterPrefixes(table PrefixTable, override bool) error {
	for _, sym := range sortedKeys(table) {
		if n := utf8.RuneCountInString(sym); n > 1 {
			return skerr.Fmt("prefix %q has %d characters: %w", sym, n, ErrPrefixLength)
		}
		if sym != "" && !isASCIILetter(sym[0]) {
			return skerr.Fmt("prefix %q: %w", sym, ErrPrefixLetter)
		}
	}
	if override {
		t.prefixes = make(PrefixTable, len(table))
	} else if err := duplicates("prefix", t.prefixes, table); err != nil {
		return skerr.Wrapf(err, "registering %d prefixes", len(table))
	}
	for sym, mult := range table {
		t.prefixes[sym] = mult
	}
	t.translated.Purge()
	sklog.Debugf("Registered %d prefixes (override=%t), %d known", len(table), override, len(t.prefixes))
	return nil
}

// Units returns a copy of the unit lookup table.
func (t *Translator) Units() UnitTable {
	ret := make(UnitTable, len(t.units))
	for sym, u := range t.units {
		ret[sym] = u
	}
	return ret
}

// Prefixes returns a copy of the prefix lookup table.
func (t *Translator) Prefixes() PrefixTable {
	ret := make(PrefixTable, len(t.prefixes))
	for sym, mult := range t.prefixes {
		ret[sym] = mult
	}
	return ret
}
