// Package quantity combines a numeric value with dimensions, e.g. 3 m/s, and
// checks dimensions on every arithmetic operation.
//
// Quantities can be parsed from and formatted to strings such as "2.5 km/h".
// The Translator used for that is either passed explicitly (ParseWith,
// Format, In) or is the process wide default (Parse, String), which is the SI
// Translator unless replaced with SetDefault.
package quantity

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"sync/atomic"

	"go.dimquant.dev/dimquant/go/dimension"
	"go.dimquant.dev/dimquant/go/skerr"
	"go.dimquant.dev/dimquant/go/units"
)

var (
	// ErrIncompatible is returned when an operation needs equal dimensions
	// and gets different ones.
	ErrIncompatible = errors.New("incompatible dimensions")

	// ErrFormat is returned for strings not of the form "<number> <unit>".
	ErrFormat = errors.New("malformed quantity")
)

var defaultTranslator atomic.Pointer[units.Translator]

func init() {
	defaultTranslator.Store(units.New())
}

// Default returns the Translator used by Parse and String.
func Default() *units.Translator {
	return defaultTranslator.Load()
}

// SetDefault replaces the Translator used by Parse and String and returns
// the previous one. The Translator must not be registered into afterwards
// while other goroutines parse with it.
func SetDefault(t *units.Translator) *units.Translator {
	return defaultTranslator.Swap(t)
}

// Quantity is a value in base units together with its dimensions.
type Quantity struct {
	Value      float64
	Dimensions dimension.Vector
}

// New returns a Quantity of value base units with the given dimensions. A
// nil dims is non-dimensional.
func New(value float64, dims dimension.Exponents) Quantity {
	return Quantity{Value: value, Dimensions: dimension.FromExponents(dims)}
}

// Parse parses "<number> <unit expression>" with the default Translator.
func Parse(s string) (Quantity, error) {
	return ParseWith(Default(), s)
}

// ParseWith parses "<number> <unit expression>", e.g. "2.54 cm", with t.
// Number and expression are separated by exactly one space.
func ParseWith(t *units.Translator, s string) (Quantity, error) {
	parts := strings.Split(s, " ")
	if len(parts) != 2 {
		return Quantity{}, skerr.Fmt("%q is not \"<number> <unit>\": %w", s, ErrFormat)
	}
	value, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return Quantity{}, skerr.Fmt("value of %q: %s: %w", s, err, ErrFormat)
	}
	u, err := t.Translate(parts[1])
	if err != nil {
		return Quantity{}, skerr.Wrap(err)
	}
	return Quantity{Value: value * u.Factor, Dimensions: u.Dimensions}, nil
}

// IsDimensionless returns true if every exponent is zero.
func (q Quantity) IsDimensionless() bool {
	return q.Dimensions.IsZero()
}

func (q Quantity) compatible(op string, o Quantity) error {
	if !q.Dimensions.Equal(o.Dimensions) {
		return skerr.Fmt("%s %s %s: %w", q.Dimensions, op, o.Dimensions, ErrIncompatible)
	}
	return nil
}

// Add returns q + o. Both must have equal dimensions.
func (q Quantity) Add(o Quantity) (Quantity, error) {
	if err := q.compatible("+", o); err != nil {
		return Quantity{}, err
	}
	return New(q.Value+o.Value, q.Dimensions), nil
}

// Sub returns q - o. Both must have equal dimensions.
func (q Quantity) Sub(o Quantity) (Quantity, error) {
	if err := q.compatible("-", o); err != nil {
		return Quantity{}, err
	}
	return New(q.Value-o.Value, q.Dimensions), nil
}

// Mul returns q * o.
func (q Quantity) Mul(o Quantity) Quantity {
	return Quantity{Value: q.Value * o.Value, Dimensions: q.Dimensions.Add(o.Dimensions)}
}

// Div returns q / o.
func (q Quantity) Div(o Quantity) Quantity {
	return Quantity{Value: q.Value / o.Value, Dimensions: q.Dimensions.Sub(o.Dimensions)}
}

// Scale returns q with its value multiplied by k.
func (q Quantity) Scale(k float64) Quantity {
	return New(q.Value*k, q.Dimensions)
}

// Inv returns 1 / q.
func (q Quantity) Inv() Quantity {
	return Quantity{Value: 1 / q.Value, Dimensions: q.Dimensions.Neg()}
}

// Pow returns q raised to exp.
func (q Quantity) Pow(exp float64) Quantity {
	return Quantity{Value: math.Pow(q.Value, exp), Dimensions: q.Dimensions.Scale(exp)}
}

// Compare returns -1, 0 or +1 depending on whether q is less than, equal to
// or greater than o. Both must have equal dimensions.
func (q Quantity) Compare(o Quantity) (int, error) {
	if err := q.compatible("<=>", o); err != nil {
		return 0, err
	}
	switch {
	case q.Value < o.Value:
		return -1, nil
	case q.Value > o.Value:
		return 1, nil
	}
	return 0, nil
}

// In returns the value of q expressed in the unit expression expr, e.g.
// 1000 m In "km" is 1.
func (q Quantity) In(t *units.Translator, expr string) (float64, error) {
	u, err := t.Translate(expr)
	if err != nil {
		return 0, skerr.Wrap(err)
	}
	if !u.Dimensions.Equal(q.Dimensions) {
		return 0, skerr.Fmt("%s in %q (%s): %w", q.Dimensions, expr, u.Dimensions, ErrIncompatible)
	}
	return q.Value / u.Factor, nil
}

// Format returns "<value> <unit expression>" using t to find the units. The
// value is expressed in the emitted units, so with the SI Translator, whose
// registered unit of mass is the gram, 1 kg formats as "1000 g".
func (q Quantity) Format(t *units.Translator) (string, error) {
	expr, err := t.ReverseLookup(q.Dimensions)
	if err != nil {
		return "", skerr.Wrap(err)
	}
	value, err := q.In(t, expr)
	if err != nil {
		return "", skerr.Wrapf(err, "reading back %q", expr)
	}
	s := strconv.FormatFloat(value, 'g', -1, 64)
	if expr == "" {
		return s, nil
	}
	return s + " " + expr, nil
}

// String implements fmt.Stringer with the default Translator. Dimensions
// the Translator cannot name are printed as an exponent vector.
func (q Quantity) String() string {
	s, err := q.Format(Default())
	if err != nil {
		return strconv.FormatFloat(q.Value, 'g', -1, 64) + " " + q.Dimensions.String()
	}
	return s
}
