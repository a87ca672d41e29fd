// Package dimension implements the exponent vector of a physical quantity,
// e.g. {L: 1, t: -1} for a velocity. Symbols are opaque strings; any symbol
// that is not stored has exponent 0.
//
// A Vector is an immutable value. Every operation returns a freshly
// allocated Vector and never touches its operands.
package dimension

import (
	"encoding/json"
	"errors"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"go.dimquant.dev/dimquant/go/skerr"
)

// ErrTypeMismatch is returned when an operand cannot be interpreted as a set
// of exponents.
var ErrTypeMismatch = errors.New("unsupported operand type")

// Exponents is anything that can enumerate symbol/exponent pairs. Range
// stops early if fn returns false.
type Exponents interface {
	Range(fn func(symbol string, exponent float64) bool)
}

// Map adapts a plain map to Exponents.
type Map map[string]float64

// Range implements Exponents.
func (m Map) Range(fn func(symbol string, exponent float64) bool) {
	for sym, exp := range m {
		if !fn(sym, exp) {
			return
		}
	}
}

// Vector is a sparse exponent vector. The zero value is the non-dimensional
// vector.
type Vector struct {
	exps map[string]float64
}

// New returns a Vector holding a copy of m. Zero exponents are dropped.
func New(m map[string]float64) Vector {
	return FromExponents(Map(m))
}

// isNil is true for a nil interface and for an interface holding a nil
// pointer, e.g. (*Vector)(nil).
func isNil(e Exponents) bool {
	if e == nil {
		return true
	}
	rv := reflect.ValueOf(e)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}

// FromExponents returns a Vector holding a copy of e. A nil e, or a nil
// pointer, yields the non-dimensional vector.
func FromExponents(e Exponents) Vector {
	v := Vector{exps: map[string]float64{}}
	if isNil(e) {
		return v
	}
	e.Range(func(sym string, exp float64) bool {
		if exp != 0 {
			v.exps[sym] = exp
		}
		return true
	})
	return v
}

// Coerce converts the supported operand types into a Vector: Vector,
// *Vector, Exponents, map[string]float64 and map[string]int. Anything else
// yields ErrTypeMismatch.
func Coerce(o interface{}) (Vector, error) {
	switch t := o.(type) {
	case Vector:
		return FromExponents(t), nil
	case *Vector:
		if t == nil {
			break
		}
		return FromExponents(*t), nil
	case map[string]float64:
		return New(t), nil
	case map[string]int:
		m := make(map[string]float64, len(t))
		for sym, exp := range t {
			m[sym] = float64(exp)
		}
		return New(m), nil
	case Exponents:
		if isNil(t) {
			break
		}
		return FromExponents(t), nil
	}
	return Vector{}, skerr.Wrapf(ErrTypeMismatch, "cannot use %T as dimensions", o)
}

// Range implements Exponents. Symbols are visited in sorted order.
func (v Vector) Range(fn func(symbol string, exponent float64) bool) {
	for _, sym := range v.Symbols() {
		if !fn(sym, v.exps[sym]) {
			return
		}
	}
}

// Get returns the exponent of symbol, 0 if absent.
func (v Vector) Get(symbol string) float64 {
	return v.exps[symbol]
}

// Len returns the number of symbols with a nonzero exponent.
func (v Vector) Len() int {
	return len(v.exps)
}

// IsZero returns true if the vector is non-dimensional.
func (v Vector) IsZero() bool {
	return len(v.exps) == 0
}

// Symbols returns the symbols with a nonzero exponent, sorted.
func (v Vector) Symbols() []string {
	ret := make([]string, 0, len(v.exps))
	for sym := range v.exps {
		ret = append(ret, sym)
	}
	sort.Strings(ret)
	return ret
}

// Map returns a copy of the nonzero exponents.
func (v Vector) Map() map[string]float64 {
	ret := make(map[string]float64, len(v.exps))
	for sym, exp := range v.exps {
		ret[sym] = exp
	}
	return ret
}

// combine applies op to every symbol in the union of v and o.
func (v Vector) combine(o Exponents, op func(a, b float64) float64) Vector {
	other := FromExponents(o)
	ret := Vector{exps: make(map[string]float64, len(v.exps)+len(other.exps))}
	set := func(sym string) {
		if exp := op(v.exps[sym], other.exps[sym]); exp != 0 {
			ret.exps[sym] = exp
		}
	}
	for sym := range v.exps {
		set(sym)
	}
	for sym := range other.exps {
		if _, ok := v.exps[sym]; !ok {
			set(sym)
		}
	}
	return ret
}

// Add returns v + o.
func (v Vector) Add(o Exponents) Vector {
	return v.combine(o, func(a, b float64) float64 { return a + b })
}

// Sub returns v - o.
func (v Vector) Sub(o Exponents) Vector {
	return v.combine(o, func(a, b float64) float64 { return a - b })
}

// Scale returns every exponent multiplied by k.
func (v Vector) Scale(k float64) Vector {
	ret := Vector{exps: make(map[string]float64, len(v.exps))}
	for sym, exp := range v.exps {
		if scaled := exp * k; scaled != 0 {
			ret.exps[sym] = scaled
		}
	}
	return ret
}

// Neg returns the inverse dimensions, i.e. v scaled by -1.
func (v Vector) Neg() Vector {
	return v.Scale(-1)
}

// Equal returns true if v and o have the same exponent for every symbol.
// Zero entries in o are irrelevant.
func (v Vector) Equal(o Exponents) bool {
	return v.Sub(o).IsZero()
}

// String returns e.g. "{L:1 t:-1}".
func (v Vector) String() string {
	var b strings.Builder
	b.WriteString("{")
	for i, sym := range v.Symbols() {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(sym)
		b.WriteString(":")
		b.WriteString(FormatExponent(v.exps[sym]))
	}
	b.WriteString("}")
	return b.String()
}

// FormatExponent returns the shortest decimal form of exp that the unit
// lexer can read back, i.e. never in exponent notation.
func FormatExponent(exp float64) string {
	return strconv.FormatFloat(exp, 'f', -1, 64)
}

// MarshalJSON implements json.Marshaler.
func (v Vector) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Map())
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Vector) UnmarshalJSON(b []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(b, &m); err != nil {
		return skerr.Wrapf(err, "decoding dimensions")
	}
	*v = New(m)
	return nil
}
