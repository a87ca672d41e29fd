package units

import (
	"strconv"

	"go.dimquant.dev/dimquant/go/skerr"
)

// frame is the context a group is evaluated in. It is passed by value, a
// nested group never changes the frame of its parent.
type frame struct {
	// sign is applied to the units of the groups that follow, it is flipped
	// by '/'.
	sign float64
	// depth is the nesting level; the synthetic group around the whole
	// expression is at depth 0.
	depth int
}

// evaluator reduces the items of a single expression to a Unit.
type evaluator struct {
	t   *Translator
	lex *lexer
}

func newEvaluator(t *Translator, expr string) *evaluator {
	return &evaluator{t: t, lex: newLexer(expr)}
}

// eval evaluates the whole expression.
func (e *evaluator) eval() (Unit, error) {
	if it := e.lex.nextItem(); it.typ != itemOpen {
		return Unit{}, e.unexpected(it)
	}
	u, err := e.group(frame{sign: 1, depth: 0})
	if err != nil {
		return Unit{}, err
	}
	if it := e.lex.nextItem(); it.typ != itemEOF {
		return Unit{}, e.unexpected(it)
	}
	return u, nil
}

// group evaluates items up to and including the itemClose that ends the
// current group and returns the product of its atoms. A unit directly
// inside the group, which only happens for the implicit group the lexer
// wraps around every unit, is raised to f.sign.
func (e *evaluator) group(f frame) (Unit, error) {
	sign := f.sign
	// atoms holds the completed units and groups of this level, so that an
	// exponent can be applied to the most recent one.
	var atoms []Unit
	direct := one
	for {
		it := e.lex.nextItem()
		switch it.typ {
		case itemError:
			return Unit{}, skerr.Fmt("%s: %w", it.val, ErrLexical)
		case itemEOF:
			return Unit{}, skerr.Fmt("missing ')': %w", ErrSyntax)
		case itemClose:
			ret := direct.Pow(f.sign)
			for _, a := range atoms {
				ret = ret.Mul(a)
			}
			return ret, nil
		case itemOpen:
			sub, err := e.group(frame{sign: sign, depth: f.depth + 1})
			if err != nil {
				return Unit{}, err
			}
			atoms = append(atoms, sub)
		case itemUnit:
			u, err := e.t.resolveUnit(it.val)
			if err != nil {
				return Unit{}, err
			}
			direct = direct.Mul(u)
		case itemSep:
			// Only separates atoms, '/' keeps binding to the end of the group.
		case itemDiv:
			if f.depth == 0 {
				sign = -1
			} else {
				sign = -sign
			}
		case itemExponent:
			if len(atoms) == 0 {
				return Unit{}, skerr.Fmt("exponent %s at position %d does not follow a unit or group: %w", it.val, it.pos, ErrSyntax)
			}
			exp, err := strconv.ParseFloat(it.val, 64)
			if err != nil {
				return Unit{}, skerr.Fmt("exponent %q: %s: %w", it.val, err, ErrSyntax)
			}
			atoms[len(atoms)-1] = atoms[len(atoms)-1].Pow(exp)
		default:
			return Unit{}, e.unexpected(it)
		}
	}
}

func (e *evaluator) unexpected(it item) error {
	if it.typ == itemError {
		return skerr.Fmt("%s: %w", it.val, ErrLexical)
	}
	if it.typ == itemClose {
		return skerr.Fmt("unbalanced ')': %w", ErrSyntax)
	}
	return skerr.Fmt("unexpected %s: %w", it, ErrSyntax)
}
