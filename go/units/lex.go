package units

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// itemType identifies the type of lex items.
type itemType int

const (
	itemError    itemType = iota // error occurred; value is text of error
	itemEOF                      // no more input
	itemUnit                     // a run of letters, e.g. "kg"
	itemExponent                 // a possibly negative number following an atom, e.g. "-2" or "1.5"
	itemSep                      // '.'
	itemDiv                      // '/'
	itemOpen                     // '(', also emitted around the whole input and around every unit
	itemClose                    // ')'
)

var itemNames = map[itemType]string{
	itemError:    "error",
	itemEOF:      "EOF",
	itemUnit:     "unit",
	itemExponent: "exponent",
	itemSep:      "sep",
	itemDiv:      "div",
	itemOpen:     "open",
	itemClose:    "close",
}

func (t itemType) String() string {
	if s, ok := itemNames[t]; ok {
		return s
	}
	return fmt.Sprintf("item(%d)", int(t))
}

// item is a token returned from the lexer.
type item struct {
	typ itemType
	val string
	pos int // byte offset in the input, -1 for synthetic items
}

func (i item) String() string {
	return fmt.Sprintf("%s(%q)", i.typ, i.val)
}

// tokenPatterns are tried in order at every position, the first to match
// wins.
var tokenPatterns = []struct {
	typ     itemType
	pattern string
}{
	{itemUnit, `[A-Za-z]+`},
	{itemExponent, `-?\d+(?:\.\d+)?`},
	{itemSep, `\.`},
	{itemDiv, `/`},
	{itemOpen, `\(`},
	{itemClose, `\)`},
}

// tokenRegexp is the alternation of all tokenPatterns anchored at the start
// of the remaining input. Group i+1 belongs to tokenPatterns[i].
var tokenRegexp = func() *regexp.Regexp {
	expr := "^(?:"
	for i, p := range tokenPatterns {
		if i > 0 {
			expr += "|"
		}
		expr += "(" + p.pattern + ")"
	}
	return regexp.MustCompile(expr + ")")
}()

// lexer holds the state of the scanner. Items are produced on demand, one
// per call to nextItem, and the lexer cannot be rewound.
type lexer struct {
	input   string
	pos     int
	pending []item
	started bool
	done    bool
}

func newLexer(input string) *lexer {
	return &lexer{input: input}
}

// nextItem returns the next item from the input. The whole input is
// bracketed by a synthetic itemOpen and itemClose, and every itemUnit is
// bracketed the same way. After the final itemClose, or after an itemError,
// only itemEOF is returned.
func (l *lexer) nextItem() item {
	if len(l.pending) > 0 {
		it := l.pending[0]
		l.pending = l.pending[1:]
		return it
	}
	if l.done {
		return item{typ: itemEOF, pos: len(l.input)}
	}
	if !l.started {
		l.started = true
		return item{typ: itemOpen, val: "^", pos: -1}
	}
	if l.pos >= len(l.input) {
		l.done = true
		return item{typ: itemClose, val: "$", pos: -1}
	}
	loc := tokenRegexp.FindStringSubmatchIndex(l.input[l.pos:])
	if loc == nil {
		return l.errorf("unexpected character %q at position %d", l.current(), l.pos)
	}
	for i, p := range tokenPatterns {
		start, end := loc[2*(i+1)], loc[2*(i+1)+1]
		if start < 0 {
			continue
		}
		it := item{typ: p.typ, val: l.input[l.pos+start : l.pos+end], pos: l.pos}
		l.pos += end
		if it.typ == itemUnit {
			l.pending = append(l.pending, it, item{typ: itemClose, val: ")", pos: -1})
			return item{typ: itemOpen, val: "(", pos: -1}
		}
		return it
	}
	return l.errorf("no token pattern matched at position %d", l.pos)
}

// current returns the rune at the current position.
func (l *lexer) current() rune {
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return r
}

// errorf returns an error item and terminates the scan.
func (l *lexer) errorf(format string, args ...interface{}) item {
	l.done = true
	return item{typ: itemError, val: fmt.Sprintf(format, args...), pos: l.pos}
}
