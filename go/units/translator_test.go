package units

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.dimquant.dev/dimquant/go/dimension"
	"go.dimquant.dev/dimquant/go/testutils/unittest"
)

type dims = dimension.Map

func TestTranslate_SIBaseDimensions(t *testing.T) {
	unittest.SmallTest(t)
	tr := New()
	testCases := []struct {
		expr string
		want dims
	}{
		{"m", dims{Length: 1}},
		{"s", dims{Time: 1}},
		{"K", dims{Temperature: 1}},
		{"A", dims{Current: 1}},
		{"mol", dims{AmountOfSubstance: 1}},
		{"cd", dims{LuminousIntensity: 1}},
		{"kg", dims{Mass: 1}},
	}
	for _, tc := range testCases {
		u, err := tr.Translate(tc.expr)
		require.NoError(t, err, tc.expr)
		assert.True(t, u.Dimensions.Equal(tc.want), "%s: got %s", tc.expr, u.Dimensions)
		assert.InDelta(t, 1.0, u.Factor, 1e-12, tc.expr)
	}
}

func TestTranslate_Dimensions(t *testing.T) {
	unittest.SmallTest(t)
	tr := New()
	testCases := []struct {
		expr string
		want dims
	}{
		{"", dims{}},
		{"m", dims{"L": 1}},
		{"m2", dims{"L": 2}},
		{"m-2", dims{"L": -2}},
		{"m2.5", dims{"L": 2.5}},
		{"m/s", dims{"L": 1, "t": -1}},
		{"m.s-1", dims{"L": 1, "t": -1}},
		{"s-1.m", dims{"L": 1, "t": -1}},
		{"m/s2", dims{"L": 1, "t": -2}},
		// '/' inverts everything up to the end of the group.
		{"m/s.K", dims{"L": 1, "t": -1, "T": -1}},
		{"m/s/K", dims{"L": 1, "t": -1, "T": -1}},
		{"(m/s.K).A", dims{"L": 1, "t": -1, "T": -1, "i": 1}},
		// A division inside a division restores the sign.
		{"m/(s/K)", dims{"L": 1, "t": -1, "T": 1}},
		{"(m/(s/K))", dims{"L": 1, "t": -1, "T": 1}},
		{"/(m/s)", dims{"L": -1, "t": 1}},
		{"(m3/K)-3", dims{"L": -9, "T": 3}},
		{"(m3/K)3", dims{"L": 9, "T": -3}},
		{"((m))2", dims{"L": 2}},
		{"m.m", dims{"L": 2}},
		{"m/m", dims{}},
		{"(kg.s)-2/((m3/K)-3/A2)", dims{"M": -2, "t": -2, "L": 9, "T": -3, "i": 2}},
		{"(kg.s)2/((m3/K)-3/A2)", dims{"M": 2, "t": 2, "L": 9, "T": -3, "i": 2}},
		{"(kg.s)2/(m3/K)-3/A2", dims{"M": 2, "t": 2, "L": 9, "T": -3, "i": -2}},
		{"(kg.s)2/(m3/K)-3/A-2", dims{"M": 2, "t": 2, "L": 9, "T": -3, "i": 2}},
		{"(kg.s)2/(m3/K)3/A-2", dims{"M": 2, "t": 2, "L": -9, "T": 3, "i": 2}},
	}
	for _, tc := range testCases {
		u, err := tr.Translate(tc.expr)
		require.NoError(t, err, tc.expr)
		assert.True(t, u.Dimensions.Equal(tc.want), "%q: got %s want %v", tc.expr, u.Dimensions, tc.want)
	}
}

func TestTranslate_Factors(t *testing.T) {
	unittest.SmallTest(t)
	tr := New()
	testCases := []struct {
		expr string
		want float64
	}{
		{"m", 1},
		{"km", 1e3},
		{"cm.s-2", 1e-2},
		{"g", 1e-3},
		{"kg", 1},
		{"mg", 1e-6},
		{"km2", 1e6},
		{"m/km", 1e-3},
		{"(cm)3", 1e-6},
		{"(km/ms)2", 1e12},
	}
	for _, tc := range testCases {
		u, err := tr.Translate(tc.expr)
		require.NoError(t, err, tc.expr)
		assert.InEpsilon(t, tc.want, u.Factor, 1e-9, tc.expr)
	}
}

func TestTranslate_PrefixComposition(t *testing.T) {
	unittest.SmallTest(t)
	tr := New()
	m, err := tr.Translate("m")
	require.NoError(t, err)
	km, err := tr.Translate("km")
	require.NoError(t, err)

	assert.InEpsilon(t, 1000*m.Factor, km.Factor, 1e-12)
	assert.True(t, km.Dimensions.Equal(m.Dimensions))
}

func TestTranslate_Errors(t *testing.T) {
	unittest.SmallTest(t)
	tr := New()
	testCases := []struct {
		expr string
		want error
	}{
		{"wm", ErrUnknownPrefix},
		{"w", ErrMalformedUnit},
		{"xyz", ErrUnknownUnit},
		{"h", ErrMalformedUnit},
		{"m s", ErrLexical},
		{"m*s", ErrLexical},
		{"2m", ErrSyntax},
		{"-1", ErrSyntax},
		{"(m", ErrSyntax},
		{"m)", ErrSyntax},
		{"((m)", ErrSyntax},
	}
	for _, tc := range testCases {
		_, err := tr.Translate(tc.expr)
		require.ErrorIs(t, err, tc.want, tc.expr)
	}
}

func TestTranslate_UnknownPrefixAndUnitShareCategory(t *testing.T) {
	unittest.SmallTest(t)
	tr := New()
	_, errPrefix := tr.Translate("wm")
	_, errUnit := tr.Translate("xyz")
	_, errMalformed := tr.Translate("w")

	assert.ErrorIs(t, errPrefix, ErrNotFound)
	assert.ErrorIs(t, errUnit, ErrNotFound)
	assert.NotErrorIs(t, errPrefix, ErrUnknownUnit)
	assert.NotErrorIs(t, errUnit, ErrUnknownPrefix)
	assert.NotErrorIs(t, errMalformed, ErrNotFound)
	assert.Contains(t, errPrefix.Error(), `prefix "w"`)
	assert.Contains(t, errUnit.Error(), `"yz"`)
}

func TestTranslate_EmptyTranslator(t *testing.T) {
	unittest.SmallTest(t)
	tr := NewBasic()
	_, err := tr.Translate("m")
	require.ErrorIs(t, err, ErrMalformedUnit)
	_, err = tr.Translate("km")
	require.ErrorIs(t, err, ErrUnknownUnit)

	u, err := tr.Translate("")
	require.NoError(t, err)
	assert.Equal(t, 1.0, u.Factor)
	assert.True(t, u.Dimensions.IsZero())
}

func TestReverseLookup(t *testing.T) {
	unittest.SmallTest(t)
	tr := New()
	testCases := []struct {
		input dimension.Exponents
		want  string
	}{
		{dimension.New(map[string]float64{"L": 1}), "m"},
		{dims{"L": 1}, "m"},
		{dims{"L": 1, "t": -1}, "m.s-1"},
		{dims{"L": 2, "t": -1}, "m2.s-1"},
		{dims{"L": 1, "t": 0}, "m"},
		{dims{"M": 1}, "g"},
		{dims{"M": 1, "L": 1}, "m.g"},
		{dims{"i": 0.5}, "A0.5"},
		{dims{"N": 1, "J": -2}, "cd-2.mol"},
		{dims{}, ""},
	}
	for _, tc := range testCases {
		got, err := tr.ReverseLookup(tc.input)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestReverseLookup_Errors(t *testing.T) {
	unittest.SmallTest(t)
	tr := New()
	_, err := tr.ReverseLookup(nil)
	require.ErrorIs(t, err, dimension.ErrTypeMismatch)

	_, err = tr.ReverseLookup((*dimension.Vector)(nil))
	require.ErrorIs(t, err, dimension.ErrTypeMismatch)

	_, err = tr.ReverseLookup(dims{"X": 1})
	require.ErrorIs(t, err, ErrNoReverseUnit)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReverseLookup_IgnoresCompoundUnits(t *testing.T) {
	unittest.SmallTest(t)
	tr := New()
	require.NoError(t, tr.RegisterUnits(UnitTable{
		"N": NewUnit(1, map[string]float64{"M": 1, "L": 1, "t": -2}),
	}, false))

	got, err := tr.ReverseLookup(dims{"M": 1, "L": 1, "t": -2})
	require.NoError(t, err)
	assert.Equal(t, "m.g.s-2", got)
}

func TestReverseLookup_PrefersUnitWithFactorOne(t *testing.T) {
	unittest.SmallTest(t)
	tr := New()
	require.NoError(t, tr.RegisterUnits(UnitTable{
		"in": NewUnit(0.0254, map[string]float64{"L": 1}),
	}, false))
	got, err := tr.ReverseLookup(dims{"L": 3})
	require.NoError(t, err)
	assert.Equal(t, "m3", got)
}

func TestReverseLookup_RoundTrip(t *testing.T) {
	unittest.SmallTest(t)
	tr := New()
	testCases := []struct {
		dims   dims
		factor float64
	}{
		{dims{"L": 1}, 1},
		{dims{"L": 1, "t": -1}, 1},
		{dims{"M": 1, "L": 2, "t": -3, "i": -1}, 1e-3},
		{dims{"T": -0.5, "N": 4}, 1},
		{dims{"J": 1}, 1},
	}
	for _, tc := range testCases {
		s, err := tr.ReverseLookup(tc.dims)
		require.NoError(t, err)
		u, err := tr.Translate(s)
		require.NoError(t, err, s)
		assert.True(t, u.Dimensions.Equal(tc.dims), "%s: got %s want %v", s, u.Dimensions, tc.dims)
		assert.InDelta(t, tc.factor, u.Factor, 1e-12, s)
	}
}

func TestReverseLookup_EmitsRegisteredSymbolsOnly(t *testing.T) {
	unittest.SmallTest(t)
	tr := New()
	got, err := tr.ReverseLookup(dims{"M": 1, "L": 1, "t": -2})
	require.NoError(t, err)
	registered := tr.Units()
	for _, part := range strings.Split(got, ".") {
		sym := strings.TrimRight(part, "-0123456789.")
		_, ok := registered[sym]
		assert.True(t, ok, "%q in %q is not a registered unit", sym, got)
	}
}

func TestReverseLookup_FallsBackToShortestSymbolWithoutFactorOne(t *testing.T) {
	unittest.SmallTest(t)
	tr := NewBasic()
	require.NoError(t, tr.RegisterUnits(UnitTable{
		"ft":   NewUnit(0.3048, map[string]float64{"L": 1}),
		"inch": NewUnit(0.0254, map[string]float64{"L": 1}),
		"yd":   NewUnit(0.9144, map[string]float64{"L": 1}),
	}, false))
	require.NoError(t, tr.RegisterPrefixes(SIPrefixes(), false))
	got, err := tr.ReverseLookup(dims{"L": 2})
	require.NoError(t, err)
	assert.Equal(t, "ft2", got)
}

func TestRegisterUnits_Merge(t *testing.T) {
	unittest.SmallTest(t)
	tr := New()
	_, err := tr.Translate("fanta")
	require.ErrorIs(t, err, ErrUnknownUnit)

	require.NoError(t, tr.RegisterUnits(UnitTable{
		"fanta": NewUnit(0.0254, map[string]float64{"L": 1}),
	}, false))

	u, err := tr.Translate("fanta")
	require.NoError(t, err)
	assert.InEpsilon(t, 0.0254, u.Factor, 1e-12)
	// SI units are still there.
	_, err = tr.Translate("cm")
	require.NoError(t, err)
}

func TestRegisterUnits_Override(t *testing.T) {
	unittest.SmallTest(t)
	tr := New()
	require.NoError(t, tr.RegisterUnits(UnitTable{
		"fanta": NewUnit(0.0254, map[string]float64{"L": 1}),
	}, true))

	_, err := tr.Translate("fanta")
	require.NoError(t, err)
	_, err = tr.Translate("cm")
	require.ErrorIs(t, err, ErrUnknownUnit)
	assert.Len(t, tr.Units(), 1)
}

func TestRegisterUnits_Duplicate_LeavesTableUntouched(t *testing.T) {
	unittest.SmallTest(t)
	tr := New()
	err := tr.RegisterUnits(UnitTable{
		"fanta": NewUnit(0.0254, map[string]float64{"L": 1}),
		"m":     NewUnit(100, map[string]float64{"L": 1}),
		"s":     NewUnit(2, map[string]float64{"t": 1}),
	}, false)
	require.ErrorIs(t, err, ErrDuplicate)
	assert.Contains(t, err.Error(), `unit "m"`)
	assert.Contains(t, err.Error(), `unit "s"`)

	m, err := tr.Translate("m")
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.Factor)
	_, err = tr.Translate("fanta")
	require.ErrorIs(t, err, ErrUnknownUnit)
}

func TestRegisterUnits_CopiesIncomingTable(t *testing.T) {
	unittest.SmallTest(t)
	tr := NewBasic()
	table := UnitTable{"m": NewUnit(1, map[string]float64{"L": 1})}
	require.NoError(t, tr.RegisterUnits(table, false))
	table["s"] = NewUnit(1, map[string]float64{"t": 1})

	assert.Len(t, tr.Units(), 1)
}

func TestRegisterPrefixes_Merge(t *testing.T) {
	unittest.SmallTest(t)
	tr := New()
	_, err := tr.Translate("qm")
	require.ErrorIs(t, err, ErrUnknownPrefix)

	require.NoError(t, tr.RegisterPrefixes(PrefixTable{"q": 3.14}, false))

	qm, err := tr.Translate("qm")
	require.NoError(t, err)
	cm, err := tr.Translate("cm")
	require.NoError(t, err)
	assert.InEpsilon(t, 3.14, qm.Factor, 1e-12)
	assert.InEpsilon(t, 314*cm.Factor, qm.Factor, 1e-12)
}

func TestRegisterPrefixes_Override(t *testing.T) {
	unittest.SmallTest(t)
	tr := New()
	require.NoError(t, tr.RegisterPrefixes(PrefixTable{"q": 3.14}, true))

	_, err := tr.Translate("qm")
	require.NoError(t, err)
	_, err = tr.Translate("cm")
	require.ErrorIs(t, err, ErrUnknownPrefix)
	assert.Equal(t, PrefixTable{"q": 3.14}, tr.Prefixes())
}

func TestRegisterPrefixes_Duplicate(t *testing.T) {
	unittest.SmallTest(t)
	tr := New()
	err := tr.RegisterPrefixes(PrefixTable{"m": 1e-2 / 10, "q": 2}, false)
	require.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, 1e-3, tr.Prefixes()["m"])
	_, ok := tr.Prefixes()["q"]
	assert.False(t, ok)
}

func TestRegisterPrefixes_MoreThanOneLetter(t *testing.T) {
	unittest.SmallTest(t)
	tr := New()
	before := tr.Prefixes()

	err := tr.RegisterPrefixes(PrefixTable{"q": 2, "da": 10}, false)
	require.ErrorIs(t, err, ErrPrefixLength)
	assert.NotErrorIs(t, err, ErrDuplicate)

	err = tr.RegisterPrefixes(PrefixTable{"da": 10}, true)
	require.ErrorIs(t, err, ErrPrefixLength)
	assert.Equal(t, before, tr.Prefixes())
}

func TestRegisterPrefixes_NotAnASCIILetter(t *testing.T) {
	unittest.SmallTest(t)
	tr := New()
	before := tr.Prefixes()
	for _, sym := range []string{"µ", "1", "-", "."} {
		err := tr.RegisterPrefixes(PrefixTable{"q": 2, sym: 1e-6}, false)
		require.ErrorIs(t, err, ErrPrefixLetter, sym)
		assert.Equal(t, before, tr.Prefixes())
	}
	// Rejected prefixes could never be lexed as part of a unit anyway.
	_, err := tr.Translate("µm")
	require.ErrorIs(t, err, ErrLexical)
}

func TestNew_ReturnsIndependentTranslators(t *testing.T) {
	unittest.SmallTest(t)
	a := New()
	b := New()
	require.NoError(t, a.RegisterPrefixes(PrefixTable{"q": 3.14}, false))
	require.NoError(t, a.RegisterUnits(UnitTable{"fanta": NewUnit(0.0254, map[string]float64{"L": 1})}, false))

	_, err := b.Translate("qm")
	require.ErrorIs(t, err, ErrUnknownPrefix)
	_, err = b.Translate("fanta")
	require.ErrorIs(t, err, ErrUnknownUnit)
	assert.Len(t, b.Units(), 7)
	assert.Len(t, b.Prefixes(), 20)
}

func TestUnit_Arithmetic(t *testing.T) {
	unittest.SmallTest(t)
	km := NewUnit(1e3, map[string]float64{"L": 1})
	h := NewUnit(3600, map[string]float64{"t": 1})

	speed := km.Mul(h.Pow(-1))
	assert.InEpsilon(t, 1e3/3600, speed.Factor, 1e-12)
	assert.True(t, speed.Dimensions.Equal(dims{"L": 1, "t": -1}))
	assert.Equal(t, "1000 {L:1}", km.String())
}

func TestTranslate_RegistrationInvalidatesCachedResults(t *testing.T) {
	unittest.SmallTest(t)
	tr := New()
	u, err := tr.Translate("m/s")
	require.NoError(t, err)
	assert.Equal(t, 1.0, u.Factor)

	// Cached.
	u, err = tr.Translate("m/s")
	require.NoError(t, err)
	assert.True(t, u.Dimensions.Equal(dims{Length: 1, Time: -1}))

	require.NoError(t, tr.RegisterUnits(UnitTable{
		"m": NewUnit(1609.344, map[string]float64{Length: 1}),
		"s": NewUnit(3600, map[string]float64{Time: 1}),
	}, true))
	u, err = tr.Translate("m/s")
	require.NoError(t, err)
	assert.InDelta(t, 0.44704, u.Factor, 1e-12)

	require.NoError(t, tr.RegisterPrefixes(PrefixTable{"k": 1e3}, true))
	u, err = tr.Translate("km")
	require.NoError(t, err)
	assert.InDelta(t, 1609344.0, u.Factor, 1e-6)
}

func TestTranslate_ConcurrentReaders(t *testing.T) {
	unittest.SmallTest(t)
	tr := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, expr := range []string{"kg.m/s2", "(km/ms)2", "cd-2.mol", "kg.m/s2"} {
				_, err := tr.Translate(expr)
				assert.NoError(t, err)
				_, err = tr.ReverseLookup(dims{Mass: 1, Length: 1, Time: -2})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
}
