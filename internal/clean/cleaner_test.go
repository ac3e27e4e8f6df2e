package clean

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/diamondlens-cli/internal/config"
	"github.com/KaramelBytes/diamondlens-cli/internal/diamond"
)

func good(price int) diamond.Record {
	return diamond.Record{
		Carat: 0.3, Cut: "Ideal", Color: "G", Clarity: "VS1",
		Depth: 60, Table: 55, Price: price, X: 4, Y: 4, Z: 2.4,
	}
}

func missing(r diamond.Record, fields ...diamond.Field) diamond.Record {
	for _, f := range fields {
		r.SetMissing(f)
	}
	return r
}

func mixedTable() *diamond.DiamondTable {
	zeroXY := good(10)
	zeroXY.X, zeroXY.Y, zeroXY.Z, zeroXY.Depth = 0, 0, 5, 10

	twoFailures := good(11)
	twoFailures.Carat, twoFailures.Price = 0, -5

	huge := good(12)
	huge.Y = 15.5

	edge := good(13)
	edge.X, edge.Y, edge.Z, edge.Depth = 15, 15, 9, 60

	skewed := good(14)
	skewed.Depth = 65

	return &diamond.DiamondTable{Name: "mixed", Records: []diamond.Record{
		good(1),
		missing(good(2), diamond.Cut),
		missing(good(3), diamond.Depth, diamond.X),
		missing(good(4), diamond.Table),
		zeroXY,
		twoFailures,
		huge,
		edge,
		skewed,
		good(5),
	}}
}

func TestCleanStageCounts(t *testing.T) {
	c := New(config.DefaultRules(), nil)
	out, rep, err := c.Clean(mixedTable())
	require.NoError(t, err)

	assert.Equal(t, 10, rep.Initial)
	expect := map[string]int{
		StageMissing:        2,
		StageNonPositive:    3, // missing table, x=y=0, carat+price
		StageExtremeDims:    1,
		StageDepthDeviation: 1,
	}
	for key, want := range expect {
		got, ok := rep.Removed(key)
		require.True(t, ok, key)
		assert.Equal(t, want, got, key)
	}
	assert.Equal(t, 7, rep.TotalRemoved)
	assert.Equal(t, 3, rep.Remaining)
	assert.True(t, rep.Balanced())

	prices := []int{}
	for _, r := range out.Records {
		prices = append(prices, r.Price)
	}
	assert.Equal(t, []int{1, 13, 5}, prices, "survivors keep relative order")
}

func TestCleanStageOrderAndLabels(t *testing.T) {
	_, rep, err := New(config.DefaultRules(), nil).Clean(mixedTable())
	require.NoError(t, err)
	require.Len(t, rep.Stages, 4)
	keys := []string{rep.Stages[0].Key, rep.Stages[1].Key, rep.Stages[2].Key, rep.Stages[3].Key}
	assert.Equal(t, []string{StageMissing, StageNonPositive, StageExtremeDims, StageDepthDeviation}, keys)
	assert.Equal(t, "Extreme dimensions (>15 mm)", rep.Stages[2].Label)
	assert.Equal(t, ">1% deviation in depth", rep.Stages[3].Label)
}

func TestZeroDimensionsRemovedBeforeDepthStage(t *testing.T) {
	r := good(100)
	r.X, r.Y, r.Z, r.Depth = 0, 0, 5, 10
	_, rep, err := New(config.DefaultRules(), nil).Clean(&diamond.DiamondTable{Records: []diamond.Record{good(1), r}})
	require.NoError(t, err)

	n, _ := rep.Removed(StageNonPositive)
	assert.Equal(t, 1, n)
	n, _ = rep.Removed(StageDepthDeviation)
	assert.Equal(t, 0, n)
}

func TestDepthDeviation(t *testing.T) {
	kept := good(1)
	kept.Z = 2.41
	removed := good(2)
	removed.Z, removed.Depth = 2.41, 65

	calc, ok := DepthCalc(kept)
	require.True(t, ok)
	assert.InDelta(t, 60.25, calc, 1e-9)

	out, rep, err := New(config.DefaultRules(), nil).Clean(&diamond.DiamondTable{Records: []diamond.Record{kept, removed}})
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, 1, out.Records[0].Price)
	n, _ := rep.Removed(StageDepthDeviation)
	assert.Equal(t, 1, n)
}

func TestDepthCalcGuardsZeroWidth(t *testing.T) {
	r := good(1)
	r.X, r.Y = 0, 0
	_, ok := DepthCalc(r)
	assert.False(t, ok)

	c := New(config.DefaultRules(), nil)
	assert.False(t, c.depthConsistent(r))
}

func TestCleanIsIdempotent(t *testing.T) {
	c := New(config.DefaultRules(), nil)
	once, _, err := c.Clean(mixedTable())
	require.NoError(t, err)

	twice, rep, err := c.Clean(once)
	require.NoError(t, err)
	for _, s := range rep.Stages {
		assert.Zero(t, s.Removed, s.Key)
	}
	assert.Equal(t, once.Records, twice.Records)
}

func TestCleanDoesNotMutateInput(t *testing.T) {
	raw := mixedTable()
	before := len(raw.Records)
	_, _, err := New(config.DefaultRules(), nil).Clean(raw)
	require.NoError(t, err)
	assert.Len(t, raw.Records, before)
}

func TestCleanEmptyAfterCompleteness(t *testing.T) {
	raw := &diamond.DiamondTable{Records: []diamond.Record{missing(good(1), diamond.Price)}}
	out, rep, err := New(config.DefaultRules(), nil).Clean(raw)

	var empty *diamond.EmptyInputError
	require.True(t, errors.As(err, &empty), "got %v", err)
	assert.Equal(t, StageMissing, empty.Stage)
	assert.Nil(t, out)
	assert.Nil(t, rep)

	_, _, err = New(config.DefaultRules(), nil).Clean(&diamond.DiamondTable{})
	require.True(t, errors.As(err, &empty))
}

func TestCleanCustomRules(t *testing.T) {
	rules := config.DefaultRules()
	rules.MaxDimensionMM = 4.5
	rules.MaxDepthDeviation = 0.1

	big := good(2)
	big.X = 5
	slightlyOff := good(3)
	slightlyOff.Depth = 60.5

	_, rep, err := New(rules, nil).Clean(&diamond.DiamondTable{Records: []diamond.Record{good(1), big, slightlyOff}})
	require.NoError(t, err)
	n, _ := rep.Removed(StageExtremeDims)
	assert.Equal(t, 1, n)
	n, _ = rep.Removed(StageDepthDeviation)
	assert.Equal(t, 1, n)
	assert.Equal(t, "Extreme dimensions (>4.5 mm)", rep.Stages[2].Label)
}

func TestRemovedUnknownStage(t *testing.T) {
	rep := &Report{}
	_, ok := rep.Removed("nope")
	assert.False(t, ok)
}
