// Package clean applies the sequential row-removal stages to a raw diamond table.
package clean

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/KaramelBytes/diamondlens-cli/internal/config"
	"github.com/KaramelBytes/diamondlens-cli/internal/diamond"
	"github.com/KaramelBytes/diamondlens-cli/internal/logging"
)

// Stage keys, in execution order.
const (
	StageMissing        = "missing_values"
	StageNonPositive    = "non_positive"
	StageExtremeDims    = "extreme_dimensions"
	StageDepthDeviation = "depth_deviation"
)

var (
	// requiredFields must be present for a row to survive the completeness stage.
	// table is checked by the positivity stage only.
	requiredFields = []diamond.Field{
		diamond.Cut, diamond.Color, diamond.Clarity, diamond.Price, diamond.Carat,
		diamond.X, diamond.Y, diamond.Z, diamond.Depth,
	}
	positiveFields = []diamond.Field{
		diamond.Carat, diamond.Depth, diamond.Table, diamond.Price, diamond.X, diamond.Y, diamond.Z,
	}
)

// Cleaner removes incomplete, non-positive, oversized and depth-inconsistent rows.
type Cleaner struct {
	rules  config.Rules
	logger *zap.Logger
}

// New returns a Cleaner for the given rules. A nil logger disables logging.
func New(rules config.Rules, logger *zap.Logger) *Cleaner {
	return &Cleaner{rules: rules, logger: logging.OrNop(logger)}
}

type stage struct {
	key   string
	label string
	keep  func(diamond.Record) bool
}

func (c *Cleaner) stages() []stage {
	return []stage{
		{StageMissing, "Missing values", complete},
		{StageNonPositive, "Zero or negative values in numeric columns", positive},
		{StageExtremeDims, fmt.Sprintf("Extreme dimensions (>%g mm)", c.rules.MaxDimensionMM), c.withinDimensions},
		{StageDepthDeviation, fmt.Sprintf(">%g%% deviation in depth", c.rules.MaxDepthDeviation), c.depthConsistent},
	}
}

// Clean runs every stage in order; each removal count is measured against the
// table left by the previous stage. The input table is not modified.
// An EmptyInputError is returned when no row survives the completeness stage.
func (c *Cleaner) Clean(raw *diamond.DiamondTable) (*diamond.DiamondTable, *Report, error) {
	if raw == nil {
		raw = &diamond.DiamondTable{}
	}
	rep := &Report{Initial: raw.Len()}
	cur := raw
	for _, st := range c.stages() {
		before := cur.Len()
		cur = cur.Filter(st.keep)
		removed := before - cur.Len()
		rep.Stages = append(rep.Stages, StageResult{Key: st.key, Label: st.label, Removed: removed})
		c.logger.Debug("cleaning stage",
			zap.String("table", raw.Name),
			zap.String("stage", st.key),
			zap.Int("before", before),
			zap.Int("removed", removed))
		if st.key == StageMissing && cur.Len() == 0 {
			return nil, nil, &diamond.EmptyInputError{Stage: StageMissing}
		}
	}
	rep.Remaining = cur.Len()
	rep.TotalRemoved = rep.Initial - rep.Remaining
	c.logger.Info("cleaning finished",
		zap.String("table", raw.Name),
		zap.Int("initial", rep.Initial),
		zap.Int("removed", rep.TotalRemoved),
		zap.Int("remaining", rep.Remaining))
	return cur, rep, nil
}

func complete(r diamond.Record) bool {
	for _, f := range requiredFields {
		if !r.Has(f) {
			return false
		}
	}
	return true
}

// positive fails rows with any value <= 0. A missing value never compares as positive.
func positive(r diamond.Record) bool {
	for _, f := range positiveFields {
		v, ok := r.Num(f)
		if !ok || !(v > 0) {
			return false
		}
	}
	return true
}

func (c *Cleaner) withinDimensions(r diamond.Record) bool {
	limit := c.rules.MaxDimensionMM
	return r.X <= limit && r.Y <= limit && r.Z <= limit
}

func (c *Cleaner) depthConsistent(r diamond.Record) bool {
	calc, ok := DepthCalc(r)
	if !ok {
		return false
	}
	return math.Abs(calc-r.Depth) <= c.rules.MaxDepthDeviation
}

// DepthCalc recomputes total depth percentage from the physical dimensions:
// z / mean(x, y) * 100. ok is false when x+y is zero.
func DepthCalc(r diamond.Record) (float64, bool) {
	sum := r.X + r.Y
	if sum == 0 {
		return 0, false
	}
	return r.Z / (sum / 2) * 100, true
}
