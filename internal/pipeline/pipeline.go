// Package pipeline runs cleaning, value selection and summaries over one table.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KaramelBytes/diamondlens-cli/internal/clean"
	"github.com/KaramelBytes/diamondlens-cli/internal/config"
	"github.com/KaramelBytes/diamondlens-cli/internal/diamond"
	"github.com/KaramelBytes/diamondlens-cli/internal/logging"
	"github.com/KaramelBytes/diamondlens-cli/internal/stats"
	"github.com/KaramelBytes/diamondlens-cli/internal/value"
)

const stageOverall = "overall"

// Options controls a pipeline run.
type Options struct {
	Rules config.Rules
	// SampleRows is how many below-median rows to keep as examples.
	SampleRows int
	// HistogramBins for the price and carat distributions; 0 skips them.
	HistogramBins int
	Logger        *zap.Logger
}

// DefaultOptions returns the stock rules with 10 sample rows and 60 bins.
func DefaultOptions() Options {
	return Options{Rules: config.DefaultRules(), SampleRows: 10, HistogramBins: 60}
}

// Distributions holds the overall price and carat histograms.
type Distributions struct {
	Price []stats.Bin `json:"price" yaml:"price"`
	Carat []stats.Bin `json:"carat" yaml:"carat"`
}

// Result is the read-only output of one run.
type Result struct {
	RunID         string
	Source        string
	Rules         config.Rules
	Clean         *diamond.DiamondTable
	Report        *clean.Report
	Overall       stats.Bundle
	Distributions *Distributions
	Segment       *diamond.DiamondTable
	SegmentStats  stats.Bundle
	Markers       value.Markers
	Below         *diamond.DiamondTable
	Samples       *diamond.DiamondTable

	// BelowStats is nil when no segment row is priced below the median.
	BelowStats *stats.Bundle
}

// Run executes the full pipeline on raw. Any failure aborts the run and no
// partial result is returned. ctx is checked between stages.
func Run(ctx context.Context, raw *diamond.DiamondTable, opt Options) (*Result, error) {
	if raw == nil {
		return nil, &diamond.EmptyInputError{Stage: clean.StageMissing}
	}
	if err := opt.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	runID := uuid.NewString()
	log := logging.OrNop(opt.Logger).With(zap.String("run_id", runID))

	res := &Result{RunID: runID, Source: raw.Name, Rules: opt.Rules}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"clean", func() error {
			tbl, rep, err := clean.New(opt.Rules, log).Clean(raw)
			if err != nil {
				return err
			}
			res.Clean, res.Report = tbl, rep
			return nil
		}},
		{"summarize overall", func() error {
			b, err := stats.Summarize(res.Clean, stageOverall)
			if err != nil {
				return err
			}
			res.Overall = b
			if opt.HistogramBins > 0 {
				price, err := stats.Histogram(res.Clean, diamond.Price, opt.HistogramBins, stageOverall)
				if err != nil {
					return err
				}
				carat, err := stats.Histogram(res.Clean, diamond.Carat, opt.HistogramBins, stageOverall)
				if err != nil {
					return err
				}
				res.Distributions = &Distributions{Price: price, Carat: carat}
			}
			return nil
		}},
		{"select value segment", func() error {
			res.Segment = value.NewFilter(opt.Rules).Select(res.Clean)
			b, err := stats.Summarize(res.Segment, value.StageSegment)
			if err != nil {
				return err
			}
			res.SegmentStats = b
			m, err := value.SegmentMarkers(res.Segment)
			if err != nil {
				return err
			}
			res.Markers = m
			return nil
		}},
		{"split below median", func() error {
			below, _, err := value.BelowMedian(res.Segment)
			if err != nil {
				return err
			}
			res.Below = below
			res.Samples = below.Head(opt.SampleRows)
			if below.Len() == 0 {
				return nil
			}
			b, err := stats.Summarize(below, value.StageBelowMedian)
			if err != nil {
				return err
			}
			res.BelowStats = &b
			return nil
		}},
	}
	for _, st := range steps {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", st.name, err)
		}
		if err := st.fn(); err != nil {
			log.Warn("pipeline stage failed", zap.String("stage", st.name), zap.Error(err))
			return nil, fmt.Errorf("%s: %w", st.name, err)
		}
	}
	log.Info("pipeline finished",
		zap.String("source", res.Source),
		zap.Int("clean_rows", res.Clean.Len()),
		zap.Int("segment_rows", res.Segment.Len()),
		zap.Int("below_median_rows", res.Below.Len()))
	return res, nil
}
