package render

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/diamondlens-cli/internal/clean"
	"github.com/KaramelBytes/diamondlens-cli/internal/config"
	"github.com/KaramelBytes/diamondlens-cli/internal/diamond"
	"github.com/KaramelBytes/diamondlens-cli/internal/pipeline"
	"github.com/KaramelBytes/diamondlens-cli/internal/stats"
	"github.com/KaramelBytes/diamondlens-cli/internal/utils"
	"github.com/KaramelBytes/diamondlens-cli/internal/value"
)

// Document is the serializable view of a pipeline result.
type Document struct {
	RunID         string                  `json:"run_id" yaml:"run_id"`
	Source        string                  `json:"source" yaml:"source"`
	Rules         config.Rules            `json:"rules" yaml:"rules"`
	Cleaning      *clean.Report           `json:"cleaning" yaml:"cleaning"`
	Overall       stats.Bundle            `json:"overall" yaml:"overall"`
	Distributions *pipeline.Distributions `json:"distributions,omitempty" yaml:"distributions,omitempty"`
	Segment       stats.Bundle            `json:"value_segment" yaml:"value_segment"`
	Markers       value.Markers           `json:"markers" yaml:"markers"`
	BelowMedian   *stats.Bundle           `json:"below_median,omitempty" yaml:"below_median,omitempty"`
	Samples       []map[string]string     `json:"samples" yaml:"samples"`
}

// NewDocument converts a result into its serializable view.
func NewDocument(res *pipeline.Result) Document {
	doc := Document{
		RunID:         res.RunID,
		Source:        res.Source,
		Rules:         res.Rules,
		Cleaning:      res.Report,
		Overall:       res.Overall,
		Distributions: res.Distributions,
		Segment:       res.SegmentStats,
		Markers:       res.Markers,
		BelowMedian:   res.BelowStats,
		Samples:       []map[string]string{},
	}
	fields := diamond.Fields()
	if res.Samples != nil {
		for _, r := range res.Samples.Records {
			row := Row(r)
			m := make(map[string]string, len(fields))
			for i, f := range fields {
				m[f.String()] = row[i]
			}
			doc.Samples = append(doc.Samples, m)
		}
	}
	return doc
}

// JSON renders res as indented JSON.
func JSON(res *pipeline.Result) ([]byte, error) {
	return utils.PrettyJSON(NewDocument(res))
}

// YAML renders res as YAML.
func YAML(res *pipeline.Result) ([]byte, error) {
	b, err := yaml.Marshal(NewDocument(res))
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	return b, nil
}

// Format renders res in the named format: markdown, json or yaml.
func Format(res *pipeline.Result, format string) ([]byte, error) {
	switch format {
	case "", "markdown", "md":
		return []byte(Markdown(res)), nil
	case "json":
		return JSON(res)
	case "yaml", "yml":
		return YAML(res)
	}
	return nil, fmt.Errorf("unsupported format: %s (use markdown|json|yaml)", format)
}
