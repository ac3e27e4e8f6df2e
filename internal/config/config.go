package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ErrInvalidRules marks a configuration whose rules fail Validate.
var ErrInvalidRules = errors.New("invalid rules")

// Rules holds the cleaning and value-segment thresholds.
type Rules struct {
	MaxDimensionMM    float64  `mapstructure:"max_dimension_mm" yaml:"max_dimension_mm" json:"max_dimension_mm"`
	MaxDepthDeviation float64  `mapstructure:"max_depth_deviation" yaml:"max_depth_deviation" json:"max_depth_deviation"`
	ValueMaxCarat     float64  `mapstructure:"value_max_carat" yaml:"value_max_carat" json:"value_max_carat"`
	ValueCuts         []string `mapstructure:"value_cuts" yaml:"value_cuts" json:"value_cuts"`
	ValueColors       []string `mapstructure:"value_colors" yaml:"value_colors" json:"value_colors"`
	ValueClarities    []string `mapstructure:"value_clarities" yaml:"value_clarities" json:"value_clarities"`
}

// DefaultRules returns the stock rule set: 15 mm dimension cap, 1 point depth
// tolerance, and the <0.5ct Ideal G/H VS1/VS2 value segment.
func DefaultRules() Rules {
	return Rules{
		MaxDimensionMM:    15,
		MaxDepthDeviation: 1,
		ValueMaxCarat:     0.5,
		ValueCuts:         []string{"Ideal"},
		ValueColors:       []string{"G", "H"},
		ValueClarities:    []string{"VS1", "VS2"},
	}
}

// Validate rejects thresholds that would make a stage meaningless.
func (r Rules) Validate() error {
	var errs []error
	if r.MaxDimensionMM <= 0 {
		errs = append(errs, fmt.Errorf("max_dimension_mm must be > 0, got %v", r.MaxDimensionMM))
	}
	if r.MaxDepthDeviation < 0 {
		errs = append(errs, fmt.Errorf("max_depth_deviation must be >= 0, got %v", r.MaxDepthDeviation))
	}
	if r.ValueMaxCarat <= 0 {
		errs = append(errs, fmt.Errorf("value_max_carat must be > 0, got %v", r.ValueMaxCarat))
	}
	if len(r.ValueCuts) == 0 {
		errs = append(errs, errors.New("value_cuts must not be empty"))
	}
	if len(r.ValueColors) == 0 {
		errs = append(errs, errors.New("value_colors must not be empty"))
	}
	if len(r.ValueClarities) == 0 {
		errs = append(errs, errors.New("value_clarities must not be empty"))
	}
	return errors.Join(errs...)
}

// Global configuration structure.
type Global struct {
	LogLevel      string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat     string `mapstructure:"log_format" yaml:"log_format"`
	OutputFormat  string `mapstructure:"output_format" yaml:"output_format"`
	SampleRows    int    `mapstructure:"sample_rows" yaml:"sample_rows"`
	HistogramBins int    `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	Rules         Rules  `mapstructure:"rules" yaml:"rules"`
}

// Default returns the built-in configuration used when no file or env is set.
func Default() *Global {
	return &Global{
		LogLevel:      "warn",
		LogFormat:     "console",
		OutputFormat:  "markdown",
		SampleRows:    10,
		HistogramBins: 60,
		Rules:         DefaultRules(),
	}
}

// DefaultPath returns ~/.diamondlens/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".diamondlens", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.diamondlens/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Nested keys map to env vars with
// '.' replaced by '_', e.g. DIAMONDLENS_RULES_MAX_DIMENSION_MM.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("DIAMONDLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_format", def.LogFormat)
	v.SetDefault("output_format", def.OutputFormat)
	v.SetDefault("sample_rows", def.SampleRows)
	v.SetDefault("histogram_bins", def.HistogramBins)
	v.SetDefault("rules.max_dimension_mm", def.Rules.MaxDimensionMM)
	v.SetDefault("rules.max_depth_deviation", def.Rules.MaxDepthDeviation)
	v.SetDefault("rules.value_max_carat", def.Rules.ValueMaxCarat)
	v.SetDefault("rules.value_cuts", def.Rules.ValueCuts)
	v.SetDefault("rules.value_colors", def.Rules.ValueColors)
	v.SetDefault("rules.value_clarities", def.Rules.ValueClarities)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(p))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRules, err)
	}
	return &c, nil
}
