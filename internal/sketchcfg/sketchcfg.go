// Package sketchcfg holds the optional TOML configuration for the build and
// query CLIs: an enum-membership check per constrained field, and a single
// aggregate error on the first violation rather than a multi-error
// collection.
package sketchcfg

import (
	"fmt"
	"os"
	"slices"

	"github.com/pelletier/go-toml/v2"
)

var (
	validTFModes     = []string{"raw", "log", "boolean", "augmented", "square"}
	validBuilders    = []string{"monotonic", "allalign", "single"}
	validStrategies  = []string{"binary", "linear"}
)

// BuildDefaults holds file-configurable defaults for ragalign-build. Every
// field here except DrawCacheLRU has a corresponding CLI flag
// (internal/cliflags) that, when set, overrides the value loaded from file;
// DrawCacheLRU is set only from the file.
type BuildDefaults struct {
	HashCount    int    `toml:"HashCount"`
	TFMode       string `toml:"TFMode"`
	Builder      string `toml:"Builder"`
	Active       bool   `toml:"Active"`
	Strategy     string `toml:"Strategy"`
	Vocab        int    `toml:"Vocab"`
	DrawCacheLRU int    `toml:"DrawCacheLRU"`
}

// QueryDefaults holds file-configurable defaults for ragalign-query.
type QueryDefaults struct {
	Threshold       float64 `toml:"Threshold"`
	SymmetricRanges bool    `toml:"SymmetricRanges"`
	DrawCacheLRU    int     `toml:"DrawCacheLRU"`
}

// DefaultBuildDefaults mirrors spec.md §6's documented CLI defaults.
func DefaultBuildDefaults() BuildDefaults {
	return BuildDefaults{
		HashCount:    64,
		TFMode:       "raw",
		Builder:      "monotonic",
		Active:       true,
		Strategy:     "binary",
		Vocab:        50257,
		DrawCacheLRU: 1 << 16,
	}
}

// DefaultQueryDefaults mirrors spec.md §6's documented query default.
func DefaultQueryDefaults() QueryDefaults {
	return QueryDefaults{
		Threshold:       0.8,
		SymmetricRanges: false,
		DrawCacheLRU:    1 << 16,
	}
}

// LoadBuildDefaults reads a TOML file into a BuildDefaults seeded with
// DefaultBuildDefaults, so fields absent from the file keep their default.
func LoadBuildDefaults(path string) (BuildDefaults, error) {
	cfg := DefaultBuildDefaults()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("sketchcfg: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("sketchcfg: parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadQueryDefaults reads a TOML file into a QueryDefaults seeded with
// DefaultQueryDefaults.
func LoadQueryDefaults(path string) (QueryDefaults, error) {
	cfg := DefaultQueryDefaults()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("sketchcfg: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("sketchcfg: parse %s: %w", path, err)
	}
	return cfg, nil
}

func validateEnum(field, value string, allowed []string) error {
	if !slices.Contains(allowed, value) {
		return fmt.Errorf("`%s` is invalid: %q (valid: %v)", field, value, allowed)
	}
	return nil
}

// Validate runs one enum-membership test per constrained field, plus
// positive-integer checks on the rest.
func (c BuildDefaults) Validate() error {
	if c.HashCount <= 0 {
		return fmt.Errorf("`HashCount` is invalid: %d", c.HashCount)
	}
	if err := validateEnum("TFMode", c.TFMode, validTFModes); err != nil {
		return err
	}
	if err := validateEnum("Builder", c.Builder, validBuilders); err != nil {
		return err
	}
	if err := validateEnum("Strategy", c.Strategy, validStrategies); err != nil {
		return err
	}
	if c.Vocab <= 0 {
		return fmt.Errorf("`Vocab` is invalid: %d", c.Vocab)
	}
	if c.DrawCacheLRU <= 0 {
		return fmt.Errorf("`DrawCacheLRU` is invalid: %d", c.DrawCacheLRU)
	}
	return nil
}

// Validate checks QueryDefaults.
func (c QueryDefaults) Validate() error {
	if c.Threshold < 0.0 || c.Threshold > 1.0 {
		return fmt.Errorf("`Threshold` is invalid: %f", c.Threshold)
	}
	if c.DrawCacheLRU <= 0 {
		return fmt.Errorf("`DrawCacheLRU` is invalid: %d", c.DrawCacheLRU)
	}
	return nil
}
