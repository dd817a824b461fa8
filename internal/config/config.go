package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// DefaultConfigPath is the path to the canonical defaults file.
const DefaultConfigPath = "config/strata.defaults.json"

// Config holds the tunable parameters of the geometry core. Every field is
// optional; the Get* methods fall back to built-in defaults for fields the
// file omits, so partial configs are safe.
type Config struct {
	// Triangulation
	DuplicateEpsilon *float64 `json:"duplicate_epsilon,omitempty"`
	LocateCellFactor *float64 `json:"locate_cell_factor,omitempty"`

	// Coordinate transform
	ReferenceEpsilon *float64 `json:"reference_epsilon,omitempty"`

	// Boundary projection
	RibbonWidth    *float64 `json:"ribbon_width,omitempty"`
	RibbonStep     *float64 `json:"ribbon_step,omitempty"`
	RibbonLift     *float64 `json:"ribbon_lift,omitempty"`
	RibbonMaxSteps *int     `json:"ribbon_max_steps,omitempty"`
	FrontAxis      *string  `json:"front_axis,omitempty"`      // "x" or "y"
	FrontDirection *string  `json:"front_direction,omitempty"` // "positive" or "negative"

	// Classification
	Workers           *int    `json:"workers,omitempty"` // 0 means GOMAXPROCS
	AnalysisLayerType *string `json:"analysis_layer_type,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// Empty returns a Config with every field unset.
func Empty() *Config {
	return &Config{}
}

// Defaults returns a Config with every field set to its built-in default.
func Defaults() *Config {
	e := Empty()
	return &Config{
		DuplicateEpsilon:  ptrFloat64(e.GetDuplicateEpsilon()),
		LocateCellFactor:  ptrFloat64(e.GetLocateCellFactor()),
		ReferenceEpsilon:  ptrFloat64(e.GetReferenceEpsilon()),
		RibbonWidth:       ptrFloat64(e.GetRibbonWidth()),
		RibbonStep:        ptrFloat64(e.GetRibbonStep()),
		RibbonLift:        ptrFloat64(e.GetRibbonLift()),
		RibbonMaxSteps:    ptrInt(e.GetRibbonMaxSteps()),
		FrontAxis:         ptrString(e.GetFrontAxis()),
		FrontDirection:    ptrString(e.GetFrontDirection()),
		Workers:           ptrInt(e.GetWorkers()),
		AnalysisLayerType: ptrString(e.GetAnalysisLayerType()),
	}
}

// LoadConfig loads a Config from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadConfig(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads path, or returns Defaults when path is empty.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Defaults(), nil
	}
	return LoadConfig(path)
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents. It panics if the file cannot be loaded and is
// intended for test setup.
func MustLoadDefaultConfig() *Config {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from internal/strata/pipeline/
		"../../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configured values are usable.
func (c *Config) Validate() error {
	positive := []struct {
		name string
		v    *float64
	}{
		{"duplicate_epsilon", c.DuplicateEpsilon},
		{"locate_cell_factor", c.LocateCellFactor},
		{"reference_epsilon", c.ReferenceEpsilon},
		{"ribbon_width", c.RibbonWidth},
		{"ribbon_step", c.RibbonStep},
	}
	for _, f := range positive {
		if f.v == nil {
			continue
		}
		if math.IsNaN(*f.v) || math.IsInf(*f.v, 0) || *f.v <= 0 {
			return fmt.Errorf("%s must be a positive number, got %v", f.name, *f.v)
		}
	}

	if c.RibbonLift != nil && (math.IsNaN(*c.RibbonLift) || math.IsInf(*c.RibbonLift, 0)) {
		return fmt.Errorf("ribbon_lift must be finite, got %v", *c.RibbonLift)
	}

	if c.RibbonMaxSteps != nil && *c.RibbonMaxSteps <= 0 {
		return fmt.Errorf("ribbon_max_steps must be positive, got %d", *c.RibbonMaxSteps)
	}

	if c.FrontAxis != nil {
		switch strings.ToLower(*c.FrontAxis) {
		case "x", "y":
		default:
			return fmt.Errorf("front_axis must be \"x\" or \"y\", got %q", *c.FrontAxis)
		}
	}

	if c.FrontDirection != nil {
		switch strings.ToLower(*c.FrontDirection) {
		case "positive", "negative", "+", "-":
		default:
			return fmt.Errorf("front_direction must be \"positive\" or \"negative\", got %q", *c.FrontDirection)
		}
	}

	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}

	return nil
}

// GetDuplicateEpsilon returns the duplicate_epsilon value or the default.
func (c *Config) GetDuplicateEpsilon() float64 {
	if c.DuplicateEpsilon == nil {
		return 1e-9
	}
	return *c.DuplicateEpsilon
}

// GetLocateCellFactor returns the locate_cell_factor value or the default.
func (c *Config) GetLocateCellFactor() float64 {
	if c.LocateCellFactor == nil {
		return 1.0
	}
	return *c.LocateCellFactor
}

// GetReferenceEpsilon returns the reference_epsilon value or the default.
func (c *Config) GetReferenceEpsilon() float64 {
	if c.ReferenceEpsilon == nil {
		return 1e-12
	}
	return *c.ReferenceEpsilon
}

// GetRibbonWidth returns the ribbon_width value or the default.
func (c *Config) GetRibbonWidth() float64 {
	if c.RibbonWidth == nil {
		return 10
	}
	return *c.RibbonWidth
}

// GetRibbonStep returns the ribbon_step value or the default.
func (c *Config) GetRibbonStep() float64 {
	if c.RibbonStep == nil {
		return 5
	}
	return *c.RibbonStep
}

// GetRibbonLift returns the ribbon_lift value or the default.
func (c *Config) GetRibbonLift() float64 {
	if c.RibbonLift == nil {
		return 0.5
	}
	return *c.RibbonLift
}

// GetRibbonMaxSteps returns the ribbon_max_steps value or the default.
func (c *Config) GetRibbonMaxSteps() int {
	if c.RibbonMaxSteps == nil {
		return 1 << 20
	}
	return *c.RibbonMaxSteps
}

// GetFrontAxis returns the front_axis value or the default.
func (c *Config) GetFrontAxis() string {
	if c.FrontAxis == nil || *c.FrontAxis == "" {
		return "x"
	}
	return *c.FrontAxis
}

// GetFrontDirection returns the front_direction value or the default.
func (c *Config) GetFrontDirection() string {
	if c.FrontDirection == nil || *c.FrontDirection == "" {
		return "positive"
	}
	return *c.FrontDirection
}

// GetWorkers returns the workers value or the default.
func (c *Config) GetWorkers() int {
	if c.Workers == nil {
		return 0
	}
	return *c.Workers
}

// GetAnalysisLayerType returns the analysis_layer_type value or the default.
func (c *Config) GetAnalysisLayerType() string {
	if c.AnalysisLayerType == nil || *c.AnalysisLayerType == "" {
		return "analysis"
	}
	return *c.AnalysisLayerType
}
