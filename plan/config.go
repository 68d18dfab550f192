package plan

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the unified engine configuration loaded from YAML.
type Config struct {
	Geometry GeometryConfig `yaml:"geometry"`
	Snap     SnapConfig     `yaml:"snap"`
	Render   RenderConfig   `yaml:"render"`
}

// GeometryConfig tunes validation, property calculation, and indexing.
type GeometryConfig struct {
	Tolerance     float64            `yaml:"tolerance"`      // meters
	DefaultHeight float64            `yaml:"default_height"` // meters
	IndexGridSize float64            `yaml:"index_grid_size"`
	MinAreas      map[string]float64 `yaml:"min_areas"` // element kind -> m2
}

// SnapConfig tunes the snap system. Tolerances are in pixels, the grid
// size in world units, ortho values in degrees.
type SnapConfig struct {
	Enabled               bool      `yaml:"enabled"`
	OrthoEnabled          bool      `yaml:"ortho_enabled"`
	GridEnabled           bool      `yaml:"grid_enabled"`
	VertexTolerance       float64   `yaml:"vertex_tolerance"`
	EdgeTolerance         float64   `yaml:"edge_tolerance"`
	GridTolerance         float64   `yaml:"grid_tolerance"`
	IntersectionTolerance float64   `yaml:"intersection_tolerance"`
	GridSize              float64   `yaml:"grid_size"`
	OrthoAngles           []float64 `yaml:"ortho_angles"`
	OrthoTolerance        float64   `yaml:"ortho_tolerance"`
}

// RenderConfig tunes plan rendering.
type RenderConfig struct {
	Padding     float64 `yaml:"padding"`      // world units around the plan
	Scale       float64 `yaml:"scale"`        // canvas units per world unit
	StrokeWidth float64 `yaml:"stroke_width"` // canvas units
	GridSpacing float64 `yaml:"grid_spacing"` // world units, 0 disables
	DPI         float64 `yaml:"dpi"`          // PNG resolution
	Labels      bool    `yaml:"labels"`       // draw element IDs
}

func minAreasByName() map[string]float64 {
	out := make(map[string]float64)
	for kind, area := range defaultMinAreas() {
		out[string(kind)] = area
	}
	return out
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	snap := DefaultSnapSettings()
	return &Config{
		Geometry: GeometryConfig{
			Tolerance:     DefaultValidatorTolerance,
			DefaultHeight: DefaultElementHeight,
			IndexGridSize: DefaultIndexGridSize,
			MinAreas:      minAreasByName(),
		},
		Snap: SnapConfig{
			Enabled:               snap.SnapEnabled,
			VertexTolerance:       snap.VertexTolerance,
			EdgeTolerance:         snap.EdgeTolerance,
			GridTolerance:         snap.GridTolerance,
			IntersectionTolerance: snap.IntersectionTolerance,
			GridSize:              snap.GridSize,
			OrthoAngles:           snap.OrthoAngles,
			OrthoTolerance:        snap.OrthoTolerance,
		},
		Render: RenderConfig{
			Padding:     1.0,
			Scale:       50,
			StrokeWidth: 2.0,
			GridSpacing: 1.0,
			DPI:         150,
			Labels:      true,
		},
	}
}

// LoadConfig loads the engine configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	if config.Geometry.Tolerance <= 0 {
		return nil, fmt.Errorf("geometry.tolerance must be positive")
	}
	if config.Geometry.IndexGridSize <= 0 {
		return nil, fmt.Errorf("geometry.index_grid_size must be positive")
	}
	if config.Snap.GridSize <= 0 {
		return nil, fmt.Errorf("snap.grid_size must be positive")
	}
	for kind, area := range config.Geometry.MinAreas {
		if area < 0 {
			return nil, fmt.Errorf("geometry.min_areas.%s must not be negative", kind)
		}
	}

	return config, nil
}

// SaveConfig writes the configuration to a YAML file.
func SaveConfig(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// SnapSettings converts the snap section into runtime settings.
func (c *Config) SnapSettings() SnapSettings {
	s := DefaultSnapSettings()
	s.SnapEnabled = c.Snap.Enabled
	s.OrthoEnabled = c.Snap.OrthoEnabled
	s.GridEnabled = c.Snap.GridEnabled
	if c.Snap.VertexTolerance > 0 {
		s.VertexTolerance = c.Snap.VertexTolerance
	}
	if c.Snap.EdgeTolerance > 0 {
		s.EdgeTolerance = c.Snap.EdgeTolerance
	}
	if c.Snap.GridTolerance > 0 {
		s.GridTolerance = c.Snap.GridTolerance
	}
	if c.Snap.IntersectionTolerance > 0 {
		s.IntersectionTolerance = c.Snap.IntersectionTolerance
	}
	if c.Snap.GridSize > 0 {
		s.GridSize = c.Snap.GridSize
	}
	if len(c.Snap.OrthoAngles) > 0 {
		s.OrthoAngles = c.Snap.OrthoAngles
	}
	if c.Snap.OrthoTolerance > 0 {
		s.OrthoTolerance = c.Snap.OrthoTolerance
	}
	return s
}

// Validator builds a validator from the geometry section.
func (c *Config) Validator() *Validator {
	v := NewValidator(c.Geometry.Tolerance)
	for kind, area := range c.Geometry.MinAreas {
		v.MinAreas[ElementKind(kind)] = area
	}
	return v
}
