// Package config reads the configuration of a vertex index from JSON or YAML.
package config

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/a8m/envsubst"
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/utils"
	"gopkg.in/yaml.v3"

	"github.com/widve/widve/spatialmath"
	"github.com/widve/widve/vertexindex"
)

// Defaults applied to fields left unset.
const (
	DefaultMinHalfSize = 0.01
	DefaultPadding     = 1e-6
)

// PoseConfig places the indexed geometry in the world: a rotation of AngleDeg degrees
// about Axis followed by Translation.
type PoseConfig struct {
	Translation r3.Vector `json:"translation" yaml:"translation"`
	Axis        r3.Vector `json:"axis" yaml:"axis"`
	AngleDeg    float64   `json:"angle_deg,omitempty" yaml:"angle_deg,omitempty"`
}

// IndexConfig describes which geometry to index and how.
type IndexConfig struct {
	Source      string  `json:"source" yaml:"source"`
	MinHalfSize float64 `json:"min_half_size,omitempty" yaml:"min_half_size,omitempty"`
	Padding     float64 `json:"padding,omitempty" yaml:"padding,omitempty"`
	// VoxelSize, when positive, thins the source to one point per voxel before indexing.
	VoxelSize float64    `json:"voxel_size,omitempty" yaml:"voxel_size,omitempty"`
	Pose      PoseConfig `json:"pose" yaml:"pose"`
}

// Validate ensures all parts of the config are valid.
func (cfg *IndexConfig) Validate(path string) error {
	if cfg.Source == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "source")
	}
	if cfg.MinHalfSize < 0 || math.IsNaN(cfg.MinHalfSize) || math.IsInf(cfg.MinHalfSize, 0) {
		return utils.NewConfigValidationError(path, errors.Errorf("min_half_size must be positive, got %v", cfg.MinHalfSize))
	}
	if cfg.Padding < 0 || math.IsNaN(cfg.Padding) || math.IsInf(cfg.Padding, 0) {
		return utils.NewConfigValidationError(path, errors.Errorf("padding must be non-negative, got %v", cfg.Padding))
	}
	if cfg.VoxelSize < 0 || math.IsNaN(cfg.VoxelSize) || math.IsInf(cfg.VoxelSize, 0) {
		return utils.NewConfigValidationError(path, errors.Errorf("voxel_size must be non-negative, got %v", cfg.VoxelSize))
	}
	if cfg.Pose.AngleDeg != 0 && cfg.Pose.Axis.Norm() == 0 {
		return utils.NewConfigValidationError(path+".pose", errors.New("rotation needs a non-zero axis"))
	}
	return nil
}

// ToPose returns the configured pose.
func (cfg *IndexConfig) ToPose() spatialmath.Pose {
	return spatialmath.NewPoseFromDegrees(cfg.Pose.Translation, cfg.Pose.Axis, cfg.Pose.AngleDeg)
}

// IndexOptions returns the tree sizing for a vertex index.
func (cfg *IndexConfig) IndexOptions() vertexindex.Config {
	return vertexindex.Config{MinHalfSize: cfg.MinHalfSize, Padding: cfg.Padding}
}

func (cfg *IndexConfig) applyDefaults() {
	if cfg.MinHalfSize == 0 {
		cfg.MinHalfSize = DefaultMinHalfSize
	}
	if cfg.Padding == 0 {
		cfg.Padding = DefaultPadding
	}
}

// Read reads a config from the given file, expanding environment variables first.
// A relative source is resolved against the config file's directory.
func Read(filePath string, logger golog.Logger) (*IndexConfig, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	cfg, err := FromReader(filePath, bytes.NewReader(buf), logger)
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(cfg.Source) {
		cfg.Source = filepath.Join(filepath.Dir(filePath), cfg.Source)
	}
	return cfg, nil
}

// FromReader reads a config from the given reader. originalPath picks the format:
// .yaml and .yml are YAML, anything else is JSON.
func FromReader(originalPath string, r io.Reader, logger golog.Logger) (*IndexConfig, error) {
	var cfg IndexConfig
	switch strings.ToLower(filepath.Ext(originalPath)) {
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
			return nil, errors.Wrapf(err, "cannot parse config %q", originalPath)
		}
	default:
		if err := json.NewDecoder(r).Decode(&cfg); err != nil {
			return nil, errors.Wrapf(err, "cannot parse config %q", originalPath)
		}
	}

	if err := cfg.Validate("index"); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	logger.Debugw("read index config", "path", originalPath, "source", cfg.Source,
		"min_half_size", cfg.MinHalfSize, "padding", cfg.Padding, "voxel_size", cfg.VoxelSize)
	return &cfg, nil
}
