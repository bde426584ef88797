package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/stereo-depth/internal/disparity"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// Its values must match the Get* fallbacks below.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig holds the matcher and device parameters that can be set
// from a JSON file passed with -config. Omitted fields keep their defaults.
type TuningConfig struct {
	// Matcher params
	DispMin             *int     `json:"disp_min,omitempty"`
	DispMax             *int     `json:"disp_max,omitempty"`
	WindowRadius        *int     `json:"window_radius,omitempty"`
	SupportTexture      *int     `json:"support_texture,omitempty"`
	LRThreshold         *int     `json:"lr_threshold,omitempty"`
	PostprocessOnlyLeft *bool    `json:"postprocess_only_left,omitempty"`
	InvalidDisparity    *float64 `json:"invalid_disparity,omitempty"`

	// Device params
	DeviceWorkers *int `json:"device_workers,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field set to its
// default.
func DefaultTuningConfig() *TuningConfig {
	return &TuningConfig{
		DispMin:             ptrInt(0),
		DispMax:             ptrInt(255),
		WindowRadius:        ptrInt(2),
		SupportTexture:      ptrInt(10),
		LRThreshold:         ptrInt(2),
		PostprocessOnlyLeft: ptrBool(false),
		InvalidDisparity:    ptrFloat64(-10),
		DeviceWorkers:       ptrInt(0),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
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

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,    // from cmd/elas
		"../../" + DefaultConfigPath, // from internal/config/
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.DeviceWorkers != nil && *c.DeviceWorkers < 0 {
		return fmt.Errorf("device_workers must be non-negative, got %d", *c.DeviceWorkers)
	}
	return c.DisparityParams().Validate()
}

// DisparityParams returns the block matcher parameters.
func (c *TuningConfig) DisparityParams() disparity.Params {
	return disparity.Params{
		DispMin:             c.GetDispMin(),
		DispMax:             c.GetDispMax(),
		WindowRadius:        c.GetWindowRadius(),
		SupportTexture:      c.GetSupportTexture(),
		LRThreshold:         c.GetLRThreshold(),
		PostprocessOnlyLeft: c.GetPostprocessOnlyLeft(),
		InvalidDisparity:    float32(c.GetInvalidDisparity()),
		Workers:             c.GetDeviceWorkers(),
	}
}

// GetDispMin returns the disp_min value or the default.
func (c *TuningConfig) GetDispMin() int {
	if c.DispMin == nil {
		return 0
	}
	return *c.DispMin
}

// GetDispMax returns the disp_max value or the default.
func (c *TuningConfig) GetDispMax() int {
	if c.DispMax == nil {
		return 255
	}
	return *c.DispMax
}

// GetWindowRadius returns the window_radius value or the default.
func (c *TuningConfig) GetWindowRadius() int {
	if c.WindowRadius == nil {
		return 2
	}
	return *c.WindowRadius
}

// GetSupportTexture returns the support_texture value or the default.
func (c *TuningConfig) GetSupportTexture() int {
	if c.SupportTexture == nil {
		return 10
	}
	return *c.SupportTexture
}

// GetLRThreshold returns the lr_threshold value or the default.
func (c *TuningConfig) GetLRThreshold() int {
	if c.LRThreshold == nil {
		return 2
	}
	return *c.LRThreshold
}

// GetPostprocessOnlyLeft returns the postprocess_only_left value or the default.
func (c *TuningConfig) GetPostprocessOnlyLeft() bool {
	if c.PostprocessOnlyLeft == nil {
		return false // right map is kept for the consistency check
	}
	return *c.PostprocessOnlyLeft
}

// GetInvalidDisparity returns the invalid_disparity value or the default.
func (c *TuningConfig) GetInvalidDisparity() float64 {
	if c.InvalidDisparity == nil {
		return -10
	}
	return *c.InvalidDisparity
}

// GetDeviceWorkers returns the device_workers value or the default (0 = GOMAXPROCS).
func (c *TuningConfig) GetDeviceWorkers() int {
	if c.DeviceWorkers == nil {
		return 0
	}
	return *c.DeviceWorkers
}
