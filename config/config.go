// Package config loads the YAML configuration of the formfit programs.
//
// Files are read over Default(), so a file only needs the keys it changes.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/formfitness/go-formfit/align"
	"github.com/formfitness/go-formfit/catalog"
	"github.com/formfitness/go-formfit/detector"
	"github.com/formfitness/go-formfit/tracker"
	"gopkg.in/yaml.v3"
)

// maxFileSize caps the config file read by Load
const maxFileSize = 1 << 20

// Config is the root configuration
type Config struct {
	Alignment  align.Config       `yaml:"alignment"`
	Overlay    OverlayConfig      `yaml:"overlay"`
	Scoring    ScoringConfig      `yaml:"scoring"`
	Smoothing  tracker.Config     `yaml:"smoothing"`
	Detector   detector.Config    `yaml:"detector"`
	References ReferencesConfig   `yaml:"references"`
	Web        WebConfig          `yaml:"web"`
	Log        LogConfig          `yaml:"log"`
	Exercises  []catalog.Exercise `yaml:"exercises"`
}

// OverlayConfig is the initial reference overlay presentation
type OverlayConfig struct {
	Scale  float64 `yaml:"scale"`  // reference overlay scale
	Mirror bool    `yaml:"mirror"` // flip the reference horizontally
	// FitToView scales the reference to fit the view when an exercise is
	// selected, overriding Scale
	FitToView bool `yaml:"fit_to_view"`
}

// ScoringConfig controls how the live skeleton is rated
type ScoringConfig struct {
	Enabled bool `yaml:"enabled"` // color the live skeleton by match
	// GradientSegments is the number of pieces a limb gradient is drawn in
	GradientSegments int  `yaml:"gradient_segments"`
	ShowOverall      bool `yaml:"show_overall"` // draw the overall match label
}

// ReferencesConfig locates the reference images
type ReferencesConfig struct {
	Dir          string `yaml:"dir"`
	Preload      bool   `yaml:"preload"`       // detect every exercise at startup
	PreloadLimit int    `yaml:"preload_limit"` // concurrent preload detections
}

// WebConfig is the HTTP and websocket frame server
type WebConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// LogConfig selects the log level and format
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns the default configuration
func Default() Config {
	return Config{
		Alignment: align.DefaultConfig(),
		Overlay: OverlayConfig{
			Scale:  1.0,
			Mirror: false,
		},
		Scoring: ScoringConfig{
			Enabled:          true,
			GradientSegments: 16,
			ShowOverall:      true,
		},
		Smoothing: tracker.DefaultConfig(),
		Detector:  detector.DefaultConfig(),
		References: ReferencesConfig{
			Dir:          "assets/references",
			Preload:      false,
			PreloadLimit: 2,
		},
		Web: WebConfig{
			Enabled: false,
			Addr:    ":8080",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Exercises: catalog.Default(),
	}
}

// FollowConfig returns the default configuration with the reference
// following the live anchor joint every frame
func FollowConfig() Config {
	cfg := Default()
	cfg.Alignment.Mode = align.Following
	return cfg
}

// Load reads the YAML file at path over Default and validates the result
func Load(path string) (Config, error) {

	clean := filepath.Clean(path)

	if ext := strings.ToLower(filepath.Ext(clean)); ext != ".yaml" && ext != ".yml" {
		return Config{}, fmt.Errorf("config file must have .yaml or .yml extension, got %q", ext)
	}

	info, err := os.Stat(clean)

	if err != nil {
		return Config{}, fmt.Errorf("failed to stat config file: %w", err)
	}

	if info.Size() > maxFileSize {
		return Config{}, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(clean)

	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML over Default and validates the result
func Parse(data []byte) (Config, error) {

	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Marshal returns the configuration as YAML
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate checks that the configuration values are usable
func (c Config) Validate() error {

	var errs []error

	a := c.Alignment

	if !a.AnchorJoint.Valid() {
		errs = append(errs, fmt.Errorf("alignment.anchor_joint %d is not a joint", a.AnchorJoint))
	}

	if a.MovementScale <= 0 {
		errs = append(errs, fmt.Errorf("alignment.movement_scale must be positive, got %v", a.MovementScale))
	}

	if a.XSign != 1 && a.XSign != -1 {
		errs = append(errs, fmt.Errorf("alignment.x_sign must be 1 or -1, got %v", a.XSign))
	}

	if c.Overlay.Scale <= 0 {
		errs = append(errs, fmt.Errorf("overlay.scale must be positive, got %v", c.Overlay.Scale))
	}

	if c.Scoring.GradientSegments < 1 {
		errs = append(errs, fmt.Errorf("scoring.gradient_segments must be at least 1, got %d", c.Scoring.GradientSegments))
	}

	if err := c.Smoothing.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("smoothing: %w", err))
	}

	d := c.Detector

	if d.InputWidth <= 0 || d.InputHeight <= 0 {
		errs = append(errs, fmt.Errorf("detector input size %dx%d is invalid", d.InputWidth, d.InputHeight))
	}

	if d.Pose.BoxThreshold <= 0 || d.Pose.BoxThreshold >= 1 {
		errs = append(errs, fmt.Errorf("detector.pose.box_threshold must be between 0 and 1, got %v", d.Pose.BoxThreshold))
	}

	if d.Pose.NMSThreshold <= 0 || d.Pose.NMSThreshold >= 1 {
		errs = append(errs, fmt.Errorf("detector.pose.nms_threshold must be between 0 and 1, got %v", d.Pose.NMSThreshold))
	}

	if d.PoolSize < 1 {
		errs = append(errs, fmt.Errorf("detector.pool_size must be at least 1, got %d", d.PoolSize))
	}

	if c.References.Dir == "" {
		errs = append(errs, errors.New("references.dir is required"))
	}

	if c.Web.Enabled && c.Web.Addr == "" {
		errs = append(errs, errors.New("web.addr is required when web is enabled"))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}

	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format %q must be text or json", c.Log.Format))
	}

	if len(c.Exercises) == 0 {
		errs = append(errs, errors.New("at least one exercise is required"))
	} else if _, err := catalog.New(c.Exercises); err != nil {
		errs = append(errs, fmt.Errorf("exercises: %w", err))
	}

	return errors.Join(errs...)
}
