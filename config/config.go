// SPDX-License-Identifier: Unlicense OR MIT

// Package config loads gesture thresholds and service settings from
// YAML or TOML files and TOUCHFLOW_* environment variables.
//
// A file only needs to name the values it changes:
//
//	px_per_dp: 2.5
//	gesture:
//	  touch_slop: 10
//	  long_press_timeout: 650ms
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"touchflow.org/gesture"
	"touchflow.org/unit"
)

// ErrInvalid is wrapped by the errors reporting out of range values.
var ErrInvalid = errors.New("invalid configuration")

const defaultListen = "127.0.0.1:8790"

// Config is the complete configuration of a recognizer and the
// service hosting it.
type Config struct {
	// Listen is the address of the websocket service.
	Listen  string
	Metric  unit.Metric
	Gesture gesture.Config
}

// Format is a configuration file syntax.
type Format uint8

const (
	YAML Format = iota
	TOML
)

// file mirrors Config with optional fields, so that absent keys keep
// their defaults.
type file struct {
	Listen  *string     `yaml:"listen" toml:"listen"`
	PxPerDp *float32    `yaml:"px_per_dp" toml:"px_per_dp"`
	Gesture gestureFile `yaml:"gesture" toml:"gesture"`
}

type gestureFile struct {
	TouchSlop                      *float32  `yaml:"touch_slop" toml:"touch_slop"`
	DoubleTapSlop                  *float32  `yaml:"double_tap_slop" toml:"double_tap_slop"`
	PinchSlop                      *float32  `yaml:"pinch_slop" toml:"pinch_slop"`
	MaxSeparationForGestureTouches *float32  `yaml:"max_separation" toml:"max_separation"`
	MinFlingVelocity               *float32  `yaml:"min_fling_velocity" toml:"min_fling_velocity"`
	MinSwipeVelocity               *float32  `yaml:"min_swipe_velocity" toml:"min_swipe_velocity"`
	SwipeAxisRatio                 *float32  `yaml:"swipe_axis_ratio" toml:"swipe_axis_ratio"`
	LongPressTimeout               *duration `yaml:"long_press_timeout" toml:"long_press_timeout"`
	DoubleTapTimeout               *duration `yaml:"double_tap_timeout" toml:"double_tap_timeout"`
}

// duration decodes Go duration strings such as "300ms".
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(v)
	return nil
}

// Default returns the built in configuration.
func Default() Config {
	return Config{
		Listen:  defaultListen,
		Metric:  unit.Metric{PxPerDp: 1},
		Gesture: gesture.DefaultConfig(),
	}
}

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	default:
		return 0, fmt.Errorf("config: unknown file extension %q", ext)
	}
}

// Load returns the defaults overlaid by the file at path, if path is
// not empty, and then by the environment. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		format, err := FormatOf(path)
		if err != nil {
			return Config{}, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		if err := cfg.Decode(data, format); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode overlays the values present in data onto c. It does not
// validate the result.
func (c *Config) Decode(data []byte, format Format) error {
	var f file
	switch format {
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// An empty document decodes to nothing.
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
	case TOML:
		md, err := toml.Decode(string(data), &f)
		if err != nil {
			return err
		}
		if keys := md.Undecoded(); len(keys) > 0 {
			return fmt.Errorf("unknown key %q", keys[0].String())
		}
	default:
		return fmt.Errorf("unknown format %d", format)
	}
	f.apply(c)
	return nil
}

func (f *file) apply(c *Config) {
	if f.Listen != nil {
		c.Listen = *f.Listen
	}
	setFloat(&c.Metric.PxPerDp, f.PxPerDp)
	g, cfg := &f.Gesture, &c.Gesture
	setDp(&cfg.TouchSlop, g.TouchSlop)
	setDp(&cfg.DoubleTapSlop, g.DoubleTapSlop)
	setDp(&cfg.PinchSlop, g.PinchSlop)
	setDp(&cfg.MaxSeparationForGestureTouches, g.MaxSeparationForGestureTouches)
	setDp(&cfg.MinFlingVelocity, g.MinFlingVelocity)
	setDp(&cfg.MinSwipeVelocity, g.MinSwipeVelocity)
	setFloat(&cfg.SwipeAxisRatio, g.SwipeAxisRatio)
	if g.LongPressTimeout != nil {
		cfg.LongPressTimeout = time.Duration(*g.LongPressTimeout)
	}
	if g.DoubleTapTimeout != nil {
		cfg.DoubleTapTimeout = time.Duration(*g.DoubleTapTimeout)
	}
}

func setFloat(dst *float32, v *float32) {
	if v != nil {
		*dst = *v
	}
}

func setDp(dst *unit.Dp, v *float32) {
	if v != nil {
		*dst = unit.Dp(*v)
	}
}

// Validate reports every out of range value of c. The returned error
// wraps ErrInvalid.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...)))
		}
	}
	g := c.Gesture
	check(c.Listen != "", "listen address is empty")
	check(c.Metric.PxPerDp > 0, "px_per_dp must be > 0, got %g", c.Metric.PxPerDp)
	check(g.TouchSlop >= 0, "touch_slop must be >= 0, got %v", g.TouchSlop)
	check(g.DoubleTapSlop >= 0, "double_tap_slop must be >= 0, got %v", g.DoubleTapSlop)
	check(g.PinchSlop >= 0, "pinch_slop must be >= 0, got %v", g.PinchSlop)
	check(g.MaxSeparationForGestureTouches > 0, "max_separation must be > 0, got %v", g.MaxSeparationForGestureTouches)
	check(g.MinFlingVelocity >= 0, "min_fling_velocity must be >= 0, got %v", g.MinFlingVelocity)
	check(g.MinSwipeVelocity >= g.MinFlingVelocity, "min_swipe_velocity must be >= min_fling_velocity, got %v", g.MinSwipeVelocity)
	check(g.SwipeAxisRatio >= 1, "swipe_axis_ratio must be >= 1, got %g", g.SwipeAxisRatio)
	check(g.LongPressTimeout > 0, "long_press_timeout must be > 0, got %v", g.LongPressTimeout)
	check(g.DoubleTapTimeout > 0, "double_tap_timeout must be > 0, got %v", g.DoubleTapTimeout)
	return errors.Join(errs...)
}

// envVars lists the environment overrides. Each name is prefixed
// with TOUCHFLOW_.
var envVars = []struct {
	name string
	set  func(c *Config, v string) error
}{
	{"LISTEN", func(c *Config, v string) error { c.Listen = v; return nil }},
	{"PX_PER_DP", func(c *Config, v string) error { return parseFloat(&c.Metric.PxPerDp, v) }},
	{"TOUCH_SLOP", func(c *Config, v string) error { return parseDp(&c.Gesture.TouchSlop, v) }},
	{"DOUBLE_TAP_SLOP", func(c *Config, v string) error { return parseDp(&c.Gesture.DoubleTapSlop, v) }},
	{"PINCH_SLOP", func(c *Config, v string) error { return parseDp(&c.Gesture.PinchSlop, v) }},
	{"MAX_SEPARATION", func(c *Config, v string) error { return parseDp(&c.Gesture.MaxSeparationForGestureTouches, v) }},
	{"MIN_FLING_VELOCITY", func(c *Config, v string) error { return parseDp(&c.Gesture.MinFlingVelocity, v) }},
	{"MIN_SWIPE_VELOCITY", func(c *Config, v string) error { return parseDp(&c.Gesture.MinSwipeVelocity, v) }},
	{"SWIPE_AXIS_RATIO", func(c *Config, v string) error { return parseFloat(&c.Gesture.SwipeAxisRatio, v) }},
	{"LONG_PRESS_TIMEOUT", func(c *Config, v string) error { return parseDuration(&c.Gesture.LongPressTimeout, v) }},
	{"DOUBLE_TAP_TIMEOUT", func(c *Config, v string) error { return parseDuration(&c.Gesture.DoubleTapTimeout, v) }},
}

func (c *Config) applyEnv() error {
	for _, ev := range envVars {
		key := "TOUCHFLOW_" + ev.name
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			continue
		}
		if err := ev.set(c, v); err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
	}
	return nil
}

func parseFloat(dst *float32, v string) error {
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return err
	}
	*dst = float32(f)
	return nil
}

func parseDp(dst *unit.Dp, v string) error {
	var f float32
	if err := parseFloat(&f, v); err != nil {
		return err
	}
	*dst = unit.Dp(f)
	return nil
}

func parseDuration(dst *time.Duration, v string) error {
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}
