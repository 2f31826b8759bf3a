// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads and validates jslint configuration.
package config

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/jslint/services/jslint/analyzer"
)

// =============================================================================
// Embedded Default Configuration
// =============================================================================

//go:embed default_config.yaml
var defaultConfigYAML []byte

var tracer = otel.Tracer("aleutian.jslint.config")

// MaxYAMLFileSize bounds configuration files.
const MaxYAMLFileSize = 1 << 20

// Sentinel errors.
var (
	// ErrEmptyConfig indicates empty configuration data.
	ErrEmptyConfig = errors.New("empty configuration")

	// ErrConfigTooLarge indicates configuration data above MaxYAMLFileSize.
	ErrConfigTooLarge = errors.New("configuration too large")

	// ErrInvalidConfig indicates a configuration that failed validation.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// =============================================================================
// Configuration Types
// =============================================================================

// Config is the jslint configuration.
//
// Description:
//
//	Implements analyzer.RuleSelector so it can be handed straight to the
//	engine.
//
// Thread Safety: Immutable after loading; safe for concurrent use.
type Config struct {
	// MaxFileSize is the largest file analysed, in bytes.
	MaxFileSize int `yaml:"max_file_size" validate:"gte=0,lte=104857600"`

	// Workers is the file-level concurrency. 0 means GOMAXPROCS.
	Workers int `yaml:"workers" validate:"gte=0,lte=1024"`

	// Extensions lists analysed file extensions, dot included.
	Extensions []string `yaml:"extensions" validate:"dive,startswith=.,min=2"`

	// Exclude lists glob patterns of skipped paths.
	Exclude []string `yaml:"exclude" validate:"dive,required,glob"`

	// RecommendedOnly enables only recommended rules by default.
	RecommendedOnly bool `yaml:"recommended_only"`

	// Rules holds per-rule overrides keyed by rule name.
	Rules map[string]RuleConfig `yaml:"rules" validate:"dive,keys,required,endkeys"`
}

// RuleConfig overrides one rule.
type RuleConfig struct {
	// Enabled forces the rule on or off. nil keeps the default.
	Enabled *bool `yaml:"enabled"`

	// Severity overrides the rule's default severity.
	Severity string `yaml:"severity" validate:"omitempty,oneof=error warning info"`
}

// =============================================================================
// Rule Selection
// =============================================================================

// RuleEnabled reports whether the rule runs.
//
// An explicit "enabled" override wins. Otherwise recommended rules run,
// and non-recommended rules run only when recommended_only is false.
func (c *Config) RuleEnabled(meta analyzer.RuleMetadata) bool {
	if rc, ok := c.Rules[meta.Name]; ok && rc.Enabled != nil {
		return *rc.Enabled
	}
	return meta.Recommended || !c.RecommendedOnly
}

// RuleSeverity returns the configured severity of the rule.
func (c *Config) RuleSeverity(meta analyzer.RuleMetadata) analyzer.Severity {
	if rc, ok := c.Rules[meta.Name]; ok && rc.Severity != "" {
		return analyzer.SeverityFromString(rc.Severity)
	}
	return meta.DefaultSeverity
}

// UnknownRules returns configured rule names missing from known, sorted.
func (c *Config) UnknownRules(known []analyzer.RuleMetadata) []string {
	names := make(map[string]struct{}, len(known))
	for _, m := range known {
		names[m.Name] = struct{}{}
	}
	var unknown []string
	for name := range c.Rules {
		if _, ok := names[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// =============================================================================
// Path Filtering
// =============================================================================

// AcceptsExtension reports whether p has an analysed extension.
func (c *Config) AcceptsExtension(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	for _, e := range c.Extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// Excluded reports whether the slash-separated relative path rel matches
// an exclude pattern, either as a whole or by its base name.
func (c *Config) Excluded(rel string) bool {
	base := path.Base(rel)
	for _, pattern := range c.Exclude {
		if ok, _ := path.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := path.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// =============================================================================
// Singleton Default Config
// =============================================================================

var (
	defaultConfigMu      sync.RWMutex
	defaultConfigOnce    sync.Once
	cachedDefaultConfig  *Config
	defaultConfigLoadErr error
)

// Default returns the cached built-in configuration.
//
// Inputs:
//
//	ctx - Context for tracing. Must not be nil.
//
// Outputs:
//
//	*Config - The configuration. Never nil on success.
//	error   - Non-nil if the embedded file failed to load.
//
// Thread Safety: Safe for concurrent use via sync.Once.
func Default(ctx context.Context) (*Config, error) {
	if ctx == nil {
		return nil, fmt.Errorf("Default: ctx must not be nil")
	}

	defaultConfigMu.RLock()
	if cachedDefaultConfig != nil || defaultConfigLoadErr != nil {
		cfg, err := cachedDefaultConfig, defaultConfigLoadErr
		defaultConfigMu.RUnlock()
		return cfg, err
	}
	defaultConfigMu.RUnlock()

	defaultConfigMu.Lock()
	defer defaultConfigMu.Unlock()

	defaultConfigOnce.Do(func() {
		cachedDefaultConfig, defaultConfigLoadErr = Load(ctx, defaultConfigYAML)
	})
	return cachedDefaultConfig, defaultConfigLoadErr
}

// Reset clears the cached default configuration for testing.
//
// Thread Safety: Safe for concurrent use.
func Reset() {
	defaultConfigMu.Lock()
	defer defaultConfigMu.Unlock()
	cachedDefaultConfig = nil
	defaultConfigLoadErr = nil
	defaultConfigOnce = sync.Once{}
}

// =============================================================================
// Loading
// =============================================================================

// LoadFile reads path and loads it with Load.
func LoadFile(ctx context.Context, filePath string) (*Config, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("LoadFile: %w", err)
	}
	if info.Size() > MaxYAMLFileSize {
		return nil, fmt.Errorf("LoadFile: %s: %w (%d > %d)", filePath, ErrConfigTooLarge, info.Size(), MaxYAMLFileSize)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("LoadFile: %w", err)
	}
	cfg, err := Load(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("LoadFile: %s: %w", filePath, err)
	}
	return cfg, nil
}

// Load parses YAML over the built-in defaults and validates the result.
//
// Description:
//
//	Fields absent from data keep their default values; rule overrides
//	are merged by name. Unknown YAML keys are rejected so typos surface
//	instead of being silently ignored.
//
// Inputs:
//
//	ctx  - Context for tracing.
//	data - Raw YAML bytes.
//
// Outputs:
//
//	*Config - The validated configuration.
//	error   - ErrEmptyConfig, ErrConfigTooLarge, a YAML error, or
//	          ErrInvalidConfig.
func Load(ctx context.Context, data []byte) (*Config, error) {
	_, span := tracer.Start(ctx, "config.Load")
	defer span.End()

	if len(data) == 0 {
		return nil, fmt.Errorf("Load: %w", ErrEmptyConfig)
	}
	if len(data) > MaxYAMLFileSize {
		return nil, fmt.Errorf("Load: %w (%d > %d)", ErrConfigTooLarge, len(data), MaxYAMLFileSize)
	}

	var cfg Config
	if err := decodeInto(defaultConfigYAML, &cfg); err != nil {
		return nil, fmt.Errorf("Load: parsing defaults: %w", err)
	}
	if err := decodeInto(data, &cfg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
		return nil, fmt.Errorf("Load: parsing YAML: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return nil, fmt.Errorf("Load: %w", err)
	}

	span.SetAttributes(
		attribute.Int("max_file_size", cfg.MaxFileSize),
		attribute.Int("workers", cfg.Workers),
		attribute.Int("extensions", len(cfg.Extensions)),
		attribute.Int("exclude", len(cfg.Exclude)),
		attribute.Int("rules", len(cfg.Rules)),
	)

	slog.Debug("jslint config loaded",
		slog.Int("max_file_size", cfg.MaxFileSize),
		slog.Int("workers", cfg.Workers),
		slog.Int("extensions", len(cfg.Extensions)),
		slog.Int("rule_overrides", len(cfg.Rules)),
	)

	return &cfg, nil
}

func decodeInto(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// =============================================================================
// Validation
// =============================================================================

var configValidate *validator.Validate

func init() {
	configValidate = validator.New()
	_ = configValidate.RegisterValidation("glob", validateGlob)
}

// validateGlob rejects malformed glob patterns.
func validateGlob(fl validator.FieldLevel) bool {
	_, err := path.Match(fl.Field().String(), "")
	return err == nil
}

func validateConfig(cfg *Config) error {
	if err := configValidate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			v := verrs[0]
			return fmt.Errorf("%w: %s failed %q", ErrInvalidConfig, v.Namespace(), v.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
