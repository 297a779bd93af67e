// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ManuGH/dayloop/internal/encoder"
	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a new configuration loader. An empty configPath loads
// defaults and environment only.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

// Load loads configuration with precedence: ENV > File > Defaults.
// Order: defaults -> strict file parse -> env -> resolve -> validate.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Default()

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		mergeFileConfig(&cfg, fileCfg)
	}

	l.mergeEnvConfig(&cfg)
	resolve(&cfg)
	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile loads configuration from a YAML file with STRICT parsing.
// Unknown fields will cause a fatal error to prevent misconfiguration.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("%w: %s (only YAML supported)", ErrUnsupportedFormat, ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return ParseFile(data)
}

// ParseFile strictly decodes a single YAML document.
func ParseFile(data []byte) (*FileConfig, error) {
	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&fileCfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("strict config parse error: %w: %w", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, ErrMultipleDocuments
	}
	return &fileCfg, nil
}

func mergeFileConfig(dst *AppConfig, src *FileConfig) {
	if src.Log != nil {
		setString(&dst.Log.Level, src.Log.Level)
		setString(&dst.Log.Service, src.Log.Service)
	}
	if src.Videos != nil {
		setString(&dst.Videos.BasePath, src.Videos.BasePath)
		if src.Videos.Extensions != nil {
			dst.Videos.Extensions = append([]string(nil), src.Videos.Extensions...)
		}
	}
	if src.Schedule != nil {
		setString(&dst.Schedule.Fallback, src.Schedule.Fallback)
		if src.Schedule.Categories != nil {
			dst.Schedule.Categories = append([]CategoryConfig(nil), src.Schedule.Categories...)
		}
	}
	if src.Encoder != nil {
		setString(&dst.Encoder.Binary, src.Encoder.Binary)
		setString(&dst.Encoder.OutputURL, src.Encoder.OutputURL)
		if src.Encoder.Args != nil {
			dst.Encoder.Args = append([]string(nil), src.Encoder.Args...)
		}
		if src.Encoder.Keywords != nil {
			dst.Encoder.Keywords = append([]string(nil), src.Encoder.Keywords...)
		}
		if src.Encoder.TailLines != nil {
			dst.Encoder.TailLines = *src.Encoder.TailLines
		}
	}
	if src.Playback != nil {
		if src.Playback.Backoff != nil {
			dst.Playback.Backoff = *src.Playback.Backoff
		}
		if src.Playback.Advance != nil {
			dst.Playback.Advance = *src.Playback.Advance
		}
		setString(&dst.Playback.LockFile, src.Playback.LockFile)
	}
	if src.Ops != nil {
		setString(&dst.Ops.Listen, src.Ops.Listen)
	}
}

func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.Log.Level = l.envString(EnvLogLevel, cfg.Log.Level)
	cfg.Videos.BasePath = l.envString(EnvBasePath, cfg.Videos.BasePath)
	cfg.Encoder.Binary = l.envString(EnvEncoderBin, cfg.Encoder.Binary)
	cfg.Encoder.OutputURL = l.envString(EnvOutputURL, cfg.Encoder.OutputURL)
	cfg.Encoder.TailLines = l.envInt(EnvTailLines, cfg.Encoder.TailLines)
	cfg.Playback.Backoff = l.envDuration(EnvBackoff, cfg.Playback.Backoff)
	cfg.Playback.Advance = l.envDuration(EnvAdvance, cfg.Playback.Advance)
	cfg.Playback.LockFile = l.envString(EnvLockFile, cfg.Playback.LockFile)
	cfg.Ops.Listen = l.envString(EnvOpsListen, cfg.Ops.Listen)
}

// resolve fills category directories and substitutes the output URL.
func resolve(cfg *AppConfig) {
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	for i := range cfg.Schedule.Categories {
		c := &cfg.Schedule.Categories[i]
		if c.Dir == "" {
			c.Dir = c.Name
		}
		if !filepath.IsAbs(c.Dir) && cfg.Videos.BasePath != "" {
			c.Dir = filepath.Join(cfg.Videos.BasePath, c.Dir)
		}
		c.Dir = filepath.Clean(c.Dir)
	}
	cfg.Encoder.Args = encoder.ExpandOutput(cfg.Encoder.Args, cfg.Encoder.OutputURL)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
