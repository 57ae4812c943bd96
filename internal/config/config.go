package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/typetune/internal/protocol"
	"github.com/five82/typetune/internal/state"
)

// Config captures the panel's runtime settings.
type Config struct {
	HostAddr     string
	Correlation  state.CorrelationPolicy
	ExportFormat protocol.ExportFormat
	CopyFeedback time.Duration
	LogFile      string
	LogLevel     string
	MetricsAddr  string
}

const (
	defaultConfigPath     = "~/.config/typetune/panel.toml"
	defaultStateDir       = "~/.local/state/typetune"
	defaultCopyFeedbackMS = 1500
	defaultLogLevel       = "info"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	stateDir := mustExpand(defaultStateDir)
	return Config{
		HostAddr:     "unix://" + filepath.Join(stateDir, "host.sock"),
		Correlation:  state.PolicyToken,
		ExportFormat: protocol.FormatCSS,
		CopyFeedback: defaultCopyFeedbackMS * time.Millisecond,
		LogFile:      filepath.Join(stateDir, "panel.log"),
		LogLevel:     defaultLogLevel,
	}
}

// Load locates and parses the panel config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		HostAddr       string `toml:"host_addr"`
		Correlation    string `toml:"correlation"`
		ExportFormat   string `toml:"export_format"`
		CopyFeedbackMS *int   `toml:"copy_feedback_ms"`
		LogFile        string `toml:"log_file"`
		LogLevel       string `toml:"log_level"`
		MetricsAddr    string `toml:"metrics_addr"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.HostAddr); v != "" {
		cfg.HostAddr = v
	}

	cfg.Correlation, err = state.ParseCorrelationPolicy(raw.Correlation)
	if err != nil {
		return Config{}, fmt.Errorf("correlation: %w", err)
	}

	if v := strings.TrimSpace(raw.ExportFormat); v != "" {
		cfg.ExportFormat, err = protocol.ParseExportFormat(v)
		if err != nil {
			return Config{}, fmt.Errorf("export_format: %w", err)
		}
	}

	if raw.CopyFeedbackMS != nil {
		if *raw.CopyFeedbackMS <= 0 {
			return Config{}, fmt.Errorf("copy_feedback_ms must be positive, got %d", *raw.CopyFeedbackMS)
		}
		cfg.CopyFeedback = time.Duration(*raw.CopyFeedbackMS) * time.Millisecond
	}

	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}

	if v := strings.ToLower(strings.TrimSpace(raw.LogLevel)); v != "" {
		switch v {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = v
		default:
			return Config{}, fmt.Errorf("log_level: unknown level %q", raw.LogLevel)
		}
	}

	cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)

	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
