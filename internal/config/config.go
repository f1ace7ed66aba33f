// Package config resolves server settings from the environment. The server
// is launched by MCP clients that pass settings through env vars, not flags.
package config

import (
	"os"
	"strconv"
	"time"
)

// AuditTool configures the optional external IDS auditor run as a third
// validation tier after XSD validation.
type AuditTool struct {
	// Enabled gates the tier; when off, validate reports only the first two
	// tiers.
	Enabled bool
	// Path points at the binary or its directory. Empty means look up
	// "ids-tool" on PATH.
	Path string
}

// Config is the full server configuration.
type Config struct {
	// LogLevel is a zap level name: debug, info, warn, error.
	LogLevel string
	// MaskErrors hides internal error details from tool results, returning
	// a generic message instead.
	MaskErrors bool
	// SessionTimeout is how long a session may sit idle before eviction.
	SessionTimeout time.Duration
	// CleanupInterval is how often the sweeper looks for idle sessions.
	CleanupInterval time.Duration

	AuditTool AuditTool
	// ModelCheckerPath points at the external IFC model checker binary.
	// Empty disables model validation.
	ModelCheckerPath string
}

// Default returns the configuration used when no env vars are set.
func Default() Config {
	return Config{
		LogLevel:        "info",
		MaskErrors:      false,
		SessionTimeout:  24 * time.Hour,
		CleanupInterval: time.Hour,
		AuditTool:       AuditTool{Enabled: true},
	}
}

// FromEnv builds the configuration from IDS_* environment variables,
// falling back to defaults for anything unset or unparsable.
func FromEnv() Config {
	cfg := Default()

	if v := os.Getenv("IDS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	cfg.MaskErrors = envBool("IDS_MASK_ERRORS", cfg.MaskErrors)
	cfg.SessionTimeout = envSeconds("IDS_SESSION_TIMEOUT", cfg.SessionTimeout)
	cfg.CleanupInterval = envSeconds("IDS_CLEANUP_INTERVAL", cfg.CleanupInterval)
	cfg.AuditTool.Enabled = envBool("IDS_AUDIT_TOOL_ENABLED", cfg.AuditTool.Enabled)
	cfg.AuditTool.Path = os.Getenv("IDS_AUDIT_TOOL_PATH")
	cfg.ModelCheckerPath = os.Getenv("IDS_MODEL_CHECKER_PATH")

	return cfg
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envSeconds(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}
