// Package config resolves server settings: where the shared JSON documents
// live, where the agent workspace is, and the defaults for message
// retrieval.
//
// Resolution order (later wins):
//  1. built-in defaults (~/.crewchat, cwd as workspace)
//  2. config.yaml in the data directory, if present
//  3. environment variables (CREWCHAT_DATA_DIR, CREWCHAT_WORKSPACE,
//     CREWCHAT_AGENT)
//
// A missing or unparseable config.yaml is not an error — the server must
// come up on a fresh machine with no setup.
package config

import (
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigFile is the optional settings file inside the data directory.
	ConfigFile = "config.yaml"

	// DefaultMessageLimit caps receive_messages results when the caller
	// doesn't ask for a specific limit.
	DefaultMessageLimit = 20

	// DefaultMaxContentLength is the per-message content truncation
	// applied to responses (stored content is never truncated).
	DefaultMaxContentLength = 5000
)

// Config holds the resolved server settings.
type Config struct {
	// DataDir is where the seven shared JSON documents live.
	DataDir string `yaml:"data_dir"`

	// WorkspaceRoot anchors relative file paths in send_message,
	// request_review, and the employee .mdc files.
	WorkspaceRoot string `yaml:"workspace_root"`

	// RulesDir is where per-agent .mdc role files are looked up by
	// default (set_employee_config without an explicit path).
	RulesDir string `yaml:"rules_dir"`

	// DefaultAgent, when set, lets the identity context recover an
	// active session for that agent after a server restart.
	DefaultAgent string `yaml:"default_agent"`
}

// Default returns the built-in configuration: data under ~/.crewchat,
// the current working directory as workspace.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	workspace, err := os.Getwd()
	if err != nil {
		workspace = "."
	}
	return Config{
		DataDir:       filepath.Join(home, ".crewchat"),
		WorkspaceRoot: workspace,
		RulesDir:      filepath.Join(workspace, ".cursor", "rules"),
	}
}

// Load resolves the effective configuration. The CREWCHAT_DATA_DIR
// variable is applied before reading config.yaml so that it also decides
// where the file is looked up.
func Load() Config {
	cfg := Default()

	if dir := os.Getenv("CREWCHAT_DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}

	cfg = mergeFile(cfg, filepath.Join(cfg.DataDir, ConfigFile))

	if dir := os.Getenv("CREWCHAT_DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}
	if ws := os.Getenv("CREWCHAT_WORKSPACE"); ws != "" {
		cfg.WorkspaceRoot = ws
		cfg.RulesDir = filepath.Join(ws, ".cursor", "rules")
	}
	if agent := os.Getenv("CREWCHAT_AGENT"); agent != "" {
		cfg.DefaultAgent = agent
	}

	return cfg
}

// mergeFile overlays settings from a YAML file onto cfg. Missing file or
// bad YAML leaves cfg unchanged.
func mergeFile(cfg Config, path string) Config {
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		// Stderr only: stdout belongs to the MCP transport.
		log.Printf("WARNING: ignoring malformed %s: %v", path, err)
		return cfg
	}

	if overlay.DataDir != "" {
		cfg.DataDir = overlay.DataDir
	}
	if overlay.WorkspaceRoot != "" {
		cfg.WorkspaceRoot = overlay.WorkspaceRoot
		cfg.RulesDir = filepath.Join(overlay.WorkspaceRoot, ".cursor", "rules")
	}
	if overlay.RulesDir != "" {
		cfg.RulesDir = overlay.RulesDir
	}
	if overlay.DefaultAgent != "" {
		cfg.DefaultAgent = overlay.DefaultAgent
	}
	return cfg
}
