package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.DataDir == "" || filepath.Base(cfg.DataDir) != ".crewchat" {
		t.Errorf("data dir = %q, want ~/.crewchat", cfg.DataDir)
	}
	if cfg.WorkspaceRoot == "" {
		t.Error("workspace root must default to the working directory")
	}
	if cfg.RulesDir != filepath.Join(cfg.WorkspaceRoot, ".cursor", "rules") {
		t.Errorf("rules dir = %q", cfg.RulesDir)
	}
	if cfg.DefaultAgent != "" {
		t.Errorf("default agent = %q, want empty", cfg.DefaultAgent)
	}
}

func TestLoad_FileOverlay(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CREWCHAT_DATA_DIR", dir)
	t.Setenv("CREWCHAT_WORKSPACE", "")
	t.Setenv("CREWCHAT_AGENT", "")

	yaml := "workspace_root: /srv/work\ndefault_agent: scout\n"
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Load()
	if cfg.DataDir != dir {
		t.Errorf("data dir = %q, want %q", cfg.DataDir, dir)
	}
	if cfg.WorkspaceRoot != "/srv/work" {
		t.Errorf("workspace = %q", cfg.WorkspaceRoot)
	}
	// Rules dir follows the workspace unless set explicitly.
	if cfg.RulesDir != filepath.Join("/srv/work", ".cursor", "rules") {
		t.Errorf("rules dir = %q", cfg.RulesDir)
	}
	if cfg.DefaultAgent != "scout" {
		t.Errorf("default agent = %q", cfg.DefaultAgent)
	}
}

func TestLoad_ExplicitRulesDirWins(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CREWCHAT_DATA_DIR", dir)
	t.Setenv("CREWCHAT_WORKSPACE", "")
	t.Setenv("CREWCHAT_AGENT", "")

	yaml := "workspace_root: /srv/work\nrules_dir: /etc/crewchat/rules\n"
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Load()
	if cfg.RulesDir != "/etc/crewchat/rules" {
		t.Errorf("rules dir = %q, want the explicit setting", cfg.RulesDir)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CREWCHAT_DATA_DIR", dir)
	t.Setenv("CREWCHAT_WORKSPACE", "/env/work")
	t.Setenv("CREWCHAT_AGENT", "env-agent")

	yaml := "workspace_root: /file/work\ndefault_agent: file-agent\n"
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Load()
	if cfg.WorkspaceRoot != "/env/work" {
		t.Errorf("workspace = %q, env must win", cfg.WorkspaceRoot)
	}
	if cfg.RulesDir != filepath.Join("/env/work", ".cursor", "rules") {
		t.Errorf("rules dir = %q", cfg.RulesDir)
	}
	if cfg.DefaultAgent != "env-agent" {
		t.Errorf("default agent = %q", cfg.DefaultAgent)
	}
}

func TestLoad_BadYAMLIgnored(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CREWCHAT_DATA_DIR", dir)
	t.Setenv("CREWCHAT_WORKSPACE", "")
	t.Setenv("CREWCHAT_AGENT", "")

	if err := os.WriteFile(filepath.Join(dir, ConfigFile), []byte("{not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Load()
	if cfg.DataDir != dir {
		t.Errorf("data dir = %q, bad yaml should leave settings alone", cfg.DataDir)
	}
}
