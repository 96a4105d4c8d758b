package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setHome(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	return tmpDir
}

func TestGetConfigDir(t *testing.T) {
	home := setHome(t)

	dir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir failed: %v", err)
	}

	expected := filepath.Join(home, ExoZoraDirName)
	if dir != expected {
		t.Errorf("Expected %s, got %s", expected, dir)
	}

	history, err := GetHistoryPath()
	if err != nil {
		t.Fatalf("GetHistoryPath failed: %v", err)
	}
	if history != filepath.Join(expected, HistoryFileName) {
		t.Errorf("Unexpected history path %s", history)
	}
}

func TestInitConfig_Defaults(t *testing.T) {
	setHome(t)

	cfg, err := InitConfig()
	if err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	if cfg.Executor.Timeout != 30 {
		t.Errorf("Expected timeout 30, got %d", cfg.Executor.Timeout)
	}
	if cfg.Executor.CommandTimeout() != 30*time.Second {
		t.Errorf("Expected 30s, got %s", cfg.Executor.CommandTimeout())
	}
	if cfg.Executor.DryRun {
		t.Error("Expected dry_run to default to false")
	}
	if !cfg.Output.RenderMarkdown {
		t.Error("Expected render_markdown to default to true")
	}
	if !cfg.History.Enabled {
		t.Error("Expected history to be enabled by default")
	}
	if len(cfg.Policy.ExtraNetworkCommands) != 0 {
		t.Errorf("Expected no extra network commands, got %v", cfg.Policy.ExtraNetworkCommands)
	}
	if GetConfig() != cfg {
		t.Error("Expected GetConfig to return the loaded config")
	}
}

func TestInitConfig_FromFile(t *testing.T) {
	home := setHome(t)

	configDir := filepath.Join(home, ExoZoraDirName)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	content := `policy:
  extra_network_commands: [socat, rsync]
executor:
  timeout: 5
  dry_run: true
history:
  enabled: false
`
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := InitConfig()
	if err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}
	if len(cfg.Policy.ExtraNetworkCommands) != 2 || cfg.Policy.ExtraNetworkCommands[0] != "socat" {
		t.Errorf("Unexpected extra network commands: %v", cfg.Policy.ExtraNetworkCommands)
	}
	if cfg.Executor.Timeout != 5 || !cfg.Executor.DryRun {
		t.Errorf("Unexpected executor config: %+v", cfg.Executor)
	}
	if cfg.History.Enabled {
		t.Error("Expected history to be disabled")
	}
}

func TestInitConfig_EnvOverride(t *testing.T) {
	setHome(t)
	t.Setenv("EXOZORA_EXECUTOR_TIMEOUT", "7")

	cfg, err := InitConfig()
	if err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}
	if cfg.Executor.Timeout != 7 {
		t.Errorf("Expected timeout 7 from environment, got %d", cfg.Executor.Timeout)
	}
}

func TestInitConfig_NegativeTimeout(t *testing.T) {
	setHome(t)
	t.Setenv("EXOZORA_EXECUTOR_TIMEOUT", "-1")

	if _, err := InitConfig(); err == nil {
		t.Error("Expected negative timeout to be rejected")
	}
}

func TestSaveConfig(t *testing.T) {
	setHome(t)

	cfg := &Config{
		Executor: ExecutorConfig{Timeout: 60},
		Output:   OutputConfig{RenderMarkdown: false, Width: 80},
		History:  HistoryConfig{Enabled: true},
	}
	cfg.Policy.ExtraNetworkCommands = []string{"socat"}

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	configDir, _ := GetConfigDir()
	configPath := filepath.Join(configDir, ConfigFileName+"."+ConfigFileType)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}

	loaded, err := InitConfig()
	if err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}
	if loaded.Executor.Timeout != 60 || loaded.Output.Width != 80 || loaded.Output.RenderMarkdown {
		t.Errorf("Saved config not reloaded: %+v", loaded)
	}
}
