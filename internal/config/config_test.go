package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Dev.Port != DefaultPort {
		t.Errorf("Dev.Port = %d, want %d", cfg.Dev.Port, DefaultPort)
	}
	if cfg.Dev.Host != DefaultHost {
		t.Errorf("Dev.Host = %q, want %q", cfg.Dev.Host, DefaultHost)
	}
	if cfg.Routes != DefaultRoutes {
		t.Errorf("Routes = %q, want %q", cfg.Routes, DefaultRoutes)
	}
	if cfg.Output != DefaultOutput {
		t.Errorf("Output = %q, want %q", cfg.Output, DefaultOutput)
	}
	if cfg.Package != DefaultPackage {
		t.Errorf("Package = %q, want %q", cfg.Package, DefaultPackage)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	// Test loading non-existent config
	_, err := Load(tmpDir)
	if err == nil {
		t.Error("Expected error for missing config")
	}

	// Create a config file
	configPath := filepath.Join(tmpDir, ConfigFileName)
	configJSON := `{
  "name": "storefront",
  "routes": "site/pages",
  "output": "site/routes/table.go",
  "package": "dispatch",
  "dev": {
    "port": 8080,
    "host": "0.0.0.0"
  },
  "deploy": {
    "bucket": "storefront-routes",
    "region": "eu-west-1",
    "prefix": "tables/"
  }
}
`
	if err := os.WriteFile(configPath, []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	// Load the config
	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Name != "storefront" {
		t.Errorf("Name = %q, want %q", cfg.Name, "storefront")
	}
	if cfg.Routes != "site/pages" {
		t.Errorf("Routes = %q, want %q", cfg.Routes, "site/pages")
	}
	if cfg.Package != "dispatch" {
		t.Errorf("Package = %q, want %q", cfg.Package, "dispatch")
	}
	if cfg.Dev.Port != 8080 {
		t.Errorf("Dev.Port = %d, want %d", cfg.Dev.Port, 8080)
	}
	if cfg.Dev.Host != "0.0.0.0" {
		t.Errorf("Dev.Host = %q, want %q", cfg.Dev.Host, "0.0.0.0")
	}
	if cfg.Deploy.Bucket != "storefront-routes" {
		t.Errorf("Deploy.Bucket = %q, want %q", cfg.Deploy.Bucket, "storefront-routes")
	}
	if !cfg.HasDeployTarget() {
		t.Error("HasDeployTarget should be true")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)
	if err := os.WriteFile(configPath, []byte(`{"name": "minimal"}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Routes != DefaultRoutes {
		t.Errorf("Routes = %q, want default %q", cfg.Routes, DefaultRoutes)
	}
	if cfg.Output != DefaultOutput {
		t.Errorf("Output = %q, want default %q", cfg.Output, DefaultOutput)
	}
	if cfg.Dev.Port != DefaultPort {
		t.Errorf("Dev.Port = %d, want default %d", cfg.Dev.Port, DefaultPort)
	}
	if cfg.HasDeployTarget() {
		t.Error("HasDeployTarget should be false without a bucket")
	}
}

func TestLoadFile_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	// Write invalid JSON
	if err := os.WriteFile(configPath, []byte("not valid json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(configPath)
	if err == nil {
		t.Error("Expected error for invalid JSON")
	}
	if !strings.Contains(err.Error(), "R001") {
		t.Errorf("Expected R001 error, got: %v", err)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), ConfigFileName))
	if err == nil {
		t.Fatal("Expected error for missing config")
	}
	if !strings.Contains(err.Error(), "R300") {
		t.Errorf("Expected R300 error, got: %v", err)
	}
}

func TestSave(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	cfg := New()
	cfg.Dev.Port = 9000
	cfg.Name = "storefront"

	// Save should fail without configPath set
	err := cfg.Save()
	if err == nil {
		t.Error("Expected error when saving without path")
	}

	// SaveTo should succeed
	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("SaveTo error: %v", err)
	}

	// Reload and verify
	loaded, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if loaded.Dev.Port != 9000 {
		t.Errorf("Dev.Port = %d, want %d", loaded.Dev.Port, 9000)
	}
	if loaded.Name != "storefront" {
		t.Errorf("Name = %q, want %q", loaded.Name, "storefront")
	}

	// Save should now succeed
	loaded.Dev.Port = 9001
	if err := loaded.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	loaded, err = LoadFile(configPath)
	if err != nil {
		t.Fatalf("reload error: %v", err)
	}
	if loaded.Dev.Port != 9001 {
		t.Errorf("Dev.Port after resave = %d, want %d", loaded.Dev.Port, 9001)
	}
}

func TestValidate(t *testing.T) {
	cfg := New()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}

	cfg.Dev.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for out-of-range port")
	}
}

func TestDevAddress(t *testing.T) {
	cfg := New()
	cfg.Dev.Host = "127.0.0.1"
	cfg.Dev.Port = 3400

	if got := cfg.DevAddress(); got != "127.0.0.1:3400" {
		t.Errorf("DevAddress() = %q, want %q", got, "127.0.0.1:3400")
	}
	if got := cfg.DevURL(); got != "http://127.0.0.1:3400" {
		t.Errorf("DevURL() = %q, want %q", got, "http://127.0.0.1:3400")
	}
}

func TestPathHelpers(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)
	if err := os.WriteFile(configPath, []byte(`{"routes": "site/pages"}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if got := cfg.RoutesPath(); got != filepath.Join(tmpDir, "site/pages") {
		t.Errorf("RoutesPath() = %q", got)
	}
	if got := cfg.OutputPath(); got != filepath.Join(tmpDir, DefaultOutput) {
		t.Errorf("OutputPath() = %q", got)
	}
	if got := cfg.PublicPath(); got != filepath.Join(tmpDir, DefaultPublic) {
		t.Errorf("PublicPath() = %q", got)
	}

	watch := cfg.WatchPaths()
	if len(watch) != 1 || watch[0] != cfg.RoutesPath() {
		t.Errorf("WatchPaths() = %v, want just the pages dir", watch)
	}

	cfg.Dev.Watch = []string{"shared"}
	watch = cfg.WatchPaths()
	if len(watch) != 2 || watch[1] != filepath.Join(tmpDir, "shared") {
		t.Errorf("WatchPaths() = %v, want the extra path resolved", watch)
	}
}

func TestFindProjectRoot(t *testing.T) {
	tmpDir := t.TempDir()
	nested := filepath.Join(tmpDir, "a", "b", "c")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	configPath := filepath.Join(tmpDir, ConfigFileName)
	if err := os.WriteFile(configPath, []byte(`{}`), 0644); err != nil {
		t.Fatal(err)
	}

	root, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot error: %v", err)
	}
	if root != tmpDir {
		t.Errorf("root = %q, want %q", root, tmpDir)
	}
}

func TestExists(t *testing.T) {
	tmpDir := t.TempDir()
	if Exists(tmpDir) {
		t.Error("Exists should be false for empty dir")
	}
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(`{}`), 0644); err != nil {
		t.Fatal(err)
	}
	if !Exists(tmpDir) {
		t.Error("Exists should be true after writing the config")
	}
}
