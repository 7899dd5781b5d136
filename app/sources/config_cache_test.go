package sources

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfigCacheLoadValidConfig(t *testing.T) {
	tempDir := t.TempDir()

	content := `
url: "https://boards.example.com/jobs.rss"
type: "rss"

settings:
  enabled: true
  refresh_interval: 1800
  max_records: 25
  timeout: 15
  enrich_content: true

defaults:
  company: "Unknown Employer"
  location: "Remote"
`

	err := os.WriteFile(filepath.Join(tempDir, "boards.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	err = configCache.Run()
	if err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 1 {
		t.Errorf("Expected 1 source config, got %d", configCache.GetConfigCount())
	}

	sourceConfig, err := configCache.GetConfig("boards")
	if err != nil {
		t.Fatal(err)
	}

	if sourceConfig.Name != "boards" {
		t.Errorf("Expected name 'boards', got '%s'", sourceConfig.Name)
	}
	if sourceConfig.URL != "https://boards.example.com/jobs.rss" {
		t.Errorf("Expected URL 'https://boards.example.com/jobs.rss', got '%s'", sourceConfig.URL)
	}
	if sourceConfig.Type != TypeRSS {
		t.Errorf("Expected type '%s', got '%s'", TypeRSS, sourceConfig.Type)
	}
	if time.Duration(sourceConfig.Settings.RefreshInterval)*time.Second != 1800*time.Second {
		t.Errorf("Expected refresh interval 1800s, got %v", time.Duration(sourceConfig.Settings.RefreshInterval)*time.Second)
	}
	if sourceConfig.Settings.MaxRecords != 25 {
		t.Errorf("Expected max records 25, got %d", sourceConfig.Settings.MaxRecords)
	}
	if !sourceConfig.Settings.EnrichContent {
		t.Error("Expected enrich_content to be enabled")
	}
	if sourceConfig.Defaults.Company != "Unknown Employer" {
		t.Errorf("Expected default company 'Unknown Employer', got '%s'", sourceConfig.Defaults.Company)
	}
	if sourceConfig.Defaults.Location != "Remote" {
		t.Errorf("Expected default location 'Remote', got '%s'", sourceConfig.Defaults.Location)
	}
}

func TestConfigCacheLoadConfigWithDefaults(t *testing.T) {
	tempDir := t.TempDir()

	content := `
url: "https://boards.example.com/jobs.rss"

settings:
  enabled: true
`

	err := os.WriteFile(filepath.Join(tempDir, "boards.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	err = configCache.Run()
	if err != nil {
		t.Fatal(err)
	}

	sourceConfig, err := configCache.GetConfig("boards")
	if err != nil {
		t.Fatal(err)
	}

	if sourceConfig.Type != TypeRSS {
		t.Errorf("Expected default type '%s', got '%s'", TypeRSS, sourceConfig.Type)
	}
	if time.Duration(sourceConfig.Settings.RefreshInterval)*time.Second != 3600*time.Second {
		t.Errorf("Expected default refresh interval 3600s, got %v", time.Duration(sourceConfig.Settings.RefreshInterval)*time.Second)
	}
	if sourceConfig.Settings.MaxRecords != 100 {
		t.Errorf("Expected default max records 100, got %d", sourceConfig.Settings.MaxRecords)
	}
	if sourceConfig.Settings.Timeout != 30 {
		t.Errorf("Expected default timeout 30, got %d", sourceConfig.Settings.Timeout)
	}
}

func TestConfigCacheInvalidConfig(t *testing.T) {
	tempDir := t.TempDir()

	// Missing source URL
	content := `
settings:
  enabled: true
`

	err := os.WriteFile(filepath.Join(tempDir, "broken.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	err = configCache.Run()
	if err == nil {
		t.Fatal("Expected validation error for config without URL")
	}
	if !strings.Contains(err.Error(), "URL") {
		t.Errorf("Expected error to mention URL, got: %v", err)
	}
}

func TestConfigCacheInvalidSourceType(t *testing.T) {
	tempDir := t.TempDir()

	content := `
url: "https://boards.example.com/jobs"
type: "soap"
`

	err := os.WriteFile(filepath.Join(tempDir, "soapy.yml"), []byte(content), 0644)
	if err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err == nil {
		t.Fatal("Expected validation error for unsupported source type")
	}
}

func TestConfigCacheGetEnabledConfigs(t *testing.T) {
	tempDir := t.TempDir()

	enabled := `
url: "https://boards.example.com/jobs.rss"
settings:
  enabled: true
`
	disabled := `
url: "https://other.example.com/jobs.rss"
settings:
  enabled: false
`

	if err := os.WriteFile(filepath.Join(tempDir, "boards.yml"), []byte(enabled), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tempDir, "other.yml"), []byte(disabled), 0644); err != nil {
		t.Fatal(err)
	}

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 2 {
		t.Errorf("Expected 2 loaded configs, got %d", configCache.GetConfigCount())
	}

	enabledConfigs := configCache.GetEnabledConfigs()
	if len(enabledConfigs) != 1 {
		t.Fatalf("Expected 1 enabled config, got %d", len(enabledConfigs))
	}
	if _, ok := enabledConfigs["boards"]; !ok {
		t.Error("Expected 'boards' to be enabled")
	}
}

func TestConfigCacheGetUnknownConfig(t *testing.T) {
	configCache := NewConfigCache(t.TempDir())
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if _, err := configCache.GetConfig("missing"); err == nil {
		t.Error("Expected error for unknown source name")
	}
}
