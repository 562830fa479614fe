package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/SlabLayout/internal/model"
)

func TestSaveAndLoadAppConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := model.DefaultAppConfig()
	cfg.DefaultMargin = 8
	cfg.DefaultUnit = model.UnitCM
	cfg.Theme = "dark"
	cfg.RecentLayouts = []string{"/tmp/a.slablayout.json", "/tmp/b.slablayout.json"}

	if err := SaveAppConfig(path, cfg); err != nil {
		t.Fatalf("SaveAppConfig failed: %v", err)
	}

	loaded, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}

	if loaded.DefaultMargin != 8 {
		t.Errorf("expected DefaultMargin=8, got %f", loaded.DefaultMargin)
	}
	if loaded.DefaultUnit != model.UnitCM {
		t.Errorf("expected DefaultUnit=cm, got %s", loaded.DefaultUnit)
	}
	if loaded.Theme != "dark" {
		t.Errorf("expected Theme=dark, got %s", loaded.Theme)
	}
	if len(loaded.RecentLayouts) != 2 {
		t.Errorf("expected 2 recent layouts, got %d", len(loaded.RecentLayouts))
	}
}

func TestLoadAppConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent", "config.json")

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}

	if cfg.DefaultMargin != model.DefaultMargin {
		t.Errorf("expected default margin %f, got %f", model.DefaultMargin, cfg.DefaultMargin)
	}
	if cfg.Theme != "system" {
		t.Errorf("expected theme=system, got %s", cfg.Theme)
	}
}

func TestLoadAppConfigInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	if err := os.WriteFile(path, []byte("not valid json{{{"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadAppConfig(path)
	if err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}

func TestSaveAppConfigCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "dir", "config.json")

	if err := SaveAppConfig(path, model.DefaultAppConfig()); err != nil {
		t.Fatalf("SaveAppConfig should create parent dirs: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}
}

func TestLoadAppConfigPartialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	data := []byte(`{"default_margin":-2,"theme":"light","recent_layouts":null}`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if cfg.RecentLayouts == nil {
		t.Error("RecentLayouts should not be nil after loading")
	}
	if cfg.DefaultMargin != 0 {
		t.Errorf("expected negative margin clamped to 0, got %f", cfg.DefaultMargin)
	}
	if cfg.HistoryDepth != model.DefaultHistoryDepth {
		t.Errorf("expected missing history depth to default, got %d", cfg.HistoryDepth)
	}
	if cfg.Machining.FeedRate != model.DefaultSettings().FeedRate {
		t.Errorf("expected default machining settings, got %+v", cfg.Machining)
	}
}
