package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/curioushiba/warehouse-tracker-app-v2-sub002/internal/models"
)

func TestLoad_MissingFileYieldsZeroConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RemoteURL != "" || cfg.APIKey != "" {
		t.Fatalf("expected zero config, got %+v", cfg)
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	want := &models.Config{
		RemoteURL: "https://stock.example.com",
		APIKey:    "secret",
		DeviceID:  "device-1",
		UserID:    "u1",
	}
	if err := Save(dir, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *got != *want {
		t.Fatalf("round trip: got %+v, want %+v", got, want)
	}

	// no temp files left behind by the atomic write
	entries, _ := os.ReadDir(filepath.Join(dir, ".stock"))
	for _, e := range entries {
		if e.Name() != "config.json" {
			t.Fatalf("stray file after save: %s", e.Name())
		}
	}
}

func TestLoad_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	os.MkdirAll(filepath.Join(dir, ".stock"), 0755)
	os.WriteFile(filepath.Join(dir, ".stock", "config.json"), []byte("{not json"), 0644)

	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for corrupt config")
	}
}
