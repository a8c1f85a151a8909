package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wricardo/quackers-game/game/engine"
)

func createValidConfig(name string) *engine.GameConfig {
	config := engine.DefaultGameConfig()
	config.Name = name
	config.Description = name + " pond"
	return config
}

func writeConfigFile(t *testing.T, dir, name string, config any) {
	t.Helper()
	data, err := json.Marshal(config)
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".json"), data, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		if _, err := NewManager("/non/existent/path"); err == nil {
			t.Error("Expected error for non-existent config directory")
		}
	})

	t.Run("empty directory uses built-in default", func(t *testing.T) {
		m, err := NewManager(t.TempDir())
		if err != nil {
			t.Fatalf("NewManager failed: %v", err)
		}
		if m.GetDefault().Name != engine.DefaultGameConfig().Name {
			t.Errorf("Expected built-in default, got %s", m.GetDefault().Name)
		}
	})

	t.Run("no directory", func(t *testing.T) {
		m, err := NewManager("")
		if err != nil {
			t.Fatalf("NewManager failed: %v", err)
		}
		if m.GetDefault() == nil {
			t.Fatal("Expected a default config")
		}
		if _, err := m.LoadConfig("other"); !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
		if err := m.SaveConfig("x", createValidConfig("x")); err == nil {
			t.Error("Saving without a directory should fail")
		}
	})

	t.Run("default.json wins", func(t *testing.T) {
		dir := t.TempDir()
		writeConfigFile(t, dir, "aaa", createValidConfig("First"))
		writeConfigFile(t, dir, "default", createValidConfig("Chosen"))

		m, err := NewManager(dir)
		if err != nil {
			t.Fatalf("NewManager failed: %v", err)
		}
		if m.GetDefault().Name != "Chosen" {
			t.Errorf("Expected default.json, got %s", m.GetDefault().Name)
		}
	})

	t.Run("first valid file otherwise", func(t *testing.T) {
		dir := t.TempDir()
		writeConfigFile(t, dir, "big", createValidConfig("Big"))

		m, err := NewManager(dir)
		if err != nil {
			t.Fatalf("NewManager failed: %v", err)
		}
		if m.GetDefault().Name != "Big" {
			t.Errorf("Expected Big, got %s", m.GetDefault().Name)
		}
	})

	t.Run("invalid default.json", func(t *testing.T) {
		dir := t.TempDir()
		writeConfigFile(t, dir, "default", map[string]any{"name": ""})

		if _, err := NewManager(dir); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "small", createValidConfig("Small"))
	writeConfigFile(t, dir, "broken", map[string]any{"name": "Broken", "world_width": -1})

	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	config, err := m.LoadConfig("small")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Name != "Small" {
		t.Errorf("Expected Small, got %s", config.Name)
	}

	// Extension is optional and results are cached
	again, _ := m.LoadConfig("small.json")
	if again != config {
		t.Error("Expected cached config instance")
	}

	if _, err := m.LoadConfig("missing"); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}
	if _, err := m.LoadConfig("broken"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestManager_ListConfigs(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "b", createValidConfig("B"))
	writeConfigFile(t, dir, "a", createValidConfig("A"))
	writeConfigFile(t, dir, "broken", map[string]any{"name": ""})
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644)

	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	configs, err := m.ListConfigs()
	if err != nil {
		t.Fatalf("ListConfigs failed: %v", err)
	}
	if len(configs) != 2 {
		t.Fatalf("Expected 2 valid configs, got %d", len(configs))
	}
	if configs[0].ConfigID != "a" || configs[1].ConfigID != "b" {
		t.Errorf("Expected configs sorted by id, got %s, %s", configs[0].ConfigID, configs[1].ConfigID)
	}
	if configs[0].Filename != "a.json" || configs[0].WorldWidth != engine.WorldWidth {
		t.Errorf("Unexpected info %+v", configs[0])
	}
}

func TestManager_SaveAndSetDefault(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	if err := m.SaveConfig("party", createValidConfig("Party")); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "party.json")); err != nil {
		t.Errorf("Config file not written: %v", err)
	}

	invalid := createValidConfig("Bad")
	invalid.Cracker.Points = 0
	if err := m.SaveConfig("bad", invalid); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}

	if err := m.SetDefault("party"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	if m.GetDefault().Name != "Party" {
		t.Errorf("Expected Party as default, got %s", m.GetDefault().Name)
	}

	if err := m.RefreshCache(); err != nil {
		t.Fatalf("RefreshCache failed: %v", err)
	}
	if m.GetDefault().Name != "Party" {
		t.Errorf("Only file should be picked after refresh, got %s", m.GetDefault().Name)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "pond", createValidConfig("Pond"))

	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	m.RefreshCache()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.LoadConfig("pond"); err != nil {
				t.Errorf("LoadConfig failed: %v", err)
			}
			m.GetDefault()
			m.ListConfigs()
		}()
	}
	wg.Wait()
}
