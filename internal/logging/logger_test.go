package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func resetLogging(t *testing.T) {
	t.Helper()
	Attach(nil)
	if err := Configure(Settings{}, ""); err != nil {
		t.Fatalf("Failed to reset logging: %v", err)
	}
}

// TestAllCategoriesLog tests that every category writes its own file in debug mode
func TestAllCategoriesLog(t *testing.T) {
	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, ".cognerd")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	configContent := "logging:\n  level: debug\n  debug_mode: true\n"
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	t.Cleanup(func() { resetLogging(t) })
	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}
	if !IsDebugMode() {
		t.Fatal("Expected debug mode to be enabled")
	}

	for _, cat := range AllCategories {
		if !IsCategoryEnabled(cat) {
			t.Errorf("Category %s should be enabled", cat)
		}
		logger := Get(cat)
		logger.Info("Test info message for %s", cat)
		logger.Debug("Test debug message for %s", cat)
		logger.Warn("Test warn message for %s", cat)
		logger.Error("Test error message for %s", cat)
	}
	Boot("Convenience boot log")
	MemoryLog("Convenience memory log")
	Rules("Convenience rules log")
	Store("Convenience store log")

	CloseAll()

	logsPath := filepath.Join(tempDir, ".cognerd", "logs")
	entries, err := os.ReadDir(logsPath)
	if err != nil {
		t.Fatalf("Failed to read logs dir: %v", err)
	}
	for _, cat := range AllCategories {
		found := false
		for _, entry := range entries {
			if strings.HasSuffix(entry.Name(), "_"+string(cat)+".log") {
				found = true
				content, err := os.ReadFile(filepath.Join(logsPath, entry.Name()))
				if err != nil {
					t.Errorf("Failed to read log file for %s: %v", cat, err)
				} else if len(content) == 0 {
					t.Errorf("Log file for %s is empty", cat)
				}
				break
			}
		}
		if !found {
			t.Errorf("No log file found for category: %s", cat)
		}
	}
}

// TestDebugModeDisabled tests that nothing is written when debug_mode is false
func TestDebugModeDisabled(t *testing.T) {
	tempDir := t.TempDir()
	t.Cleanup(func() { resetLogging(t) })

	logs := filepath.Join(tempDir, "logs")
	if err := Configure(Settings{Level: "debug"}, logs); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if IsCategoryEnabled(CategoryMemory) {
		t.Error("Categories should be disabled outside debug mode")
	}
	Get(CategoryMemory).Info("dropped")
	if _, err := os.Stat(logs); !os.IsNotExist(err) {
		t.Errorf("Logs directory should not exist, stat err = %v", err)
	}
}

// TestCategoryToggle tests the per-category filter
func TestCategoryToggle(t *testing.T) {
	t.Cleanup(func() { resetLogging(t) })
	err := Configure(Settings{
		DebugMode:  true,
		Level:      "info",
		Categories: map[string]bool{"bag": false, "memory": true},
	}, t.TempDir())
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if IsCategoryEnabled(CategoryBag) {
		t.Error("bag should be disabled")
	}
	if !IsCategoryEnabled(CategoryMemory) {
		t.Error("memory should be enabled")
	}
	if !IsCategoryEnabled(CategoryRules) {
		t.Error("unlisted categories default to enabled")
	}
}

func TestAttachRoutesThroughZap(t *testing.T) {
	t.Cleanup(func() { resetLogging(t) })
	core, recorded := observer.New(zap.DebugLevel)
	if err := Configure(Settings{Level: "debug"}, ""); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	Attach(zap.New(core))

	WithRunID(CategoryEngine, "run-1").Info("cycle %d", 7)
	BagDebug("evicted %s", "x")

	entries := recorded.All()
	if len(entries) != 2 {
		t.Fatalf("recorded %d entries, want 2", len(entries))
	}
	if entries[0].LoggerName != "engine" || entries[0].Message != "cycle 7" {
		t.Errorf("unexpected entry %+v", entries[0])
	}
	if got := entries[0].ContextMap()["run"]; got != "run-1" {
		t.Errorf("run field = %v", got)
	}
	if entries[1].LoggerName != "bag" {
		t.Errorf("logger name = %q, want bag", entries[1].LoggerName)
	}
}

// TestTimerLogging tests the timing helpers
func TestTimerLogging(t *testing.T) {
	t.Cleanup(func() { resetLogging(t) })
	core, recorded := observer.New(zap.DebugLevel)
	if err := Configure(Settings{Level: "debug"}, ""); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	Attach(zap.New(core))

	timer := StartTimer(CategoryEngine, "step")
	time.Sleep(2 * time.Millisecond)
	if elapsed := timer.Stop(); elapsed < 2*time.Millisecond {
		t.Errorf("elapsed = %v", elapsed)
	}
	StartTimer(CategoryEngine, "slow").StopWithThreshold(0)

	if n := recorded.FilterMessageSnippet("slow took").Len(); n != 1 {
		t.Errorf("expected one threshold warning, got %d", n)
	}
}
