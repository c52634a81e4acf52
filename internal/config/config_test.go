package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// UNIFIED CONFIG TESTS
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Name != "cognerd" {
		t.Errorf("expected Name=cognerd, got %s", cfg.Name)
	}
	if cfg.Reasoner.ConceptBagSize != 1000 {
		t.Errorf("expected ConceptBagSize=1000, got %d", cfg.Reasoner.ConceptBagSize)
	}
	if got := cfg.Reasoner.RelativeThreshold(); got != 0.1 {
		t.Errorf("expected RelativeThreshold=0.1, got %g", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("COGNERD_DB", "")
	t.Setenv("COGNERD_SILENCE", "")

	path := DefaultPath(t.TempDir())

	cfg := DefaultConfig()
	cfg.Reasoner.TaskLinkBagSize = 33
	cfg.Engine.Cycles = 500
	cfg.Logging.Categories = map[string]bool{"bag": false}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Reasoner.TaskLinkBagSize != 33 {
		t.Errorf("expected TaskLinkBagSize=33, got %d", loaded.Reasoner.TaskLinkBagSize)
	}
	if loaded.Engine.Cycles != 500 {
		t.Errorf("expected Cycles=500, got %d", loaded.Engine.Cycles)
	}
	if loaded.Logging.IsCategoryEnabled("bag") {
		t.Error("bag logging should be disabled")
	}
}

func TestConfig_LoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultReasonerConfig(), cfg.Reasoner)
}

func TestConfig_LoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("reasoner:\n  max_beliefs: 3\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Reasoner.MaxBeliefs)
	assert.Equal(t, 5, cfg.Reasoner.MaxQuestions)
}

func TestConfig_LoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("reasoner: [unclosed"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero bag", func(c *Config) { c.Reasoner.ConceptBagSize = 0 }},
		{"zero record length", func(c *Config) { c.Reasoner.TermLinkRecordLength = 0 }},
		{"threshold above levels", func(c *Config) { c.Reasoner.BagThreshold = 101 }},
		{"silence out of range", func(c *Config) { c.Reasoner.Silence = 101 }},
		{"expectation out of range", func(c *Config) { c.Reasoner.CreationExpectation = 1.5 }},
		{"negative cycles", func(c *Config) { c.Engine.Cycles = -1 }},
		{"bad tick", func(c *Config) { c.Engine.TickInterval = "soon" }},
		{"store without path", func(c *Config) { c.Store.DatabasePath = "" }},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_ValidateReportsFirstFieldInOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Reasoner.ConceptBagSize = 0
	cfg.Reasoner.MaxQuestions = 0
	cfg.Reasoner.TermLinkRecordLength = 0
	cfg.Reasoner.JudgmentPriority = 2

	for i := 0; i < 20; i++ {
		err := cfg.Validate()
		require.Error(t, err)
		assert.Equal(t, "reasoner: concept_bag_size must be >= 1, got 0", err.Error())
	}

	cfg.Reasoner.ConceptBagSize = 1000
	cfg.Reasoner.MaxQuestions = 5
	cfg.Reasoner.TermLinkRecordLength = 10
	cfg.Reasoner.QuestionDurability = -1
	for i := 0; i < 20; i++ {
		assert.EqualError(t, cfg.Validate(), "reasoner: judgment_priority must be in [0,1], got 2")
	}
}

func TestConfig_Durations(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "10ms", cfg.GetTickInterval().String())
	cfg.Input.Debounce = "bogus"
	assert.Equal(t, "200ms", cfg.GetDebounce().String())
}

func TestLoggingSettings(t *testing.T) {
	lc := LoggingConfig{Level: "debug", Format: "json", DebugMode: true}
	s := lc.Settings()
	assert.True(t, s.DebugMode)
	assert.True(t, s.JSONFormat)
	assert.Equal(t, "debug", s.Level)
}

func TestFindWorkspaceRoot_PrefersCognerdDir(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, DirName), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", DirName, err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir nested: %v", err)
	}

	origWD, _ := os.Getwd()
	if err := os.Chdir(nested); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWD) })

	got, err := FindWorkspaceRoot()
	if err != nil {
		t.Fatalf("FindWorkspaceRoot: %v", err)
	}
	// Resolve symlinks so macOS /var vs /private/var does not matter.
	want, _ := filepath.EvalSymlinks(root)
	gotResolved, _ := filepath.EvalSymlinks(got)
	if gotResolved != want {
		t.Fatalf("FindWorkspaceRoot=%q, want %q", got, root)
	}
}
