package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cognerd/internal/entity"
	"cognerd/internal/memory"
	"cognerd/internal/stamp"
	"cognerd/internal/term"
	"cognerd/internal/truth"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func report(kind memory.ReportKind, s, p string, cycle int64) memory.Report {
	content := term.MustStatement(term.MustAtom(s), term.Inheritance, term.MustAtom(p))
	sentence := entity.NewJudgment(content, truth.New(1, 0.9), stamp.FromBase([]int64{1}, cycle))
	return memory.Report{Kind: kind, Sentence: sentence, Time: cycle}
}

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	id, err := s.BeginRun(ctx, "reasoner: {}")
	require.NoError(t, err)
	assert.Len(t, id, 36)

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.False(t, runs[0].Finished())
	assert.Equal(t, "reasoner: {}", runs[0].Config)

	require.NoError(t, s.FinishRun(ctx, id, 250))
	runs, err = s.ListRuns(ctx)
	require.NoError(t, err)
	assert.True(t, runs[0].Finished())
	assert.Equal(t, int64(250), runs[0].Cycles)
	assert.False(t, runs[0].FinishedAt.Before(runs[0].StartedAt))

	assert.ErrorIs(t, s.FinishRun(ctx, "nope", 1), ErrRunNotFound)
}

func TestReportsKeepOrder(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	id, err := s.BeginRun(ctx, "")
	require.NoError(t, err)

	r := s.Reporter(id)
	r.Report(report(memory.ReportIn, "robin", "bird", 0))
	r.Report(report(memory.ReportIn, "bird", "animal", 0))
	r.Report(report(memory.ReportOut, "robin", "animal", 12))

	got, err := s.Reports(ctx, id)
	require.NoError(t, err)
	want := []ReportRecord{
		{Cycle: 0, Kind: "IN", Text: "<robin --> bird>. %1.00;0.90%"},
		{Cycle: 0, Kind: "IN", Text: "<bird --> animal>. %1.00;0.90%"},
		{Cycle: 12, Kind: "OUT", Text: "<robin --> animal>. %1.00;0.90%"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("reports mismatch (-want +got):\n%s", diff)
	}

	other, err := s.Reports(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSnapshotReplaceAndOrder(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	id, err := s.BeginRun(ctx, "")
	require.NoError(t, err)

	first := []ConceptRecord{
		{Key: "robin", Priority: 0.2, Durability: 0.5, Quality: 0.3, TermLinks: 1},
		{Key: "<robin --> bird>", Priority: 0.7, Durability: 0.8, Quality: 0.9, Beliefs: 1, TaskLinks: 1, TermLinks: 2},
	}
	require.NoError(t, s.SaveSnapshot(ctx, id, first))

	got, err := s.LoadSnapshot(ctx, id)
	require.NoError(t, err)
	want := []ConceptRecord{first[1], first[0]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}

	require.NoError(t, s.SaveSnapshot(ctx, id, first[:1]))
	got, err = s.LoadSnapshot(ctx, id)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = s.LoadSnapshot(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestMigrationsAddSnapshotColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE concepts (
		run_id TEXT NOT NULL, key TEXT NOT NULL,
		priority REAL NOT NULL, durability REAL NOT NULL, quality REAL NOT NULL,
		beliefs INTEGER NOT NULL DEFAULT 0, questions INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, key))`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	for _, col := range []string{"task_links", "term_links"} {
		has, err := columnExists(s.db, "concepts", col)
		require.NoError(t, err)
		assert.True(t, has, col)
	}
	require.NoError(t, RunMigrations(s.db), "idempotent")
}

func TestOpenInMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()
	_, err = s.BeginRun(context.Background(), "")
	assert.NoError(t, err)
}
