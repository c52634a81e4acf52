package engine

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"cognerd/internal/config"
	"cognerd/internal/input"
	"cognerd/internal/memory"
	"cognerd/internal/metrics"
	"cognerd/internal/rules"
)

const robinDoc = `
tasks:
  - term: {op: "-->", args: [robin, bird]}
  - term: {op: "-->", args: [bird, animal]}
  - term: {op: "-->", args: [robin, animal]}
    punctuation: "?"
`

func entries(t *testing.T, cfg *config.Config, doc string) []input.Entry {
	t.Helper()
	out, err := input.NewResolver(cfg.Reasoner).Parse([]byte(doc))
	require.NoError(t, err)
	return out
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestStepAdmitsQueuedInput(t *testing.T) {
	cfg := config.DefaultConfig()
	var out syncBuffer
	e := New(cfg, WithReporter(NewConsoleReporter(&out)))

	e.Input(entries(t, cfg, robinDoc)...)
	assert.Equal(t, 3, e.Pending())
	assert.Zero(t, e.ConceptCount(), "nothing admitted before a step")

	assert.Equal(t, int64(1), e.Step(1))
	assert.Zero(t, e.Pending())
	assert.Contains(t, out.String(), "IN: <robin --> bird>. %1.00;0.90%\n")
	assert.Contains(t, out.String(), "IN: <robin --> animal>?\n")
	assert.Greater(t, e.ConceptCount(), 0)
}

func TestStepDeliversReportsBetweenCycles(t *testing.T) {
	cfg := config.DefaultConfig()
	var seen []memory.Report
	var e *Engine
	e = New(cfg, WithReporter(memory.ReporterFunc(func(r memory.Report) {
		assert.Equal(t, e.clock, r.Time, "reported after its own cycle finished")
		seen = append(seen, r)
	})))

	e.Input(entries(t, cfg, `
tasks:
  - term: {op: "-->", args: [a, b]}
  - term: {op: "-->", args: [a, b]}
    truth: {frequency: 0}
`)...)
	e.Step(0)
	require.Len(t, seen, 2)
	assert.Equal(t, memory.ReportIn, seen[0].Kind)

	e.Step(1)
	require.Len(t, seen, 3)
	assert.Equal(t, memory.ReportOut, seen[2].Kind)
	assert.Equal(t, int64(1), seen[2].Time)
}

func TestEngineAnswersWithRules(t *testing.T) {
	cfg := config.DefaultConfig()
	ev, err := rules.New()
	require.NoError(t, err)
	var out syncBuffer
	e := New(cfg, WithEvaluator(ev), WithReporter(NewConsoleReporter(&out, memory.ReportAnswer)))

	e.Input(entries(t, cfg, robinDoc)...)
	e.Step(300)

	assert.Contains(t, out.String(), "ANSWER: <robin --> animal>.")
	assert.NotContains(t, out.String(), "IN:")
}

func TestConcurrentInput(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := config.DefaultConfig()
	e := New(cfg)
	batch := entries(t, cfg, robinDoc)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				e.Input(batch...)
			}
		}()
	}
	for i := 0; i < 20; i++ {
		e.Step(1)
	}
	wg.Wait()
	e.Step(1)

	assert.Zero(t, e.Pending())
	assert.Equal(t, int64(21), e.Clock())
}

func TestRunStopsAtCycleLimit(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := config.DefaultConfig()
	cfg.Engine.Cycles = 50
	cfg.Engine.StepsPerTick = 7
	cfg.Engine.TickInterval = "0s"
	e := New(cfg)
	e.Input(entries(t, cfg, robinDoc)...)

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, int64(50), e.Clock())
}

func TestRunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := config.DefaultConfig()
	cfg.Engine.TickInterval = "1ms"
	e := New(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	require.Eventually(t, func() bool { return e.Clock() >= 3 }, 5*time.Second, time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestSnapshotOrderAndLimit(t *testing.T) {
	cfg := config.DefaultConfig()
	e := New(cfg)
	e.Input(entries(t, cfg, robinDoc)...)
	e.Step(5)

	all := e.Snapshot(0)
	require.Len(t, all, e.ConceptCount())
	for i := 1; i < len(all); i++ {
		assert.GreaterOrEqual(t, all[i-1].Priority, all[i].Priority)
	}
	var statement bool
	for _, c := range all {
		if c.Key == "<robin --> bird>" {
			statement = true
			assert.Equal(t, 1, c.Beliefs)
			assert.Equal(t, 2, c.TermLinks)
		}
	}
	assert.True(t, statement)

	assert.Len(t, e.Snapshot(2), 2)
}

func TestResetClearsEverything(t *testing.T) {
	cfg := config.DefaultConfig()
	e := New(cfg)
	e.Input(entries(t, cfg, robinDoc)...)
	e.Step(3)
	e.Input(entries(t, cfg, robinDoc)...)

	e.Reset()
	assert.Zero(t, e.Clock())
	assert.Zero(t, e.Pending())
	assert.Zero(t, e.ConceptCount())
}

func TestMetricsAreRecorded(t *testing.T) {
	cfg := config.DefaultConfig()
	c := metrics.New()
	e := New(cfg, WithMetrics(c))
	e.Input(entries(t, cfg, robinDoc)...)
	e.Step(4)

	expected := `
# HELP cognerd_memory_cycles_total Work cycles executed
# TYPE cognerd_memory_cycles_total counter
cognerd_memory_cycles_total 4
`
	require.NoError(t, testutil.GatherAndCompare(c.Registry(), strings.NewReader(expected), "cognerd_memory_cycles_total"))
}

func TestConsoleReporterFilters(t *testing.T) {
	var out syncBuffer
	r := NewConsoleReporter(&out, memory.ReportOut)
	r.Report(memory.Report{Kind: memory.ReportIn})
	assert.Empty(t, out.String())
}
