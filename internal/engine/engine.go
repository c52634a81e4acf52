// Package engine drives the memory control loop: it owns the clock, collects
// input from any goroutine, and fans reports out to reporters.
package engine

import (
	"context"
	"sort"
	"sync"
	"time"

	"cognerd/internal/config"
	"cognerd/internal/input"
	"cognerd/internal/logging"
	"cognerd/internal/memory"
	"cognerd/internal/metrics"
	"cognerd/internal/store"
)

// Steps slower than this are logged as warnings.
const slowStep = time.Second

// Engine serializes all access to a Memory. Input may be called
// concurrently with Step and Run; everything else happens under one lock.
type Engine struct {
	mu      sync.Mutex
	mem     *memory.Memory
	clock   int64
	cfg     config.EngineConfig
	tick    time.Duration
	metrics *metrics.Collector

	inMu    sync.Mutex
	pending []input.Entry

	evaluator memory.Evaluator
	reporters []memory.Reporter
}

// Option configures an Engine.
type Option func(*Engine)

// WithEvaluator sets the rule evaluator.
func WithEvaluator(ev memory.Evaluator) Option {
	return func(e *Engine) { e.evaluator = ev }
}

// WithReporter adds a reporter. Reporters are called in the order added and
// must not call back into the engine.
func WithReporter(r memory.Reporter) Option {
	return func(e *Engine) { e.reporters = append(e.reporters, r) }
}

// WithMetrics records control-loop metrics into c.
func WithMetrics(c *metrics.Collector) Option {
	return func(e *Engine) { e.metrics = c }
}

// New builds an engine for cfg.
func New(cfg *config.Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:  cfg.Engine,
		tick: cfg.GetTickInterval(),
	}
	for _, opt := range opts {
		opt(e)
	}
	memOpts := []memory.Option{
		memory.WithReporter(fanout(e.reporters)),
		memory.WithMetrics(e.metrics),
	}
	if e.evaluator != nil {
		memOpts = append(memOpts, memory.WithEvaluator(e.evaluator))
	}
	e.mem = memory.New(cfg.Reasoner, memOpts...)
	return e
}

type fanout []memory.Reporter

func (f fanout) Report(r memory.Report) {
	for _, rep := range f {
		rep.Report(r)
	}
}

// Input queues entries for the next step. Safe for concurrent use.
func (e *Engine) Input(entries ...input.Entry) {
	e.inMu.Lock()
	e.pending = append(e.pending, entries...)
	e.inMu.Unlock()
}

// InputFrom is Input with a source, matching input.Sink.
func (e *Engine) InputFrom(source string, entries []input.Entry) {
	logging.EngineDebug("queued %d tasks from %s", len(entries), source)
	e.Input(entries...)
}

// Pending is the number of queued entries.
func (e *Engine) Pending() int {
	e.inMu.Lock()
	defer e.inMu.Unlock()
	return len(e.pending)
}

// Step admits queued input and runs n work cycles. Reports reach the
// reporters between cycles. It returns the clock.
func (e *Engine) Step(n int) int64 {
	timer := logging.StartTimer(logging.CategoryEngine, "Step")
	defer timer.StopWithThreshold(slowStep)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.drainLocked()
	e.mem.Flush()
	for i := 0; i < n; i++ {
		e.clock++
		e.mem.WorkCycle(e.clock)
		e.mem.Flush()
	}
	return e.clock
}

func (e *Engine) drainLocked() {
	e.inMu.Lock()
	entries := e.pending
	e.pending = nil
	e.inMu.Unlock()

	for _, entry := range entries {
		task := entry.Task(e.mem.Serials(), e.clock)
		if !e.mem.InputTask(task) {
			logging.EngineDebug("input below threshold: %s", entry)
		}
	}
}

// Run steps until ctx is cancelled or the configured cycle count is
// reached. Reaching the cycle count returns nil.
func (e *Engine) Run(ctx context.Context) error {
	steps := e.cfg.StepsPerTick
	if steps < 1 {
		steps = 1
	}
	logging.Engine("engine running: %d cycles per tick every %s (limit %d)", steps, e.tick, e.cfg.Cycles)

	var ticker *time.Ticker
	if e.tick > 0 {
		ticker = time.NewTicker(e.tick)
		defer ticker.Stop()
	}

	for {
		n := steps
		if limit := int64(e.cfg.Cycles); limit > 0 {
			remaining := limit - e.Clock()
			if remaining <= 0 {
				logging.Engine("engine reached %d cycles", limit)
				return nil
			}
			if int64(n) > remaining {
				n = int(remaining)
			}
		}
		e.Step(n)

		if ticker == nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Clock is the number of cycles run so far.
func (e *Engine) Clock() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock
}

// ConceptCount is the number of resident concepts.
func (e *Engine) ConceptCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mem.ConceptCount()
}

// Snapshot returns up to limit concepts, highest priority first. A limit
// below one returns all of them.
func (e *Engine) Snapshot(limit int) []store.ConceptRecord {
	e.mu.Lock()
	defer e.mu.Unlock()

	concepts := e.mem.Concepts()
	out := make([]store.ConceptRecord, 0, len(concepts))
	for _, c := range concepts {
		b := c.Budget()
		out = append(out, store.ConceptRecord{
			Key:        c.Key(),
			Priority:   b.Priority(),
			Durability: b.Durability(),
			Quality:    b.Quality(),
			Beliefs:    len(c.Beliefs()),
			Questions:  len(c.Questions()),
			TaskLinks:  c.TaskLinks().Size(),
			TermLinks:  c.TermLinks().Size(),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].Key < out[j].Key
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Reset empties memory, drops queued input and rewinds the clock.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inMu.Lock()
	e.pending = nil
	e.inMu.Unlock()
	e.mem.Reset()
	e.clock = 0
}
