// Package memory implements the attention core: concepts with their link
// bags and belief tables, and the control loop that moves tasks between the
// new-task queue, the novel-task bag and the concept bag one cycle at a time.
//
// Memory is a single logical actor. None of its methods may be called
// concurrently; callers that share a Memory serialize access themselves.
package memory

import (
	"time"

	"cognerd/internal/bag"
	"cognerd/internal/budget"
	"cognerd/internal/config"
	"cognerd/internal/entity"
	"cognerd/internal/logging"
	"cognerd/internal/metrics"
	"cognerd/internal/stamp"
	"cognerd/internal/term"
	"cognerd/internal/truth"
)

// Memory owns every concept and the task queues.
type Memory struct {
	cfg       config.ReasonerConfig
	evaluator Evaluator
	reporter  Reporter
	metrics   *metrics.Collector
	serials   *stamp.Serials

	concepts   *bag.Bag[*Concept]
	novelTasks *bag.Bag[*entity.Task]
	newTasks   []*entity.Task

	// Reports wait here until Flush.
	outbox []Report

	time int64

	// Valid only inside one step.
	currentTask       *entity.Task
	currentConcept    *Concept
	currentTaskLink   *entity.TaskLink
	currentBelief     *entity.Sentence
	currentBeliefLink *entity.TermLink
	newStamp          *stamp.Stamp
}

// Option configures a Memory.
type Option func(*Memory)

// WithEvaluator sets the rule evaluator used when concepts fire.
func WithEvaluator(e Evaluator) Option {
	return func(m *Memory) { m.evaluator = e }
}

// WithReporter sets the output channel.
func WithReporter(r Reporter) Option {
	return func(m *Memory) { m.reporter = r }
}

// WithMetrics records control-loop metrics into c.
func WithMetrics(c *metrics.Collector) Option {
	return func(m *Memory) { m.metrics = c }
}

// New creates an empty memory.
func New(cfg config.ReasonerConfig, opts ...Option) *Memory {
	m := &Memory{
		cfg:       cfg,
		evaluator: noEvaluator{},
		reporter:  discardReporter{},
		serials:   stamp.NewSerials(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.concepts = bag.New[*Concept](bag.Config{
		Name:       "concepts",
		Capacity:   cfg.ConceptBagSize,
		Levels:     cfg.BagLevels,
		Threshold:  cfg.BagThreshold,
		ForgetRate: cfg.ConceptForgettingCycle,
	})
	m.novelTasks = bag.New[*entity.Task](bag.Config{
		Name:       "novel_tasks",
		Capacity:   cfg.NovelTaskBagSize,
		Levels:     cfg.BagLevels,
		Threshold:  cfg.BagThreshold,
		ForgetRate: cfg.NewTaskForgettingCycle,
	})
	return m
}

// Reset empties memory, rewinds the clock and restarts evidence serials.
func (m *Memory) Reset() {
	m.concepts.Clear()
	m.novelTasks.Clear()
	m.newTasks = nil
	m.outbox = nil
	m.serials.Reset()
	m.time = 0
	m.clearStep()
	logging.MemoryLog("memory reset")
}

func (m *Memory) clearStep() {
	m.currentTask = nil
	m.currentConcept = nil
	m.currentTaskLink = nil
	m.currentBelief = nil
	m.currentBeliefLink = nil
	m.newStamp = nil
}

// Time is the clock of the last work cycle.
func (m *Memory) Time() int64 { return m.time }

// Serials is the evidence serial counter input stamps draw from.
func (m *Memory) Serials() *stamp.Serials { return m.serials }

// Config returns the parameters memory was built with.
func (m *Memory) Config() config.ReasonerConfig { return m.cfg }

// Concepts returns all concepts, highest priority level first.
func (m *Memory) Concepts() []*Concept { return m.concepts.Items() }

// ConceptCount is the number of resident concepts.
func (m *Memory) ConceptCount() int { return m.concepts.Size() }

// NovelTaskCount is the number of tasks waiting for a concept.
func (m *Memory) NovelTaskCount() int { return m.novelTasks.Size() }

// NewTaskCount is the length of the new-task queue.
func (m *Memory) NewTaskCount() int { return len(m.newTasks) }

// ConceptOf looks up the concept for t without creating it.
func (m *Memory) ConceptOf(t term.Term) *Concept {
	if t == nil {
		return nil
	}
	c, _ := m.concepts.Get(t.Name())
	return c
}

// concept returns the concept for t, creating it if needed. It returns nil
// for terms with variables and when the concept bag turns the new concept away.
func (m *Memory) concept(t term.Term) *Concept {
	if !t.IsConstant() {
		return nil
	}
	if c, ok := m.concepts.Get(t.Name()); ok {
		return c
	}
	c := newConcept(t, m.cfg)
	out, admitted := m.concepts.PutIn(c)
	if !admitted {
		return nil
	}
	if out != nil {
		m.metrics.Evicted("concepts")
		logging.MemoryDebug("concept %s evicted by %s", out.Key(), c.Key())
	}
	m.metrics.ConceptCreated()
	return c
}

// conceptActivation is the priority of t's concept, or 0 without one.
func (m *Memory) conceptActivation(t term.Term) float64 {
	if c := m.ConceptOf(t); c != nil {
		return c.budget.Priority()
	}
	return 0
}

// activateConcept detaches c, raises its budget with b and re-admits it.
func (m *Memory) activateConcept(c *Concept, b budget.Value) {
	if _, ok := m.concepts.PickOut(c.Key()); !ok {
		return
	}
	budget.Activate(&c.budget, b, c.Quality())
	m.concepts.PutBack(c)
}

func (m *Memory) noResult() bool { return len(m.newTasks) == 0 }

func (m *Memory) report(kind ReportKind, s entity.Sentence) {
	m.outbox = append(m.outbox, Report{Kind: kind, Sentence: s, Time: m.time})
}

// PendingReports is the number of reports waiting for Flush.
func (m *Memory) PendingReports() int { return len(m.outbox) }

// Flush hands the queued reports to the reporter in the order they were
// made. Call it between work cycles; a cycle never blocks on output.
func (m *Memory) Flush() {
	out := m.outbox
	m.outbox = nil
	for _, r := range out {
		m.reporter.Report(r)
	}
}

func (m *Memory) loud(b budget.Value) bool {
	return b.Summary() > float64(m.cfg.Silence)/100
}

// =============================================================================
// CONTROL LOOP
// =============================================================================

// WorkCycle advances memory one step at clock: process the new tasks queued
// before this step, then (if nothing new was derived) one novel task, then
// (if still nothing) fire one concept.
func (m *Memory) WorkCycle(clock int64) {
	start := time.Now()
	m.time = clock

	m.processNewTasks()
	if m.noResult() {
		m.processNovelTask()
	}
	if m.noResult() {
		m.processConcept()
	}
	m.clearStep()

	m.metrics.Cycle(time.Since(start))
	m.metrics.BagSize("concepts", m.concepts.Size())
	m.metrics.BagSize("novel_tasks", m.novelTasks.Size())
	m.metrics.BagSize("new_tasks", len(m.newTasks))
	m.metrics.BagMass("concepts", m.concepts.Mass())
	m.metrics.BagMass("novel_tasks", m.novelTasks.Mass())
}

// processNewTasks drains the tasks present at the start of the step. Tasks
// derived meanwhile wait for the next step.
func (m *Memory) processNewTasks() {
	for n := len(m.newTasks); n > 0; n-- {
		task := m.newTasks[0]
		m.newTasks[0] = nil
		m.newTasks = m.newTasks[1:]

		if task.IsInput() || m.ConceptOf(task.Content()) != nil {
			m.immediateProcess(task)
			continue
		}
		s := task.Sentence()
		if s.IsJudgment() && s.Truth.Expectation() > m.cfg.CreationExpectation {
			out, admitted := m.novelTasks.PutIn(task)
			if !admitted {
				m.metrics.Task("neglected")
				logging.MemoryDebug("novel task %s turned away", task)
				continue
			}
			if out != nil {
				m.metrics.Evicted("novel_tasks")
			}
			m.metrics.Task("novel")
			continue
		}
		m.metrics.Task("neglected")
		logging.MemoryDebug("neglected %s", task)
	}
}

func (m *Memory) processNovelTask() {
	if task, ok := m.novelTasks.TakeOut(); ok {
		m.immediateProcess(task)
	}
}

// processConcept selects a concept, returns it to the bag straight away and
// fires it. Selection does not remove the concept from the working set.
func (m *Memory) processConcept() {
	c, ok := m.concepts.TakeOut()
	if !ok {
		return
	}
	m.currentConcept = c
	m.concepts.PutBack(c)
	c.fire(m)
}

// immediateProcess activates the task's concept (creating it if needed) and
// lets the concept process the task directly.
func (m *Memory) immediateProcess(task *entity.Task) {
	m.currentTask = task
	m.currentTaskLink = nil
	m.currentBeliefLink = nil
	m.currentBelief = nil

	c := m.concept(task.Content())
	if c == nil {
		logging.MemoryDebug("no concept for %s", task)
		return
	}
	m.currentConcept = c
	m.activateConcept(c, *task.Budget())
	c.directProcess(m, task)
}

// reason resolves the belief for a task/term link pairing, applies the local
// rules and hands the premise to the evaluator.
func (m *Memory) reason(taskLink *entity.TaskLink, termLink *entity.TermLink) {
	task := taskLink.Task()
	m.currentBelief = nil
	m.newStamp = nil
	if bc := m.ConceptOf(termLink.Target()); bc != nil {
		if belief, merged, ok := bc.BeliefFor(task, m.time, m.cfg.MaxStampLength); ok {
			m.currentBelief = &belief
			m.newStamp = &merged
			m.match(task, belief)
		}
	}
	premise := Premise{
		Task:             task,
		Belief:           m.currentBelief,
		TaskLink:         taskLink,
		TermLink:         termLink,
		BeliefActivation: m.conceptActivation(termLink.Target()),
		Time:             m.time,
	}
	for _, c := range m.evaluator.Reason(premise) {
		m.accept(c)
	}
}

func (m *Memory) transform(taskLink *entity.TaskLink) {
	m.currentBelief = nil
	premise := Premise{Task: taskLink.Task(), TaskLink: taskLink, Time: m.time}
	for _, c := range m.evaluator.Transform(premise) {
		m.accept(c)
	}
}

func (m *Memory) accept(c Conclusion) {
	if c.SinglePremise {
		punct := c.Punctuation
		if punct == 0 {
			punct = m.currentTask.Sentence().Punctuation
		}
		m.SinglePremiseTask(c.Content, punct, c.Truth, c.Budget)
		return
	}
	m.DoublePremiseTask(c.Content, c.Truth, c.Budget, !c.NoRevision)
}

// =============================================================================
// TASK ADMISSION
// =============================================================================

// InputTask queues an externally produced task for the next cycle. It
// reports whether the task had enough budget to be accepted.
func (m *Memory) InputTask(task *entity.Task) bool {
	if !task.Budget().AboveThreshold() {
		m.metrics.Task("neglected")
		logging.MemoryDebug("neglected input %s", task)
		return false
	}
	m.report(ReportIn, task.Sentence())
	m.newTasks = append(m.newTasks, task)
	m.metrics.Task("input")
	return true
}

// DerivedTask queues a derived task if its budget is above threshold.
// Derived tasks louder than the silence level are reported.
func (m *Memory) DerivedTask(task *entity.Task) {
	if !task.Budget().AboveThreshold() {
		m.metrics.Task("ignored")
		logging.MemoryDebug("ignored %s", task)
		return
	}
	if m.loud(*task.Budget()) {
		m.report(ReportOut, task.Sentence())
	}
	m.newTasks = append(m.newTasks, task)
	m.metrics.Task("derived")
}

// ActivatedTask re-queues a belief that answered a question so the answer
// can propagate. Its best solution is the question's own parent belief.
func (m *Memory) ActivatedTask(b budget.Value, s entity.Sentence, candidate *entity.Sentence) {
	task := entity.NewDerivedTask(s, b, m.currentTask, &s)
	if candidate != nil {
		task.SetBestSolution(*candidate)
	}
	if s.IsQuestion() && m.loud(b) {
		m.report(ReportOut, s)
	}
	m.newTasks = append(m.newTasks, task)
}

// DoublePremiseTask derives a task from the current task and belief. The
// sentence takes the current task's punctuation and the merged stamp of the
// pairing; without a merged stamp (the evidence overlapped) nothing is derived.
func (m *Memory) DoublePremiseTask(content term.Term, t *truth.Value, b budget.Value, revisible bool) {
	if content == nil || m.currentTask == nil || m.newStamp == nil {
		return
	}
	s := entity.Sentence{
		Content:     content,
		Punctuation: m.currentTask.Sentence().Punctuation,
		Stamp:       *m.newStamp,
		Revisible:   revisible,
	}
	if s.IsJudgment() {
		if t == nil {
			return
		}
		s.Truth = *t
	}
	m.DerivedTask(entity.NewDerivedTask(s, b, m.currentTask, m.currentBelief))
}

// SinglePremiseTask derives a task from the current task alone. Content equal
// to the current task's parent or grandparent is dropped, which stops
// structural rewrites from cycling.
func (m *Memory) SinglePremiseTask(content term.Term, punct entity.Punctuation, t *truth.Value, b budget.Value) {
	if content == nil || m.currentTask == nil {
		return
	}
	if p := m.currentTask.Parent(); p != nil {
		if term.Equal(content, p.Content) || (p.Grandparent != nil && term.Equal(content, p.Grandparent)) {
			return
		}
	}
	ts := m.currentTask.Sentence()
	var st stamp.Stamp
	if ts.IsJudgment() || m.currentBelief == nil {
		st = stamp.Derive(ts.Stamp, m.time)
	} else {
		st = stamp.Derive(m.currentBelief.Stamp, m.time)
	}
	s := entity.Sentence{Content: content, Punctuation: punct, Stamp: st, Revisible: ts.Revisible}
	if s.IsJudgment() {
		if t == nil {
			return
		}
		s.Truth = *t
	}
	m.DerivedTask(entity.NewDerivedTask(s, b, m.currentTask, nil))
}
