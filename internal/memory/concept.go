package memory

import (
	"cognerd/internal/bag"
	"cognerd/internal/budget"
	"cognerd/internal/config"
	"cognerd/internal/entity"
	"cognerd/internal/fuzzy"
	"cognerd/internal/logging"
	"cognerd/internal/stamp"
	"cognerd/internal/term"
)

// Concept is the unit of long-term storage for one term: the tasks and
// terms linked to it, and its belief and question tables. Concepts are
// owned by the memory's concept bag and reached only by term name.
type Concept struct {
	term   term.Term
	budget budget.Value

	taskLinks *bag.Bag[*entity.TaskLink]
	termLinks *bag.Bag[*entity.TermLink]
	templates []entity.Template

	beliefs   []entity.Sentence // by descending rank
	questions []*entity.Task    // FIFO

	maxBeliefs   int
	maxQuestions int
}

func newConcept(t term.Term, cfg config.ReasonerConfig) *Concept {
	return &Concept{
		term:   t,
		budget: budget.Default(),
		taskLinks: bag.New[*entity.TaskLink](bag.Config{
			Name:       "task_links:" + t.Name(),
			Capacity:   cfg.TaskLinkBagSize,
			Levels:     cfg.BagLevels,
			Threshold:  cfg.BagThreshold,
			ForgetRate: cfg.TaskLinkForgettingCycle,
		}),
		termLinks: bag.New[*entity.TermLink](bag.Config{
			Name:       "term_links:" + t.Name(),
			Capacity:   cfg.TermLinkBagSize,
			Levels:     cfg.BagLevels,
			Threshold:  cfg.BagThreshold,
			ForgetRate: cfg.TermLinkForgettingCycle,
		}),
		templates:    entity.PrepareTemplates(t),
		maxBeliefs:   max(cfg.MaxBeliefs, 1),
		maxQuestions: max(cfg.MaxQuestions, 1),
	}
}

func (c *Concept) Key() string           { return c.term.Name() }
func (c *Concept) Budget() *budget.Value { return &c.budget }
func (c *Concept) Term() term.Term       { return c.term }

// Quality is or(average term-link priority, 1/complexity): simple terms and
// well-connected terms are worth keeping.
func (c *Concept) Quality() float64 {
	return fuzzy.Or(c.termLinks.AveragePriority(), 1/float64(c.term.Complexity()))
}

// Beliefs returns the belief table, best first.
func (c *Concept) Beliefs() []entity.Sentence {
	return append([]entity.Sentence(nil), c.beliefs...)
}

// Questions returns the pending questions, oldest first.
func (c *Concept) Questions() []*entity.Task {
	return append([]*entity.Task(nil), c.questions...)
}

// Templates returns the component link templates.
func (c *Concept) Templates() []entity.Template {
	return append([]entity.Template(nil), c.templates...)
}

// TaskLinks exposes the task-link bag for inspection.
func (c *Concept) TaskLinks() *bag.Bag[*entity.TaskLink] { return c.taskLinks }

// TermLinks exposes the term-link bag for inspection.
func (c *Concept) TermLinks() *bag.Bag[*entity.TermLink] { return c.termLinks }

// BeliefFor returns the best-ranked belief whose evidence is independent of
// task's, together with the merged stamp a conclusion from both would carry.
func (c *Concept) BeliefFor(task *entity.Task, now int64, maxStamp int) (entity.Sentence, stamp.Stamp, bool) {
	ts := task.Sentence().Stamp
	for _, b := range c.beliefs {
		if merged, ok := stamp.Merge(ts, b.Stamp, now, maxStamp); ok {
			return b, merged, true
		}
	}
	return entity.Sentence{}, stamp.Stamp{}, false
}

// =============================================================================
// DIRECT PROCESSING
// =============================================================================

// directProcess handles a task the first time it reaches this concept, then
// links it in if it still has budget.
func (c *Concept) directProcess(m *Memory, task *entity.Task) {
	if task.Sentence().IsJudgment() {
		c.processJudgment(m, task)
	} else {
		c.processQuestion(m, task)
	}
	if task.Budget().AboveThreshold() {
		c.linkToTask(m, task)
	}
}

func (c *Concept) processJudgment(m *Memory, task *entity.Task) {
	judg := task.Sentence()
	if old, ok := evaluation(judg, c.beliefs); ok {
		if judg.Stamp.Equal(old.Stamp) {
			// Same evidence again. A belief re-activated by a question keeps
			// its budget; anything else is a duplicate.
			if p := task.Parent(); p == nil || p.Punctuation == entity.Judgment {
				task.Budget().DecPriority(0)
			}
			return
		}
		if revisible(judg, old) {
			if merged, ok := stamp.Merge(judg.Stamp, old.Stamp, m.time, m.cfg.MaxStampLength); ok {
				m.newStamp = &merged
				m.currentBelief = &old
				m.revision(judg, old, false)
			} else {
				logging.ConceptDebug("%s: no revision of %s, evidence overlaps", c.Key(), judg)
			}
		}
	}
	if task.Budget().AboveThreshold() {
		for _, q := range c.questions {
			m.trySolution(judg, q)
		}
		c.addBelief(judg)
	}
}

func (c *Concept) processQuestion(m *Memory, task *entity.Task) {
	ques := task.Sentence()
	isNew := true
	for _, q := range c.questions {
		if term.Equal(q.Content(), ques.Content) {
			ques = q.Sentence()
			isNew = false
			break
		}
	}
	if isNew {
		if len(c.questions)+1 > c.maxQuestions {
			c.questions[0] = nil
			c.questions = c.questions[1:]
		}
		c.questions = append(c.questions, task)
	}
	if answer, ok := evaluation(ques, c.beliefs); ok {
		m.trySolution(answer, task)
	}
}

// addBelief inserts s by rank, dropping the lowest-ranked beliefs beyond
// capacity. An equivalent belief already present is kept as is.
func (c *Concept) addBelief(s entity.Sentence) {
	rank := s.Rank()
	i := 0
	for ; i < len(c.beliefs); i++ {
		if rank >= c.beliefs[i].Rank() {
			if s.EquivalentTo(c.beliefs[i]) {
				return
			}
			break
		}
	}
	if i == len(c.beliefs) && len(c.beliefs) >= c.maxBeliefs {
		return
	}
	c.beliefs = append(c.beliefs, entity.Sentence{})
	copy(c.beliefs[i+1:], c.beliefs[i:])
	c.beliefs[i] = s
	if len(c.beliefs) > c.maxBeliefs {
		c.beliefs = c.beliefs[:c.maxBeliefs]
	}
}

// evaluation picks the candidate that best answers query.
func evaluation(query entity.Sentence, candidates []entity.Sentence) (entity.Sentence, bool) {
	var best entity.Sentence
	bestQuality := 0.0
	found := false
	for _, s := range candidates {
		if q := solutionQuality(query, s); q > bestQuality {
			best, bestQuality, found = s, q, true
		}
	}
	return best, found
}
