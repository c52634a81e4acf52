package memory

import (
	"cognerd/internal/budget"
	"cognerd/internal/entity"
	"cognerd/internal/logging"
	"cognerd/internal/term"
)

// =============================================================================
// LINK BUILDING
// =============================================================================

// linkToTask links task to this concept and, for compound terms, to every
// component concept reachable through a template, then builds the term
// links between them.
func (c *Concept) linkToTask(m *Memory, task *entity.Task) {
	taskBudget := *task.Budget()
	c.insertTaskLink(m, entity.NewTaskLink(task, nil, taskBudget, m.cfg.TermLinkRecordLength))

	if _, ok := term.AsCompound(c.term); !ok || len(c.templates) == 0 {
		return
	}
	sub := budget.DistributeAmongLinks(taskBudget, len(c.templates))
	if !sub.AboveThreshold() {
		return
	}
	for i := range c.templates {
		tpl := &c.templates[i]
		component := m.concept(tpl.Target)
		if component == nil {
			continue
		}
		component.insertTaskLink(m, entity.NewTaskLink(task, tpl, sub, m.cfg.TermLinkRecordLength))
	}
	c.buildTermLinks(m, taskBudget)
}

// buildTermLinks links this concept and its component concepts in both
// directions, recursing into compound components while the distributed
// budget stays above threshold. Transform templates get no term links.
func (c *Concept) buildTermLinks(m *Memory, b budget.Value) {
	if len(c.templates) == 0 {
		return
	}
	sub := budget.DistributeAmongLinks(b, len(c.templates))
	if !sub.AboveThreshold() {
		return
	}
	for _, tpl := range c.templates {
		if tpl.Kind == entity.LinkTransform {
			continue
		}
		component := m.concept(tpl.Target)
		if component == nil {
			continue
		}
		c.insertTermLink(m, entity.NewTermLink(tpl.Target, tpl, sub))
		component.insertTermLink(m, entity.NewTermLink(c.term, tpl, sub))
		if _, ok := term.AsCompound(tpl.Target); ok {
			component.buildTermLinks(m, sub)
		}
	}
}

// insertTaskLink stores the link and activates this concept with its budget.
func (c *Concept) insertTaskLink(m *Memory, link *entity.TaskLink) {
	linkBudget := *link.Budget()
	if out, admitted := c.taskLinks.PutIn(link); admitted && out != nil {
		m.metrics.Evicted("task_links")
	}
	m.activateConcept(c, linkBudget)
}

func (c *Concept) insertTermLink(m *Memory, link *entity.TermLink) {
	if out, admitted := c.termLinks.PutIn(link); admitted && out != nil {
		m.metrics.Evicted("term_links")
	}
}

// =============================================================================
// FIRING
// =============================================================================

// fire runs one scheduling step: draw a task link, pair it with up to
// MaxReasonedTermLinks novel term links (stopping at the first step that
// derives something), then return every link to its bag.
func (c *Concept) fire(m *Memory) {
	taskLink, ok := c.taskLinks.TakeOut()
	if !ok {
		return
	}
	m.metrics.Fired()
	m.currentConcept = c
	m.currentTaskLink = taskLink
	m.currentBeliefLink = nil
	m.currentBelief = nil
	m.currentTask = taskLink.Task()
	logging.ConceptDebug("%s: fire %s", c.Key(), taskLink)

	if taskLink.Kind() == entity.LinkTransform {
		m.transform(taskLink)
	} else {
		for n := m.cfg.MaxReasonedTermLinks; m.noResult() && n > 0; n-- {
			termLink, ok := c.takeOutTermLink(taskLink, m.time, m.cfg.MaxMatchedTermLinks)
			if !ok {
				break
			}
			m.currentBeliefLink = termLink
			m.reason(taskLink, termLink)
			c.termLinks.PutBack(termLink)
		}
	}
	c.taskLinks.PutBack(taskLink)
}

// takeOutTermLink draws term links until one is novel for taskLink, putting
// the stale ones back. It gives up after maxTries draws.
func (c *Concept) takeOutTermLink(taskLink *entity.TaskLink, now int64, maxTries int) (*entity.TermLink, bool) {
	for i := 0; i < maxTries; i++ {
		termLink, ok := c.termLinks.TakeOut()
		if !ok {
			return nil, false
		}
		if taskLink.Novel(termLink, now) {
			return termLink, true
		}
		c.termLinks.PutBack(termLink)
	}
	return nil, false
}
