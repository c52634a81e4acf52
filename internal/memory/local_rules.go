package memory

import (
	"cognerd/internal/budget"
	"cognerd/internal/entity"
	"cognerd/internal/term"
	"cognerd/internal/truth"
)

// revisible: same content, and the new judgment allows revision.
func revisible(s1, s2 entity.Sentence) bool {
	return term.Equal(s1.Content, s2.Content) && s1.Revisible
}

// solutionQuality scores how well solution answers problem. Questions with
// variables prefer high expectation on simple terms; others prefer confidence.
func solutionQuality(problem, solution entity.Sentence) float64 {
	if !problem.Content.IsConstant() {
		return solution.Truth.Expectation() / float64(solution.Content.Complexity())
	}
	return solution.Truth.Confidence
}

// match applies the local rules to a task and a belief about the same content.
func (m *Memory) match(task *entity.Task, belief entity.Sentence) {
	s := task.Sentence()
	if s.IsJudgment() {
		if revisible(s, belief) {
			m.revision(s, belief, true)
		}
		return
	}
	if term.Equal(s.Content, belief.Content) {
		m.trySolution(belief, task)
	}
}

// revision merges two judgments with independent evidence. m.newStamp must
// already hold the merged stamp. With feedbackToLinks the current task and
// belief links are discounted by how little the revision changed them.
func (m *Memory) revision(newBelief, oldBelief entity.Sentence, feedbackToLinks bool) {
	revised := truth.Revision(newBelief.Truth, oldBelief.Truth)
	b := budget.Revise(m.currentTask.Budget(), newBelief.Truth, oldBelief.Truth, revised)
	if feedbackToLinks {
		if tl := m.currentTaskLink; tl != nil {
			difT := revised.ExpDifAbs(newBelief.Truth)
			tl.Budget().DecPriority(1 - difT)
			tl.Budget().DecDurability(1 - difT)
		}
		if bl := m.currentBeliefLink; bl != nil {
			difB := revised.ExpDifAbs(oldBelief.Truth)
			bl.Budget().DecPriority(1 - difB)
			bl.Budget().DecDurability(1 - difB)
		}
	}
	m.metrics.Revised()
	m.DoublePremiseTask(newBelief.Content, &revised, b, true)
}

// trySolution records belief as the answer to task if it beats the current
// best, reports answers to input questions, and re-activates the belief.
func (m *Memory) trySolution(belief entity.Sentence, task *entity.Task) {
	problem := task.Sentence()
	quality := solutionQuality(problem, belief)
	if old := task.BestSolution(); old != nil && solutionQuality(problem, *old) >= quality {
		return
	}
	task.SetBestSolution(belief)
	m.metrics.Answered()
	if task.IsInput() {
		m.report(ReportAnswer, belief)
	}
	if b, ok := budget.SolutionEval(task.Budget(), quality, problem.IsJudgment(), belief.Truth); ok && b.AboveThreshold() {
		m.ActivatedTask(b, belief, task.ParentBelief())
	}
}
