package entity

import (
	"cognerd/internal/budget"
	"cognerd/internal/term"
)

// NoveltyRecordLength is the default number of recent term-link pairings a
// task link remembers.
const NoveltyRecordLength = 10

type novelty struct {
	key  string
	time int64
}

// TaskLink connects a concept to a task whose content contains the concept's term.
type TaskLink struct {
	task    *Task
	kind    LinkKind
	indices []int
	budget  budget.Value
	key     string

	records   []novelty // ring buffer, at most recordLen
	recordLen int
	next      int
}

// NewTaskLink links task through tpl; a nil template gives a self link.
// recordLength bounds the novelty record; values below one select
// NoveltyRecordLength.
func NewTaskLink(task *Task, tpl *Template, b budget.Value, recordLength int) *TaskLink {
	if recordLength < 1 {
		recordLength = NoveltyRecordLength
	}
	l := &TaskLink{task: task, kind: LinkSelf, budget: b, recordLen: recordLength}
	if tpl != nil {
		l.kind = tpl.Kind
		l.indices = append([]int(nil), tpl.Indices...)
	}
	l.key = linkKey(l.kind, l.indices) + task.Key()
	return l
}

func (l *TaskLink) Key() string           { return l.key }
func (l *TaskLink) Budget() *budget.Value { return &l.budget }
func (l *TaskLink) Task() *Task           { return l.task }
func (l *TaskLink) Kind() LinkKind        { return l.kind }
func (l *TaskLink) Indices() []int        { return append([]int(nil), l.indices...) }

// Novel reports whether pairing with termLink at time now is worth doing. A
// link to the task's own content is never novel; a pairing seen within the
// last record-length steps is not novel. Novel pairings are recorded.
func (l *TaskLink) Novel(termLink *TermLink, now int64) bool {
	if term.Equal(termLink.Target(), l.task.Content()) {
		return false
	}
	key := termLink.Key()
	for i := range l.records {
		if l.records[i].key != key {
			continue
		}
		if now < l.records[i].time+int64(l.recordLen) {
			return false
		}
		l.records[i].time = now
		return true
	}
	rec := novelty{key: key, time: now}
	if len(l.records) < l.recordLen {
		l.records = append(l.records, rec)
	} else {
		l.records[l.next] = rec
	}
	l.next = (l.next + 1) % l.recordLen
	return true
}

func (l *TaskLink) String() string { return l.budget.String() + " " + l.key }
