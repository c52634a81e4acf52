package memory

import (
	"fmt"

	"cognerd/internal/entity"
)

// ReportKind classifies a line sent to the output channel.
type ReportKind int

const (
	ReportIn ReportKind = iota
	ReportOut
	ReportAnswer
)

func (k ReportKind) String() string {
	switch k {
	case ReportIn:
		return "IN"
	case ReportOut:
		return "OUT"
	case ReportAnswer:
		return "ANSWER"
	}
	return fmt.Sprintf("ReportKind(%d)", int(k))
}

// Report is one accepted input, derived conclusion or answer.
type Report struct {
	Kind     ReportKind
	Sentence entity.Sentence
	Time     int64
}

func (r Report) String() string {
	return fmt.Sprintf("%s: %s", r.Kind, r.Sentence.Key())
}

// Reporter receives reports from Memory.Flush, outside any work cycle.
type Reporter interface {
	Report(r Report)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Report)

func (f ReporterFunc) Report(r Report) { f(r) }

type discardReporter struct{}

func (discardReporter) Report(Report) {}
