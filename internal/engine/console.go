package engine

import (
	"fmt"
	"io"
	"sync"

	"cognerd/internal/memory"
)

// ConsoleReporter prints reports as "IN: ...", "OUT: ..." and "ANSWER: ..."
// lines.
type ConsoleReporter struct {
	mu sync.Mutex
	w  io.Writer
	// Kinds limits output to the listed kinds; empty prints everything.
	Kinds []memory.ReportKind
}

// NewConsoleReporter writes to w.
func NewConsoleReporter(w io.Writer, kinds ...memory.ReportKind) *ConsoleReporter {
	return &ConsoleReporter{w: w, Kinds: kinds}
}

func (c *ConsoleReporter) Report(r memory.Report) {
	if !c.wants(r.Kind) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, r.String())
}

func (c *ConsoleReporter) wants(k memory.ReportKind) bool {
	if len(c.Kinds) == 0 {
		return true
	}
	for _, want := range c.Kinds {
		if want == k {
			return true
		}
	}
	return false
}
