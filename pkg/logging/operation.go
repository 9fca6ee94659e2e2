package logging

import (
	"fmt"
	"strings"
	"sync"
)

// OperationLog collects the diagnostic trace for a single tool call. A fresh
// instance is created for every call, so traces from concurrent calls never
// interleave. Every line is also written through to the durable sink.
type OperationLog struct {
	mu    sync.Mutex
	sink  *Logger
	lines []string
}

// NewOperationLog creates an empty per-call log writing through to sink.
// A nil sink is allowed; lines are then only buffered.
func NewOperationLog(sink *Logger) *OperationLog {
	return &OperationLog{sink: sink}
}

// Logf appends a line to the buffer and the durable sink.
func (o *OperationLog) Logf(format string, v ...interface{}) {
	message := fmt.Sprintf(format, v...)

	o.mu.Lock()
	o.lines = append(o.lines, message)
	o.mu.Unlock()

	if o.sink != nil {
		o.sink.Infof("%s", message)
	}
}

// Errorf appends a line to the buffer and logs it at error level.
func (o *OperationLog) Errorf(format string, v ...interface{}) {
	message := fmt.Sprintf(format, v...)

	o.mu.Lock()
	o.lines = append(o.lines, message)
	o.mu.Unlock()

	if o.sink != nil {
		o.sink.Errorf("%s", message)
	}
}

// Lines returns a copy of the buffered lines in append order.
func (o *OperationLog) Lines() []string {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]string, len(o.lines))
	copy(out, o.lines)
	return out
}

// String returns the buffered lines joined by newlines.
func (o *OperationLog) String() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return strings.Join(o.lines, "\n")
}
