package css

import (
	"fmt"
	"sort"
	"strings"
)

// SyntaxError is the user-visible error kind from spec.md §7: base-level
// '&', invalid parent composition, and @extend loops.
type SyntaxError struct {
	Message  string
	Line     int
	Filename string
}

func (e *SyntaxError) Error() string {
	if e.Filename != "" {
		return fmt.Sprintf("%s (line %d of %s)", e.Message, e.Line, e.Filename)
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d)", e.Message, e.Line)
	}
	return e.Message
}

func newSyntaxError(message string, line int, filename string) *SyntaxError {
	return &SyntaxError{Message: message, Line: line, Filename: filename}
}

// InternalInvariantViolation is the "[BUG]"-prefixed error kind from
// spec.md §7: violations of preconditions the algorithms require (and
// document) but cannot themselves enforce earlier than point of use.
type InternalInvariantViolation struct {
	Message string
}

func (e *InternalInvariantViolation) Error() string { return e.Message }

func panicInvariant(message string) {
	panic(&InternalInvariantViolation{Message: message})
}

// ExpansionTooLargeError is the dedicated cancellation error kind from
// spec.md §5: a Weave/extend expansion exceeded the configured Limits.
type ExpansionTooLargeError struct {
	Limit int
	Got   int
	What  string
}

func (e *ExpansionTooLargeError) Error() string {
	return fmt.Sprintf("%s expansion exceeded limit of %d (reached %d)", e.What, e.Limit, e.Got)
}

// extendCycleEdge records one "child extends parent on line L[ of file]"
// step of an @extend cycle, for the loop-detection diagnostic in
// spec.md §4.4.
type extendCycleEdge struct {
	child    string
	parent   string
	line     int
	filename string
}

func (e extendCycleEdge) String() string {
	if e.filename != "" {
		return fmt.Sprintf("%s extends %s on line %d of %s", e.child, e.parent, e.line, e.filename)
	}
	return fmt.Sprintf("%s extends %s on line %d", e.child, e.parent, e.line)
}

// newExtendLoopError builds the "An @extend loop was found:\n..." message
// from spec.md §4.4, sorted so the edge on the highest source line comes
// first.
func newExtendLoopError(cycle []extendCycleEdge) *SyntaxError {
	if len(cycle) == 0 {
		return newSyntaxError("An @extend loop exists, but the exact loop couldn't be found.", 0, "")
	}
	sorted := make([]extendCycleEdge, len(cycle))
	copy(sorted, cycle)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].line > sorted[j].line })

	lines := make([]string, len(sorted))
	for i, e := range sorted {
		lines[i] = e.String()
	}
	msg := "An @extend loop was found:\n" + strings.Join(lines, ",\n")
	return newSyntaxError(msg, sorted[0].line, sorted[0].filename)
}
