package ai

import (
	"fmt"
	"strings"
)

// LogBuilder accumulates a one-line account of a unit's turn. The player
// emits it once the mission step is over.
type LogBuilder struct {
	sb      strings.Builder
	enabled bool
}

// NewLogBuilder returns a builder. A disabled builder drops everything.
func NewLogBuilder(enabled bool) *LogBuilder {
	return &LogBuilder{enabled: enabled}
}

// Add appends the values, formatted with %v and no separators.
func (lb *LogBuilder) Add(args ...any) {
	if lb == nil || !lb.enabled {
		return
	}
	for _, a := range args {
		fmt.Fprint(&lb.sb, a)
	}
}

// Addf appends a formatted string.
func (lb *LogBuilder) Addf(format string, args ...any) {
	if lb == nil || !lb.enabled {
		return
	}
	fmt.Fprintf(&lb.sb, format, args...)
}

// Len is the length of the text so far.
func (lb *LogBuilder) Len() int {
	if lb == nil {
		return 0
	}
	return lb.sb.Len()
}

func (lb *LogBuilder) String() string {
	if lb == nil {
		return ""
	}
	return lb.sb.String()
}

// Reset clears the builder for the next unit.
func (lb *LogBuilder) Reset() {
	if lb != nil {
		lb.sb.Reset()
	}
}
