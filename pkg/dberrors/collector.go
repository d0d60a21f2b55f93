package dberrors

import "strings"

// Failure is a single collected problem, pairing what went wrong with a
// suggested correction for the pipeline author.
type Failure struct {
	Message    string
	Correction string
}

// Collector accumulates failures so that a validation or argument-selection
// path can report everything it found at once rather than stopping at the
// first problem. The zero value is ready to use.
type Collector struct {
	errType  ErrorType
	failures []Failure
}

// NewCollector creates a collector whose combined error carries the given
// category.
func NewCollector(errType ErrorType) *Collector {
	return &Collector{errType: errType}
}

// AddFailure records a failure with a correction hint.
func (c *Collector) AddFailure(message, correction string) {
	c.failures = append(c.failures, Failure{Message: message, Correction: correction})
}

// HasFailures reports whether any failure has been collected.
func (c *Collector) HasFailures() bool {
	return len(c.failures) > 0
}

// Failures returns the collected failures in insertion order.
func (c *Collector) Failures() []Failure {
	return c.failures
}

// Err combines the collected failures into a single structured error, or
// returns nil when nothing was collected.
func (c *Collector) Err() error {
	if len(c.failures) == 0 {
		return nil
	}
	errType := c.errType
	if errType == "" {
		errType = ErrorTypeConfiguration
	}
	var sb strings.Builder
	for i, f := range c.failures {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(f.Message)
		if f.Correction != "" {
			sb.WriteString(" (")
			sb.WriteString(f.Correction)
			sb.WriteString(")")
		}
	}
	err := New(errType, sb.String())
	err.WithDetail("failure_count", len(c.failures))
	return err
}
