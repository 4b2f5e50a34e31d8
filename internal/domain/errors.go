package domain

import "fmt"

// ValidationError reports bad caller input. Not retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation: " + e.Reason }

// ParseError reports an unreadable or empty document.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse: %s: %v", e.Reason, e.Err)
	}
	return "parse: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// EmbeddingError reports an embedding provider failure. Batch identifies
// which batch failed; a batch fully succeeds or fully fails.
type EmbeddingError struct {
	Batch  int
	Reason string
	Err    error
}

func (e *EmbeddingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("embedding batch %d: %s: %v", e.Batch, e.Reason, e.Err)
	}
	return fmt.Sprintf("embedding batch %d: %s", e.Batch, e.Reason)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// SynthesisError reports an LLM provider failure or empty completion.
type SynthesisError struct {
	Reason string
	Err    error
}

func (e *SynthesisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("synthesis: %s: %v", e.Reason, e.Err)
	}
	return "synthesis: " + e.Reason
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// PersistenceError reports a local store write failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err) }

func (e *PersistenceError) Unwrap() error { return e.Err }

// ConfigurationError reports missing provider credentials or settings.
// Detected at the first call that needs them, not at startup.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string { return "configuration: " + e.Reason }

// StageError annotates a component failure with the pipeline stage it
// occurred in. The orchestrator wraps every ingest failure in one.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("stage %s: %v", e.Stage, e.Err) }

func (e *StageError) Unwrap() error { return e.Err }
