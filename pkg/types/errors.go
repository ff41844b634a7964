package types

import "fmt"

// RemoteSourceError reports a failure talking to an external source: an
// annotation API or the knowledge graph API. It carries the source slug so
// callers can apply per-source policy (skip and continue, by default) and
// record the failure in provenance.
type RemoteSourceError struct {
	// Source is the slug of the remote source, e.g. "kestrel" or
	// "metabolomics-workbench".
	Source string

	// Op names the operation that failed, e.g. "canonicalize".
	Op string

	// Err is the underlying cause.
	Err error
}

func (e *RemoteSourceError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Source, e.Op, e.Err)
}

func (e *RemoteSourceError) Unwrap() error { return e.Err }

// NewRemoteSourceError wraps an underlying failure with its source and
// operation.
func NewRemoteSourceError(source, op string, err error) *RemoteSourceError {
	return &RemoteSourceError{Source: source, Op: op, Err: err}
}

// ConfigurationError reports a fatal configuration problem: an unknown entity
// type, a duplicate annotator slug, or a missing vocabulary mapping where one
// is required. Unlike remote failures, configuration errors are never
// swallowed; the affected entity cannot proceed through the stage that
// detected the problem.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Msg
}

// NewConfigurationError builds a ConfigurationError from a format string.
func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}
