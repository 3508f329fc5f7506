package schema

import "fmt"

// ParseError marks a malformed health record file. The materialize run
// skips the file and keeps going; callers that want strict behavior can
// abort on the first one.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// WriteError marks a failure to create or replace the materialized
// artifact. Fatal to the invoking run; no partial output is retained.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ConfigError marks a missing or malformed dashboard configuration.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// FilterError marks a squad filter that matches nothing configured.
type FilterError struct {
	Squad string
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("squad %q is not configured", e.Squad)
}
