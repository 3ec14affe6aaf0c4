package extract

import "fmt"

// WriteError represents an unwritable output path. The attempt is aborted.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("cannot write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// DependencyMissingError reports an absent external dependency (the OCR
// engine) together with remediation instructions. It does not affect
// non-OCR tasks.
type DependencyMissingError struct {
	Dep    string
	Remedy string
}

func (e *DependencyMissingError) Error() string {
	return fmt.Sprintf("the %q dependency is required for OCR but is not installed. %s", e.Dep, e.Remedy)
}
