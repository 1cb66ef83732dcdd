package manifest

import "fmt"

// LoadError reports malformed or missing input data. Compilation never
// writes any output after a LoadError.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("load %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("load: %v", e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// MergeConflictError reports a duplicate id, an unresolved remap, or a remap
// chain. It names the offending ids so the conflict can be fixed from the
// command line.
type MergeConflictError struct {
	ID     string
	Reason string
}

func (e *MergeConflictError) Error() string {
	return fmt.Sprintf("merge conflict on %s: %s", e.ID, e.Reason)
}

// SerializationError reports a failure writing an output artifact.
type SerializationError struct {
	Path string
	Err  error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }
