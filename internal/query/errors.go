package query

import "fmt"

// SchemaMismatchError reports a disagreement between an operation's declared
// response shape and either the Go type bound to it or the data a server
// returned.
type SchemaMismatchError struct {
	Operation string
	// Path is the dotted response path, e.g. "petById.photo.full". Empty
	// for problems with the document as a whole.
	Path   string
	Reason string
}

func (e *SchemaMismatchError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("query: %s: %s", e.Operation, e.Reason)
	}
	return fmt.Sprintf("query: %s: %s: %s", e.Operation, e.Path, e.Reason)
}

func mismatch(op, path, format string, args ...any) *SchemaMismatchError {
	return &SchemaMismatchError{Operation: op, Path: path, Reason: fmt.Sprintf(format, args...)}
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}
