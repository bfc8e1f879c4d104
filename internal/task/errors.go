package task

import "fmt"

// ValidationError reports a task field that violates an invariant.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NotFoundError reports a task index outside the store's range.
type NotFoundError struct {
	Index int
	Len   int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no task at index %d (have %d)", e.Index, e.Len)
}

// StorageError reports an unreadable or malformed tasks file.
type StorageError struct {
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("tasks file %s: %s", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Err
}
