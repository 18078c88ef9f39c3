package db

import "fmt"

// StoreError is the single error type returned by the pair group repositories.
// Op describes what failed, Path names the file or key involved.
type StoreError struct {
	Op   string
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap exposes the underlying cause to errors.Is and errors.As
func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeError(op, path string, err error) error {
	return &StoreError{Op: op, Path: path, Err: err}
}
