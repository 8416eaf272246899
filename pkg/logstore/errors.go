package logstore

import "fmt"

// CannotCreateFileError is the one fatal error kind the engine surfaces: a
// required bootstrap file could not be created. Every other failure is
// either recovered with a default value or logged and absorbed.
type CannotCreateFileError struct {
	// Name is the file that could not be created.
	Name string

	// Err is the underlying file-system error.
	Err error
}

func (e *CannotCreateFileError) Error() string {
	return fmt.Sprintf("cannot create file %s: %v", e.Name, e.Err)
}

func (e *CannotCreateFileError) Unwrap() error {
	return e.Err
}
