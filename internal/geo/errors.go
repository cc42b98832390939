package geo

import "fmt"

// InvalidInputError is returned when a centroid is requested for input that
// cannot have one, such as an empty coordinate set
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Message)
}

func NewInvalidInputError(message string) *InvalidInputError {
	return &InvalidInputError{
		Message: message,
	}
}

// ProjectionError wraps a failure reported by the projection library
type ProjectionError struct {
	Message string
	Err     error
}

func (e *ProjectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("projection error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("projection error: %s", e.Message)
}

func (e *ProjectionError) Unwrap() error {
	return e.Err
}

func NewProjectionError(message string, err error) *ProjectionError {
	return &ProjectionError{
		Message: message,
		Err:     err,
	}
}
