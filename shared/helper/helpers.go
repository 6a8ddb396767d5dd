package helper

import (
	"fmt"
)

// GetTypedValueOf safely asserts the result of a getter function to the expected type T.
// Returns an error if type assertion fails.
func GetTypedValueOf[T any](getFn func() (any, error)) (T, error) {
	var zero T

	res, err := getFn()
	if err != nil {
		return zero, fmt.Errorf("failed to get value: %w", err)
	}

	val, ok := res.(T)
	if !ok {
		return zero, fmt.Errorf("unexpected type: %T", res)
	}

	return val, nil
}

// RecoveredError turns a recovered panic value into an error.
func RecoveredError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}
