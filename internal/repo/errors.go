package repo

import "fmt"

// StoreError wraps a backend failure with the operation and key involved.
type StoreError struct {
	Driver string
	Op     string // "open", "get", "set"
	Key    string
	Err    error
}

func (e *StoreError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("settings store %s: %s: %v", e.Driver, e.Op, e.Err)
	}
	return fmt.Sprintf("settings store %s: %s %q: %v", e.Driver, e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
