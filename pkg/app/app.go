// Package app defines the runtime contract shared by the cmd/* entrypoints.
//
// Binaries start application components through Runner without depending on
// their concrete implementations.
package app

// Runner represents a runnable application component.
type Runner interface {
	Run() error
}
