// Package backend provides an interface for different execution backends.
// This allows switching between the register VM and a tree-walk evaluator.
package backend

import (
	"github.com/funvibe/snirk/internal/pipeline"
)

// Backend is the interface for execution backends
type Backend interface {
	// Run executes the verified program from the pipeline context and returns
	// the value of its final expression
	Run(ctx *pipeline.PipelineContext) (float64, error)

	// Name returns the backend name for display
	Name() string
}

// ByName returns the backend registered under name, or nil.
func ByName(name string) Backend {
	switch name {
	case "vm", "":
		return NewVM()
	case "treewalk":
		return NewTreeWalk()
	}
	return nil
}
