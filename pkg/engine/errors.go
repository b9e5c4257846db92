package engine

import "errors"

var (
	// ErrNodeNotFound names a reference to a node the dag does not contain.
	// Nothing in this package returns it; Run reports an undefined
	// dependency as ErrMissingDep.
	ErrNodeNotFound = errors.New("engine: node not found")

	// ErrDuplicateNode is returned when AddNode is called twice with the same name.
	ErrDuplicateNode = errors.New("engine: duplicate node name")

	// ErrCycle is returned when the dependency graph contains a cycle.
	ErrCycle = errors.New("engine: cycle detected among node dependencies")

	// ErrMissingDep is returned when a node declares a dependency that was never added.
	ErrMissingDep = errors.New("engine: dependency not found")

	// ErrNodeFailed is returned from Run when one or more nodes failed.
	ErrNodeFailed = errors.New("engine: one or more nodes failed")
)
