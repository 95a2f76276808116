package component

import "fmt"

// TypeMismatchError reports a subscription whose selector kind does not
// match the shape of the artifact it was applied to.
type TypeMismatchError struct {
	// ContainerKind is the shape of the artifact being narrowed.
	ContainerKind Kind
	// SelectorKind is "index" or "key".
	SelectorKind string
}

// Error implements the error interface.
func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("subscription by %s cannot narrow a %s artifact", e.SelectorKind, e.ContainerKind)
}

// MissingRequirementError reports a node asking for a requirement name it
// was never wired with. This is a graph-assembly bug, fatal to the build.
type MissingRequirementError struct {
	Node        string
	Requirement string
}

// Error implements the error interface.
func (e *MissingRequirementError) Error() string {
	return fmt.Sprintf("component %q has no requirement named %q", e.Node, e.Requirement)
}

// ConstructionError wraps a producer failure with the identifier of the
// owning node. The underlying cause is reachable via errors.Unwrap, so
// callers can still match it with errors.Is/As.
type ConstructionError struct {
	Node string
	Err  error
}

// Error implements the error interface.
func (e *ConstructionError) Error() string {
	return fmt.Sprintf("constructing component %q: %v", e.Node, e.Err)
}

// Unwrap returns the producer's original error.
func (e *ConstructionError) Unwrap() error { return e.Err }
