// Package tree implements the editable key/value tree behind kvtree: nodes,
// the indexed model the presentation layer talks to, and the nested Map
// interchange form.
package tree

import "errors"

// Addressing errors
var (
	// ErrInvalidHandle indicates a handle that does not address a cell.
	ErrInvalidHandle = errors.New("invalid handle")

	// ErrStaleHandle indicates a handle whose node is no longer part of the tree.
	ErrStaleHandle = errors.New("handle refers to a node that is no longer in the tree")

	// ErrNotRowHandle indicates a parent handle outside column 0; children
	// are only addressable through a row's first column.
	ErrNotRowHandle = errors.New("children are only addressable through column 0")

	// ErrStalePath indicates a path that no longer resolves in the live tree.
	ErrStalePath = errors.New("path does not resolve")
)

// Range errors
var (
	// ErrOutOfRange indicates a row or column outside the current bounds.
	ErrOutOfRange = errors.New("index out of range")
)

// Invariant errors
var (
	// ErrBranchValue indicates an attempt to give a node with children a value.
	ErrBranchValue = errors.New("branch nodes do not carry a value")

	// ErrCycle indicates a move of a node into its own subtree.
	ErrCycle = errors.New("cannot move a node into its own subtree")
)
