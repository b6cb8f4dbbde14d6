package editor

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateKey is returned by RequestRename when a sibling already
	// uses the new key.
	ErrDuplicateKey = errors.New("a sibling already uses that key")

	// ErrLeafTarget is returned when rows would move under a leaf that
	// still carries a value.
	ErrLeafTarget = errors.New("target has a value and cannot take children")

	// ErrNoRoom is returned by MoveUp, MoveDown, Indent and Outdent when the
	// node is already at the edge in that direction.
	ErrNoRoom = errors.New("node cannot move further in that direction")
)

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}
