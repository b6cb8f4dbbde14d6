package undo

import (
	"errors"
	"fmt"
	"slices"

	"kvtree/internal/tree"
)

var (
	// ErrNothingToUndo is returned by Undo at the start of the history.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo is returned by Redo at the end of the history.
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Stack is a linear command history over one tree. Commands before the
// cursor have been applied in order; commands at or after it have been
// undone and are kept for redo until the next Push discards them.
type Stack struct {
	tree     *tree.Tree
	commands []*Command
	cursor   int
	limit    int

	// clean is the cursor position of the last saved state, -1 when that
	// state is no longer reachable.
	clean int

	onChange []func(*Stack)
}

func NewStack(t *tree.Tree) *Stack {
	return &Stack{tree: t}
}

// Push applies c and records it. A command that fails to apply is not
// recorded and the redo tail is kept.
func (s *Stack) Push(c *Command) error {
	if err := c.Apply(s.tree); err != nil {
		return fmt.Errorf("%s: %w", c.Text(), err)
	}
	if s.clean > s.cursor {
		s.clean = -1
	}
	s.commands = append(s.commands[:s.cursor], c)
	s.cursor++
	s.trim()
	s.changed()
	return nil
}

func (s *Stack) Undo() error {
	if s.cursor == 0 {
		return ErrNothingToUndo
	}
	c := s.commands[s.cursor-1]
	if err := c.Reverse(s.tree); err != nil {
		return fmt.Errorf("undo %s: %w", c.Text(), err)
	}
	s.cursor--
	s.changed()
	return nil
}

func (s *Stack) Redo() error {
	if s.cursor == len(s.commands) {
		return ErrNothingToRedo
	}
	c := s.commands[s.cursor]
	if err := c.Apply(s.tree); err != nil {
		return fmt.Errorf("redo %s: %w", c.Text(), err)
	}
	s.cursor++
	s.changed()
	return nil
}

func (s *Stack) CanUndo() bool { return s.cursor > 0 }
func (s *Stack) CanRedo() bool { return s.cursor < len(s.commands) }

// Index is the cursor: the number of applied commands.
func (s *Stack) Index() int { return s.cursor }
func (s *Stack) Count() int { return len(s.commands) }

// Commands returns the recorded history, applied and undone alike.
func (s *Stack) Commands() []*Command { return slices.Clone(s.commands) }

func (s *Stack) UndoText() string {
	if !s.CanUndo() {
		return ""
	}
	return s.commands[s.cursor-1].Text()
}

func (s *Stack) RedoText() string {
	if !s.CanRedo() {
		return ""
	}
	return s.commands[s.cursor].Text()
}

// Clear drops the whole history without touching the tree. The current
// state becomes the clean state.
func (s *Stack) Clear() {
	s.commands = nil
	s.cursor = 0
	s.clean = 0
	s.changed()
}

// SetLimit caps the number of recorded commands; the oldest are dropped
// first. Zero means unlimited. Only applied commands are ever dropped, so
// lowering the limit below the redo tail leaves the history longer than n
// until enough of it is redone or replaced.
func (s *Stack) SetLimit(n int) {
	if n < 0 {
		n = 0
	}
	s.limit = n
	s.trim()
}

// SetClean marks the current state as saved.
func (s *Stack) SetClean() {
	s.clean = s.cursor
	s.changed()
}

func (s *Stack) IsClean() bool { return s.clean == s.cursor }

// OnChange registers fn to run after every cursor or history change.
func (s *Stack) OnChange(fn func(*Stack)) {
	s.onChange = append(s.onChange, fn)
}

func (s *Stack) trim() {
	if s.limit == 0 || len(s.commands) <= s.limit {
		return
	}
	// Undone commands replay on top of the applied ones and must stay.
	drop := min(len(s.commands)-s.limit, s.cursor)
	if drop == 0 {
		return
	}
	s.commands = slices.Delete(s.commands, 0, drop)
	s.cursor -= drop
	s.clean -= drop
	if s.clean < 0 {
		s.clean = -1
	}
}

func (s *Stack) changed() {
	for _, fn := range s.onChange {
		fn(s)
	}
}
