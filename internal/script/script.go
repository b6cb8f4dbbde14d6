// Package script runs line-oriented edit scripts against an editor.Document.
//
// One command per line; blank lines and lines starting with # are skipped.
// Words are split shell-style, so quote keys that contain spaces. Paths are
// key paths as understood by editor.Document.Lookup; "." names the root.
package script

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"kvtree/internal/editor"
	"kvtree/internal/format"
	"kvtree/internal/tree"
	"kvtree/internal/undo"
)

// LineError ties a failure to the script line that caused it.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s: %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

var ErrUsage = errors.New("usage")

type Runner struct {
	doc       *editor.Document
	out       io.Writer
	format    string
	pretty    bool
	keepGoing bool
	log       *slog.Logger
}

type Option func(*Runner)

// KeepGoing runs the remaining lines after a failure. Run then returns all
// line errors joined.
func KeepGoing() Option { return func(r *Runner) { r.keepGoing = true } }

// WithOutput sets where print writes. The default discards output.
func WithOutput(w io.Writer) Option { return func(r *Runner) { r.out = w } }

// WithFormat sets the output format used by print.
func WithFormat(name string, pretty bool) Option {
	return func(r *Runner) { r.format, r.pretty = name, pretty }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

func New(doc *editor.Document, opts ...Option) *Runner {
	r := &Runner{doc: doc, out: io.Discard, log: slog.New(slog.DiscardHandler)}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run executes every line of src in order.
func (r *Runner) Run(ctx context.Context, src io.Reader) error {
	var errs []error
	sc := bufio.NewScanner(src)
	n := 0
	for sc.Scan() {
		n++
		if err := ctx.Err(); err != nil {
			return err
		}
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if err := r.Exec(text); err != nil {
			lerr := &LineError{Line: n, Text: text, Err: err}
			r.log.Debug("script line failed", "line", n, "err", err)
			if !r.keepGoing {
				return lerr
			}
			errs = append(errs, lerr)
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return errors.Join(errs...)
}

// Exec runs a single command line.
func (r *Runner) Exec(line string) error {
	argv := splitShellWords(line)
	if len(argv) == 0 {
		return nil
	}
	cmd, args := argv[0], argv[1:]
	switch cmd {
	case "add":
		return r.add(args, false)
	case "after":
		return r.add(args, true)
	case "delete", "rm":
		h, err := r.node(args, 1, "delete <path>")
		if err != nil {
			return err
		}
		return r.doc.RequestDelete(h)
	case "set":
		return r.set(args)
	case "rename":
		h, err := r.node(args, 2, "rename <path> <key>")
		if err != nil {
			return err
		}
		return r.doc.RequestRename(h, args[1])
	case "move":
		return r.move(args)
	case "up", "down", "indent", "outdent":
		h, err := r.node(args, 1, cmd+" <path>")
		if err != nil {
			return err
		}
		return map[string]func(tree.Handle) error{
			"up":      r.doc.MoveUp,
			"down":    r.doc.MoveDown,
			"indent":  r.doc.Indent,
			"outdent": r.doc.Outdent,
		}[cmd](h)
	case "header":
		if len(args) != 2 {
			return fmt.Errorf("%w: header <section> <label>", ErrUsage)
		}
		section, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid section %q", args[0])
		}
		return r.doc.RequestSetHeader(section, args[1])
	case "undo":
		return ignoreBoundary(r.doc.Undo(), undo.ErrNothingToUndo)
	case "redo":
		return ignoreBoundary(r.doc.Redo(), undo.ErrNothingToRedo)
	case "print":
		return r.print(args)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// Undo and redo at the ends of the history are no-ops in scripts.
func ignoreBoundary(err, boundary error) error {
	if errors.Is(err, boundary) {
		return nil
	}
	return err
}

func (r *Runner) lookup(path string) (tree.Handle, error) {
	if path == "." || path == "/" {
		return tree.Handle{}, nil
	}
	return r.doc.Lookup(path)
}

func (r *Runner) node(args []string, want int, usage string) (tree.Handle, error) {
	if len(args) != want {
		return tree.Handle{}, fmt.Errorf("%w: %s", ErrUsage, usage)
	}
	h, err := r.lookup(args[0])
	if err != nil {
		return tree.Handle{}, err
	}
	if !h.Valid() {
		return tree.Handle{}, fmt.Errorf("%s needs a node, not the root", strings.Fields(usage)[0])
	}
	return h, nil
}

func (r *Runner) add(args []string, after bool) error {
	usage := "add <parentPath> [key]"
	if after {
		usage = "after <path> [key]"
	}
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: %s", ErrUsage, usage)
	}
	at, err := r.lookup(args[0])
	if err != nil {
		return err
	}
	key := ""
	if len(args) == 2 {
		key = args[1]
	}
	if after {
		_, err = r.doc.RequestInsertAfterNamed(at, key)
	} else {
		_, err = r.doc.RequestInsertNamed(at, key)
	}
	return err
}

// set <path> <value> parses value as null, bool, number or string.
// set -s <path> <text> always stores a string.
func (r *Runner) set(args []string) error {
	raw := false
	if len(args) > 0 && args[0] == "-s" {
		raw, args = true, args[1:]
	}
	h, err := r.node(args, 2, "set [-s] <path> <value>")
	if err != nil {
		return err
	}
	v := tree.ParseValue(args[1])
	if raw {
		v = tree.StringValue(args[1])
	}
	return r.doc.RequestSetValue(r.doc.Tree().Sibling(h, tree.ColumnValue), v)
}

// move <srcPath> <dstParentPath> <row|end>
func (r *Runner) move(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("%w: move <srcPath> <dstParentPath> <row|end>", ErrUsage)
	}
	src, err := r.node(args[:1], 1, "move <srcPath>")
	if err != nil {
		return err
	}
	dst, err := r.lookup(args[1])
	if err != nil {
		return err
	}
	t := r.doc.Tree()
	srcParent := t.Parent(src)
	srcRow := t.Node(src).Row()

	var row int
	if args[2] == "end" {
		row = t.RowCount(dst)
		if t.Node(srcParent) == t.Node(dst) {
			row--
		}
	} else if row, err = strconv.Atoi(args[2]); err != nil {
		return fmt.Errorf("invalid row %q", args[2])
	}
	return r.doc.RequestMove(srcParent, srcRow, dst, row)
}

// print [path] writes the whole map, or the subtree at path.
func (r *Runner) print(args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("%w: print [path]", ErrUsage)
	}
	m := r.doc.ToMap()
	if len(args) == 1 {
		h, err := r.lookup(args[0])
		if err != nil {
			return err
		}
		if h.Valid() {
			e, err := r.doc.Tree().ExportNode(h)
			if err != nil {
				return err
			}
			m = tree.Map{e}
		}
	}
	return format.Write(r.out, m, r.format, r.pretty)
}
