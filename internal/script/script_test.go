package script

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"kvtree/internal/editor"
	"kvtree/internal/format"
	"kvtree/internal/tree"
)

func run(t *testing.T, m tree.Map, src string, opts ...Option) (*editor.Document, string, error) {
	t.Helper()
	doc := editor.New(m)
	var out bytes.Buffer
	opts = append([]Option{WithOutput(&out)}, opts...)
	err := New(doc, opts...).Run(context.Background(), strings.NewReader(src))
	return doc, out.String(), err
}

func mustJSON(t *testing.T, m tree.Map) string {
	t.Helper()
	var b bytes.Buffer
	if err := format.WriteJSON(&b, m, false); err != nil {
		t.Fatalf("json: %v", err)
	}
	return strings.TrimSpace(b.String())
}

func TestRun_EditSession(t *testing.T) {
	src := `
# build a small config
add . server
add server host
set server/host localhost
add server port
set server/port 8080
add . debug
set debug true
rename debug verbose
print
`
	doc, out, err := run(t, nil, src)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := `{"server":{"host":"localhost","port":8080},"verbose":true}` + "\n"
	if out != want {
		t.Fatalf("expected %s, got %s", want, out)
	}
	if doc.Stack().Count() != 8 {
		t.Fatalf("expected one command per request, got %d", doc.Stack().Count())
	}
}

func TestRun_UndoRedo(t *testing.T) {
	src := `
delete a/b
print
undo
print
redo
redo
undo
undo
undo
print
`
	_, out, err := run(t, tree.Map{{Key: "a", Value: tree.Map{{Key: "b", Value: 1.0}, {Key: "c", Value: 2.0}}}}, src)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	want := []string{
		`{"a":{"c":2}}`,
		`{"a":{"b":1,"c":2}}`,
		`{"a":{"b":1,"c":2}}`,
	}
	if strings.Join(lines, "\n") != strings.Join(want, "\n") {
		t.Fatalf("expected\n%s\ngot\n%s", strings.Join(want, "\n"), out)
	}
}

func TestRun_MoveAndReorder(t *testing.T) {
	m := tree.Map{
		{Key: "a", Value: tree.Map{{Key: "x", Value: 1.0}}},
		{Key: "b", Value: nil},
		{Key: "c", Value: nil},
	}
	src := `
move c . 0
down c
move a/x b end
indent c
set -s b/x 2
print
`
	_, out, err := run(t, m, src)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := `{"a":{"c":null},"b":{"x":"2"}}` + "\n"
	if out != want {
		t.Fatalf("expected %s, got %s", want, out)
	}
}

func TestRun_AddWithKeyIsOneCommand(t *testing.T) {
	orig := tree.Map{{Key: "a", Value: tree.Map{{Key: "b", Value: 1.0}}}}

	doc, _, err := run(t, orig, "add a b\n", KeepGoing())
	if !errors.Is(err, editor.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
	if got := mustJSON(t, doc.ToMap()); got != `{"a":{"b":1}}` {
		t.Fatalf("expected the tree untouched, got %s", got)
	}
	if doc.Stack().Count() != 0 || doc.Stack().Index() != 0 {
		t.Fatalf("expected an empty history, got %d commands (index %d)", doc.Stack().Count(), doc.Stack().Index())
	}

	doc, _, err = run(t, orig, "add a x\nafter a/b y\nundo\nundo\n")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := mustJSON(t, doc.ToMap()); got != `{"a":{"b":1}}` {
		t.Fatalf("expected two undos to restore the original, got %s", got)
	}
}

func TestRun_LineErrorStops(t *testing.T) {
	doc, _, err := run(t, tree.Map{{Key: "a", Value: 1.0}}, "set a 2\n\nbogus\nset a 3\n")
	var lerr *LineError
	if !errors.As(err, &lerr) || lerr.Line != 3 {
		t.Fatalf("expected a LineError on line 3, got %v", err)
	}
	if got, _ := doc.ToMap().Get("a"); got != 2.0 {
		t.Fatalf("expected the script to stop before line 4, got a=%v", got)
	}
}

func TestRun_KeepGoing(t *testing.T) {
	src := "delete missing\nset a 2\nrename a\nset a 3\n"
	doc, _, err := run(t, tree.Map{{Key: "a", Value: 1.0}}, src, KeepGoing())
	if err == nil {
		t.Fatalf("expected joined errors")
	}
	var nf editor.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected a NotFoundError among the errors, got %v", err)
	}
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected a usage error among the errors, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 1:") || !strings.Contains(err.Error(), "line 3:") {
		t.Fatalf("expected line numbers in %q", err.Error())
	}
	if got, _ := doc.ToMap().Get("a"); got != 3.0 {
		t.Fatalf("expected later lines to run, got a=%v", got)
	}
}

func TestRun_Header(t *testing.T) {
	doc, _, err := run(t, nil, "header 0 Name\nheader 1 'Current value'\n")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := strings.Join(doc.Tree().Headers(), ","); got != "Name,Current value" {
		t.Fatalf("unexpected headers %s", got)
	}
}

func TestRun_PrintSubtreeAsYAML(t *testing.T) {
	m := tree.Map{{Key: "a", Value: tree.Map{{Key: "b", Value: "x"}}}, {Key: "z", Value: nil}}
	_, out, err := run(t, m, "print a\n", WithFormat("yaml", false))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != "a:\n  b: x\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(editor.New(nil)).Run(ctx, strings.NewReader("add .\n"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
