package format

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"kvtree/internal/tree"
)

func sample() tree.Map {
	return tree.Map{
		{Key: "zeta", Value: tree.Map{{Key: "b", Value: 1.0}, {Key: "a", Value: 2.5}}},
		{Key: "alpha", Value: "x"},
		{Key: "New Key #1", Value: nil},
		{Key: "enabled", Value: true},
	}
}

func TestWrite_JSONKeepsOrder(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sample(), "json", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := `{"zeta":{"b":1,"a":2.5},"alpha":"x","New Key #1":null,"enabled":true}` + "\n"
	if buf.String() != want {
		t.Fatalf("expected %s, got %s", want, buf.String())
	}
}

func TestWrite_PrettyJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, tree.Map{{Key: "a", Value: tree.Map{{Key: "b", Value: 1.0}}}}, "", true); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "{\n  \"a\": {\n    \"b\": 1\n  }\n}\n"
	if buf.String() != want {
		t.Fatalf("expected %q, got %q", want, buf.String())
	}
}

func TestWrite_EDN(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sample(), "edn", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := `{:zeta {:b 1 :a 2.5} :alpha "x" "New Key #1" nil :enabled true}` + "\n"
	if buf.String() != want {
		t.Fatalf("expected %s, got %s", want, buf.String())
	}

	buf.Reset()
	if err := WriteEDN(&buf, tree.Map{{Key: "a", Value: tree.Map{{Key: "b", Value: "c"}}}}, true); err != nil {
		t.Fatalf("write: %v", err)
	}
	want = "{\n  :a {\n    :b \"c\"\n  }\n}\n"
	if buf.String() != want {
		t.Fatalf("expected %q, got %q", want, buf.String())
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, sample(), "toml", false); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestYAML_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	m := tree.Map{
		{Key: "zeta", Value: tree.Map{{Key: "b", Value: 1.0}, {Key: "a", Value: 2.5}}},
		{Key: "alpha", Value: "x"},
		{Key: "n", Value: nil},
		{Key: "q", Value: "42"},
	}
	if err := Write(&buf, m, "yaml", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "zeta:\n  b: 1\n  a: 2.5\nalpha: x\nn: null\nq: \"42\"\n"
	if buf.String() != want {
		t.Fatalf("expected %q, got %q", want, buf.String())
	}

	buf.Reset()
	if err := WriteYAML(&buf, sample()); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := DecodeYAML(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.Equal(sample()) {
		t.Fatalf("expected round trip, got %#v", got)
	}
}

func TestDecodeYAML(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    tree.Map
		wantErr bool
	}{
		{name: "empty", in: "", want: tree.Map{}},
		{name: "null document", in: "~\n", want: tree.Map{}},
		{name: "scalars", in: "s: hello\nn: 0x10\nf: 1.5\nb: false\nz:\nq: \"42\"\n", want: tree.Map{
			{Key: "s", Value: "hello"}, {Key: "n", Value: 16.0}, {Key: "f", Value: 1.5},
			{Key: "b", Value: false}, {Key: "z", Value: nil}, {Key: "q", Value: "42"},
		}},
		{name: "timestamp stays text", in: "at: 2024-01-02\n", want: tree.Map{{Key: "at", Value: "2024-01-02"}}},
		{name: "alias", in: "base: &b\n  x: 1\ncopy: *b\n", want: tree.Map{
			{Key: "base", Value: tree.Map{{Key: "x", Value: 1.0}}},
			{Key: "copy", Value: tree.Map{{Key: "x", Value: 1.0}}},
		}},
		{name: "sequence", in: "a: [1, 2]\n", wantErr: true},
		{name: "top level scalar", in: "hello\n", wantErr: true},
		{name: "infinity", in: "a: .inf\n", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeYAML(strings.NewReader(tc.in))
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %#v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("expected %#v, got %#v", tc.want, got)
			}
		})
	}
}

func TestDecodeYAML_SequenceIsListError(t *testing.T) {
	_, err := DecodeYAML(strings.NewReader("a:\n  - 1\n"))
	if !errors.Is(err, tree.ErrListValue) {
		t.Fatalf("expected ErrListValue, got %v", err)
	}
}

func TestDecodeJSON(t *testing.T) {
	got, err := Decode(strings.NewReader(`{"b": {"y": 1, "x": null}, "a": "s"}`), "json")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := tree.Map{{Key: "b", Value: tree.Map{{Key: "y", Value: 1.0}, {Key: "x", Value: nil}}}, {Key: "a", Value: "s"}}
	if !got.Equal(want) {
		t.Fatalf("expected %#v, got %#v", want, got)
	}
	if m, err := DecodeJSON(strings.NewReader("  \n")); err != nil || m.Len() != 0 {
		t.Fatalf("expected blank input to be an empty map, got %v %v", m, err)
	}
	if _, err := DecodeJSON(strings.NewReader(`[1]`)); err == nil {
		t.Fatalf("expected top-level array to be rejected")
	}
	if _, err := Decode(strings.NewReader(`{}`), "edn"); err == nil {
		t.Fatalf("expected edn input to be rejected")
	}
}

func TestFromPath(t *testing.T) {
	cases := map[string]string{
		"a.json":       "json",
		"b.YAML":       "yaml",
		"c.yml":        "yaml",
		"d.edn":        "edn",
		"f.ini":        "ini",
		"g.conf":       "ini",
		"e.txt":        "",
		"no-extension": "",
	}
	for path, want := range cases {
		if got := FromPath(path); got != want {
			t.Fatalf("%s: expected %q, got %q", path, want, got)
		}
	}
}

func TestINI_RoundTrip(t *testing.T) {
	in := tree.Map{
		{Key: "name", Value: "kvtree"},
		{Key: "server", Value: tree.Map{
			{Key: "host", Value: "localhost"},
			{Key: "port", Value: 8080.0},
			{Key: "tls", Value: false},
		}},
		{Key: "empty", Value: nil},
	}
	var buf bytes.Buffer
	if err := Write(&buf, in, INI, false); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(buf.String(), "[server]") {
		t.Fatalf("expected a server section, got:\n%s", buf.String())
	}

	got, err := Decode(&buf, INI)
	if err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	// Top-level scalars come back ahead of the sections.
	want := tree.Map{in[0], in[2], in[1]}
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestINI_Decode(t *testing.T) {
	src := "top = 1\n\n[user]\nname = Ada\nemail = ada@example.com\n\n[core]\nbare = true\n"
	got, err := DecodeINI(strings.NewReader(src))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := tree.Map{
		{Key: "top", Value: 1.0},
		{Key: "user", Value: tree.Map{
			{Key: "name", Value: "Ada"},
			{Key: "email", Value: "ada@example.com"},
		}},
		{Key: "core", Value: tree.Map{{Key: "bare", Value: true}}},
	}
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestINI_TooDeep(t *testing.T) {
	in := tree.Map{{Key: "a", Value: tree.Map{{Key: "b", Value: tree.Map{{Key: "c", Value: 1.0}}}}}}
	err := WriteINI(io.Discard, in)
	if !errors.Is(err, ErrTooDeep) {
		t.Fatalf("expected ErrTooDeep, got %v", err)
	}
}
