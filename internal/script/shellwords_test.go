package script

import (
	"reflect"
	"testing"
)

func TestSplitShellWords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"undo", []string{"undo"}},
		{"set a/b 1", []string{"set", "a/b", "1"}},
		{"rename a 'new name'", []string{"rename", "a", "new name"}},
		{"set a \"two words\"", []string{"set", "a", "two words"}},
		{"rename a\\ b c", []string{"rename", "a b", "c"}},
		{"set a ''", []string{"set", "a", ""}},
		{`delete 'x\/y'`, []string{"delete", `x\/y`}},
	}

	for _, tt := range tests {
		if got := splitShellWords(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("splitShellWords(%q)=%v, want %v", tt.in, got, tt.want)
		}
	}
}
