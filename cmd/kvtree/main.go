package main

import (
	"os"
	"strings"

	"kvtree/internal/cli"
)

func rewriteDirectEditArgs(argv []string, isCommand func(string) bool) []string {
	// Convenience: `kvtree <file>` works like `kvtree edit <file>`.
	//
	// Cobra treats the first non-flag token as a subcommand, so we rewrite argv before parsing.
	// Persistent flags may come first (e.g. `kvtree --format yaml cfg.json`), so we look for
	// the first positional token, not just argv[1].
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--format":     true,
		"--debug-log":  true,
		"--undo-limit": true,
		"--out":        true,
		"-o":           true,
	}
	boolFlags := map[string]bool{
		"--pretty": true,
	}

	insertEdit := func(i int) []string {
		out := make([]string, 0, len(argv)+1)
		out = append(out, argv[:i]...)
		out = append(out, "edit")
		out = append(out, argv[i:]...)
		return out
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			// Everything after "--" is positional, so the next token is a file.
			if i+1 < len(argv) {
				return insertEdit(i)
			}
			return argv
		}

		if strings.HasPrefix(a, "-") {
			if strings.Contains(a, "=") || boolFlags[a] {
				continue
			}
			if valueFlags[a] {
				i++ // skip value if present
			}
			continue
		}

		// First positional token.
		if isCommand(a) {
			return argv
		}
		return insertEdit(i)
	}

	return argv
}

func main() {
	cmd := cli.NewRootCmd()
	os.Args = rewriteDirectEditArgs(os.Args, func(name string) bool {
		return cli.IsCommand(cmd, name)
	})
	cmd.SetArgs(os.Args[1:])

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
