package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"kvtree/internal/format"
	"kvtree/internal/tree"
)

// readTree loads path, picking the decoder from its extension ("json" when
// unknown). "-" reads stdin. A missing file is an empty tree when
// allowMissing is set.
func readTree(stdin io.Reader, path string, allowMissing bool) (tree.Map, error) {
	if path == "-" {
		return format.Decode(stdin, format.JSON)
	}
	f, err := os.Open(path)
	if err != nil {
		if allowMissing && errors.Is(err, fs.ErrNotExist) {
			return tree.Map{}, nil
		}
		return nil, err
	}
	defer f.Close()
	m, err := format.Decode(f, format.FromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// writeTree replaces path with m. The encoding follows the file extension,
// falling back to fallback when the extension is unknown.
func writeTree(path string, m tree.Map, fallback string, pretty bool) error {
	name := format.FromPath(path)
	if name == "" {
		name = fallback
	}
	var buf bytes.Buffer
	if err := format.Write(&buf, m, name, pretty); err != nil {
		return err
	}
	perm := os.FileMode(0o644)
	if st, err := os.Stat(path); err == nil {
		perm = st.Mode().Perm()
	}
	return replaceFile(path, buf.Bytes(), perm)
}

// replaceFile writes b next to path and renames it into place, so readers
// see either the old contents or the new ones.
func replaceFile(path string, b []byte, perm os.FileMode) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()
	if _, err = f.Write(b); err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	if err = os.Chmod(tmp, perm); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
