package testutil

import (
	"os"
	"path/filepath"
)

// Dir describes the layout of a directory. Keys are file names; a string
// value is the content of a regular file, and a Dir value is a subdirectory.
type Dir map[string]any

// ApplyDir creates the layout described by dir inside root. It panics on
// errors and on values that are neither string nor Dir.
func ApplyDir(dir Dir, root string) {
	for name, v := range dir {
		path := filepath.Join(root, name)
		switch v := v.(type) {
		case string:
			if err := os.WriteFile(path, []byte(v), 0600); err != nil {
				panic(err)
			}
		case Dir:
			if err := os.MkdirAll(path, 0700); err != nil {
				panic(err)
			}
			ApplyDir(v, path)
		default:
			panic("file is neither string nor Dir")
		}
	}
}

// TempDirWith creates a temporary directory with the given layout and returns
// its path. The directory is removed when the test finishes.
func TempDirWith(t TempDirer, dir Dir) string {
	root := t.TempDir()
	ApplyDir(dir, root)
	return root
}
