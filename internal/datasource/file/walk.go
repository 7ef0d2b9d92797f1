package file

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
)

// Walk returns every regular file under root whose extension is ext
// (compared case-sensitively, e.g. ".json"), as absolute paths in lexical
// order. Subdirectories are searched recursively. A root that does not
// exist yields an error; an empty tree yields an empty slice.
func Walk(root, ext string) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	var out []string
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && filepath.Ext(d.Name()) == ext {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(out)
	return out, nil
}
