package content

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
)

// LoadViews reads every file below dir into a map keyed by its slash
// separated path without extension, e.g. "partials/cart" for
// partials/cart.html. An empty dir yields no views.
func LoadViews(dir string) (map[string]string, error) {
	if dir == "" {
		return map[string]string{}, nil
	}
	return ReadViews(os.DirFS(dir))
}

func ReadViews(fsys fs.FS) (map[string]string, error) {
	views := make(map[string]string)
	err := fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return err
		}
		key := strings.TrimSuffix(name, path.Ext(name))
		if _, exists := views[key]; exists {
			return fmt.Errorf("view %q is defined twice", key)
		}
		views[key] = string(data)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load views: %w", err)
	}
	return views, nil
}
