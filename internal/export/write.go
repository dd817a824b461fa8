package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb/geojson"
)

// WriteFile writes fc to path as GeoJSON. The path must end in .geojson
// or .json and resolve inside one of allowedDirs; with no allowedDirs the
// working directory and the temp directory are allowed.
func WriteFile(path string, fc *geojson.FeatureCollection, allowedDirs ...string) error {
	if err := checkPath(path, allowedDirs); err != nil {
		return err
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode GeoJSON: %w", err)
	}
	return write(path, data)
}

// WriteJSON writes v to path as JSON under the same path rules as
// WriteFile. Render scenes and front views go out this way.
func WriteJSON(path string, v any, allowedDirs ...string) error {
	if err := checkPath(path, allowedDirs); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return write(path, data)
}

func checkPath(path string, allowedDirs []string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
	default:
		return fmt.Errorf("export file must have .geojson or .json extension, got %q", filepath.Ext(path))
	}
	if len(allowedDirs) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		allowedDirs = []string{cwd, os.TempDir()}
	}
	return validateWithin(path, allowedDirs)
}

func write(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// validateWithin rejects paths that resolve outside every dir, following
// symlinks on the deepest existing ancestor.
func validateWithin(path string, dirs []string) error {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	canonical := resolveExisting(abs)

	for _, dir := range dirs {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		root, err := filepath.EvalSymlinks(absDir)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(root, canonical)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
			continue
		}
		return nil
	}
	return fmt.Errorf("export path %s must be within one of %v", path, dirs)
}

// resolveExisting resolves symlinks in the longest existing prefix of abs
// and re-appends the rest.
func resolveExisting(abs string) string {
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	check := abs
	for {
		parent := filepath.Dir(check)
		if parent == check {
			return abs
		}
		if resolved, err := filepath.EvalSymlinks(parent); err == nil {
			rel, _ := filepath.Rel(parent, abs)
			return filepath.Join(resolved, rel)
		}
		check = parent
	}
}
