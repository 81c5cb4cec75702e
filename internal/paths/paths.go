package paths

import (
	"os"
	"path/filepath"
	"strings"
)

const appDir = "xnav"

// DataDir returns the directory holding the history database.
// Precedence: XNAV_DATA_DIR > $XDG_DATA_HOME/xnav > ~/.local/share/xnav
func DataDir() (string, error) {
	if dir := os.Getenv("XNAV_DATA_DIR"); dir != "" {
		return dir, nil
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appDir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appDir), nil
}

// ConfigDir returns the directory holding config.json.
// Precedence: XNAV_CONFIG_DIR > os.UserConfigDir()/xnav
func ConfigDir() (string, error) {
	if dir := os.Getenv("XNAV_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appDir), nil
}

// DatabasePath returns <data dir>/xnav.db
func DatabasePath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "xnav.db"), nil
}

// ConfigPath returns <config dir>/config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureDir creates dir (and parents) if needed and returns it.
func EnsureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// Canonicalize converts path to the form stored in the history:
// - Expands a leading ~
// - Makes it absolute against cwd (os.Getwd when cwd is empty)
// - Cleans . and .. segments
// - Resolves symlinks when the path exists
func Canonicalize(path string, cwd string) (string, error) {
	expanded, err := ExpandHome(path)
	if err != nil {
		return "", err
	}

	if !filepath.IsAbs(expanded) {
		if cwd == "" {
			cwd, err = os.Getwd()
			if err != nil {
				return "", err
			}
		}
		expanded = filepath.Join(cwd, expanded)
	}
	cleaned := filepath.Clean(expanded)

	resolved, err := filepath.EvalSymlinks(cleaned)
	if err != nil {
		// A directory that no longer exists keeps its lexical form
		if os.IsNotExist(err) {
			return cleaned, nil
		}
		return "", err
	}
	return resolved, nil
}

// ExpandHome replaces a leading "~" or "~/" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}

// Ancestors returns dir and its parents from innermost to outermost,
// excluding the filesystem root. dir must be absolute and clean.
func Ancestors(dir string) []string {
	var out []string
	for current := filepath.Clean(dir); ; {
		parent := filepath.Dir(current)
		if parent == current {
			// current is the root
			return out
		}
		out = append(out, current)
		current = parent
	}
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Exists reports whether anything exists at path. Errors other than
// "not exist" (permission denied, I/O) count as existing.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !os.IsNotExist(err)
}

// NormalizePath normalizes a path by converting backslashes to forward slashes
// so ignore patterns see one separator on every platform.
func NormalizePath(path string) string {
	return filepath.ToSlash(path)
}
