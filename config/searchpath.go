package config

import (
	"os"
	"path/filepath"
)

// SearchPath is the ordered list of candidate roots consulted when
// resolving a %include target that isn't found as given (spec.md §4.1):
// as-given, then the settings file's own directory, then a user config
// directory, then a system data directory. It is injected at loader
// construction time rather than read from the environment inside the
// loader, per spec.md §9 "No global state".
//
// This is the same "ordered list of directory roots, joined and tried in
// turn" shape as the teacher's path.Path segment-slice helpers
// (path/path.go Join/JoinString), narrowed from Bazel-style path-segment
// manipulation down to plain filesystem directory search since ucto's
// include resolution never needs Starlark-style common-root splitting.
type SearchPath struct {
	UserConfigDir   string
	SystemDataDir   string
}

// DefaultSearchPath returns the conventional ucto search roots:
// ~/.config/ucto as the user config directory and /usr/share/ucto as the
// system data directory ($XDG_CONFIG_HOME is not consulted). Callers that
// want no implicit filesystem dependence should build a SearchPath literal
// instead of calling this.
func DefaultSearchPath() SearchPath {
	home, _ := os.UserHomeDir()
	return SearchPath{
		UserConfigDir: filepath.Join(home, ".config", "ucto"),
		SystemDataDir: filepath.Join(string(filepath.Separator), "usr", "share", "ucto"),
	}
}

// Resolve finds the first existing file matching name (optionally filling
// in ext when name has no extension) among: as-given, dir (the includer's
// own directory), SearchPath.UserConfigDir, SearchPath.SystemDataDir. It
// returns the resolved path, or "" if none exists.
func (sp SearchPath) Resolve(name, dir, ext string) string {
	candidates := sp.candidates(name, dir)
	for _, c := range candidates {
		if withExt := ensureExt(c, ext); fileExists(withExt) {
			return withExt
		}
		if fileExists(c) {
			return c
		}
	}
	return ""
}

func (sp SearchPath) candidates(name, dir string) []string {
	var out []string
	if filepath.IsAbs(name) {
		return []string{name}
	}
	out = append(out, name)
	if dir != "" {
		out = append(out, filepath.Join(dir, name))
	}
	if sp.UserConfigDir != "" {
		out = append(out, filepath.Join(sp.UserConfigDir, name))
	}
	if sp.SystemDataDir != "" {
		out = append(out, filepath.Join(sp.SystemDataDir, name))
	}
	return out
}

func ensureExt(path, ext string) string {
	if ext == "" || filepath.Ext(path) != "" {
		return path
	}
	return path + ext
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
