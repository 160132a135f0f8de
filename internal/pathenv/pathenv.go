// Package pathenv resolves command names against the PATH directories.
package pathenv

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
)

type Path struct {
	Dirs []string
}

// Parse splits a colon-separated PATH value, dropping empty entries.
func Parse(value string) Path {
	return Path{Dirs: lo.Compact(filepath.SplitList(value))}
}

// Lookup returns the first executable named name. Names containing a slash
// are checked as given.
func (p Path) Lookup(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	if strings.Contains(name, "/") {
		return name, isExecutable(name)
	}

	for _, dir := range p.Dirs {
		candidate := filepath.Join(dir, name)
		if isExecutable(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// Executables lists the distinct names of every executable file in PATH.
func (p Path) Executables() []string {
	var names []string
	for _, dir := range p.Dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if isExecutable(filepath.Join(dir, entry.Name())) {
				names = append(names, entry.Name())
			}
		}
	}
	return lo.Uniq(names)
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode()&0111 != 0
}
