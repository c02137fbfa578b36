package prefabs

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
)

//go:embed scripts/*.tengo
var ScriptsFS embed.FS

//go:embed *.yaml
var PrefabsFS embed.FS

var diskDir atomic.Value

func init() {
	diskDir.Store("prefabs")
}

// SetDir changes the on-disk directory consulted before the embedded
// prefabs. An empty dir disables disk overrides.
func SetDir(dir string) {
	diskDir.Store(dir)
}

// Dir returns the on-disk prefab directory.
func Dir() string {
	return diskDir.Load().(string)
}

// Load returns the contents of a prefab. A name that points at an existing
// file is read directly; otherwise the prefab directory on disk wins over the
// embedded copy.
func Load(name string) ([]byte, error) {
	if name == "" {
		return nil, fmt.Errorf("prefabs: empty name")
	}
	if strings.ContainsRune(name, os.PathSeparator) || filepath.IsAbs(name) {
		if data, err := os.ReadFile(name); err == nil {
			return data, nil
		}
	}
	clean := cleanPrefabPath(name)
	if data, err := readDisk(clean); err == nil {
		return data, nil
	}
	data, err := PrefabsFS.ReadFile(clean)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("prefabs: %s: %w", clean, fs.ErrNotExist)
	}
	return data, err
}

// LoadScript returns a tengo script by name, with the same disk-first lookup
// as Load.
func LoadScript(name string) ([]byte, error) {
	clean := cleanScriptPath(name)
	if data, err := readDisk(clean); err == nil {
		return data, nil
	}
	return ScriptsFS.ReadFile(clean)
}

func readDisk(clean string) ([]byte, error) {
	dir := Dir()
	if dir == "" {
		return nil, fs.ErrNotExist
	}
	return os.ReadFile(filepath.Join(dir, filepath.FromSlash(clean)))
}

func cleanPrefabPath(path string) string {
	s := filepath.ToSlash(path)
	if after, ok := strings.CutPrefix(s, "prefabs/"); ok {
		return after
	}
	return s
}

func cleanScriptPath(path string) string {
	if path == "" {
		return ""
	}
	s := filepath.ToSlash(path)
	if after, ok := strings.CutPrefix(s, "prefabs/"); ok {
		s = after
	}
	if after, ok := strings.CutPrefix(s, "scripts/"); ok {
		s = after
	}
	if !strings.HasSuffix(s, ".tengo") {
		s += ".tengo"
	}
	return "scripts/" + s
}
