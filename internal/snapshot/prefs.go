package snapshot

import (
	"context"
	"encoding/json/v2"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// FilePreferences persists the local preference blob as one JSON file
// under the data directory.
type FilePreferences struct {
	path string
}

// NewFilePreferences stores preferences at path.
func NewFilePreferences(path string) *FilePreferences {
	return &FilePreferences{path: path}
}

// Load reads the preference blob. A missing file is an empty blob, not
// an error.
func (p *FilePreferences) Load(ctx context.Context) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var prefs map[string]any
	if err := json.Unmarshal(data, &prefs); err != nil {
		// A corrupt preference file should not block sync.
		return nil, nil
	}
	return prefs, nil
}

// Save writes the preference blob atomically via a rename.
func (p *FilePreferences) Save(ctx context.Context, prefs map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}

	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, p.path)
}

// Clear removes the preference file. Idempotent.
func (p *FilePreferences) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// DirCache treats a directory as an opaque cache: clearing it removes
// every entry but keeps the directory itself.
type DirCache struct {
	dir string
}

// NewDirCache clears cache entries under dir.
func NewDirCache(dir string) *DirCache {
	return &DirCache{dir: dir}
}

// ClearCache removes everything under the cache directory.
func (c *DirCache) ClearCache(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(c.dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}
