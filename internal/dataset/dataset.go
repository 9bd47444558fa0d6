// Package dataset owns the managed dataset tree: the fixed Train/Test/
// Validation folder layout under one root, physical file copies into it,
// and the duplicate cleanup that keeps a relocated record from leaving a
// stale copy behind.
package dataset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlbertJQM/Proyecto-Final/internal/record"
)

// Tree manages the physical dataset directory.
type Tree struct {
	root string // dataset root, e.g. <base>/images/dataset
}

// New returns a Tree rooted at root. Nothing is created until
// EnsureLayout runs.
func New(root string) *Tree {
	return &Tree{root: root}
}

// Root returns the dataset root path.
func (t *Tree) Root() string {
	return t.root
}

// EnsureLayout creates the root and one subfolder per split. Idempotent:
// existing directories are left alone.
func (t *Tree) EnsureLayout() error {
	for _, split := range record.Splits() {
		dir := filepath.Join(t.root, string(split))
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("creating split directory %s: %w", dir, err)
		}
	}
	return nil
}

// DestPath resolves the canonical destination for a source file going
// into the given split: <root>/<split>/<basename(source)>.
func (t *Tree) DestPath(split record.Split, sourcePath string) string {
	return filepath.Join(t.root, string(split), filepath.Base(sourcePath))
}

// Copy copies the bytes of src to dst, silently overwriting an existing
// destination. The parent directory must already exist. A src and dst
// resolving to the same file is an error: opening dst for writing would
// truncate src before a single byte is read.
func (t *Tree) Copy(src, dst string) error {
	if SamePath(src, dst) {
		return fmt.Errorf("copying %s onto itself", src)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating destination %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing destination %s: %w", dst, err)
	}
	return nil
}

// Contains reports whether path, resolved to absolute canonical form,
// falls inside the managed dataset root.
func (t *Tree) Contains(path string) bool {
	root, err := canonical(t.root)
	if err != nil {
		return false
	}
	p, err := canonical(path)
	if err != nil {
		return false
	}
	return p == root || strings.HasPrefix(p, root+string(filepath.Separator))
}

// SamePath reports whether two paths resolve to the same canonical file.
func SamePath(a, b string) bool {
	ca, err := canonical(a)
	if err != nil {
		return false
	}
	cb, err := canonical(b)
	if err != nil {
		return false
	}
	return ca == cb
}

// CleanupDuplicate deletes prevPath when it is a superseded copy of
// newPath: both paths must resolve inside the managed root, must differ,
// and prevPath must still exist. Paths outside the root are never touched
// so manually placed or externally sourced files stay intact. Reports
// whether a deletion happened.
func (t *Tree) CleanupDuplicate(prevPath, newPath string) (bool, error) {
	if !t.Contains(prevPath) || !t.Contains(newPath) {
		return false, nil
	}
	if SamePath(prevPath, newPath) {
		return false, nil
	}
	if _, err := os.Stat(prevPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("checking %s: %w", prevPath, err)
	}
	if err := os.Remove(prevPath); err != nil {
		return false, fmt.Errorf("removing superseded copy %s: %w", prevPath, err)
	}
	return true, nil
}

// canonical resolves a path to its absolute, symlink-free form. A path
// that does not exist yet is still canonicalized lexically so cleanup
// decisions can be made before files appear.
func canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			// Resolve the parent instead so a missing leaf compares
			// consistently with paths that do exist.
			dir, base := filepath.Split(abs)
			if rdir, derr := filepath.EvalSymlinks(filepath.Clean(dir)); derr == nil {
				return filepath.Join(rdir, base), nil
			}
			return filepath.Clean(abs), nil
		}
		return "", err
	}
	return resolved, nil
}
