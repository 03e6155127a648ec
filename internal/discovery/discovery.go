package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"webpconv/internal/config"
	"webpconv/internal/logging"
	"webpconv/internal/services"
)

// Options narrows which files Discover returns.
type Options struct {
	// Extensions limits results to files whose final extension is listed,
	// with or without a leading dot. Empty means every regular file.
	Extensions []string
	// CaseInsensitive compares extensions with strings.EqualFold instead of
	// an exact match.
	CaseInsensitive bool
	// Logger receives warnings for subdirectories that cannot be read.
	Logger *slog.Logger
}

// FileEntry is one discovered file. Stat-derived values are read from disk
// on every call unless the entry was produced by Snapshot.
type FileEntry struct {
	Path string

	snapshot *stat
}

type stat struct {
	modTime time.Time
	size    int64
}

// ModTime returns the file's last-modified time.
func (e FileEntry) ModTime() (time.Time, error) {
	s, err := e.stat()
	if err != nil {
		return time.Time{}, err
	}
	return s.modTime, nil
}

// Size returns the file's size in bytes.
func (e FileEntry) Size() (int64, error) {
	s, err := e.stat()
	if err != nil {
		return 0, err
	}
	return s.size, nil
}

// Snapshot reads the file's metadata once and returns an entry that answers
// ModTime and Size from that reading.
func (e FileEntry) Snapshot() (FileEntry, error) {
	s, err := e.stat()
	if err != nil {
		return FileEntry{}, err
	}
	return FileEntry{Path: e.Path, snapshot: &s}, nil
}

// Snapshotted reports whether the entry carries cached metadata.
func (e FileEntry) Snapshotted() bool {
	return e.snapshot != nil
}

func (e FileEntry) stat() (stat, error) {
	if e.snapshot != nil {
		return *e.snapshot, nil
	}
	info, err := os.Stat(e.Path)
	if err != nil {
		return stat{}, err
	}
	return stat{modTime: info.ModTime(), size: info.Size()}, nil
}

// Discover walks root depth-first and returns every regular file that passes
// the extension filter, in traversal order. A missing root, or a root that is
// not a directory, fails with services.ErrNotFound. Unreadable subdirectories
// are skipped with a warning.
//
// Symlinks are followed: a link to a directory is descended into and a link
// to a regular file is treated as that file. Each resolved directory is listed
// once, so link cycles terminate. Dangling links and links to anything else
// are skipped.
func Discover(root string, opts Options) ([]FileEntry, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "discovery", "stat root", fmt.Sprintf("directory %q does not exist", root), nil)
		}
		return nil, services.Wrap(services.ErrNotFound, "discovery", "stat root", root, err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrNotFound, "discovery", "stat root", fmt.Sprintf("%q is not a directory", root), nil)
	}

	w := &walker{
		match:   newMatcher(opts.Extensions, opts.CaseInsensitive),
		logger:  logging.NewComponentLogger(opts.Logger, "discovery"),
		visited: make(map[string]struct{}),
	}
	if err := w.walk(root, true); err != nil {
		return nil, services.Wrap(services.ErrNotFound, "discovery", "list directory", root, err)
	}
	return w.entries, nil
}

type walker struct {
	match   func(name string) bool
	logger  *slog.Logger
	visited map[string]struct{}
	entries []FileEntry
}

func (w *walker) walk(dir string, isRoot bool) error {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		if isRoot {
			return err
		}
		w.warnUnreadable(dir, err)
		return nil
	}
	if _, seen := w.visited[resolved]; seen {
		w.logger.Debug("directory already visited", logging.String("path", dir), logging.String("target", resolved))
		return nil
	}
	w.visited[resolved] = struct{}{}

	children, err := os.ReadDir(dir)
	if err != nil {
		if isRoot {
			return err
		}
		w.warnUnreadable(dir, err)
		return nil
	}

	for _, d := range children {
		path := filepath.Join(dir, d.Name())
		mode := d.Type()
		if mode&fs.ModeSymlink != 0 {
			target, err := os.Stat(path)
			if err != nil {
				w.logger.Debug("skipping dangling symlink", logging.String("path", path), logging.Error(err))
				continue
			}
			mode = target.Mode().Type()
		}
		switch {
		case mode.IsDir():
			if err := w.walk(path, false); err != nil {
				return err
			}
		case mode.IsRegular():
			if w.match(d.Name()) {
				w.entries = append(w.entries, FileEntry{Path: path})
			}
		}
	}
	return nil
}

func (w *walker) warnUnreadable(path string, err error) {
	logging.WarnWithContext(w.logger, "directory listing failed", "discovery_read_failed",
		logging.String("path", path),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check directory permissions"),
		logging.String(logging.FieldImpact, "files below this directory are not converted"),
	)
}

// Extension returns the final extension of name without its leading dot.
func Extension(name string) string {
	return strings.TrimPrefix(filepath.Ext(name), ".")
}

func newMatcher(extensions []string, caseInsensitive bool) func(name string) bool {
	if len(extensions) == 0 {
		return func(string) bool { return true }
	}
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = config.NormalizeExtension(ext)
		if ext == "" {
			continue
		}
		if caseInsensitive {
			ext = strings.ToLower(ext)
		}
		set[ext] = struct{}{}
	}
	return func(name string) bool {
		ext := Extension(name)
		if ext == "" {
			return false
		}
		if caseInsensitive {
			ext = strings.ToLower(ext)
		}
		_, ok := set[ext]
		return ok
	}
}
