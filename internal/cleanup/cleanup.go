package cleanup

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"webpconv/internal/discovery"
	"webpconv/internal/logging"
)

// Result contains the outcome of a cleanup run. In dry-run mode Removed
// lists the files that would have been deleted.
type Result struct {
	Removed []string
	Errors  []RemoveError
	DryRun  bool
}

// RemoveError pairs a file path with its removal error.
type RemoveError struct {
	Path  string
	Error error
}

// Find lists every file under root whose extension is ext. Errors from
// discovery (for example a missing root) are returned unchanged.
func Find(root, ext string, caseInsensitive bool, logger *slog.Logger) ([]string, error) {
	entries, err := discovery.Discover(root, discovery.Options{
		Extensions:      []string{ext},
		CaseInsensitive: caseInsensitive,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		paths = append(paths, entry.Path)
	}
	return paths, nil
}

// Remove deletes paths, or only reports them when dryRun is set. A file that
// vanished in the meantime counts as removed. Cancellation stops the loop;
// paths not yet visited are left alone.
func Remove(ctx context.Context, paths []string, dryRun bool, logger *slog.Logger) Result {
	logger = logging.NewComponentLogger(logger, "cleanup")
	result := Result{DryRun: dryRun}

	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}
		if dryRun {
			result.Removed = append(result.Removed, path)
			logger.Debug("would delete", logging.String("path", path))
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			result.Errors = append(result.Errors, RemoveError{Path: path, Error: err})
			logging.WarnWithContext(logger, "failed to delete webp image", "cleanup_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check file permissions"),
				logging.String(logging.FieldImpact, "file left in place"),
			)
			continue
		}
		result.Removed = append(result.Removed, path)
		logger.Debug("deleted", logging.String("path", path))
	}
	return result
}
