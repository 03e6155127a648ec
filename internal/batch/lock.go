package batch

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"webpconv/internal/services"
)

// LockPath returns the lock file guarding conversions below root.
func LockPath(lockDir, root string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(root)))
	return filepath.Join(lockDir, hex.EncodeToString(sum[:8])+".lock")
}

// acquireLock takes a non-blocking exclusive lock for root. A lock already
// held by another batch yields services.ErrBatchLocked.
func acquireLock(lockDir, root string) (*flock.Flock, error) {
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "batch", "create lock dir", lockDir, err)
	}
	path := LockPath(lockDir, root)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "batch", "acquire lock", path, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrBatchLocked, "batch", "acquire lock",
			fmt.Sprintf("another batch is converting %s (lock %s)", root, path), nil)
	}
	return lock, nil
}
