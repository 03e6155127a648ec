package conversion

import (
	"errors"
	"fmt"
	"os"

	"webpconv/internal/config"
	"webpconv/internal/discovery"
)

// OutputPath appends the output extension to the full source path, so
// photo.jpg becomes photo.jpg.webp beside the source.
func OutputPath(source, ext string) string {
	return source + "." + config.NormalizeExtension(ext)
}

// IsStale reports whether entry must be (re)converted. A missing output is
// always stale. Otherwise the source is stale only when its modification
// time is strictly after the output's; equal times count as up to date.
func IsStale(entry discovery.FileEntry, outputPath string) (bool, error) {
	outInfo, err := os.Stat(outputPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return true, nil
		}
		return false, fmt.Errorf("stat output %s: %w", outputPath, err)
	}
	srcTime, err := entry.ModTime()
	if err != nil {
		return false, fmt.Errorf("stat source %s: %w", entry.Path, err)
	}
	return srcTime.After(outInfo.ModTime()), nil
}
