// Package cleanup finds and deletes generated webp files below a directory.
package cleanup
