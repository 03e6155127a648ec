//go:build !unix

package preflight

import "os"

func checkAccess(path string) error {
	dir, err := os.Open(path)
	if err != nil {
		return err
	}
	return dir.Close()
}
