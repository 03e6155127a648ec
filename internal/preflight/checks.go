package preflight

import (
	"context"
	"fmt"
	"os"
	"strings"

	"webpconv/internal/deps"
	"webpconv/internal/services"
)

// InstallHints lists how to obtain cwebp on common platforms.
var InstallHints = []string{
	"ubuntu: apt install webp",
	"alpine: apk add libwebp-tools",
	"windows: download libwebp, extract cwebp.exe and add it to PATH",
}

// CheckEncoder confirms the encoder binary resolves on PATH. A miss is an
// ErrEncoderMissing error whose message carries the install hints.
func CheckEncoder(binary string) error {
	status := deps.CheckBinaries([]deps.Requirement{deps.EncoderRequirement(binary)})[0]
	if status.Available {
		return nil
	}
	return services.Wrap(
		services.ErrEncoderMissing,
		"preflight",
		"check encoder",
		fmt.Sprintf("%s command is missing (%s)", status.Command, strings.Join(InstallHints, "; ")),
		nil,
	)
}

// CheckEncoderStatus reports encoder availability and version for display.
func CheckEncoderStatus(ctx context.Context, binary string) Result {
	const name = "Encoder"

	status := deps.CheckBinaries([]deps.Requirement{deps.EncoderRequirement(binary)})[0]
	if !status.Available {
		return Result{Name: name, Detail: status.Detail}
	}
	version, err := deps.Version(ctx, status.Path)
	if err != nil || version == "" {
		return Result{Name: name, Passed: true, Detail: status.Path}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (version %s)", status.Path, version)}
}

// CheckDirectoryAccess verifies that the directory exists and is
// readable, writable and searchable. Outputs are written beside sources, so
// conversion roots need all three.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := checkAccess(path); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}
