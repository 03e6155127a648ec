package encoder

import "strings"

// CommandLine renders binary and args as a single copy-pasteable line for
// logs. Windows gets double quotes, everything else POSIX single quotes.
// Arguments that need no quoting are left bare.
func CommandLine(goos, binary string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, quote(goos, binary))
	for _, arg := range args {
		parts = append(parts, quote(goos, arg))
	}
	return strings.Join(parts, " ")
}

func quote(goos, arg string) string {
	if arg != "" && !strings.ContainsAny(arg, " \t\n'\"\\$`&|;<>()*?[]{}!#~%") {
		return arg
	}
	if goos == "windows" {
		return `"` + strings.ReplaceAll(arg, `"`, `\"`) + `"`
	}
	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}
