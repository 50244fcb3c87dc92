package internal

import "strings"

// filepathToSlash replaces both kinds of separators with `/` regardless of the current platform.
func filepathToSlash(name string) string {
	return strings.ReplaceAll(name, `\`, "/")
}
