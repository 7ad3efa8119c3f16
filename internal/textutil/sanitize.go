package textutil

import "strings"

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// maxFileNameLength caps sanitized names so staged payload paths stay well
// under filesystem limits.
const maxFileNameLength = 200

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. Long names are truncated. Returns "unknown" when
// nothing usable remains.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(fileNameReplacer.Replace(strings.TrimSpace(name)))
	if len(name) > maxFileNameLength {
		name = strings.TrimSpace(name[:maxFileNameLength])
	}
	if name == "" {
		return "unknown"
	}
	return name
}
