package intake

import (
	"path/filepath"
	"sort"
	"strings"
)

// supportedExtensions is the set of document types Paperless is fed
var supportedExtensions = map[string]struct{}{
	".pdf":  {},
	".docx": {},
	".doc":  {},
}

// Supported reports whether path names a document type we import.
// The comparison is case-insensitive and looks only at the final extension.
func Supported(path string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// SupportedExtensions returns the allow-list in sorted order
func SupportedExtensions() []string {
	exts := make([]string, 0, len(supportedExtensions))
	for ext := range supportedExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
