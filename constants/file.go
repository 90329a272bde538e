package constants

import "strings"

// Source formats a document can be linearized from.
const (
	PDF  = "PDF"
	TXT  = "TXT"
	JSON = "JSON"
)

// FileTypes holds the formats accepted by the document source.
var FileTypes = []string{PDF, TXT, JSON}

// AllowedExtensions holds the default allowed file extensions for document ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"txt":  {},
	"json": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns the source format for an extension, or "" when unsupported.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "txt", "text":
		return TXT
	case "json":
		return JSON
	default:
		return ""
	}
}
