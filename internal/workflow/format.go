package workflow

import "strings"

// FileFormatFromURL derives the artifact format from the download URL suffix.
// The remote workflow only produces PDF and Word documents.
func FileFormatFromURL(fileURL string) string {
	trimmed := fileURL
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	lower := strings.ToLower(trimmed)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return "pdf"
	case strings.HasSuffix(lower, ".docx"), strings.HasSuffix(lower, ".doc"):
		return "docx"
	default:
		return "unknown"
	}
}
