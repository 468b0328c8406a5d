package constants

import "strings"

// AllowedExtensions holds the file extensions accepted by the drop-folder
// ingester. Images go through OCR; txt files are read as-is.
var AllowedExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"txt":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsImageExt reports whether the (normalized) extension needs the OCR path.
func IsImageExt(ext string) bool {
	switch NormalizeExt(ext) {
	case "png", "jpg", "jpeg":
		return true
	}
	return false
}
