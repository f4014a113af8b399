package constants

import "strings"

// AllowedExtensions holds the image file extensions accepted for receipt uploads.
var AllowedExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"webp": {},
}

// UnknownPumpSerial is recorded when the recognizer yields no serial.
const UnknownPumpSerial = "Unknown"

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedExtension reports whether a normalized extension is an accepted
// receipt image format.
func IsAllowedExtension(ext string) bool {
	_, ok := AllowedExtensions[ext]
	return ok
}

// IsImageContentType reports whether a MIME type names an image.
func IsImageContentType(ct string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(ct)), "image/")
}
