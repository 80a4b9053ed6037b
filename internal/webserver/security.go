package webserver

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"docreplace/internal/replace"
)

// magic prefixes for the binary formats; text formats are not sniffed.
var formatMagic = map[replace.Format][]byte{
	replace.FormatPDF: []byte("%PDF-"),
	replace.FormatXPT: []byte("HEADER RECORD*******"),
}

// ValidateFileUpload checks an uploaded file before it is written to
// disk: name present, size within limit, supported extension, no path
// traversal, and a plausible magic prefix for binary formats. It
// returns the selected format on success.
func ValidateFileUpload(file multipart.File, header *multipart.FileHeader, maxSize int64) (replace.Format, error) {
	if strings.TrimSpace(header.Filename) == "" {
		return 0, &ValidationError{Reason: "filename cannot be empty"}
	}

	if header.Size > maxSize {
		return 0, &ValidationError{Reason: fmt.Sprintf("file too large: %d bytes (max %d)", header.Size, maxSize)}
	}

	if strings.ContainsAny(header.Filename, "/\\") || strings.Contains(header.Filename, "..") {
		return 0, &ValidationError{Reason: "invalid filename: contains path traversal characters"}
	}

	format, err := replace.FormatForFile(header.Filename)
	if err != nil {
		return 0, err
	}

	magic, ok := formatMagic[format]
	if !ok {
		return format, nil
	}

	prefix := make([]byte, len(magic))

	n, err := io.ReadFull(file, prefix)
	if err != nil && n == 0 {
		return 0, &ValidationError{Reason: "cannot read file content"}
	}

	if seeker, ok := file.(io.Seeker); ok {
		_, _ = seeker.Seek(0, io.SeekStart)
	}

	if !bytes.Equal(prefix[:n], magic[:n]) || n < len(magic) {
		return 0, &ValidationError{
			Reason: fmt.Sprintf("file content does not look like %s", format),
		}
	}

	return format, nil
}

// SanitizeFilename sanitizes filenames to prevent issues
func SanitizeFilename(filename string) string {
	// Remove any path separators and dangerous characters
	for _, bad := range []string{"/", "\\", "..", ":", "*", "?", "<", ">", "|", "\""} {
		filename = strings.ReplaceAll(filename, bad, "")
	}

	filename = strings.TrimSpace(filename)

	// Ensure filename is not empty after sanitization
	if filename == "" {
		filename = "upload"
	}

	return filename
}
