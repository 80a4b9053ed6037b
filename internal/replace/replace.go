// Package replace implements literal find/replace over the supported
// document formats. Each format has its own replacer; all of them take a
// source file plus a search/replacement pair and produce a new file next
// to the source with a "_modified" suffix. The source file is never
// touched.
package replace

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a supported document format. The set is closed:
// selection happens once at the upload boundary via FormatForFile and
// every other code path switches exhaustively over it.
type Format int

const (
	FormatPDF Format = iota
	FormatCSV
	FormatXML
	FormatXPT
)

var formatNames = map[Format]string{
	FormatPDF: "pdf",
	FormatCSV: "csv",
	FormatXML: "xml",
	FormatXPT: "xpt",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}

	return fmt.Sprintf("format(%d)", int(f))
}

// Ext returns the canonical file extension, including the leading dot.
func (f Format) Ext() string {
	return "." + f.String()
}

var formatByExt = map[string]Format{
	".pdf": FormatPDF,
	".csv": FormatCSV,
	".xml": FormatXML,
	".xpt": FormatXPT,
}

// FormatForFile maps a filename to its Format by extension,
// case-insensitively. Unknown extensions yield *UnsupportedFormatError.
func FormatForFile(name string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(name))

	f, ok := formatByExt[ext]
	if !ok {
		return 0, &UnsupportedFormatError{Ext: ext}
	}

	return f, nil
}

// Extensions returns the supported extensions in a stable order, for
// allow-lists and error messages.
func Extensions() []string {
	formats := []Format{FormatPDF, FormatCSV, FormatXML, FormatXPT}

	exts := make([]string, len(formats))
	for i, f := range formats {
		exts[i] = f.Ext()
	}

	return exts
}

// Request describes a single replacement operation. Search must not be
// empty; the upload boundary enforces that before a Request is built.
type Request struct {
	SourcePath  string
	Search      string
	Replacement string
}

func (r Request) apply(s string) string {
	return strings.ReplaceAll(s, r.Search, r.Replacement)
}

// Run executes the replacer for the given format and returns the path of
// the produced file. Ownership of that file transfers to the caller.
func Run(format Format, req Request) (string, error) {
	switch format {
	case FormatPDF:
		return replacePDF(req)
	case FormatCSV:
		return replaceCSV(req)
	case FormatXML:
		return replaceXML(req)
	case FormatXPT:
		return replaceXPT(req)
	default:
		return "", &UnsupportedFormatError{Ext: format.String()}
	}
}

// outputPath derives the result path from the source path by inserting
// "_modified" before the extension: report.pdf -> report_modified.pdf.
func outputPath(src string) string {
	ext := filepath.Ext(src)
	return strings.TrimSuffix(src, ext) + "_modified" + ext
}
