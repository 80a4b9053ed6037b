package replace

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// defaultFontSize is used when the source reports no size for a match.
const defaultFontSize = 12

// insertLift raises the replacement baseline slightly above the bottom
// edge of the redacted rectangle.
const insertLift = 2.3

// span is one positioned text run from a page content stream.
// Coordinates are PDF user space (origin bottom-left, y up), x/w in
// points along the baseline.
type span struct {
	text string
	x    float64
	y    float64
	w    float64
	size float64
}

// match is the bounding rectangle of one occurrence of the search text,
// with the font size of the run it was found in.
type match struct {
	x0, y0 float64
	x1, y1 float64
	size   float64
	text   string
}

// replacePDF performs a best-effort visual substitution: every verbatim
// occurrence of the search text is covered with an opaque stamp and the
// replacement text is inserted at the occurrence's left edge, slightly
// above its bottom edge, in Times-Roman at the size of the matched run.
// It does not reflow and does not handle matches spanning lines.
func replacePDF(req Request) (string, error) {
	f, reader, err := pdf.Open(req.SourcePath)
	if err != nil {
		return "", &CorruptInputError{Format: FormatPDF, Err: err}
	}
	defer f.Close()

	matches := collectMatches(reader, req.Search)

	outPath := outputPath(req.SourcePath)

	if len(matches) == 0 {
		if err := copyFile(req.SourcePath, outPath); err != nil {
			return "", fmt.Errorf("copying pdf output: %w", err)
		}

		return outPath, nil
	}

	stamps, err := buildStamps(matches, req.Replacement)
	if err != nil {
		return "", fmt.Errorf("building replacement stamps: %w", err)
	}

	if err := api.AddWatermarksSliceMapFile(req.SourcePath, outPath, stamps, nil); err != nil {
		return "", fmt.Errorf("stamping pdf output: %w", err)
	}

	return outPath, nil
}

// collectMatches scans every page for occurrences of needle and returns
// them keyed by 1-based page number. Pages without a match are skipped.
func collectMatches(reader *pdf.Reader, needle string) map[int][]match {
	matches := make(map[int][]match)

	// The pdf library panics on some malformed documents, so page
	// counting and content extraction run behind recover.
	pages := 0

	func() {
		defer func() { _ = recover() }()
		pages = reader.NumPage()
	}()

	for p := 1; p <= pages; p++ {
		spans := pageSpans(reader, p)

		if found := findMatches(spans, needle); len(found) > 0 {
			matches[p] = found
		}
	}

	return matches
}

func pageSpans(reader *pdf.Reader, pageNum int) (spans []span) {
	defer func() { _ = recover() }()

	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return nil
	}

	for _, t := range page.Content().Text {
		spans = append(spans, span{text: t.S, x: t.X, y: t.Y, w: t.W, size: t.FontSize})
	}

	return spans
}

// findMatches groups spans into lines by baseline and locates every
// occurrence of needle within each line.
func findMatches(spans []span, needle string) []match {
	var found []match

	for start := 0; start < len(spans); {
		end := start
		for end < len(spans) && spans[end].y == spans[start].y {
			end++
		}

		found = append(found, lineMatches(spans[start:end], needle)...)
		start = end
	}

	return found
}

// lineMatches concatenates the text of one line and maps every
// occurrence of needle back to a bounding rectangle. Offsets inside a
// span are interpolated proportionally along its width.
func lineMatches(line []span, needle string) []match {
	if needle == "" {
		return nil
	}

	var b strings.Builder

	offsets := make([]int, len(line)+1)
	for i, s := range line {
		b.WriteString(s.text)
		offsets[i+1] = offsets[i] + len(s.text)
	}

	text := b.String()

	var found []match

	for from := 0; ; {
		idx := strings.Index(text[from:], needle)
		if idx < 0 {
			break
		}

		idx += from
		found = append(found, buildMatch(line, offsets, idx, idx+len(needle), needle))
		from = idx + len(needle)
	}

	return found
}

func buildMatch(line []span, offsets []int, lo, hi int, needle string) match {
	first, last := 0, 0

	for i := range line {
		if offsets[i] <= lo && lo < offsets[i+1] {
			first = i
		}

		if offsets[i] < hi && hi <= offsets[i+1] {
			last = i
		}
	}

	size := line[first].size
	if size <= 0 {
		size = defaultFontSize
	}

	x0 := spanXAt(line[first], lo-offsets[first])
	x1 := spanXAt(line[last], hi-offsets[last])

	return match{
		x0:   x0,
		y0:   line[first].y - size*0.25,
		x1:   x1,
		y1:   line[first].y + size,
		size: size,
		text: needle,
	}
}

// spanXAt estimates the x coordinate at a byte offset into a span,
// assuming evenly distributed glyph widths.
func spanXAt(s span, byteOff int) float64 {
	if len(s.text) == 0 {
		return s.x
	}

	return s.x + s.w*float64(byteOff)/float64(len(s.text))
}

// buildStamps creates two stamps per match: an opaque cover over the
// original glyphs, then the replacement text on top of it. An empty
// replacement turns the operation into a plain redaction.
func buildStamps(matches map[int][]match, replacement string) (map[int][]*model.Watermark, error) {
	stamps := make(map[int][]*model.Watermark, len(matches))

	for page, pageMatches := range matches {
		for _, m := range pageMatches {
			cover, err := api.TextWatermark(m.text, coverDesc(m), true, false, types.POINTS)
			if err != nil {
				return nil, fmt.Errorf("page %d cover stamp: %w", page, err)
			}

			stamps[page] = append(stamps[page], cover)

			if replacement == "" {
				continue
			}

			text, err := api.TextWatermark(replacement, textDesc(m), true, false, types.POINTS)
			if err != nil {
				return nil, fmt.Errorf("page %d text stamp: %w", page, err)
			}

			stamps[page] = append(stamps[page], text)
		}
	}

	return stamps, nil
}

// coverDesc renders the matched text white-on-white at its own position
// and size, so the stamp's background box blanks the original glyphs.
func coverDesc(m match) string {
	return fmt.Sprintf(
		"fontname:Times-Roman, points:%.2f, position:bl, offset:%.2f %.2f, "+
			"scalefactor:1 abs, rotation:0, fillcolor:#ffffff, backgroundcolor:#ffffff, margins:1, opacity:1",
		m.size, m.x0, m.y0)
}

func textDesc(m match) string {
	return fmt.Sprintf(
		"fontname:Times-Roman, points:%.2f, position:bl, offset:%.2f %.2f, "+
			"scalefactor:1 abs, rotation:0, fillcolor:#000000, opacity:1",
		m.size, m.x0, m.y0+insertLift)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}

	return out.Close()
}
