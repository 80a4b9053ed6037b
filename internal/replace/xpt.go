package replace

import (
	"fmt"
	"os"
	"strings"

	"docreplace/internal/xport"
)

// replaceXPT applies the literal replacement to every character cell of
// a SAS transport member. Numeric cells keep their raw encoding, and the
// member is re-serialized with the source's transport version, table
// name and variable metadata.
func replaceXPT(req Request) (string, error) {
	in, err := os.Open(req.SourcePath)
	if err != nil {
		return "", fmt.Errorf("opening transport input: %w", err)
	}
	defer in.Close()

	doc, err := xport.Read(in)
	if err != nil {
		return "", &CorruptInputError{Format: FormatXPT, Err: err}
	}

	for _, row := range doc.Rows {
		for i := range row {
			if !row[i].IsChar() {
				continue
			}

			if s := row[i].String(); strings.Contains(s, req.Search) {
				row[i].SetChar(req.apply(s))
			}
		}
	}

	outPath := outputPath(req.SourcePath)

	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("creating transport output: %w", err)
	}
	defer out.Close()

	if err := xport.Write(out, doc); err != nil {
		return "", fmt.Errorf("writing transport output: %w", err)
	}

	return outPath, nil
}
