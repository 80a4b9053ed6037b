package replace

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// replaceCSV loads the file as a grid of string cells and applies the
// literal replacement to every textual data cell. The header row, empty
// cells and numeric-looking cells pass through unchanged, as does the
// column order.
func replaceCSV(req Request) (string, error) {
	in, err := os.Open(req.SourcePath)
	if err != nil {
		return "", fmt.Errorf("opening csv input: %w", err)
	}
	defer in.Close()

	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return "", &CorruptInputError{Format: FormatCSV, Err: err}
	}

	for i, record := range records {
		if i == 0 {
			continue // header
		}

		for j, cell := range record {
			if isTextualCell(cell) {
				record[j] = req.apply(cell)
			}
		}
	}

	outPath := outputPath(req.SourcePath)

	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("creating csv output: %w", err)
	}
	defer out.Close()

	writer := csv.NewWriter(out)
	if err := writer.WriteAll(records); err != nil {
		return "", fmt.Errorf("writing csv output: %w", err)
	}

	return outPath, nil
}

// isTextualCell reports whether a cell holds text, as opposed to being
// empty (a null) or numeric-looking.
func isTextualCell(s string) bool {
	if s == "" {
		return false
	}

	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return false
	}

	return true
}
