package replace

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	require.NoError(t, err)

	return records
}

func TestReplaceCSV(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		search      string
		replacement string
		want        [][]string
	}{
		{
			name:        "cell equal to search becomes replacement",
			input:       "name,note\nBob,hello\n",
			search:      "Bob",
			replacement: "Carol",
			want:        [][]string{{"name", "note"}, {"Carol", "hello"}},
		},
		{
			name:        "substring replaced, rest preserved",
			input:       "name,note\nAlice,\"call Bob\"\n",
			search:      "Bob",
			replacement: "Carol",
			want:        [][]string{{"name", "note"}, {"Alice", "call Carol"}},
		},
		{
			name:        "numeric-looking cells untouched",
			input:       "id,qty\nrow4,42\n",
			search:      "4",
			replacement: "9",
			want:        [][]string{{"id", "qty"}, {"row9", "42"}},
		},
		{
			name:        "empty cells untouched",
			input:       "a,b\n,x\n",
			search:      "x",
			replacement: "",
			want:        [][]string{{"a", "b"}, {"", ""}},
		},
		{
			name:        "header row untouched",
			input:       "note,count\nnote,more note\n",
			search:      "note",
			replacement: "remark",
			want:        [][]string{{"note", "count"}, {"remark", "more remark"}},
		},
		{
			name:        "multiple occurrences in one cell",
			input:       "a\nab ab ab\n",
			search:      "ab",
			replacement: "c",
			want:        [][]string{{"a"}, {"c c c"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := writeTempFile(t, "in.csv", tt.input)

			out, err := Run(FormatCSV, Request{SourcePath: src, Search: tt.search, Replacement: tt.replacement})
			require.NoError(t, err)

			assert.True(t, strings.HasSuffix(out, "in_modified.csv"))
			assert.Equal(t, tt.want, readCSV(t, out))

			// Source must be untouched.
			original, err := os.ReadFile(src)
			require.NoError(t, err)
			assert.Equal(t, tt.input, string(original))
		})
	}
}

func TestReplaceCSVNoMatchIsByteEquivalent(t *testing.T) {
	input := "name,note\nAlice,call Bob\n"
	src := writeTempFile(t, "in.csv", input)

	out, err := Run(FormatCSV, Request{SourcePath: src, Search: "Zed", Replacement: "Ann"})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, input, string(data))
}

func TestReplaceCSVCorruptInput(t *testing.T) {
	src := writeTempFile(t, "in.csv", "a,\"unterminated\n")

	_, err := Run(FormatCSV, Request{SourcePath: src, Search: "x", Replacement: "y"})
	require.Error(t, err)

	var corruptErr *CorruptInputError
	require.ErrorAs(t, err, &corruptErr)
	assert.Equal(t, FormatCSV, corruptErr.Format)
}

func TestReplaceCSVMissingFile(t *testing.T) {
	_, err := Run(FormatCSV, Request{SourcePath: filepath.Join(t.TempDir(), "gone.csv"), Search: "x"})
	assert.Error(t, err)
}
