package webserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docreplace/internal/replace"
)

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedType ErrorType
		expectedCode string
	}{
		{
			name:         "validation error",
			err:          &ValidationError{Reason: "text to find is required"},
			expectedType: ErrorTypeValidation,
			expectedCode: "invalid_request",
		},
		{
			name:         "wrapped validation error",
			err:          fmt.Errorf("receiving upload: %w", &ValidationError{Reason: "no file uploaded"}),
			expectedType: ErrorTypeValidation,
			expectedCode: "invalid_request",
		},
		{
			name:         "unsupported format",
			err:          &replace.UnsupportedFormatError{Ext: ".docx"},
			expectedType: ErrorTypeValidation,
			expectedCode: "unsupported_file_type",
		},
		{
			name:         "corrupt input",
			err:          &replace.CorruptInputError{Format: replace.FormatPDF, Err: errors.New("bad xref")},
			expectedType: ErrorTypeCorruptInput,
			expectedCode: "corrupt_input",
		},
		{
			name:         "body too large",
			err:          &http.MaxBytesError{Limit: 16 << 20},
			expectedType: ErrorTypeUpload,
			expectedCode: "file_too_large",
		},
		{
			name:         "file io",
			err:          &fs.PathError{Op: "open", Path: "gone.csv", Err: fs.ErrNotExist},
			expectedType: ErrorTypeFileIO,
			expectedCode: "file_io_error",
		},
		{
			name:         "unknown error",
			err:          errors.New("something odd"),
			expectedType: ErrorTypeInternal,
			expectedCode: "processing_error",
		},
		{
			name:         "nil error",
			err:          nil,
			expectedType: ErrorTypeInternal,
			expectedCode: "unknown_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := CategorizeError(tt.err)

			assert.Equal(t, tt.expectedType, resp.Type)
			assert.Equal(t, tt.expectedCode, resp.Code)
			assert.NotEmpty(t, resp.Title)
			assert.NotEmpty(t, resp.Description)
		})
	}
}

func TestCategorizeErrorUnsupportedFormatDetails(t *testing.T) {
	resp := CategorizeError(&replace.UnsupportedFormatError{Ext: ".docx"})

	assert.Contains(t, resp.Description, ".docx")
	require.NotEmpty(t, resp.Suggestions)
	for _, ext := range replace.Extensions() {
		assert.Contains(t, resp.Suggestions[0], ext)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"validation", &ValidationError{Reason: "x"}, http.StatusBadRequest},
		{"unsupported format", &replace.UnsupportedFormatError{Ext: ".doc"}, http.StatusBadRequest},
		{"too large", &http.MaxBytesError{Limit: 1}, http.StatusBadRequest},
		{"corrupt input", &replace.CorruptInputError{Format: replace.FormatCSV, Err: errors.New("x")}, http.StatusInternalServerError},
		{"plain error", errors.New("x"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusFor(tt.err))
		})
	}
}

func TestWriteErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()

	WriteErrorResponse(w, &ValidationError{Reason: "no file uploaded"}, http.StatusBadRequest)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "invalid_request", resp.Code)
	assert.Equal(t, "no file uploaded", resp.Details)
}
