package webserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"

	"docreplace/internal/replace"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeCorruptInput ErrorType = "corrupt_input"
	ErrorTypeFileIO       ErrorType = "file_io"
	ErrorTypeUpload       ErrorType = "upload"
	ErrorTypeInternal     ErrorType = "internal"
)

// ValidationError rejects a request before any processing is attempted.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ErrorResponse represents a structured error response
type ErrorResponse struct {
	Type        ErrorType `json:"type"`
	Code        string    `json:"code"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Details     string    `json:"details"`
	Suggestions []string  `json:"suggestions,omitempty"`
}

// CategorizeError maps an error onto the response taxonomy. Unlike
// matching on message text, this inspects the typed errors the replace
// package and the upload path produce.
func CategorizeError(err error) ErrorResponse {
	if err == nil {
		return ErrorResponse{
			Type:        ErrorTypeInternal,
			Code:        "unknown_error",
			Title:       "Processing failed",
			Description: "The request could not be processed.",
			Details:     "No error details available",
		}
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return ErrorResponse{
			Type:        ErrorTypeValidation,
			Code:        "invalid_request",
			Title:       "Invalid request",
			Description: "The request is missing a required field or contains an invalid value.",
			Details:     validationErr.Reason,
			Suggestions: []string{
				"Select a document to upload",
				"Enter the text to find",
			},
		}
	}

	var formatErr *replace.UnsupportedFormatError
	if errors.As(err, &formatErr) {
		return ErrorResponse{
			Type:        ErrorTypeValidation,
			Code:        "unsupported_file_type",
			Title:       "Unsupported file type",
			Description: fmt.Sprintf("Files of type %q cannot be processed.", formatErr.Ext),
			Details:     err.Error(),
			Suggestions: []string{
				"Upload one of: " + strings.Join(replace.Extensions(), ", "),
			},
		}
	}

	var corruptErr *replace.CorruptInputError
	if errors.As(err, &corruptErr) {
		return ErrorResponse{
			Type:        ErrorTypeCorruptInput,
			Code:        "corrupt_input",
			Title:       "Document could not be read",
			Description: fmt.Sprintf("The file does not parse as %s.", corruptErr.Format),
			Details:     err.Error(),
			Suggestions: []string{
				"Check that the file extension matches its content",
				"Re-export the document and try again",
			},
		}
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return ErrorResponse{
			Type:        ErrorTypeUpload,
			Code:        "file_too_large",
			Title:       "File too large",
			Description: fmt.Sprintf("Uploads are limited to %d bytes.", maxBytesErr.Limit),
			Details:     err.Error(),
			Suggestions: []string{
				"Upload a smaller document",
			},
		}
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return ErrorResponse{
			Type:        ErrorTypeFileIO,
			Code:        "file_io_error",
			Title:       "File operation failed",
			Description: "Reading or writing a working file failed.",
			Details:     err.Error(),
			Suggestions: []string{
				"Try the request again",
			},
		}
	}

	return ErrorResponse{
		Type:        ErrorTypeInternal,
		Code:        "processing_error",
		Title:       "Processing failed",
		Description: "An unexpected error occurred while processing the document.",
		Details:     err.Error(),
		Suggestions: []string{
			"Try the request again",
			"Check that the document is valid",
		},
	}
}

// StatusFor returns the HTTP status for an error: 400 for anything the
// client can fix up front, 500 otherwise.
func StatusFor(err error) int {
	var (
		validationErr *ValidationError
		formatErr     *replace.UnsupportedFormatError
		maxBytesErr   *http.MaxBytesError
	)

	if errors.As(err, &validationErr) || errors.As(err, &formatErr) || errors.As(err, &maxBytesErr) {
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

// WriteErrorResponse writes a structured error response as JSON
func WriteErrorResponse(w http.ResponseWriter, err error, statusCode int) {
	errorResp := CategorizeError(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if jsonErr := json.NewEncoder(w).Encode(errorResp); jsonErr != nil {
		// Fallback to plain text if JSON encoding fails
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintf(w, "Error: %v", err)
	}
}
