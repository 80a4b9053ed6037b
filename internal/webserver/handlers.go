package webserver

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"docreplace/internal/replace"
	"docreplace/internal/tmpstore"
)

//go:embed www/*
var wwwFiles embed.FS

// formOverhead leaves room for the multipart framing and text fields on
// top of the document size limit.
const formOverhead = 1 << 20

type Server struct {
	store          *tmpstore.Store
	maxUploadBytes int64
	log            *slog.Logger
}

func New(store *tmpstore.Store, maxUploadBytes int64, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}

	return &Server{store: store, maxUploadBytes: maxUploadBytes, log: log}
}

// Routes wires the handlers and middleware into one http.Handler.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.HomeHandler)
	mux.HandleFunc("/upload", s.UploadHandler)
	mux.HandleFunc("/healthz", s.HealthHandler)
	mux.HandleFunc("/translations", s.TranslationsHandler)

	return RequestLogMiddleware(s.log, CompressionMiddleware(mux))
}

func (s *Server) HomeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	page, err := wwwFiles.ReadFile("www/index.html")
	if err != nil {
		s.log.Error("reading index.html", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

// TranslationsHandler serves the UI strings for the client's language.
func (s *Server) TranslationsHandler(w http.ResponseWriter, r *http.Request) {
	lang := GetLanguageFromRequest(r)

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(GetTranslations(lang)); err != nil {
		s.log.Error("encoding translations", "lang", lang, "error", err)
	}
}

// UploadHandler accepts a document plus a find/replace pair, runs the
// matching replacer and streams the modified document back. All working
// files live in a request scope that is removed on every exit path.
func (s *Server) UploadHandler(w http.ResponseWriter, r *http.Request) {
	log := s.log.With("handler", "upload")

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	log.Info("received upload request", "remote_addr", r.RemoteAddr)

	scope, err := s.store.NewScope()
	if err != nil {
		log.Error("failed to create request scope", "error", err)
		WriteErrorResponse(w, err, http.StatusInternalServerError)

		return
	}
	defer scope.Close()

	req, origName, format, err := s.receiveRequest(w, r, scope)
	if err != nil {
		log.Error("failed to receive request", "error", err)
		WriteErrorResponse(w, err, StatusFor(err))

		return
	}

	outPath, err := replace.Run(format, req)
	if err != nil {
		log.Error("replacement failed", "format", format.String(), "error", err)
		WriteErrorResponse(w, err, StatusFor(err))

		return
	}

	if err := sendAttachment(w, outPath, "modified_"+origName); err != nil {
		// Headers are already out; nothing to do but log.
		log.Error("failed to send response", "error", err)
		return
	}

	log.Info("request processed", "format", format.String(), "filename", origName)
}

func (s *Server) receiveRequest(w http.ResponseWriter, r *http.Request, scope *tmpstore.Scope) (replace.Request, string, replace.Format, error) {
	var req replace.Request

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+formOverhead)

	if err := r.ParseMultipartForm(1 << 20); err != nil {
		return req, "", 0, fmt.Errorf("form parsing error: %w", err)
	}

	search := strings.TrimSpace(r.FormValue("old_text"))
	if search == "" {
		return req, "", 0, &ValidationError{Reason: "text to find is required"}
	}

	replacement := strings.TrimSpace(r.FormValue("new_text"))

	file, header, err := r.FormFile("pdf_file")
	if err != nil {
		return req, "", 0, &ValidationError{Reason: "no file uploaded"}
	}
	defer file.Close()

	format, err := ValidateFileUpload(file, header, s.maxUploadBytes)
	if err != nil {
		return req, "", 0, err
	}

	name := SanitizeFilename(header.Filename)
	srcPath := scope.Path(name)

	dst, err := os.Create(srcPath)
	if err != nil {
		return req, "", 0, fmt.Errorf("file creation failed: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return req, "", 0, fmt.Errorf("file saving error: %w", err)
	}

	req = replace.Request{
		SourcePath:  srcPath,
		Search:      search,
		Replacement: replacement,
	}

	return req, name, format, nil
}

func sendAttachment(w http.ResponseWriter, filePath, downloadName string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open result file %s: %w", filePath, err)
	}
	defer file.Close()

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", downloadName))
	w.Header().Set("Content-Type", "application/octet-stream")

	if _, err := io.Copy(w, file); err != nil {
		return fmt.Errorf("failed writing response: %w", err)
	}

	return nil
}
