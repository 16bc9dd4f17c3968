package api

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mfeng-dev/thesisfmt/internal/ingest"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// handleConvert accepts a multipart upload (file + template name) and
// queues a conversion job.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	filename, data, templateName, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	if !isConvertible(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}
	if _, found := s.store.Get(templateName); !found {
		jsonError(w, fmt.Sprintf("unknown template: %s", templateName), http.StatusBadRequest)
		return
	}

	job := s.orchestrator.NewJob(filename, templateName, data)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":       job.ID,
		"status":       snap.Status,
		"poll_url":     fmt.Sprintf("/api/convert/%s", job.ID),
		"download_url": fmt.Sprintf("/api/convert/%s/download", job.ID),
	})
}

func (s *Server) handleConvertStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

func (s *Server) handleConvertDownload(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	result := job.Result()
	if result == nil {
		jsonError(w, fmt.Sprintf("job not completed (status %s)", job.Snapshot().Status), http.StatusConflict)
		return
	}

	name := outputName(job.Filename)
	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	w.Write(result)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"queue_depth": s.orchestrator.QueueDepth(),
		"conversions": s.orchestrator.Stats(),
	})
}

// readUpload parses the multipart form shared by convert and check.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (filename string, data []byte, templateName string, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return "", nil, "", false
	}
	defer r.MultipartForm.RemoveAll()

	templateName = r.FormValue("template")
	if templateName == "" {
		jsonError(w, "template is required", http.StatusBadRequest)
		return "", nil, "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return "", nil, "", false
	}
	defer file.Close()

	data, ok = s.readFileData(w, file)
	if !ok {
		return "", nil, "", false
	}
	return sanitizeFilename(header.Filename), data, templateName, true
}

func (s *Server) readFileData(w http.ResponseWriter, file multipart.File) ([]byte, bool) {
	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return nil, false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return nil, false
	}
	return data, true
}

func isConvertible(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".docx") ||
		ingest.IsSupportedExtension(filename)
}

// outputName derives the download filename for a converted upload.
func outputName(input string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + "_formatted.docx"
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
