package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/mfeng-dev/thesisfmt/internal/format"
	"github.com/mfeng-dev/thesisfmt/internal/wordml"
)

// handleCheck runs a synchronous compliance check over an uploaded docx.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	filename, data, templateName, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	if !strings.EqualFold(filepath.Ext(filename), ".docx") {
		jsonError(w, "check requires a .docx file", http.StatusBadRequest)
		return
	}

	tpl, found := s.store.Get(templateName)
	if !found {
		jsonError(w, fmt.Sprintf("unknown template: %s", templateName), http.StatusBadRequest)
		return
	}

	doc, err := wordml.Load(data)
	if err != nil {
		jsonError(w, "failed to parse document: "+err.Error(), http.StatusBadRequest)
		return
	}

	issues, err := format.Check(doc, tpl)
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if issues == nil {
		issues = []format.Issue{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"filename": filename,
		"template": templateName,
		"count":    len(issues),
		"issues":   issues,
	})
}
