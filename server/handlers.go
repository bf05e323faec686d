package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"
)

// statusHandler returns server status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":  "ok",
		"version": s.version,
		"time":    time.Now().UTC(),
	}
	renderJSON(w, r, http.StatusOK, status)
}

// newsHandler serves the current snapshot, optionally filtered by category.
// A missing snapshot file is an empty document.
func (s *Server) newsHandler(w http.ResponseWriter, r *http.Request) {
	doc, err := s.snapshots.Load()
	if err != nil {
		log.Printf("[ERROR] can't load snapshot: %v", err)
		renderError(w, r, fmt.Errorf("can't load snapshot"), http.StatusInternalServerError)
		return
	}

	if category := r.URL.Query().Get("category"); category != "" {
		doc.Items = doc.FilterByCategory(category)
	}
	renderJSON(w, r, http.StatusOK, doc)
}

// categoriesHandler lists distinct categories in snapshot order
func (s *Server) categoriesHandler(w http.ResponseWriter, r *http.Request) {
	doc, err := s.snapshots.Load()
	if err != nil {
		log.Printf("[ERROR] can't load snapshot: %v", err)
		renderError(w, r, fmt.Errorf("can't load snapshot"), http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, map[string]interface{}{"categories": doc.Categories()})
}

// itemsHandler lists recently archived items, newest first
func (s *Server) itemsHandler(w http.ResponseWriter, r *http.Request) {
	if s.items == nil {
		renderError(w, r, fmt.Errorf("archive is disabled"), http.StatusNotFound)
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			renderError(w, r, fmt.Errorf("invalid limit"), http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	items, err := s.items.Recent(r.Context(), limit)
	if err != nil {
		log.Printf("[ERROR] can't read archive: %v", err)
		renderError(w, r, fmt.Errorf("can't read archive"), http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, map[string]interface{}{"items": items})
}

// summaryRequest is the body of a summary call
type summaryRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// summaryHandler produces an on-demand summary for one displayed article.
// The summarizer reports failures as values, so the response is always 200
// with a success flag, mirroring what the collaborator returns.
func (s *Server) summaryHandler(w http.ResponseWriter, r *http.Request) {
	var req summaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, fmt.Errorf("invalid request body"), http.StatusBadRequest)
		return
	}

	res := s.summarizer.Summarize(r.Context(), req.Title, req.URL)
	renderJSON(w, r, http.StatusOK, res)
}
