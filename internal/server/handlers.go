package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/nao1215/sitesearch/internal/indexing"
	"github.com/nao1215/sitesearch/internal/model"
	"github.com/nao1215/sitesearch/internal/search"
)

// ErrInvalidNumber is returned for malformed offset and limit parameters.
var ErrInvalidNumber = errors.New("invalid non-negative integer")

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	resp := s.stats.Statistics(r.Context())
	status := http.StatusOK
	if !resp.Result {
		status = http.StatusInternalServerError
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) handleStartIndexing(w http.ResponseWriter, r *http.Request) {
	resp := s.indexer.StartIndexing(r.Context())
	s.writeJSON(w, indexingStatus(resp), resp)
}

func (s *Server) handleStopIndexing(w http.ResponseWriter, r *http.Request) {
	resp := s.indexer.StopIndexing(r.Context())
	s.writeJSON(w, indexingStatus(resp), resp)
}

func (s *Server) handleIndexPage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.writeJSON(w, http.StatusBadRequest, model.IndexingResponse{Error: "invalid form body"})
		return
	}
	pageURL := r.PostForm.Get("url")
	if pageURL == "" {
		pageURL = r.URL.Query().Get("url")
	}
	if pageURL == "" {
		s.writeJSON(w, http.StatusBadRequest, model.IndexingResponse{Error: "url is required"})
		return
	}
	resp := s.indexer.IndexPage(r.Context(), pageURL)
	s.writeJSON(w, indexingStatus(resp), resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	offset, err := optionalInt(q.Get("offset"))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, model.SearchFailed(err))
		return
	}
	limit, err := optionalInt(q.Get("limit"))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, model.SearchFailed(err))
		return
	}

	resp := s.searcher.Search(r.Context(), search.Query{
		Text:   q.Get("query"),
		Site:   q.Get("site"),
		Offset: offset,
		Limit:  limit,
	})
	status := http.StatusOK
	switch {
	case resp.Result:
	case resp.Error == search.ErrIndexingInProgress.Error():
		status = http.StatusConflict
	default:
		status = http.StatusBadRequest
	}
	s.writeJSON(w, status, resp)
}

// indexingStatus maps a crawl control response to an HTTP status:
// rejected state transitions are conflicts, anything else is a bad request.
func indexingStatus(resp model.IndexingResponse) int {
	if resp.Result {
		return http.StatusOK
	}
	switch resp.Error {
	case indexing.ErrAlreadyStarted.Error(), indexing.ErrNotStarted.Error():
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func optionalInt(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, v)
	}
	return n, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}
