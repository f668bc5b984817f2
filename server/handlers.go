package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"videoSeek/core"
)

// Routes returns the HTTP mux for the service.
func (s *Service) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/store_video_data", s.storeVideoDataHandler)
	mux.HandleFunc("/query_timestamp", s.queryTimestampHandler)
	mux.HandleFunc("/health", s.healthHandler)
	return mux
}

func (s *Service) storeVideoDataHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		core.WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	var req core.StoreVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.YoutubeURL) == "" {
		core.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "youtube_url required"})
		return
	}

	outcome, err := s.Ingest(r.Context(), req.YoutubeURL)
	switch outcome {
	case IngestSuccess:
		core.WriteJSON(w, http.StatusOK, core.StoreVideoResponse{Message: "Success"})
	case IngestAlreadyExists:
		core.WriteJSON(w, http.StatusOK, core.StoreVideoResponse{Message: "Already exists"})
	case IngestAlreadyInProcessing:
		core.WriteJSON(w, http.StatusConflict, core.StoreVideoResponse{Message: "Already in processing"})
	case IngestFetchFailed:
		core.WriteJSON(w, http.StatusOK, core.StoreVideoResponse{Message: "Fail"})
	default:
		status := http.StatusBadGateway
		if errors.Is(err, core.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		core.WriteJSON(w, status, core.StoreVideoResponse{Message: "Fail", Error: err.Error()})
	}
}

func (s *Service) queryTimestampHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		core.WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	var req core.QueryTimestampRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.YoutubeURL) == "" || strings.TrimSpace(req.QueryText) == "" {
		core.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "youtube_url and query_text required"})
		return
	}

	ranked, err := s.Query(r.Context(), req.YoutubeURL, req.QueryText)
	if err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, core.ErrInvalidInput):
			status = http.StatusBadRequest
		case errors.Is(err, core.ErrNotFound):
			status = http.StatusNotFound
		}
		core.WriteJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	core.WriteJSON(w, http.StatusOK, ranked)
}

func (s *Service) healthHandler(w http.ResponseWriter, r *http.Request) {
	core.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
