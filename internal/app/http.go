package app

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"launchpad/api/internal/engine"
	"launchpad/api/internal/search"
	"launchpad/api/internal/store"
)

type HTTPServer struct {
	service    *Service
	corsOrigin string
}

func NewHTTPServer(service *Service, corsOrigin string) *HTTPServer {
	return &HTTPServer{service: service, corsOrigin: corsOrigin}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeJSON(w, http.StatusNoContent, map[string]any{})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := "ready"
		statusCode := http.StatusOK
		checks := map[string]any{
			"database": map[string]any{"status": "ok"},
		}

		if err := s.service.Ping(ctx); err != nil {
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
			checks["database"] = map[string]any{
				"status": "error",
				"error":  err.Error(),
			}
		}

		writeJSON(w, statusCode, map[string]any{
			"ok":     status == "ready",
			"status": status,
			"checks": checks,
		})
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/v1/fragments" {
		var body CreateFragmentInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		payload, err := s.service.CreateFragment(r.Context(), body)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusCreated, payload)
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/v1/fragments" {
		status := strings.TrimSpace(r.URL.Query().Get("status"))
		limit, ok := queryInt(w, r, "limit")
		if !ok {
			return
		}
		payload, err := s.service.ListFragments(r.Context(), status, limit)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, payload)
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/v1/ideas" {
		var body CreateIdeaInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		payload, err := s.service.CreateIdea(r.Context(), body)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusCreated, payload)
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/v1/ideas" {
		limit, ok := queryInt(w, r, "limit")
		if !ok {
			return
		}
		filter := store.IdeaFilter{
			Track:    strings.TrimSpace(r.URL.Query().Get("track")),
			Status:   strings.TrimSpace(r.URL.Query().Get("status")),
			Category: strings.TrimSpace(r.URL.Query().Get("category")),
			SortBy:   strings.TrimSpace(r.URL.Query().Get("sortBy")),
			Limit:    limit,
		}
		searchText := strings.TrimSpace(r.URL.Query().Get("search"))
		payload, err := s.service.ListIdeas(r.Context(), filter, searchText)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, payload)
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/v1/search" {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		filterType := strings.TrimSpace(r.URL.Query().Get("type"))
		hospital := strings.TrimSpace(r.URL.Query().Get("hospital"))
		limit, ok := queryInt(w, r, "limit")
		if !ok {
			return
		}
		offset, ok := queryInt(w, r, "offset")
		if !ok {
			return
		}
		response := s.service.SearchAll(search.Query{
			Text:           q,
			FilterType:     search.ResultType(filterType),
			FilterHospital: hospital,
			Limit:          limit,
			Offset:         offset,
		})
		writeJSON(w, http.StatusOK, response)
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/v1/analytics/dashboard" {
		payload, err := s.service.Dashboard(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "Could not load dashboard", nil)
			return
		}
		writeJSON(w, http.StatusOK, payload)
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/v1/leaderboard" {
		limit, ok := queryInt(w, r, "limit")
		if !ok {
			return
		}
		payload, err := s.service.Leaderboard(r.Context(), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "Could not load leaderboard", nil)
			return
		}
		writeJSON(w, http.StatusOK, payload)
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/v1/rubric/dimensions" {
		writeJSON(w, http.StatusOK, rubricDimensionsPayload())
		return
	}

	parts := splitPath(r.URL.Path)

	if len(parts) >= 3 && parts[0] == "api" && parts[1] == "v1" {
		switch parts[2] {
		case "fragments":
			if s.routeFragments(w, r, parts[3:]) {
				return
			}
		case "ideas":
			if s.routeIdeas(w, r, parts[3:]) {
				return
			}
		case "rubric":
			if s.routeRubric(w, r, parts[3:]) {
				return
			}
		}
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

// routeFragments handles /api/v1/fragments/{id}[/...]. parts holds the
// segments after "fragments".
func (s *HTTPServer) routeFragments(w http.ResponseWriter, r *http.Request, parts []string) bool {
	if len(parts) == 0 {
		return false
	}
	fragmentID := parts[0]

	if len(parts) == 1 && r.Method == http.MethodGet {
		payload, err := s.service.GetFragment(r.Context(), fragmentID)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return true
		}
		writeJSON(w, http.StatusOK, payload)
		return true
	}

	if len(parts) == 2 && parts[1] == "comments" && r.Method == http.MethodPost {
		var body CommentInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return true
		}
		payload, err := s.service.AddComment(r.Context(), fragmentID, body)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return true
		}
		writeJSON(w, http.StatusCreated, payload)
		return true
	}

	if len(parts) == 2 && parts[1] == "upvote" && r.Method == http.MethodPost {
		payload, err := s.service.UpvoteFragment(r.Context(), fragmentID)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return true
		}
		writeJSON(w, http.StatusOK, payload)
		return true
	}

	if len(parts) == 4 && parts[1] == "comments" && parts[3] == "upvote" && r.Method == http.MethodPost {
		payload, err := s.service.UpvoteComment(r.Context(), fragmentID, parts[2])
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return true
		}
		writeJSON(w, http.StatusOK, payload)
		return true
	}

	if len(parts) == 2 && parts[1] == "promote" && r.Method == http.MethodPost {
		payload, err := s.service.PromoteFragment(r.Context(), fragmentID)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return true
		}
		writeJSON(w, http.StatusOK, payload)
		return true
	}

	return false
}

func (s *HTTPServer) routeIdeas(w http.ResponseWriter, r *http.Request, parts []string) bool {
	if len(parts) == 0 {
		return false
	}
	ideaID := parts[0]

	if len(parts) == 1 && r.Method == http.MethodGet {
		payload, err := s.service.GetIdea(r.Context(), ideaID)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return true
		}
		writeJSON(w, http.StatusOK, payload)
		return true
	}

	if len(parts) == 2 && parts[1] == "upvote" && r.Method == http.MethodPost {
		payload, err := s.service.UpvoteIdea(r.Context(), ideaID)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return true
		}
		writeJSON(w, http.StatusOK, payload)
		return true
	}

	if len(parts) == 2 && parts[1] == "comments" && r.Method == http.MethodPost {
		var body CommentInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return true
		}
		payload, err := s.service.AddIdeaComment(r.Context(), ideaID, body)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return true
		}
		writeJSON(w, http.StatusCreated, payload)
		return true
	}

	return false
}

func (s *HTTPServer) routeRubric(w http.ResponseWriter, r *http.Request, parts []string) bool {
	if len(parts) == 0 {
		return false
	}
	ideaID := parts[0]

	if len(parts) == 1 && r.Method == http.MethodGet {
		payload, err := s.service.GetRubric(r.Context(), ideaID)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return true
		}
		writeJSON(w, http.StatusOK, payload)
		return true
	}

	if len(parts) == 2 && parts[1] == "save" && r.Method == http.MethodPost {
		var body RubricUpdateInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return true
		}
		payload, err := s.service.UpdateRubric(r.Context(), ideaID, body)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return true
		}
		writeJSON(w, http.StatusOK, payload)
		return true
	}

	if len(parts) == 2 && parts[1] == "ai-recommend" && r.Method == http.MethodPost {
		payload, err := s.service.SuggestRubric(r.Context(), ideaID)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return true
		}
		writeJSON(w, http.StatusOK, payload)
		return true
	}

	return false
}

func rubricDimensionsPayload() map[string]any {
	return map[string]any{
		"dimensions": []map[string]any{
			{"key": "emotionalNeeds", "label": "Emotional Needs", "axis": "value", "weight": engine.WeightEmotionalNeeds},
			{"key": "revenueImpact", "label": "Revenue Impact", "axis": "value", "weight": engine.WeightRevenueImpact},
			{"key": "drasticChange", "label": "Drastic Change", "axis": "effort", "weight": engine.WeightDrasticChange},
			{"key": "pilotComplexity", "label": "Pilot Complexity", "axis": "effort", "weight": engine.WeightPilotComplexity},
			{"key": "peopleBuild", "label": "People to Build", "axis": "effort", "weight": engine.WeightPeopleBuild},
			{"key": "technologyCapex", "label": "Technology Capex", "axis": "effort", "weight": engine.WeightTechnologyCapex},
		},
		"scale": map[string]any{"min": 1, "max": 10},
		"thresholds": map[string]any{
			"highValue":  engine.HighValueThreshold,
			"highEffort": engine.HighEffortThreshold,
		},
		"quadrants": []string{
			engine.QuadrantQuickWins,
			engine.QuadrantBigBets,
			engine.QuadrantLowPriority,
			engine.QuadrantParkingLot,
		},
	}
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = randomRequestID()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		log.Printf(`{"request_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`,
			requestID,
			r.Method,
			r.URL.Path,
			writer.status,
			time.Since(started).Milliseconds(),
		)
	})
}

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func randomRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
	header.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
	header.Set("Cache-Control", "no-store")
	header.Set("Content-Type", "application/json")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	response := map[string]any{
		"code":  code,
		"error": message,
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, status, response)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, http.ErrBodyReadAfterClose) {
			return nil
		}
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, true
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", name+" must be an integer", nil)
		return 0, false
	}
	return parsed, true
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}
	if errors.Is(err, sql.ErrNoRows) {
		return http.StatusNotFound, "NOT_FOUND", "Not found", nil
	}
	return http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil
}
