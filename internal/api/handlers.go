package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"university-matcher/internal/advisor"
	apperrors "university-matcher/internal/common/errors"
	"university-matcher/internal/common/validation"
	"university-matcher/internal/models"
)

const maxBodyBytes = 1 << 20

// decodeBody validates the request body against schema and decodes it
// into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, schema string, dst interface{}) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return apperrors.NewInvalidRequestError("read body: " + err.Error())
	}
	if len(body) == 0 {
		body = []byte("{}")
	}
	if err := validation.Validate(schema, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperrors.NewInvalidRequestError(err.Error()).WithCause(err)
	}
	return nil
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := writeError(w, err)
	s.logger.Warn("request error", map[string]interface{}{
		"path":      r.URL.Path,
		"code":      string(stdErr.Code),
		"details":   stdErr.Details,
		"requestId": RequestIDFromContext(r.Context()),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.ranking.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleKNNRecommendations ranks a profile given as query parameters.
func (s *Server) handleKNNRecommendations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := models.ProfileRequest{
		Career: q.Get("Career"),
		Sports: q.Get("Sports"),
	}

	var err error
	if req.SATVerbal, err = queryInt(q.Get("SATV"), "SATV"); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.SATMath, err = queryInt(q.Get("SATM"), "SATM"); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.CareerWeight, err = queryFloat(q.Get("careerWeight"), "careerWeight"); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.SportsWeight, err = queryFloat(q.Get("sportsWeight"), "sportsWeight"); err != nil {
		s.fail(w, r, err)
		return
	}

	result, err := s.ranking.RankByProfile(r.Context(), req.Profile())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleProfileRecommendations(w http.ResponseWriter, r *http.Request) {
	var req models.ProfileRequest
	if err := decodeBody(w, r, validation.ProfileRequest, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	result, err := s.ranking.RankByProfile(r.Context(), req.Profile())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleFilteredRecommendations(w http.ResponseWriter, r *http.Request) {
	var req models.FilterRequest
	if err := decodeBody(w, r, validation.FilterRequest, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	result, err := s.ranking.RankByFilters(r.Context(), req.Filters, req.Majors())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleAdvancedMatch accepts the nested profile form and the flat form
// posted by the web client.
func (s *Server) handleAdvancedMatch(w http.ResponseWriter, r *http.Request) {
	var req models.MatchRequest
	if err := decodeBody(w, r, validation.MatchRequest, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	profile, err := req.Profile()
	if err != nil {
		s.fail(w, r, apperrors.NewInvalidRequestError(err.Error()).WithCause(err))
		return
	}
	result, err := s.ranking.MatchWithScores(r.Context(), profile)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleUniversity(w http.ResponseWriter, r *http.Request) {
	u, err := s.ranking.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	size, err := queryInt(r.URL.Query().Get("size"), "size")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	n := 0
	if size != nil {
		n = *size
	}

	result, err := s.ranking.FindSimilar(r.Context(), r.PathValue("id"), n)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleTextSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := decodeBody(w, r, validation.TextSearch, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	result, err := s.ranking.SearchText(r.Context(), req.Query)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleLocationSearch(w http.ResponseWriter, r *http.Request) {
	result, err := s.ranking.SearchLocation(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := decodeBody(w, r, validation.CompareRequest, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	universities, err := s.ranking.Compare(r.Context(), req.IDs)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"universities": universities})
}

func (s *Server) handleCampusCultureMatch(w http.ResponseWriter, r *http.Request) {
	var prefs advisor.CampusCulturePreferences
	if err := decodeBody(w, r, validation.CampusCulture, &prefs); err != nil {
		s.fail(w, r, err)
		return
	}
	content, err := s.advisor.MatchCampusCulture(r.Context(), prefs)
	if err != nil {
		s.adviceFailed(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"matches": content})
}

func (s *Server) handleAdvisor(w http.ResponseWriter, r *http.Request) {
	feature, ok := advisor.ParseFeature(r.PathValue("feature"))
	if !ok {
		s.fail(w, r, apperrors.NewInvalidRequestError("unknown advisor feature: "+r.PathValue("feature")))
		return
	}

	var req struct {
		Input json.RawMessage `json:"input"`
	}
	if err := decodeBody(w, r, validation.AdvisorRequest, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	content, err := s.advisor.Advise(r.Context(), feature, req.Input)
	if err != nil {
		s.adviceFailed(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"feature": string(feature),
		"content": content,
	})
}

func (s *Server) adviceFailed(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("advisor request failed", map[string]interface{}{
		"path":      r.URL.Path,
		"error":     err.Error(),
		"requestId": RequestIDFromContext(r.Context()),
	})
	writeAdvisorError(w, err)
}

// queryInt parses an optional integer parameter; empty means absent.
func queryInt(raw, name string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperrors.NewInvalidRequestError(fmt.Sprintf("%s must be an integer", name))
	}
	return &v, nil
}

func queryFloat(raw, name string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperrors.NewInvalidRequestError(fmt.Sprintf("%s must be a number", name))
	}
	return &v, nil
}
