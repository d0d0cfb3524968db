// Package api serves the ranking and advisor operations over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"university-matcher/internal/advisor"
	"university-matcher/internal/common/logger"
	"university-matcher/internal/models"
)

// RankingService is the ranking surface the API exposes.
type RankingService interface {
	RankByProfile(ctx context.Context, p *models.UserProfile) (*models.RankedResultSet, error)
	RankByFilters(ctx context.Context, f models.Filters, majors []models.CareerTag) (*models.RankedResultSet, error)
	FindSimilar(ctx context.Context, id string, size int) (*models.RankedResultSet, error)
	MatchWithScores(ctx context.Context, p *models.UserProfile) (*models.RankedResultSet, error)
	SearchText(ctx context.Context, text string) (*models.RankedResultSet, error)
	SearchLocation(ctx context.Context, location string) (*models.RankedResultSet, error)
	Get(ctx context.Context, id string) (*models.University, error)
	Compare(ctx context.Context, ids []string) ([]models.University, error)
	Ping(ctx context.Context) error
}

// AdviceService is the language model surface the API exposes.
type AdviceService interface {
	MatchCampusCulture(ctx context.Context, p advisor.CampusCulturePreferences) (string, error)
	Advise(ctx context.Context, feature advisor.Feature, input json.RawMessage) (string, error)
}

type Config struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type Server struct {
	config  Config
	ranking RankingService
	advisor AdviceService
	logger  logger.Logger
	http    *http.Server
}

func NewServer(config Config, ranking RankingService, adv AdviceService, log logger.Logger) *Server {
	s := &Server{
		config:  config,
		ranking: ranking,
		advisor: adv,
		logger:  log.WithFields(map[string]interface{}{"component": "api"}),
	}
	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      s.Handler(),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
	return s
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /knn-recommendations", s.handleKNNRecommendations)
	mux.HandleFunc("POST /api/profile-recommendations", s.handleProfileRecommendations)
	mux.HandleFunc("POST /api/filtered-recommendations", s.handleFilteredRecommendations)
	mux.HandleFunc("POST /api/advanced-match", s.handleAdvancedMatch)

	mux.HandleFunc("GET /api/university/{id}", s.handleUniversity)
	mux.HandleFunc("GET /api/university/{id}/similar", s.handleSimilar)
	mux.HandleFunc("POST /api/universities", s.handleTextSearch)
	mux.HandleFunc("GET /api/universities/search/location", s.handleLocationSearch)
	mux.HandleFunc("POST /api/universities/compare", s.handleCompare)

	mux.HandleFunc("POST /api/campus-culture-match", s.handleCampusCultureMatch)
	mux.HandleFunc("POST /api/advisor/{feature}", s.handleAdvisor)

	return chain(mux,
		RequestID,
		Recovery(s.logger),
		AccessLog(s.logger),
		Tracing,
		Metrics,
	)
}

// Start blocks serving until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("api listening", map[string]interface{}{"addr": s.http.Addr})
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.config.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()
	}
	return s.http.Shutdown(ctx)
}
