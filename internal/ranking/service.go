// Package ranking turns student preferences into ranked, name-unique
// lists of universities.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	apperrors "university-matcher/internal/common/errors"
	"university-matcher/internal/common/logger"
	"university-matcher/internal/common/observability"
	"university-matcher/internal/models"
	"university-matcher/internal/scoring"
	"university-matcher/internal/search"
	"university-matcher/internal/store"
)

const (
	MinCompare = 2
	MaxCompare = 4
)

// Options bound result and fetch sizes.
type Options struct {
	MaxResults      int
	SimilarSize     int
	FetchMultiplier int
	MaxFetchSize    int
}

var DefaultOptions = Options{
	MaxResults:      15,
	SimilarSize:     5,
	FetchMultiplier: 3,
	MaxFetchSize:    50,
}

// Cache stores finished result sets. Implementations swallow their own
// failures.
type Cache interface {
	Key(operation string, input interface{}) (string, error)
	Get(ctx context.Context, key string, dst interface{}) bool
	Set(ctx context.Context, key string, value interface{})
}

type Service struct {
	store  store.Store
	scorer *scoring.CompositeScorer
	opts   Options
	cache  Cache
	obs    *observability.Observability
	logger logger.Logger
}

type Option func(*Service)

func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

func WithObservability(o *observability.Observability) Option {
	return func(s *Service) { s.obs = o }
}

func NewService(st store.Store, scorer *scoring.CompositeScorer, opts Options, log logger.Logger, options ...Option) *Service {
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultOptions.MaxResults
	}
	if opts.SimilarSize <= 0 {
		opts.SimilarSize = DefaultOptions.SimilarSize
	}
	if opts.FetchMultiplier <= 0 {
		opts.FetchMultiplier = DefaultOptions.FetchMultiplier
	}
	if opts.MaxFetchSize <= 0 {
		opts.MaxFetchSize = DefaultOptions.MaxFetchSize
	}

	s := &Service{
		store:  st,
		scorer: scorer,
		opts:   opts,
		logger: log.WithFields(map[string]interface{}{"component": "ranking"}),
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// fetchSize over-fetches to absorb duplicate names, within MaxFetchSize.
func (s *Service) fetchSize() int {
	n := s.opts.MaxResults * s.opts.FetchMultiplier
	if n > s.opts.MaxFetchSize {
		n = s.opts.MaxFetchSize
	}
	if n < s.opts.MaxResults {
		n = s.opts.MaxResults
	}
	return n
}

// RankByProfile ranks by SAT fit and interest boosts, scored by the store.
func (s *Service) RankByProfile(ctx context.Context, p *models.UserProfile) (*models.RankedResultSet, error) {
	return s.cached(ctx, "profile", profileKey(p), func(ctx context.Context) (*models.RankedResultSet, error) {
		return s.searchRanked(ctx, BuildProfileQuery(p, s.fetchSize()), s.opts.MaxResults)
	})
}

// RankByFilters lists universities passing every given filter, boosted
// by program strength in the major interests.
func (s *Service) RankByFilters(ctx context.Context, f models.Filters, majors []models.CareerTag) (*models.RankedResultSet, error) {
	input := struct {
		Filters models.Filters
		Majors  []models.CareerTag
	}{f, majors}

	return s.cached(ctx, "filters", input, func(ctx context.Context) (*models.RankedResultSet, error) {
		return s.searchRanked(ctx, BuildFilteredQuery(f, majors, s.fetchSize()), s.opts.MaxResults)
	})
}

// FindSimilar returns up to size universities resembling the reference,
// which is excluded. A non-positive size uses the configured default.
func (s *Service) FindSimilar(ctx context.Context, id string, size int) (*models.RankedResultSet, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NewInvalidRequestError("university id is required")
	}
	if size <= 0 {
		size = s.opts.SimilarSize
	}
	if size > s.opts.MaxResults {
		size = s.opts.MaxResults
	}

	input := struct {
		ID   string
		Size int
	}{id, size}

	return s.cached(ctx, "similar", input, func(ctx context.Context) (*models.RankedResultSet, error) {
		ref, err := s.store.Get(ctx, id)
		if err != nil {
			return nil, storeError(err, id)
		}

		req, ok := BuildSimilarQuery(ref, size*s.opts.FetchMultiplier)
		if !ok {
			s.logger.Debug("reference has no comparable attributes", map[string]interface{}{"universityId": id})
			return emptyResult(), nil
		}
		return s.searchRanked(ctx, req, size)
	})
}

// MatchWithScores scores every university passing the filters and orders
// them by the composite match score, highest first. Ties keep store order.
func (s *Service) MatchWithScores(ctx context.Context, p *models.UserProfile) (*models.RankedResultSet, error) {
	return s.cached(ctx, "match", profileKey(p), func(ctx context.Context) (*models.RankedResultSet, error) {
		res, err := s.store.Search(ctx, BuildCandidateQuery(p.Filters))
		if err != nil {
			return nil, storeError(err, "")
		}

		type scored struct {
			hit     store.Hit
			factors models.MatchFactors
		}
		candidates := make([]scored, 0, len(res.Hits))
		for _, h := range res.Hits {
			score, factors := s.scorer.Breakdown(p, &h.University)
			h.Score = float64(score)
			candidates = append(candidates, scored{hit: h, factors: factors})
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].hit.Score > candidates[j].hit.Score
		})

		hits := make([]store.Hit, len(candidates))
		factors := make(map[string]models.MatchFactors, len(candidates))
		for i, c := range candidates {
			hits[i] = c.hit
			if _, ok := factors[dedupeKey(&c.hit.University)]; !ok {
				factors[dedupeKey(&c.hit.University)] = c.factors
			}
		}

		results := collect(hits, s.opts.MaxResults)
		for i := range results {
			f := factors[dedupeKey(&results[i].University)]
			results[i].MatchFactors = &f
		}
		return &models.RankedResultSet{Results: results, Total: res.Total}, nil
	})
}

// SearchText ranks by store relevance of text against name and location.
func (s *Service) SearchText(ctx context.Context, text string) (*models.RankedResultSet, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewInvalidRequestError("search query is required")
	}
	return s.cached(ctx, "text", text, func(ctx context.Context) (*models.RankedResultSet, error) {
		return s.searchRanked(ctx, BuildTextQuery(text, s.fetchSize()), s.opts.MaxResults)
	})
}

// SearchLocation ranks by store relevance of the location field.
func (s *Service) SearchLocation(ctx context.Context, location string) (*models.RankedResultSet, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, apperrors.NewInvalidRequestError("location query is required")
	}
	return s.cached(ctx, "location", location, func(ctx context.Context) (*models.RankedResultSet, error) {
		return s.searchRanked(ctx, BuildLocationQuery(location, s.fetchSize()), s.opts.MaxResults)
	})
}

func (s *Service) Get(ctx context.Context, id string) (*models.University, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NewInvalidRequestError("university id is required")
	}
	u, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, storeError(err, id)
	}
	return u, nil
}

// Compare fetches the universities concurrently and returns them in
// request order. Any missing id fails the whole comparison.
func (s *Service) Compare(ctx context.Context, ids []string) ([]models.University, error) {
	if len(ids) < MinCompare || len(ids) > MaxCompare {
		return nil, apperrors.NewInvalidRequestError(
			fmt.Sprintf("compare takes %d to %d university ids, got %d", MinCompare, MaxCompare, len(ids)))
	}

	out := make([]models.University, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			u, err := s.Get(gctx, id)
			if err != nil {
				return err
			}
			out[i] = *u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Ping checks the backing store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) searchRanked(ctx context.Context, req search.Request, max int) (*models.RankedResultSet, error) {
	res, err := s.store.Search(ctx, req)
	if err != nil {
		return nil, storeError(err, "")
	}
	return &models.RankedResultSet{Results: collect(res.Hits, max), Total: res.Total}, nil
}

// cached wraps an operation with the result cache, a span and metrics.
func (s *Service) cached(ctx context.Context, op string, input interface{}, fn func(context.Context) (*models.RankedResultSet, error)) (result *models.RankedResultSet, err error) {
	start := time.Now()
	ctx, end := observability.StartSpan(ctx, "ranking."+op, attribute.String("ranking.operation", op))
	defer func() {
		end(err)
		status, n := "success", 0
		if err != nil {
			status = "error"
		} else {
			n = len(result.Results)
		}
		s.obs.RecordRanking(ctx, op, status, time.Since(start), n)
	}()

	var key string
	if s.cache != nil {
		if k, kerr := s.cache.Key(op, input); kerr == nil {
			key = k
			var hit models.RankedResultSet
			if s.cache.Get(ctx, key, &hit) {
				return &hit, nil
			}
		}
	}

	result, err = fn(ctx)
	if err != nil {
		s.logger.Error("ranking failed", map[string]interface{}{"operation": op, "error": err})
		return nil, err
	}
	if key != "" {
		s.cache.Set(ctx, key, result)
	}
	return result, nil
}

func emptyResult() *models.RankedResultSet {
	return &models.RankedResultSet{Results: []models.ScoredCandidate{}}
}

// profileKey is the cache identity of a profile; tags are keyed by name
// so reordering the enumeration cannot serve stale entries.
func profileKey(p *models.UserProfile) interface{} {
	var career, sports string
	if p.Career != nil {
		career = p.Career.String()
	}
	if p.Sports != nil {
		sports = p.Sports.String()
	}
	return struct {
		SATVerbal *int
		SATMath   *int
		MaxBudget *float64
		Career    string
		Sports    string
		Weights   models.InterestWeights
		Filters   models.Filters
	}{p.SATVerbal, p.SATMath, p.MaxBudget, career, sports, p.Weights, p.Filters}
}

// storeError maps store failures onto API errors. Typed errors from the
// store pass through.
func storeError(err error, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.NewUniversityNotFoundError(id)
	}
	if _, ok := apperrors.AsStandardError(err); ok {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewSearchTimeoutError(err.Error()).WithCause(err)
	}
	return apperrors.NewSearchQueryFailedError(err.Error()).WithCause(err)
}
