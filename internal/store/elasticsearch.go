// internal/store/elasticsearch.go
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	apperrors "university-matcher/internal/common/errors"
	"university-matcher/internal/common/logger"
	"university-matcher/internal/common/metrics"
	"university-matcher/internal/common/observability"
	"university-matcher/internal/models"
	"university-matcher/internal/search"
)

const backendElasticsearch = "elasticsearch"

// pitKeepAlive holds the point in time open between pages.
const pitKeepAlive = "1m"

// ElasticsearchStore renders requests to function_score queries and
// lets the cluster score them. Requests for every match page through a
// point in time with search_after.
type ElasticsearchStore struct {
	client   *elasticsearch.Client
	index    string
	pageSize int
	timeout  time.Duration
	logger   logger.Logger
}

func NewElasticsearchStore(client *elasticsearch.Client, index string, pageSize int, timeout time.Duration, log logger.Logger) *ElasticsearchStore {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &ElasticsearchStore{
		client:   client,
		index:    index,
		pageSize: pageSize,
		timeout:  timeout,
		logger:   log.WithFields(map[string]interface{}{"store": backendElasticsearch, "index": index}),
	}
}

type esSearchResponse struct {
	Took  int64  `json:"took"`
	PitID string `json:"pit_id"`
	Hits  struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []esHit `json:"hits"`
	} `json:"hits"`
}

type esHit struct {
	ID     string            `json:"_id"`
	Score  *float64          `json:"_score"`
	Source models.University `json:"_source"`
	Sort   []json.RawMessage `json:"sort"`
}

func (h esHit) toHit() Hit {
	u := h.Source
	u.ID = h.ID
	var score float64
	if h.Score != nil {
		score = *h.Score
	}
	return Hit{University: u, Score: score}
}

type esGetResponse struct {
	ID     string            `json:"_id"`
	Found  bool              `json:"found"`
	Source models.University `json:"_source"`
}

func (s *ElasticsearchStore) Search(ctx context.Context, req search.Request) (result *SearchResult, err error) {
	ctx, end := observability.StartSpan(ctx, "store.search")
	defer func() { end(err) }()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if req.Size == search.All {
		return s.searchAll(ctx, req)
	}

	parsed, err := s.search(ctx, []string{s.index}, req.Body(), req.Size)
	if err != nil {
		return nil, err
	}

	result = &SearchResult{
		Hits:  make([]Hit, 0, len(parsed.Hits.Hits)),
		Total: parsed.Hits.Total.Value,
	}
	for _, h := range parsed.Hits.Hits {
		result.Hits = append(result.Hits, h.toHit())
	}

	s.logger.Debug("search completed", map[string]interface{}{
		"hits":  len(result.Hits),
		"total": result.Total,
		"took":  parsed.Took,
	})
	return result, nil
}

// searchAll reads every matching document, pageSize hits at a time, in
// request order with _shard_doc as the tiebreaker.
func (s *ElasticsearchStore) searchAll(ctx context.Context, req search.Request) (*SearchResult, error) {
	pit, err := s.openPIT(ctx)
	if err != nil {
		return nil, err
	}
	defer s.closePIT(pit)

	sortSpec := []interface{}{}
	if req.SortByScore {
		sortSpec = append(sortSpec, map[string]interface{}{"_score": map[string]interface{}{"order": "desc"}})
	}
	sortSpec = append(sortSpec, map[string]interface{}{"_shard_doc": "asc"})

	result := &SearchResult{Hits: make([]Hit, 0)}
	var after []json.RawMessage
	for page := 0; ; page++ {
		body := req.Body()
		body["pit"] = map[string]interface{}{"id": pit, "keep_alive": pitKeepAlive}
		body["sort"] = sortSpec
		body["track_total_hits"] = page == 0
		if req.Scoring != nil {
			body["track_scores"] = true
		}
		if after != nil {
			body["search_after"] = after
		}

		parsed, err := s.search(ctx, nil, body, s.pageSize)
		if err != nil {
			return nil, err
		}
		if page == 0 {
			result.Total = parsed.Hits.Total.Value
		}
		if parsed.PitID != "" {
			pit = parsed.PitID
		}
		for _, h := range parsed.Hits.Hits {
			result.Hits = append(result.Hits, h.toHit())
		}

		n := len(parsed.Hits.Hits)
		if n < s.pageSize || len(parsed.Hits.Hits[n-1].Sort) == 0 {
			s.logger.Debug("search completed", map[string]interface{}{
				"hits":  len(result.Hits),
				"total": result.Total,
				"pages": page + 1,
			})
			return result, nil
		}
		after = parsed.Hits.Hits[n-1].Sort
	}
}

func (s *ElasticsearchStore) search(ctx context.Context, index []string, query map[string]interface{}, size int) (*esSearchResponse, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("encode search body: %w", err))
	}

	esReq := esapi.SearchRequest{
		Index: index,
		Body:  bytes.NewReader(body),
		Size:  &size,
	}

	start := time.Now()
	res, err := esReq.Do(ctx, s.client)
	metrics.StoreQueryDuration.WithLabelValues(backendElasticsearch, "search").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.StoreQueryErrors.WithLabelValues(backendElasticsearch, "search").Inc()
		return nil, s.transportError(ctx, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		metrics.StoreQueryErrors.WithLabelValues(backendElasticsearch, "search").Inc()
		return nil, s.responseError(res)
	}

	var parsed esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewSearchQueryFailedError("decode search response").WithCause(err)
	}
	return &parsed, nil
}

func (s *ElasticsearchStore) openPIT(ctx context.Context) (string, error) {
	res, err := esapi.OpenPointInTimeRequest{
		Index:     []string{s.index},
		KeepAlive: pitKeepAlive,
	}.Do(ctx, s.client)
	if err != nil {
		metrics.StoreQueryErrors.WithLabelValues(backendElasticsearch, "open_pit").Inc()
		return "", s.transportError(ctx, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		metrics.StoreQueryErrors.WithLabelValues(backendElasticsearch, "open_pit").Inc()
		return "", s.responseError(res)
	}

	var parsed struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil || parsed.ID == "" {
		return "", apperrors.NewSearchQueryFailedError("decode point in time response").WithCause(err)
	}
	return parsed.ID, nil
}

// closePIT releases the point in time. The caller's context may already
// be done, so it runs on its own deadline.
func (s *ElasticsearchStore) closePIT(pit string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	body, _ := json.Marshal(map[string]string{"id": pit})
	res, err := esapi.ClosePointInTimeRequest{Body: bytes.NewReader(body)}.Do(ctx, s.client)
	if err != nil {
		s.logger.Warn("close point in time failed", map[string]interface{}{"error": err.Error()})
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		s.logger.Warn("close point in time rejected", map[string]interface{}{"status": res.StatusCode})
	}
}

func (s *ElasticsearchStore) Get(ctx context.Context, id string) (u *models.University, err error) {
	ctx, end := observability.StartSpan(ctx, "store.get")
	defer func() { end(err) }()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	res, err := esapi.GetRequest{Index: s.index, DocumentID: id}.Do(ctx, s.client)
	metrics.StoreQueryDuration.WithLabelValues(backendElasticsearch, "get").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.StoreQueryErrors.WithLabelValues(backendElasticsearch, "get").Inc()
		return nil, s.transportError(ctx, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, apperrors.NewSearchQueryFailedError("read get response").WithCause(err)
	}

	if res.StatusCode == http.StatusNotFound {
		var missing esGetResponse
		if json.Unmarshal(raw, &missing) == nil && !missing.Found && missing.ID != "" {
			return nil, ErrNotFound
		}
		return nil, apperrors.NewIndexNotFoundError(s.index)
	}
	if res.IsError() {
		metrics.StoreQueryErrors.WithLabelValues(backendElasticsearch, "get").Inc()
		return nil, apperrors.NewSearchQueryFailedError(fmt.Sprintf("%s: %s", res.Status(), raw))
	}

	var doc esGetResponse
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, apperrors.NewSearchQueryFailedError("decode get response").WithCause(err)
	}
	if !doc.Found {
		return nil, ErrNotFound
	}
	doc.Source.ID = doc.ID
	return &doc.Source, nil
}

func (s *ElasticsearchStore) Ping(ctx context.Context) error {
	res, err := s.client.Ping(s.client.Ping.WithContext(ctx))
	if err != nil {
		return apperrors.NewElasticsearchConnectionError(err.Error())
	}
	defer res.Body.Close()
	if res.IsError() {
		return apperrors.NewElasticsearchConnectionError(res.Status())
	}
	return nil
}

func (s *ElasticsearchStore) transportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewSearchTimeoutError(fmt.Sprintf("no response within %s", s.timeout)).WithCause(err)
	}
	return apperrors.NewElasticsearchConnectionError(err.Error()).WithCause(err)
}

func (s *ElasticsearchStore) responseError(res *esapi.Response) error {
	if res.StatusCode == http.StatusNotFound {
		return apperrors.NewIndexNotFoundError(s.index)
	}
	raw, _ := io.ReadAll(res.Body)
	s.logger.Warn("search rejected", map[string]interface{}{
		"status": res.StatusCode,
		"body":   string(raw),
	})
	return apperrors.NewSearchQueryFailedError(fmt.Sprintf("%s: %s", res.Status(), raw))
}
