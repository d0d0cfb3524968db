//go:build e2e

// Package e2e runs the ranking service against live Elasticsearch,
// PostgreSQL and Redis instances (see configs/config.yaml). Run with
// `go test -tags e2e ./test/e2e/...`.
package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"university-matcher/internal/cache"
	"university-matcher/internal/common/config"
	"university-matcher/internal/common/database"
	apperrors "university-matcher/internal/common/errors"
	"university-matcher/internal/common/logger"
	"university-matcher/internal/models"
	"university-matcher/internal/ranking"
	"university-matcher/internal/scoring"
	"university-matcher/internal/store"
)

const e2eCollection = "universities_e2e"

var seed = []string{
	`{"id":"e2e-mit","name":"Massachusetts Institute of Technology","location":"Cambridge, MA","public":false,"rankNumber":2,"avg_annual_cost":57000,"graduation_rate":0.95,"school_size":11500,"urbanicity":"City","SATMAT25":780,"SATMAT75":800,"SATVR25":730,"SATVR75":780,"computerScienceRank":1,"engineeringRank":1}`,
	`{"id":"e2e-mit-dup","name":"massachusetts institute of technology ","location":"Cambridge, MA","public":false,"rankNumber":2,"avg_annual_cost":57000,"graduation_rate":0.95,"school_size":11500,"urbanicity":"City","SATMAT25":780,"SATMAT75":800,"SATVR25":730,"SATVR75":780}`,
	`{"id":"e2e-gt","name":"Georgia Institute of Technology","location":"Atlanta, GA","public":true,"rankNumber":33,"avg_annual_cost":28000,"graduation_rate":0.9,"school_size":18000,"urbanicity":"City","SATMAT25":690,"SATMAT75":790,"SATVR25":640,"SATVR75":730,"computerScienceRank":6,"engineeringRank":4}`,
	`{"id":"e2e-uga","name":"University of Georgia","location":"Athens, GA","public":true,"rankNumber":47,"avg_annual_cost":24000,"graduation_rate":0.87,"school_size":30000,"urbanicity":"Suburb","SATMAT25":580,"SATMAT75":680,"SATVR25":600,"SATVR75":680,"businessRank":15}`,
	`{"id":"e2e-reed","name":"Reed College","location":"Portland, OR","public":false,"rankNumber":72,"avg_annual_cost":60000,"graduation_rate":0.8,"school_size":1400,"urbanicity":"City","SATMAT25":640,"SATMAT75":750,"SATVR25":670,"SATVR75":750}`,
}

func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	if os.Getenv("E2E") == "" {
		t.Skip("set E2E=1 with live backends to run")
	}
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func seedElasticsearch(t *testing.T, cfg *config.Config) *database.ElasticsearchClient {
	t.Helper()
	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	require.NoError(t, err)
	require.NoError(t, es.Ping(context.Background()))

	for _, doc := range seed {
		var u models.University
		require.NoError(t, json.Unmarshal([]byte(doc), &u))

		res, err := esapi.IndexRequest{
			Index:      e2eCollection,
			DocumentID: u.ID,
			Body:       strings.NewReader(doc),
			Refresh:    "true",
		}.Do(context.Background(), es.Client)
		require.NoError(t, err)
		require.False(t, res.IsError(), res.String())
		res.Body.Close()
	}
	t.Cleanup(func() {
		res, err := esapi.IndicesDeleteRequest{Index: []string{e2eCollection}}.Do(context.Background(), es.Client)
		if err == nil {
			res.Body.Close()
		}
	})
	return es
}

func seedPostgres(t *testing.T, cfg *config.Config) *database.PostgresClient {
	t.Helper()
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	require.NoError(t, pg.Ping(context.Background()))

	_, err = pg.DB.Exec(fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (id TEXT PRIMARY KEY, document JSONB NOT NULL)`, e2eCollection))
	require.NoError(t, err)
	for _, doc := range seed {
		var u models.University
		require.NoError(t, json.Unmarshal([]byte(doc), &u))
		_, err := pg.DB.Exec(
			fmt.Sprintf(`INSERT INTO %s (id, document) VALUES ($1, $2) ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document`, e2eCollection),
			u.ID, doc)
		require.NoError(t, err)
	}
	t.Cleanup(func() {
		_, _ = pg.DB.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %s`, e2eCollection))
		pg.Close()
	})
	return pg
}

func stores(t *testing.T, cfg *config.Config) map[string]store.Store {
	log := logger.NewTestLogger(t)
	es := seedElasticsearch(t, cfg)
	pg := seedPostgres(t, cfg)

	pgStore, err := store.NewPostgresStore(pg.DB, e2eCollection, 2, 5*time.Second, log)
	require.NoError(t, err)

	return map[string]store.Store{
		config.BackendElasticsearch: store.NewElasticsearchStore(es.Client, e2eCollection, 2, 5*time.Second, log),
		config.BackendPostgres:      pgStore,
	}
}

func TestRankingAgainstLiveStores(t *testing.T) {
	cfg := loadConfig(t)

	for backend, st := range stores(t, cfg) {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			svc := ranking.NewService(st, scoring.NewCompositeScorer(scoring.DefaultWeights), ranking.DefaultOptions, logger.NewTestLogger(t))

			t.Run("profile ranking dedupes names", func(t *testing.T) {
				verbal, math := 760, 790
				career := models.CareerComputerSci
				res, err := svc.RankByProfile(ctx, &models.UserProfile{
					SATVerbal: &verbal, SATMath: &math, Career: &career,
					Weights: models.NewInterestWeights(nil, nil),
				})
				require.NoError(t, err)
				require.NotEmpty(t, res.Results)
				assert.Equal(t, "e2e-mit", res.Results[0].ID)

				names := map[string]bool{}
				for _, c := range res.Results {
					key := c.NameKey()
					assert.False(t, names[key], "duplicate %s", key)
					names[key] = true
				}
			})

			t.Run("filters", func(t *testing.T) {
				public := true
				res, err := svc.RankByFilters(ctx, models.Filters{IsPublic: &public}, nil)
				require.NoError(t, err)
				ids := make([]string, 0, len(res.Results))
				for _, c := range res.Results {
					ids = append(ids, c.ID)
				}
				assert.ElementsMatch(t, []string{"e2e-gt", "e2e-uga"}, ids)
			})

			t.Run("similar excludes reference", func(t *testing.T) {
				res, err := svc.FindSimilar(ctx, "e2e-gt", 3)
				require.NoError(t, err)
				for _, c := range res.Results {
					assert.NotEqual(t, "e2e-gt", c.ID)
				}
			})

			t.Run("compare keeps request order", func(t *testing.T) {
				got, err := svc.Compare(ctx, []string{"e2e-reed", "e2e-uga"})
				require.NoError(t, err)
				require.Len(t, got, 2)
				assert.Equal(t, "Reed College", got[0].Name)
				assert.Equal(t, "University of Georgia", got[1].Name)
			})

			t.Run("missing university", func(t *testing.T) {
				_, err := svc.Get(ctx, "e2e-nowhere")
				stdErr, ok := apperrors.AsStandardError(err)
				require.True(t, ok)
				assert.Equal(t, apperrors.ErrCodeUniversityNotFound, stdErr.Code)
			})
		})
	}
}

func TestResultCacheAgainstLiveRedis(t *testing.T) {
	cfg := loadConfig(t)
	rc := database.NewRedis(cfg.Database.Redis)
	defer rc.Close()
	require.NoError(t, rc.Ping(context.Background()))

	c := cache.New(rc.Client, time.Minute, "unimatch-e2e", logger.NewTestLogger(t))
	key, err := c.Key("profile", map[string]int{"satMath": 700})
	require.NoError(t, err)

	want := models.RankedResultSet{Results: []models.ScoredCandidate{{University: models.University{ID: "x", Name: "X"}}}, Total: 1}
	c.Set(context.Background(), key, want)

	var got models.RankedResultSet
	require.True(t, c.Get(context.Background(), key, &got))
	assert.Equal(t, want.Total, got.Total)
	assert.Equal(t, "X", got.Results[0].Name)
}
