// internal/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	apperrors "university-matcher/internal/common/errors"
	"university-matcher/internal/common/logger"
	"university-matcher/internal/common/metrics"
	"university-matcher/internal/common/observability"
	"university-matcher/internal/models"
	"university-matcher/internal/search"
)

const backendPostgres = "postgres"

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// PostgresStore reads documents from a (id text, document jsonb) table.
// Range and term filters narrow the scan in SQL. Every remaining row is
// read in id order, pageSize rows per query, and the full request,
// including scoring, is evaluated in-process before sorting and sizing.
type PostgresStore struct {
	db       *sql.DB
	table    string
	pageSize int
	timeout  time.Duration
	logger   logger.Logger
}

func NewPostgresStore(db *sql.DB, table string, pageSize int, timeout time.Duration, log logger.Logger) (*PostgresStore, error) {
	if !identifier.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &PostgresStore{
		db:       db,
		table:    table,
		pageSize: pageSize,
		timeout:  timeout,
		logger:   log.WithFields(map[string]interface{}{"store": backendPostgres, "table": table}),
	}, nil
}

func (s *PostgresStore) Search(ctx context.Context, req search.Request) (result *SearchResult, err error) {
	ctx, end := observability.StartSpan(ctx, "store.search")
	defer func() { end(err) }()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	where, args := pushdown(req.Query.Filter)

	start := time.Now()
	hits := make([]Hit, 0)
	scanned, pages := 0, 0
	lastID := ""
	for {
		query, pageArgs := s.pageQuery(where, args, lastID)
		n, last, err := s.readPage(ctx, query, pageArgs, func(u *models.University) {
			if score, ok := req.Evaluate(u); ok {
				hits = append(hits, Hit{University: *u, Score: score})
			}
		})
		if err != nil {
			return nil, err
		}
		scanned += n
		pages++
		if n < s.pageSize {
			break
		}
		lastID = last
	}
	metrics.StoreQueryDuration.WithLabelValues(backendPostgres, "search").Observe(time.Since(start).Seconds())

	if req.SortByScore || req.Scoring != nil {
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	}

	result = &SearchResult{Total: int64(len(hits)), Hits: hits}
	if req.Size >= 0 && len(hits) > req.Size {
		result.Hits = hits[:req.Size]
	}

	s.logger.Debug("search completed", map[string]interface{}{
		"scanned": scanned,
		"pages":   pages,
		"matched": result.Total,
	})
	return result, nil
}

// pageQuery selects the next page after lastID, keyset style.
func (s *PostgresStore) pageQuery(where []string, args []interface{}, lastID string) (string, []interface{}) {
	conds := append([]string(nil), where...)
	pageArgs := append([]interface{}(nil), args...)
	if lastID != "" {
		pageArgs = append(pageArgs, lastID)
		conds = append(conds, fmt.Sprintf("id > $%d", len(pageArgs)))
	}

	query := fmt.Sprintf("SELECT id, document FROM %s", s.table)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	pageArgs = append(pageArgs, s.pageSize)
	query += fmt.Sprintf(" ORDER BY id LIMIT $%d", len(pageArgs))
	return query, pageArgs
}

// readPage streams one page into fn and reports the row count and the
// last id read.
func (s *PostgresStore) readPage(ctx context.Context, query string, args []interface{}, fn func(*models.University)) (int, string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		metrics.StoreQueryErrors.WithLabelValues(backendPostgres, "search").Inc()
		return 0, "", s.queryError(ctx, err)
	}
	defer rows.Close()

	n, last := 0, ""
	for rows.Next() {
		u, err := scanUniversity(rows)
		if err != nil {
			return 0, "", apperrors.NewQueryExecutionError("scan row").WithCause(err)
		}
		n++
		last = u.ID
		fn(u)
	}
	if err := rows.Err(); err != nil {
		metrics.StoreQueryErrors.WithLabelValues(backendPostgres, "search").Inc()
		return 0, "", s.queryError(ctx, err)
	}
	return n, last, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (u *models.University, err error) {
	ctx, end := observability.StartSpan(ctx, "store.get")
	defer func() { end(err) }()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	row := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT id, document FROM %s WHERE id = $1", s.table), id)
	u, err = scanUniversity(row)
	metrics.StoreQueryDuration.WithLabelValues(backendPostgres, "get").Observe(time.Since(start).Seconds())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		metrics.StoreQueryErrors.WithLabelValues(backendPostgres, "get").Inc()
		return nil, s.queryError(ctx, err)
	}
	return u, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return apperrors.NewDatabaseConnectionError(err.Error()).WithCause(err)
	}
	return nil
}

func (s *PostgresStore) queryError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.NewQueryTimeoutError(fmt.Sprintf("no response within %s", s.timeout)).WithCause(err)
	}
	return apperrors.NewQueryExecutionError(err.Error()).WithCause(err)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanUniversity(sc scanner) (*models.University, error) {
	var (
		id  string
		raw []byte
	)
	if err := sc.Scan(&id, &raw); err != nil {
		return nil, err
	}
	var u models.University
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id, err)
	}
	u.ID = id
	return &u, nil
}

// pushdown translates the filter clauses SQL can answer into predicates
// over the jsonb document. Clauses it cannot translate are left to the
// in-process evaluation, which re-checks every clause anyway.
func pushdown(filters []search.Clause) ([]string, []interface{}) {
	var (
		where []string
		args  []interface{}
	)
	next := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	for _, c := range filters {
		switch q := c.(type) {
		case search.Range:
			if !identifier.MatchString(q.Field) {
				continue
			}
			col := fmt.Sprintf("(document->>'%s')::numeric", q.Field)
			if q.GTE != nil {
				where = append(where, col+" >= "+next(*q.GTE))
			}
			if q.LTE != nil {
				where = append(where, col+" <= "+next(*q.LTE))
			}
		case search.Term:
			if !identifier.MatchString(q.Field) {
				continue
			}
			switch v := q.Value.(type) {
			case bool:
				where = append(where, fmt.Sprintf("(document->>'%s')::boolean = %s", q.Field, next(v)))
			case string:
				where = append(where, fmt.Sprintf("document->>'%s' = %s", q.Field, next(v)))
			case float64, int:
				where = append(where, fmt.Sprintf("(document->>'%s')::numeric = %s", q.Field, next(v)))
			}
		}
	}
	return where, args
}
