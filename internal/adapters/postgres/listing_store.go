package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"property-search-service/internal/adapters/listingdoc"
	"property-search-service/internal/core/domain"
	"property-search-service/internal/core/port"
)

// ListingStore - коллекция объектов в PostgreSQL: одна строка на документ в колонке doc (jsonb)
type ListingStore struct {
	pool   *pgxpool.Pool
	table  string // уже экранированное имя
	name   string
	logger port.LoggerPort
}

func NewListingStore(pool *pgxpool.Pool, table string, logger port.LoggerPort) (*ListingStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	if table == "" {
		table = "listings"
	}
	return &ListingStore{
		pool:   pool,
		table:  pgx.Identifier{table}.Sanitize(),
		name:   table,
		logger: logger.WithFields(port.Fields{"component": "PostgresListingStore", "table": table}),
	}, nil
}

func (s *ListingStore) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	query := fmt.Sprintf(`
		SELECT doc FROM %s
		WHERE id = $1 OR doc->>'_id' = $1 OR doc->>'id' = $1
		ORDER BY CASE WHEN doc->>'_id' = $1 THEN 0 WHEN id = $1 THEN 1 ELSE 2 END
		LIMIT 1`, s.table)

	var raw []byte
	err := s.pool.QueryRow(ctx, query, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrListingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres find by id: %w", err)
	}

	l, err := decodeListing(raw)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *ListingStore) FindCandidates(ctx context.Context, q domain.CandidateQuery) ([]domain.Candidate, error) {
	query, args, ok := buildCandidatesQuery(s.table, q)
	if !ok {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres find candidates (%s): %w", q.Mode, err)
	}
	defer rows.Close()

	var candidates []domain.Candidate
	for rows.Next() {
		var (
			raw   []byte
			score float64
		)
		if err := rows.Scan(&raw, &score); err != nil {
			return nil, fmt.Errorf("postgres scan candidate: %w", err)
		}
		l, err := decodeListing(raw)
		if err != nil {
			// один битый документ не должен ронять всю выборку
			s.logger.Warn("Skipping undecodable listing document", port.Fields{"error": err.Error()})
			continue
		}
		candidates = append(candidates, domain.Candidate{Listing: l, TextScore: score})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres iterate candidates: %w", err)
	}
	return candidates, nil
}

func decodeListing(raw []byte) (domain.Listing, error) {
	var doc listingdoc.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.Listing{}, fmt.Errorf("decode listing document: %w", err)
	}
	return doc.ToDomain(), nil
}

// EnsureIndexes создает таблицу, функции и индексы. Текстовый индекс с устаревшей
// версией (комментарий к индексу) удаляется и создается заново.
func (s *ListingStore) EnsureIndexes(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, listingFunctionsSQL); err != nil {
		return fmt.Errorf("create listing functions: %w", err)
	}
	if _, err := s.pool.Exec(ctx, fmt.Sprintf(createTableSQL, s.table)); err != nil {
		return fmt.Errorf("create listings table: %w", err)
	}

	names := make([]string, 0, len(structuredIndexes))
	for name := range structuredIndexes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		idx := pgx.Identifier{s.name + "_" + name + "_idx"}.Sanitize()
		stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)", idx, s.table, structuredIndexes[name])
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create index %s: %w", name, err)
		}
	}

	return s.ensureTextIndex(ctx)
}

func (s *ListingStore) ensureTextIndex(ctx context.Context) error {
	indexName := s.name + "_text_search"
	idx := pgx.Identifier{indexName}.Sanitize()
	version := textIndexVersion()

	var current *string
	err := s.pool.QueryRow(ctx,
		"SELECT obj_description(to_regclass($1), 'pg_class')", indexName,
	).Scan(&current)
	if err != nil {
		return fmt.Errorf("read text index version: %w", err)
	}

	if current != nil && *current == version {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin text index transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if current != nil {
		s.logger.Warn("Text index definition changed, recreating", port.Fields{"index": indexName})
	}
	statements := []string{
		fmt.Sprintf("DROP INDEX IF EXISTS %s", idx),
		fmt.Sprintf("CREATE INDEX %s ON %s USING GIN (%s)", idx, s.table, searchVectorExpr),
		fmt.Sprintf("COMMENT ON INDEX %s IS '%s'", idx, version),
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("recreate text index: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (s *ListingStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
