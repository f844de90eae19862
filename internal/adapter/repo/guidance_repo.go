package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"designdesk/internal/domain"
)

// GuidanceRepositoryPG implements domain.GuidanceStore with Postgres
// full-text search over chunked guidance documents. Search never reports
// "no results" as an error: a miss is an empty slice.
type GuidanceRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewGuidanceRepository creates a new guidance repository backed by PostgreSQL.
func NewGuidanceRepository(pool *pgxpool.Pool) *GuidanceRepositoryPG {
	return &GuidanceRepositoryPG{pool: pool}
}

// Search returns at most k snippets ranked by relevance to the query,
// optionally restricted to one category. Category-only lookups (the
// form-filling engine's synthesized query equals the category) fall back to
// insertion order when the text match misses.
func (r *GuidanceRepositoryPG) Search(ctx context.Context, query string, category string, k int) ([]string, error) {
	sql := `
SELECT content
FROM guidance_docs
WHERE ($2 = '' OR category = $2)
  AND (content_tsv @@ websearch_to_tsquery('simple', $1) OR category = $1)
ORDER BY ts_rank(content_tsv, websearch_to_tsquery('simple', $1)) DESC, id ASC
LIMIT $3;
`
	rows, err := r.pool.Query(ctx, sql, query, category, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, err
		}
		out = append(out, content)
	}
	return out, rows.Err()
}

// Upsert replaces all chunks for one (category, source) pair. The loader
// calls it once per ingested file; re-running ingestion is idempotent.
func (r *GuidanceRepositoryPG) Upsert(ctx context.Context, category domain.Category, source string, chunks []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM guidance_docs WHERE category = $1 AND source = $2;`,
		category, source); err != nil {
		return err
	}
	for _, chunk := range chunks {
		if _, err := tx.Exec(ctx, `
INSERT INTO guidance_docs (category, content, source)
VALUES ($1, $2, $3);
`, category, chunk, source); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
