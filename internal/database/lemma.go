package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/nao1215/sitesearch/internal/model"
)

// AddLemmaCounts folds one batch of lemma counts for a page into the index.
// For every lemma the site's Lemma row is created with the count or has the
// count added to its frequency, and the (page, lemma) Index row is created
// with the count as rank or has the count added to its rank.
// The batch is applied atomically.
func (s *Store) AddLemmaCounts(ctx context.Context, siteID, pageID int64, counts map[string]int) error {
	if len(counts) == 0 {
		return nil
	}

	lemmas := make([]string, 0, len(counts))
	for l := range counts {
		lemmas = append(lemmas, l)
	}
	sort.Strings(lemmas)

	return s.withTx(ctx, func(tx *sql.Tx) error {
		lemmaStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO lemmas (site_id, lemma, frequency) VALUES (?, ?, ?)
			ON CONFLICT(site_id, lemma) DO UPDATE SET frequency = frequency + excluded.frequency
			RETURNING id`)
		if err != nil {
			return fmt.Errorf("failed to prepare lemma upsert: %w", err)
		}
		defer lemmaStmt.Close()

		indexStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO indexes (page_id, lemma_id, rank) VALUES (?, ?, ?)
			ON CONFLICT(page_id, lemma_id) DO UPDATE SET rank = rank + excluded.rank`)
		if err != nil {
			return fmt.Errorf("failed to prepare index upsert: %w", err)
		}
		defer indexStmt.Close()

		for _, l := range lemmas {
			count := counts[l]
			var lemmaID int64
			if err := lemmaStmt.QueryRowContext(ctx, siteID, l, count).Scan(&lemmaID); err != nil {
				return fmt.Errorf("failed to upsert lemma %q: %w", l, err)
			}
			if _, err := indexStmt.ExecContext(ctx, pageID, lemmaID, float64(count)); err != nil {
				return fmt.Errorf("failed to upsert index for lemma %q: %w", l, err)
			}
		}
		return nil
	})
}

// FindLemmas returns the site's Lemma rows for the given words.
// Words that are not indexed are simply absent from the result.
func (s *Store) FindLemmas(ctx context.Context, siteID int64, words []string) ([]model.Lemma, error) {
	if len(words) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(words)+1)
	args = append(args, siteID)
	for _, w := range words {
		args = append(args, w)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, site_id, lemma, frequency FROM lemmas
		 WHERE site_id = ? AND lemma IN (`+placeholders(len(words))+`)
		 ORDER BY frequency, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find lemmas: %w", err)
	}
	defer rows.Close()

	var lemmas []model.Lemma
	for rows.Next() {
		var l model.Lemma
		if err := rows.Scan(&l.ID, &l.SiteID, &l.Lemma, &l.Frequency); err != nil {
			return nil, fmt.Errorf("failed to scan lemma: %w", err)
		}
		lemmas = append(lemmas, l)
	}
	return lemmas, rows.Err()
}

// PageIDsForLemma returns the ids of pages that have an Index row for lemmaID.
func (s *Store) PageIDsForLemma(ctx context.Context, lemmaID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT page_id FROM indexes WHERE lemma_id = ? ORDER BY page_id`, lemmaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages for lemma: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan page id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// PageRelevance sums the rank of the page's Index rows whose lemma is in lemmaIDs.
func (s *Store) PageRelevance(ctx context.Context, pageID int64, lemmaIDs []int64) (float64, error) {
	if len(lemmaIDs) == 0 {
		return 0, nil
	}
	args := make([]any, 0, len(lemmaIDs)+1)
	args = append(args, pageID)
	for _, id := range lemmaIDs {
		args = append(args, id)
	}

	var sum sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT SUM(rank) FROM indexes WHERE page_id = ? AND lemma_id IN (`+placeholders(len(lemmaIDs))+`)`,
		args...).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum page relevance: %w", err)
	}
	return sum.Float64, nil
}

// IndexesForPage returns the Index rows of a page ordered by lemma id.
func (s *Store) IndexesForPage(ctx context.Context, pageID int64) ([]model.Index, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, page_id, lemma_id, rank FROM indexes WHERE page_id = ? ORDER BY lemma_id`, pageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list page indexes: %w", err)
	}
	defer rows.Close()

	var out []model.Index
	for rows.Next() {
		var idx model.Index
		if err := rows.Scan(&idx.ID, &idx.PageID, &idx.LemmaID, &idx.Rank); err != nil {
			return nil, fmt.Errorf("failed to scan index: %w", err)
		}
		out = append(out, idx)
	}
	return out, rows.Err()
}

// CountLemmas counts the lemmas of a site, or of all sites when siteID is 0.
func (s *Store) CountLemmas(ctx context.Context, siteID int64) (int64, error) {
	return s.count(ctx, "lemmas", siteID)
}
