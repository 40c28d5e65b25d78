package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nao1215/sitesearch/internal/model"
)

// PageExists reports whether a page with path is stored for the site.
func (s *Store) PageExists(ctx context.Context, siteID int64, path string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pages WHERE site_id = ? AND path = ?`, siteID, path).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check page: %w", err)
	}
	return n > 0, nil
}

// InsertPage stores page unless (site_id, path) is already taken.
// It reports whether a new row was written; on success page.ID is set.
// Concurrent callers racing on the same path get exactly one true.
func (s *Store) InsertPage(ctx context.Context, page *model.Page) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO pages (site_id, path, code, content) VALUES (?, ?, ?, ?)
		 ON CONFLICT(site_id, path) DO NOTHING`,
		page.SiteID, page.Path, page.Code, page.Content)
	if err != nil {
		return false, fmt.Errorf("failed to insert page: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return false, nil
	}
	id, err := result.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("failed to get page id: %w", err)
	}
	page.ID = id
	return true, nil
}

// GetPage returns the page with id, or nil if it does not exist.
func (s *Store) GetPage(ctx context.Context, id int64) (*model.Page, error) {
	var p model.Page
	err := s.db.QueryRowContext(ctx,
		`SELECT id, site_id, path, code, content FROM pages WHERE id = ?`, id).
		Scan(&p.ID, &p.SiteID, &p.Path, &p.Code, &p.Content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page: %w", err)
	}
	return &p, nil
}

// DeletePage removes the page at (siteID, path) and withdraws its
// contribution from the site's lemma frequencies. Lemmas left with a
// non-positive frequency are removed. It reports whether a page existed.
func (s *Store) DeletePage(ctx context.Context, siteID int64, path string) (bool, error) {
	found := false
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var pageID int64
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM pages WHERE site_id = ? AND path = ?`, siteID, path).Scan(&pageID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to find page: %w", err)
		}
		found = true

		if _, err := tx.ExecContext(ctx, `
			UPDATE lemmas SET frequency = frequency - CAST((
				SELECT i.rank FROM indexes i WHERE i.lemma_id = lemmas.id AND i.page_id = ?
			) AS INTEGER)
			WHERE id IN (SELECT lemma_id FROM indexes WHERE page_id = ?)`, pageID, pageID); err != nil {
			return fmt.Errorf("failed to withdraw lemma frequencies: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM indexes WHERE page_id = ?`, pageID); err != nil {
			return fmt.Errorf("failed to delete page indexes: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM lemmas WHERE site_id = ? AND frequency <= 0`, siteID); err != nil {
			return fmt.Errorf("failed to delete unused lemmas: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM pages WHERE id = ?`, pageID); err != nil {
			return fmt.Errorf("failed to delete page: %w", err)
		}
		return nil
	})
	return found, err
}

// CountPages counts the pages of a site, or of all sites when siteID is 0.
func (s *Store) CountPages(ctx context.Context, siteID int64) (int64, error) {
	return s.count(ctx, "pages", siteID)
}

func (s *Store) count(ctx context.Context, table string, siteID int64) (int64, error) {
	var (
		n   int64
		err error
	)
	if siteID == 0 {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table+` WHERE site_id = ?`, siteID).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}
