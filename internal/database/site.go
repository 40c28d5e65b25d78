package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nao1215/sitesearch/internal/model"
)

// CreateSite inserts a new site row and returns it.
func (s *Store) CreateSite(ctx context.Context, name, url string, status model.SiteStatus) (*model.Site, error) {
	now := time.Now()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO sites (name, url, status, status_time, last_error) VALUES (?, ?, ?, ?, '')`,
		name, url, string(status), formatTimestamp(now))
	if err != nil {
		return nil, fmt.Errorf("failed to create site: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get site id: %w", err)
	}
	return &model.Site{
		ID:         id,
		Name:       name,
		URL:        url,
		Status:     status,
		StatusTime: now.UTC(),
	}, nil
}

// DeleteSitesByURL removes every site row with the given url together with
// its pages, lemmas and indexes. It returns the number of sites removed.
func (s *Store) DeleteSitesByURL(ctx context.Context, url string) (int64, error) {
	var removed int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmts := []string{
			`DELETE FROM indexes WHERE page_id IN (
				SELECT p.id FROM pages p JOIN sites s ON s.id = p.site_id WHERE s.url = ?)`,
			`DELETE FROM lemmas WHERE site_id IN (SELECT id FROM sites WHERE url = ?)`,
			`DELETE FROM pages WHERE site_id IN (SELECT id FROM sites WHERE url = ?)`,
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt, url); err != nil {
				return fmt.Errorf("failed to delete site data: %w", err)
			}
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM sites WHERE url = ?`, url)
		if err != nil {
			return fmt.Errorf("failed to delete site: %w", err)
		}
		removed, err = result.RowsAffected()
		return err
	})
	return removed, err
}

const siteColumns = `id, name, url, status, status_time, last_error`

func scanSite(row interface{ Scan(...any) error }) (*model.Site, error) {
	var (
		site       model.Site
		status     string
		statusTime string
	)
	if err := row.Scan(&site.ID, &site.Name, &site.URL, &status, &statusTime, &site.LastError); err != nil {
		return nil, err
	}
	parsed, err := model.ParseSiteStatus(status)
	if err != nil {
		return nil, err
	}
	site.Status = parsed
	site.StatusTime = parseTimestamp(statusTime)
	return &site, nil
}

// ListSites returns all site rows ordered by id.
func (s *Store) ListSites(ctx context.Context) ([]model.Site, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+siteColumns+` FROM sites ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	var sites []model.Site
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, *site)
	}
	return sites, rows.Err()
}

// GetSite returns the site with id, or nil if it does not exist.
func (s *Store) GetSite(ctx context.Context, id int64) (*model.Site, error) {
	site, err := scanSite(s.db.QueryRowContext(ctx, `SELECT `+siteColumns+` FROM sites WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get site: %w", err)
	}
	return site, nil
}

// GetSiteByURL returns the newest site with url, or nil if none exists.
func (s *Store) GetSiteByURL(ctx context.Context, url string) (*model.Site, error) {
	site, err := scanSite(s.db.QueryRowContext(ctx,
		`SELECT `+siteColumns+` FROM sites WHERE url = ? ORDER BY id DESC LIMIT 1`, url))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get site by url: %w", err)
	}
	return site, nil
}

// UpdateSiteStatus sets the status and last error of a site and refreshes its status time.
func (s *Store) UpdateSiteStatus(ctx context.Context, id int64, status model.SiteStatus, lastError string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sites SET status = ?, last_error = ?, status_time = ? WHERE id = ?`,
		string(status), lastError, formatTimestamp(time.Now()), id)
	if err != nil {
		return fmt.Errorf("failed to update site status: %w", err)
	}
	return nil
}

// TransitionSiteStatus moves a site from one status to another only if it is
// currently in from. It reports whether the transition happened.
func (s *Store) TransitionSiteStatus(ctx context.Context, id int64, from, to model.SiteStatus, lastError string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE sites SET status = ?, last_error = ?, status_time = ? WHERE id = ? AND status = ?`,
		string(to), lastError, formatTimestamp(time.Now()), id, string(from))
	if err != nil {
		return false, fmt.Errorf("failed to transition site status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

// TouchSite refreshes the status time of a site.
func (s *Store) TouchSite(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE sites SET status_time = ? WHERE id = ?`,
		formatTimestamp(time.Now()), id); err != nil {
		return fmt.Errorf("failed to touch site: %w", err)
	}
	return nil
}

// FailIndexingSites marks every INDEXING site FAILED with message.
// It returns the number of sites changed.
func (s *Store) FailIndexingSites(ctx context.Context, message string) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE sites SET status = ?, last_error = ?, status_time = ? WHERE status = ?`,
		string(model.StatusFailed), message, formatTimestamp(time.Now()), string(model.StatusIndexing))
	if err != nil {
		return 0, fmt.Errorf("failed to fail indexing sites: %w", err)
	}
	return result.RowsAffected()
}

// HasIndexingSites reports whether any site is INDEXING.
func (s *Store) HasIndexingSites(ctx context.Context) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sites WHERE status = ?`,
		string(model.StatusIndexing)).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to count indexing sites: %w", err)
	}
	return n > 0, nil
}
