package model

import "strings"

// Page is a fetched document belonging to a Site.
// (SiteID, Path) is unique.
type Page struct {
	// ID is the database identifier.
	ID int64 `json:"id"`

	// SiteID references the owning Site.
	SiteID int64 `json:"site_id"`

	// Path is the page location relative to the site root. It always
	// starts with "/" and the root page itself is "/".
	Path string `json:"path"`

	// Code is the HTTP status code returned by the fetch.
	Code int `json:"code"`

	// Content is the full decoded response body.
	Content string `json:"content"`
}

// URL joins the site root and the page path.
func (p *Page) URL(siteURL string) string {
	return strings.TrimSuffix(siteURL, "/") + p.Path
}
