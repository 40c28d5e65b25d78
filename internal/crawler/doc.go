// Package crawler holds the page-level crawl primitives: fetching a page,
// parsing its links and pagination widgets, and deciding whether a link
// belongs to a site.
//
// # Components
//
//   - Fetcher: HTTP GET with User-Agent and Referer headers, a per-request
//     timeout, a body size cap, charset decoding and optional robots.txt checks
//   - ParseDocument: goquery-based extraction of title, anchors and pagination
//   - InScope: the pure predicate deciding whether a link is crawlable
//
// Scheduling (recursion, cancellation, persistence) lives in the indexing package.
//
// # Usage
//
//	f := crawler.NewFetcher(crawler.WithUserAgent(ua), crawler.WithReferrer(ref))
//	resp, err := f.Fetch(ctx, "https://example.com/")
//	doc, err := crawler.ParseDocument(resp.URL, resp.Body)
//	for _, link := range doc.Links {
//	    if crawler.InScope("https://example.com/", link) { ... }
//	}
package crawler
