package crawler

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// gotoPagePattern matches pagination handlers such as onclick="gotoPage(3);".
var gotoPagePattern = regexp.MustCompile(`gotoPage\((\d+)\);`)

// Document is the crawl-relevant content of an HTML page.
type Document struct {
	// Title is the text of the first title element.
	Title string

	// Links are absolute URLs of anchors, in document order, without duplicates.
	Links []string

	// Pagination are URLs synthesized from pagination widgets.
	Pagination []string
}

// ParseDocument extracts the title, the anchor links and the pagination
// URLs of the page at pageURL.
func ParseDocument(pageURL, body string) (*Document, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page url: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	result := &Document{
		Title: doc.Find("title").First().Text(),
	}

	seen := make(map[string]bool)
	add := func(dst *[]string, link string) {
		if link == "" || seen[link] {
			return
		}
		seen[link] = true
		*dst = append(*dst, link)
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		add(&result.Links, resolveURL(base, href))
	})

	doc.Find("a[onclick]").Each(func(_ int, s *goquery.Selection) {
		onclick, _ := s.Attr("onclick")
		if m := gotoPagePattern.FindStringSubmatch(onclick); m != nil {
			add(&result.Pagination, gotoPageURL(pageURL, m[1]))
		}
	})

	doc.Find("div.pagination a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		add(&result.Pagination, paginatorURL(pageURL, href))
	})

	return result, nil
}

// Title returns the text of the first title element of an HTML document,
// whitespace included.
func Title(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ""
	}
	return doc.Find("title").First().Text()
}

// resolveURL resolves href against base. Non-navigational hrefs yield "".
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" || isPseudoScheme(href) {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

func isPseudoScheme(href string) bool {
	lower := strings.ToLower(href)
	for _, p := range []string{"javascript:", "mailto:", "tel:", "data:"} {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// gotoPageURL builds the URL of page n for a script-driven paginator.
func gotoPageURL(pageURL, n string) string {
	if strings.HasSuffix(pageURL, "/") {
		return pageURL + "page=" + n
	}
	return pageURL + "/page=" + n + "/"
}

// paginatorURL resolves a paginator anchor relative to the parent of the
// current page and terminates it with a slash.
func paginatorURL(pageURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" || isPseudoScheme(href) {
		return ""
	}
	var link string
	if u, err := url.Parse(href); err == nil && u.IsAbs() {
		link = u.String()
	} else {
		link = parentURL(pageURL) + strings.TrimPrefix(href, "/")
	}
	if !strings.HasSuffix(link, "/") {
		link += "/"
	}
	return link
}

// parentURL returns pageURL up to and including the last "/" of its
// parent directory. "https://x/a/b/" and "https://x/a/b" both yield "https://x/a/".
func parentURL(pageURL string) string {
	trimmed := strings.TrimSuffix(pageURL, "/")
	u, err := url.Parse(trimmed)
	if err != nil || u.Path == "" || u.Path == "/" {
		return trimmed + "/"
	}
	i := strings.LastIndex(trimmed, "/")
	return trimmed[:i+1]
}
