package crawler

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// skipPrefixes marks anchor targets that can never be crawl candidates.
var skipPrefixes = []string{"#", "javascript:", "mailto:", "tel:"}

// SelectLinks returns the crawlable anchor targets on a page: resolved
// against the base URL, restricted to http(s) on the same host, fragments
// stripped, deduplicated in first-seen order. Callers cap the count.
func SelectLinks(doc *goquery.Document, base *url.URL) []string {
	var links []string
	seen := make(map[string]struct{})

	doc.Find("a[href]").Each(func(_ int, anchor *goquery.Selection) {
		href, _ := anchor.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || hasSkipPrefix(href) {
			return
		}

		resolved, err := base.Parse(href)
		if err != nil {
			return
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		if resolved.Host != base.Host {
			return
		}

		resolved.Fragment = ""
		link := resolved.String()
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})

	return links
}

func hasSkipPrefix(href string) bool {
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(href, prefix) {
			return true
		}
	}
	return false
}
