package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/webcrawl"
)

// Compile-time interface verification.
var _ webcrawl.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor finds hyperlinks in HTML documents using goquery.
type LinkExtractor struct {
	selector string
}

// NewLinkExtractor creates a LinkExtractor that reads the href of every
// anchor and area element.
func NewLinkExtractor() *LinkExtractor {
	return &LinkExtractor{selector: "a[href], area[href]"}
}

// ExtractLinks returns the absolute http(s) URLs linked from html, resolved
// against baseURL and in document order. A <base href> in the document
// overrides baseURL. Fragments are stripped and each URL is returned once.
func (e *LinkExtractor) ExtractLinks(html string, baseURL string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, webcrawl.Errorf(webcrawl.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, webcrawl.Errorf(webcrawl.EINVALID, "failed to parse HTML: %v", err)
	}

	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if ref, err := url.Parse(strings.TrimSpace(href)); err == nil {
			base = base.ResolveReference(ref)
		}
	}

	seen := make(map[string]struct{})
	var links []string
	doc.Find(e.selector).Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || isNonHTTPLink(href) {
			return
		}

		resolved := resolveURL(base, href)
		if resolved == "" {
			return
		}
		if _, ok := seen[resolved]; ok {
			return
		}
		seen[resolved] = struct{}{}
		links = append(links, resolved)
	})

	return links, nil
}

// resolveURL resolves href against base and strips the fragment.
// Returns empty string if href cannot be parsed or does not resolve to an
// http or https URL.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	resolved.Fragment = ""
	resolved.RawFragment = ""
	return resolved.String()
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(href)
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
