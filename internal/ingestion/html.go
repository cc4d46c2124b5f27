package ingestion

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const noiseSelector = "nav, footer, header, script, style, noscript, iframe, form, " +
	".ad, .ads, .advertisement, .sidebar, .cookie-banner, .popup, [aria-hidden='true']"

// JobPostingSelectors are tried in order to locate the posting body on job
// board pages.
var JobPostingSelectors = []string{
	".job-description",
	"#job-description",
	".posting-content",
	".job-details",
	"[data-testid='job-description']",
	"#content .section-wrapper",
	"main",
	"article",
	"#content",
	".content",
}

var blockElements = "p, div, li, h1, h2, h3, h4, h5, h6, br, tr, section, article, ul, ol"

// HTMLToText extracts readable text from an HTML page. Noise such as
// navigation and scripts is removed first; the first matching content
// selector wins, falling back to <body>. List items become "- " bullets
// and block elements are separated by newlines.
func HTMLToText(html string, selectors ...string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find(noiseSelector).Remove()

	if len(selectors) == 0 {
		selectors = JobPostingSelectors
	}
	var main *goquery.Selection
	for _, sel := range selectors {
		if s := doc.Find(sel); s.Length() > 0 {
			main = s.First()
			break
		}
	}
	if main == nil {
		main = doc.Find("body")
	}

	main.Find("li").Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("- ")
	})
	main.Find(blockElements).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	return CleanText(trimLines(main.Text())), nil
}

func trimLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.Join(lines, "\n")
}

// LooksLikeHTML reports whether content appears to be an HTML document
// rather than text that merely mentions a tag.
func LooksLikeHTML(content string) bool {
	head := strings.ToLower(strings.TrimSpace(content))
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.HasPrefix(head, "<!doctype html") ||
		strings.HasPrefix(head, "<html") ||
		(strings.HasPrefix(head, "<") && strings.Contains(head, "<body"))
}
