package shapes

import (
	"context"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"shapechat/internal/config"
)

// ProfileFetcher resolves a display name for a shape from its public
// profile page. Scraping is best-effort: any failure falls back to a
// humanized URL slug.
type ProfileFetcher struct {
	httpClient *http.Client
}

func NewProfileFetcher() *ProfileFetcher {
	return &ProfileFetcher{httpClient: &http.Client{Timeout: config.ProfileFetchTimeout}}
}

// DisplayName returns a human-readable name for the shape behind
// referenceURL.
func (f *ProfileFetcher) DisplayName(ctx context.Context, referenceURL string) string {
	if name := f.scrape(ctx, referenceURL); name != "" {
		return name
	}
	return HumanizeSlug(referenceURL)
}

func (f *ProfileFetcher) scrape(ctx context.Context, referenceURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, referenceURL, nil)
	if err != nil {
		return ""
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ""
	}

	if v, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		if title := strings.TrimSpace(v); title != "" {
			return title
		}
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// HumanizeSlug turns the last path segment of a reference URL into a
// readable name: "bella-donna" becomes "bella donna".
func HumanizeSlug(referenceURL string) string {
	slug := SlugFromURL(referenceURL)
	if slug == "" {
		return "Unknown Shape"
	}
	return strings.ReplaceAll(slug, "-", " ")
}
