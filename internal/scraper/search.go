package scraper

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"linkedin-scraper/internal/auth"
	"linkedin-scraper/internal/dom"
	"linkedin-scraper/internal/models"
	"linkedin-scraper/internal/utils"
)

const searchURL = "https://www.linkedin.com/search/results/people/?keywords="

var (
	searchResultCard  = dom.CSS("div[data-view-name=people-search-result]")
	searchResultTitle = dom.CSS("a[data-view-name=search-result-lockup-title]")
	followingSibling  = dom.XPath("../following-sibling::*")
)

// SearchScraper runs people searches
type SearchScraper struct {
	timeout time.Duration
	logger  *zap.Logger
}

// NewSearchScraper creates a SearchScraper that waits up to timeout for the
// result list
func NewSearchScraper(timeout time.Duration, logger *zap.Logger) *SearchScraper {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SearchScraper{timeout: timeout, logger: logger.Named("search")}
}

// SearchURL returns the people-search page for query
func SearchURL(query string) string {
	return searchURL + url.QueryEscape(query)
}

// Search returns the people matching query in page order
func (s *SearchScraper) Search(ctx context.Context, session *auth.Session, query string) ([]models.SearchResult, error) {
	if !session.SignedIn() {
		return nil, models.ErrNotAuthenticated
	}
	page := session.Page

	if err := page.Navigate(ctx, SearchURL(query)); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrTransientLoad, err)
	}
	if err := page.WaitFor(ctx, searchResultCard, s.timeout); err != nil {
		return nil, fmt.Errorf("%w: search results did not render: %w", models.ErrTransientLoad, err)
	}
	doc, err := page.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrTransientLoad, err)
	}

	results := parseSearchResults(doc)
	searchResults.Observe(float64(len(results)))
	s.logger.Info("search finished", zap.String("query", query), zap.Int("results", len(results)))
	return results, nil
}

func parseSearchResults(doc *dom.Document) []models.SearchResult {
	results := []models.SearchResult{}
	for _, link := range doc.FindAll(searchResultTitle) {
		href := link.AttrOr("href", "")
		title := ""
		if sibling, ok := link.Find(followingSibling); ok {
			title = sibling.Text()
		}
		results = append(results, models.SearchResult{
			PersonName: link.Text(),
			PersonURL:  utils.ResolveURL(doc.URL, href),
			ProfileID:  utils.DeriveProfileID(utils.StripQuery(doc.URL, href)),
			Title:      title,
		})
	}
	return results
}
