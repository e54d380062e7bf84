package scraper

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"linkedin-scraper/internal/browser"
	"linkedin-scraper/internal/dom"
	"linkedin-scraper/internal/models"
)

var (
	interestTab = dom.CSS("button[role='tab']")
	selectedTab = dom.CSS("button[role='tab'][aria-selected='true']")
)

const defaultTabPollInterval = 200 * time.Millisecond

// interests walks every tab of the interests page. The first tab is the one
// selected on load; the others are clicked in order.
func (s *ProfileScraper) interests(ctx context.Context, page browser.Page, url string) ([]models.Interest, error) {
	doc, err := s.openDetails(ctx, page, url)
	if err != nil {
		return nil, err
	}

	poll := s.opts.PollInterval
	if poll <= 0 {
		poll = defaultTabPollInterval
	}

	interests := parseInterests(doc, s.logger)
	tabs := doc.FindAll(interestTab)
	for i := 1; i < len(tabs); i++ {
		want := tabs[i].Text()
		tab := dom.XPath(fmt.Sprintf("(//button[@role='tab'])[%d]", i+1))
		if err := page.Click(ctx, tab); err != nil {
			return interests, fmt.Errorf("failed to open interests tab %q: %w", want, err)
		}

		err := browser.WaitUntil(ctx, s.opts.ElementTimeout, poll, func(ctx context.Context) (bool, error) {
			snap, err := page.Snapshot(ctx)
			if err != nil {
				s.logger.Debug("interests tab snapshot failed", zap.Error(err))
				return false, nil
			}
			doc = snap
			current, ok := doc.Find(selectedTab)
			return ok && current.Text() == want, nil
		})
		if err != nil {
			return interests, fmt.Errorf("%w: interests tab %q: %w", models.ErrTransientLoad, want, err)
		}
		interests = append(interests, parseInterests(doc, s.logger)...)
	}
	return interests, nil
}

// parseInterests reads the entries of the selected interests tab
func parseInterests(doc *dom.Document, logger *zap.Logger) []models.Interest {
	kind := ""
	if tab, ok := doc.Find(selectedTab); ok {
		kind = tab.Text()
	}

	container, ok := doc.Find(listContainer)
	if !ok {
		return nil
	}

	var interests []models.Interest
	for i, item := range topLevelItems(container) {
		ent, ok := item.Find(entity)
		if !ok {
			continue
		}
		parts, err := splitEntity(ent)
		if err != nil {
			logger.Debug("skipping interest item", zap.Int("index", i), zap.Error(err))
			continue
		}
		texts := parts.texts()
		if len(texts) == 0 || texts[0] == "" {
			continue
		}
		interests = append(interests, models.Interest{Name: texts[0], URL: parts.link, Type: kind})
	}
	return interests
}
