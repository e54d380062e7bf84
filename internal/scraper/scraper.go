// Package scraper turns signed-in LinkedIn pages into typed records.
//
// The live page is only used to navigate and wait. Every record is read from
// a DOM snapshot, so the parsing functions in this package are pure and
// operate on *dom.Document values.
package scraper

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"linkedin-scraper/internal/auth"
	"linkedin-scraper/internal/browser"
	"linkedin-scraper/internal/dom"
	"linkedin-scraper/internal/models"
)

var (
	mainContent   = dom.CSS("main")
	listContainer = dom.CSS("main .pvs-list__container")
	nestedList    = dom.CSS(".pvs-list__container")
	listItem      = dom.CSS(".pvs-list__paged-list-item")
	entity        = dom.CSS("div[data-view-name='profile-component-entity']")
	firstSpan     = dom.CSS("span")
	anchor        = dom.CSS("a")
)

// Options configures page waits and retries
type Options struct {
	ElementTimeout time.Duration
	PollInterval   time.Duration
	EducationRetry RetryPolicy
	SectionRetry   RetryPolicy
}

// OptionsFromConfig extracts the scraper settings from cfg
func OptionsFromConfig(cfg models.Config) Options {
	return Options{
		ElementTimeout: cfg.ElementTimeout,
		PollInterval:   cfg.PollInterval,
		EducationRetry: PolicyFromConfig(cfg.EducationRetry),
		SectionRetry:   PolicyFromConfig(cfg.SectionRetry),
	}
}

// ScrapeOptions selects the optional profile sections
type ScrapeOptions struct {
	Educations bool
	Skills     bool
	Interests  bool
}

// ProfileScraper extracts a Person from a member's profile pages
type ProfileScraper struct {
	opts   Options
	logger *zap.Logger
}

// NewProfileScraper creates a ProfileScraper
func NewProfileScraper(opts Options, logger *zap.Logger) *ProfileScraper {
	if opts.ElementTimeout <= 0 {
		opts.ElementTimeout = 10 * time.Second
	}
	return &ProfileScraper{opts: opts, logger: logger.Named("profile")}
}

// Scrape reads the profile at profileURL. Only a failure to load the main
// profile page is returned as an error; section failures are logged and the
// section keeps whatever was parsed.
func (s *ProfileScraper) Scrape(ctx context.Context, session *auth.Session, profileURL string, opts ScrapeOptions) (*models.Person, error) {
	if !session.SignedIn() {
		return nil, models.ErrNotAuthenticated
	}
	page := session.Page
	logger := s.logger.With(zap.String("url", profileURL))

	if err := page.Navigate(ctx, profileURL); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrTransientLoad, err)
	}
	if err := page.WaitFor(ctx, mainContent, s.opts.ElementTimeout); err != nil {
		return nil, fmt.Errorf("%w: profile page did not render: %w", models.ErrTransientLoad, err)
	}
	doc, err := page.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrTransientLoad, err)
	}

	person := &models.Person{ProfileURL: profileURL}
	parseTopCard(doc, person)
	logger.Debug("parsed top card", zap.String("name", person.Name))

	person.Experiences = runSection(ctx, logger, "experience", s.opts.SectionRetry, func(ctx context.Context) ([]models.Experience, error) {
		doc, err := s.openDetails(ctx, page, profileURL+"/details/experience")
		if err != nil {
			return nil, err
		}
		return parseExperiences(doc, logger)
	})

	if opts.Educations {
		person.Educations = runSection(ctx, logger, "education", s.opts.EducationRetry, func(ctx context.Context) ([]models.Education, error) {
			doc, err := s.openDetails(ctx, page, profileURL+"/details/education")
			if err != nil {
				return nil, err
			}
			return parseEducations(doc, logger)
		})
	}

	if opts.Skills {
		person.Skills = runSection(ctx, logger, "skills", s.opts.SectionRetry, func(ctx context.Context) ([]string, error) {
			doc, err := s.openDetails(ctx, page, profileURL+"/details/skills")
			if err != nil {
				return nil, err
			}
			return parseSkills(doc), nil
		})
	}

	if opts.Interests {
		person.Interests = runSection(ctx, logger, "interests", s.opts.SectionRetry, func(ctx context.Context) ([]models.Interest, error) {
			return s.interests(ctx, page, profileURL+"/details/interests")
		})
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return person, nil
}

// openDetails loads a /details sub-page, scrolls it so lazy lists render and
// returns a snapshot once the list container is present
func (s *ProfileScraper) openDetails(ctx context.Context, page browser.Page, url string) (*dom.Document, error) {
	if err := page.Navigate(ctx, url); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrTransientLoad, err)
	}
	if err := page.WaitFor(ctx, mainContent, s.opts.ElementTimeout); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrTransientLoad, err)
	}
	for _, script := range []string{browser.ScrollToHalf, browser.ScrollToBottom} {
		if err := page.Evaluate(ctx, script, nil); err != nil {
			s.logger.Debug("scroll failed", zap.Error(err))
		}
	}
	if err := page.WaitFor(ctx, listContainer, s.opts.ElementTimeout); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrTransientLoad, err)
	}
	return page.Snapshot(ctx)
}

// runSection fetches one profile section under policy. Each attempt replaces
// the previous attempt's records, and a failed section returns whatever its
// last attempt parsed.
func runSection[T any](ctx context.Context, logger *zap.Logger, name string, policy RetryPolicy, fetch func(ctx context.Context) ([]T, error)) []T {
	var items []T
	err := policy.Do(ctx, func(ctx context.Context) error {
		var err error
		items, err = fetch(ctx)
		return err
	})
	if err != nil {
		sectionRuns.WithLabelValues(name, "failure").Inc()
		logger.Warn("failed to scrape section", zap.String("section", name), zap.Int("partial", len(items)), zap.Error(err))
	} else {
		sectionRuns.WithLabelValues(name, "success").Inc()
	}
	sectionItems.WithLabelValues(name).Observe(float64(len(items)))
	return items
}

// topLevelItems returns the list items owned directly by container, leaving
// out items of lists nested inside them
func topLevelItems(container *dom.Element) []*dom.Element {
	var items []*dom.Element
	for _, item := range container.FindAll(listItem) {
		owner, ok := item.Closest(nestedList)
		if ok && owner.Same(container) {
			items = append(items, item)
		}
	}
	return items
}

// spanText returns the text of the first span inside el, or el's own text
// when it has none
func spanText(el *dom.Element) string {
	if span, ok := el.Find(firstSpan); ok {
		return span.Text()
	}
	return el.Text()
}

// entityParts are the regions of a profile-component entity. head is the
// first child of the summary region; its children hold the headline texts.
type entityParts struct {
	link    string
	summary *dom.Element
	head    *dom.Element
	sub     *dom.Element
}

func splitEntity(ent *dom.Element) (entityParts, error) {
	var parts entityParts

	children := ent.Children()
	if len(children) < 2 {
		return parts, fmt.Errorf("%w: entity has %d parts", models.ErrStructuralExtraction, len(children))
	}
	logo, details := children[0], children[1]

	if link, ok := logo.Child(0); ok {
		parts.link = link.AttrOr("href", "")
	}

	regions := details.Children()
	if len(regions) == 0 {
		return parts, fmt.Errorf("%w: entity has no details", models.ErrStructuralExtraction)
	}
	head, ok := regions[0].Child(0)
	if !ok {
		return parts, fmt.Errorf("%w: entity summary is empty", models.ErrStructuralExtraction)
	}
	parts.summary = regions[0]
	parts.head = head
	if len(regions) > 1 {
		parts.sub = regions[1]
	}
	return parts, nil
}

func (p entityParts) texts() []string {
	siblings := p.head.Children()
	texts := make([]string, len(siblings))
	for i, sibling := range siblings {
		texts[i] = spanText(sibling)
	}
	return texts
}

func (p entityParts) fullTexts() []string {
	siblings := p.head.Children()
	texts := make([]string, len(siblings))
	for i, sibling := range siblings {
		texts[i] = sibling.Text()
	}
	return texts
}

func (p entityParts) description() string {
	if p.sub == nil {
		return ""
	}
	return p.sub.Text()
}
