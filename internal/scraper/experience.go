package scraper

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"linkedin-scraper/internal/dom"
	"linkedin-scraper/internal/models"
)

// durationSeparator sits between a date range and its duration
const durationSeparator = "·"

// summaryFields are the headline texts of an experience entry
type summaryFields struct {
	Title     string
	Company   string
	TimeRange string
	Location  string
}

// classifySummary assigns the sibling texts of an experience summary to
// fields by position. full holds the complete text of each sibling, hidden
// helpers and secondary spans included; the duration test runs on it. This
// is a shape heuristic tied to the current page template, not a guaranteed
// parse:
//
//   - 4 siblings: title, company, time range, location
//   - 3 siblings whose third contains the duration separator: title,
//     company, time range
//   - 3 siblings otherwise: company, time range, location (single role
//     listed under the company heading)
//   - anything else: company only
func classifySummary(siblings, full []string) summaryFields {
	switch len(siblings) {
	case 4:
		return summaryFields{Title: siblings[0], Company: siblings[1], TimeRange: siblings[2], Location: siblings[3]}
	case 3:
		third := siblings[2]
		if len(full) == 3 {
			third = full[2]
		}
		if strings.Contains(third, durationSeparator) {
			return summaryFields{Title: siblings[0], Company: siblings[1], TimeRange: siblings[2]}
		}
		return summaryFields{Company: siblings[0], TimeRange: siblings[1], Location: siblings[2]}
	case 0:
		return summaryFields{}
	default:
		return summaryFields{Company: siblings[0]}
	}
}

func parseExperiences(doc *dom.Document, logger *zap.Logger) ([]models.Experience, error) {
	container, ok := doc.Find(listContainer)
	if !ok {
		return nil, fmt.Errorf("%w: experience list not found", models.ErrStructuralExtraction)
	}

	var experiences []models.Experience
	for i, item := range topLevelItems(container) {
		parsed, err := parseExperienceItem(item)
		if err != nil {
			logger.Debug("skipping experience item", zap.Int("index", i), zap.Error(err))
			continue
		}
		experiences = append(experiences, parsed...)
	}
	return experiences, nil
}

// parseExperienceItem turns one top-level list item into one Experience, or
// into one Experience per role when the item lists several roles at the same
// company. Items without a company link yield nothing.
func parseExperienceItem(item *dom.Element) ([]models.Experience, error) {
	ent, ok := item.Find(entity)
	if !ok {
		return nil, fmt.Errorf("%w: no entity in list item", models.ErrStructuralExtraction)
	}
	parts, err := splitEntity(ent)
	if err != nil {
		return nil, err
	}
	if parts.link == "" {
		return nil, nil
	}

	summary := classifySummary(parts.texts(), parts.fullTexts())

	var roles []*dom.Element
	if parts.sub != nil {
		if inner, ok := parts.sub.Find(nestedList); ok {
			roles = topLevelItems(inner)
		}
	}

	if len(roles) > 1 {
		experiences := make([]models.Experience, 0, len(roles))
		for _, role := range roles {
			title, timeRange, location, description := roleFields(role)
			from, to, duration := splitTimeRange(timeRange)
			experiences = append(experiences, models.Experience{
				InstitutionName: summary.Company,
				InstitutionURL:  parts.link,
				PositionTitle:   title,
				FromDate:        from,
				ToDate:          to,
				Duration:        duration,
				Location:        location,
				Description:     description,
			})
		}
		return experiences, nil
	}

	from, to, duration := splitTimeRange(summary.TimeRange)
	return []models.Experience{{
		InstitutionName: summary.Company,
		InstitutionURL:  parts.link,
		PositionTitle:   summary.Title,
		FromDate:        from,
		ToDate:          to,
		Duration:        duration,
		Location:        summary.Location,
		Description:     parts.description(),
	}}, nil
}

// roleFields reads a nested role entry. The link in its summary region holds
// title, time range and location as positional children.
func roleFields(role *dom.Element) (title, timeRange, location, description string) {
	var fields []*dom.Element
	if ent, ok := role.Find(entity); ok {
		if parts, err := splitEntity(ent); err == nil {
			description = parts.description()
			fields = parts.head.Children()
			if link, ok := parts.summary.Find(anchor); ok {
				fields = link.Children()
			}
		}
	} else if link, ok := role.Find(anchor); ok {
		fields = link.Children()
	}

	if len(fields) > 0 {
		title = spanText(fields[0])
	}
	if len(fields) > 1 {
		timeRange = spanText(fields[1])
	}
	if len(fields) > 2 {
		location = spanText(fields[2])
	}
	return title, timeRange, location, description
}
