package scraper

import (
	"fmt"

	"go.uber.org/zap"

	"linkedin-scraper/internal/dom"
	"linkedin-scraper/internal/models"
)

func parseEducations(doc *dom.Document, logger *zap.Logger) ([]models.Education, error) {
	container, ok := doc.Find(listContainer)
	if !ok {
		return nil, fmt.Errorf("%w: education list not found", models.ErrStructuralExtraction)
	}

	var educations []models.Education
	for i, item := range topLevelItems(container) {
		education, err := parseEducationItem(item)
		if err != nil {
			logger.Debug("skipping education item", zap.Int("index", i), zap.Error(err))
			continue
		}
		educations = append(educations, education)
	}
	return educations, nil
}

// parseEducationItem reads institution, degree and time range from up to
// three summary siblings
func parseEducationItem(item *dom.Element) (models.Education, error) {
	ent, ok := item.Find(entity)
	if !ok {
		return models.Education{}, fmt.Errorf("%w: no entity in list item", models.ErrStructuralExtraction)
	}
	parts, err := splitEntity(ent)
	if err != nil {
		return models.Education{}, err
	}

	texts := parts.texts()
	if len(texts) == 0 {
		return models.Education{}, fmt.Errorf("%w: education entry has no name", models.ErrStructuralExtraction)
	}

	education := models.Education{
		InstitutionName: texts[0],
		InstitutionURL:  parts.link,
		Description:     parts.description(),
	}
	if len(texts) > 1 {
		education.Degree = texts[1]
	}
	if len(texts) > 2 {
		start, end := splitDateRange(texts[2])
		education.Start = ParseCoarseDate(start)
		education.End = ParseCoarseDate(end)
	}
	return education, nil
}
