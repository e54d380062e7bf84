package scraper

import (
	"linkedin-scraper/internal/dom"
)

var (
	skillLink = dom.CSS("a[data-field=skill_page_skill_topic]")
	skillName = dom.CSS(".hoverable-link-text")
)

// parseSkills returns skill names in page order
func parseSkills(doc *dom.Document) []string {
	container, ok := doc.Find(listContainer)
	if !ok {
		return nil
	}

	var skills []string
	for _, link := range container.FindAll(skillLink) {
		name, ok := link.Find(skillName)
		if !ok {
			continue
		}
		if first, ok := name.Child(0); ok {
			name = first
		}
		if text := name.Text(); text != "" {
			skills = append(skills, text)
		}
	}
	return skills
}
