package scraper

import (
	"strings"

	"linkedin-scraper/internal/dom"
	"linkedin-scraper/internal/models"
)

var (
	topPanel       = dom.XPath("//*[@class='mt2 relative']")
	nameHeading    = dom.CSS("h1")
	mainHeading    = dom.CSS("main h1")
	locationLine   = dom.XPath("//*[@class='text-body-small inline t-black--light break-words']")
	headlineLine   = dom.CSS(".ph5 .text-body-medium.break-words")
	profilePicture = dom.CSS(".pv-top-card-profile-picture img")
	aboutAnchor    = dom.CSS("#about")
	aboutText      = dom.CSS(".display-flex")
)

const openToWorkMarker = "#OPEN_TO_WORK"

// parseTopCard fills the identity fields of person. Each field is optional
// and left empty when its element is missing.
func parseTopCard(doc *dom.Document, person *models.Person) {
	if top, ok := doc.Find(topPanel); ok {
		if h1, ok := top.Find(nameHeading); ok {
			person.Name = h1.Text()
		}
		if headline, ok := top.Find(headlineLine); ok {
			person.Headline = headline.Text()
		}
	}
	if person.Name == "" {
		if h1, ok := doc.Find(mainHeading); ok {
			person.Name = h1.Text()
		}
	}
	if person.Headline == "" {
		if headline, ok := doc.Find(headlineLine); ok {
			person.Headline = headline.Text()
		}
	}

	if location, ok := doc.Find(locationLine); ok {
		person.Location = location.Text()
	}

	if img, ok := doc.Find(profilePicture); ok {
		person.OpenToWork = strings.Contains(img.AttrOr("title", ""), openToWorkMarker)
	}

	person.About = parseAbout(doc)
}

func parseAbout(doc *dom.Document) string {
	anchor, ok := doc.Find(aboutAnchor)
	if !ok {
		return ""
	}
	section, ok := anchor.Parent()
	if !ok {
		return ""
	}
	text, ok := section.Find(aboutText)
	if !ok {
		return ""
	}
	return text.Text()
}
