package orchestrator

import (
	"fmt"
	"strings"

	"linkedin-scraper/internal/models"
	"linkedin-scraper/internal/utils"
)

// EmailDomain is appended to the profile id to synthesize a contact address
const EmailDomain = "linkedin.com"

// BuildProfile shapes a scraped person into the returned Profile. The name is
// split on whitespace into given name and surname; list fields are never nil.
func BuildProfile(person *models.Person, profileURL string) (*models.Profile, error) {
	if person == nil {
		return nil, fmt.Errorf("%w: no person scraped for %s", models.ErrIncompleteRecord, profileURL)
	}

	var givenName, surname string
	names := strings.Fields(person.Name)
	if len(names) > 0 {
		givenName = names[0]
	}
	if len(names) > 1 {
		surname = names[1]
	}

	skills := make([]models.Skill, 0, len(person.Skills))
	for _, name := range person.Skills {
		skills = append(skills, models.Skill{Name: name})
	}

	return &models.Profile{
		GivenName:          givenName,
		Surname:            surname,
		Email:              utils.DeriveProfileID(profileURL) + "@" + EmailDomain,
		CV:                 person.About,
		IndustryName:       person.Headline,
		GeoLocation:        person.Location,
		LinkedInProfileURL: profileURL,
		OpenToWork:         person.OpenToWork,
		Experiences:        orEmpty(person.Experiences),
		Educations:         orEmpty(person.Educations),
		Skills:             skills,
		Interests:          orEmpty(person.Interests),
	}, nil
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return append([]T(nil), items...)
}
