package models

import "time"

// Experience is one position held at an institution
type Experience struct {
	InstitutionName string `json:"institution_name"`
	InstitutionURL  string `json:"linkedin_url"`
	PositionTitle   string `json:"position_title"`
	FromDate        string `json:"from_date"`
	ToDate          string `json:"to_date"`
	Duration        string `json:"duration"`
	Location        string `json:"location"`
	Description     string `json:"description"`
}

// Education is one entry of the education section
type Education struct {
	InstitutionName string     `json:"institution_name"`
	InstitutionURL  string     `json:"linkedin_url"`
	Degree          string     `json:"degree"`
	Description     string     `json:"description"`
	Start           *time.Time `json:"start"`
	End             *time.Time `json:"end"`
}

// Interest is a company, group, school or person the member follows
type Interest struct {
	Name string `json:"name"`
	URL  string `json:"linkedin_url"`
	Type string `json:"type"`
}

// Skill is a single named skill
type Skill struct {
	Name string `json:"name"`
}

// Person accumulates everything scraped for one profile
type Person struct {
	ProfileURL  string
	Name        string
	Headline    string
	Location    string
	About       string
	OpenToWork  bool
	Experiences []Experience
	Educations  []Education
	Skills      []string
	Interests   []Interest
}

// Profile is the assembled record returned to callers
type Profile struct {
	GivenName          string       `json:"given_name"`
	Surname            string       `json:"surname"`
	Email              string       `json:"email"`
	CV                 string       `json:"cv"`
	Summary            string       `json:"summary"`
	IndustryName       string       `json:"industry_name"`
	GeoLocation        string       `json:"geo_location"`
	LinkedInProfileURL string       `json:"linkedin_profile_url"`
	OpenToWork         bool         `json:"open_to_work"`
	Experiences        []Experience `json:"experiences"`
	Educations         []Education  `json:"educations"`
	Skills             []Skill      `json:"skills"`
	Interests          []Interest   `json:"interests"`
}

// SearchResult represents one hit of the people search
type SearchResult struct {
	PersonName string `json:"person_name"`
	PersonURL  string `json:"person_linkedin_url"`
	ProfileID  string `json:"profile_id"`
	Title      string `json:"title"`
}
