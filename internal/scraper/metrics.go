package scraper

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sectionRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkedin_scrape_sections_total",
		Help: "Profile sections scraped by section and outcome",
	}, []string{"section", "outcome"})

	sectionItems = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "linkedin_scrape_section_items",
		Help:    "Records extracted per profile section",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
	}, []string{"section"})

	searchResults = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "linkedin_search_results",
		Help:    "Results returned per people search",
		Buckets: []float64{0, 1, 2, 5, 10, 20},
	})
)
