// Package models defines data structures for the scraper.
package models

import "time"

// Product represents one entry of a bestseller listing.
type Product struct {
	Position    int       `json:"position"`
	Title       string    `json:"title"`
	Price       Value     `json:"price"`
	Rating      Value     `json:"rating"`
	ReviewCount Value     `json:"review_count"`
	ASIN        string    `json:"asin"`
	Description string    `json:"description"`
	URL         string    `json:"url,omitempty"`
	ScrapedAt   time.Time `json:"scraped_at,omitempty"`
}

// ScraperResult holds the overall result of a scraping operation
type ScraperResult struct {
	StartTime    time.Time
	EndTime      time.Time
	TotalCount   int
	ErrorCount   int
	FailedURLs   []string
	ErrorsByType map[string]int
	RetryCount   int
	RequestCount int
	PageCount    int
	DetailCount  int
}
