package parser

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/aluiziolira/go-scrape-bestsellers/models"
)

var (
	ratingPattern   = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
	countPattern    = regexp.MustCompile(`(\d+(?:[.,]\d+)*)\s*([KkMm])?\b`)
	positionPattern = regexp.MustCompile(`\d+(?:[.,]\d{3})*`)
	spacePattern    = regexp.MustCompile(`\s+`)
	asinPattern     = regexp.MustCompile(`/(?:dp|gp/product)/([A-Z0-9]{10})(?:[/?]|$)`)
)

// ValidateProduct ensures the scraper captured the required fields.
// Rating and review count are only range checked when they are numeric.
func ValidateProduct(p *models.Product) error {
	if p == nil {
		return fmt.Errorf("product is nil")
	}
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("product missing title")
	}
	if strings.TrimSpace(p.ASIN) == "" {
		return fmt.Errorf("product missing asin for %s", p.Title)
	}
	if rating, ok := p.Rating.Float(); ok && (rating < 0 || rating > 5) {
		return fmt.Errorf("rating %.1f out of range for %s", rating, p.ASIN)
	}
	if reviews, ok := p.ReviewCount.Float(); ok && reviews < 0 {
		return fmt.Errorf("negative review count for %s", p.ASIN)
	}
	return nil
}

// NormalizePrice collapses whitespace inside the price text. The currency
// symbol is kept since listings mix currencies and ranges ("$5.99 - $9.99").
func NormalizePrice(price string) string {
	return NormalizeText(price)
}

// NormalizeText trims and collapses runs of whitespace to a single space.
func NormalizeText(text string) string {
	return strings.TrimSpace(spacePattern.ReplaceAllString(text, " "))
}

// NormalizeValue normalizes textual values and leaves numbers untouched.
func NormalizeValue(v models.Value) models.Value {
	if _, ok := v.Float(); ok {
		return v
	}
	return models.Text(NormalizeText(v.String()))
}

// ParseRating extracts the star rating from text like "4.5 out of 5 stars".
func ParseRating(text string) (float64, bool) {
	match := ratingPattern.FindString(text)
	if match == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(strings.Replace(match, ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// ParseReviewCount converts "1,234", "(1.234)" or "1.2K" into a count.
// Without a K or M suffix every separator is treated as a thousands separator.
func ParseReviewCount(text string) (int, bool) {
	match := countPattern.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}
	digits, suffix := match[1], strings.ToUpper(match[2])
	if suffix == "" {
		value, err := strconv.Atoi(stripSeparators(digits))
		if err != nil {
			return 0, false
		}
		return value, true
	}

	value, err := strconv.ParseFloat(strings.Replace(digits, ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	scale := 1e3
	if suffix == "M" {
		scale = 1e6
	}
	return int(math.Round(value * scale)), true
}

// ParsePosition reads a listing badge such as "#12" or "#1,234". Zero means unknown.
func ParsePosition(text string) int {
	match := positionPattern.FindString(text)
	if match == "" {
		return 0
	}
	value, err := strconv.Atoi(stripSeparators(match))
	if err != nil {
		return 0
	}
	return value
}

// RatingValue parses a rating, keeping the normalized text when it has no number.
func RatingValue(text string) models.Value {
	if rating, ok := ParseRating(text); ok {
		return models.Number(rating)
	}
	return models.Text(NormalizeText(text))
}

// ReviewCountValue parses a review count, keeping the normalized text when it has no number.
func ReviewCountValue(text string) models.Value {
	if count, ok := ParseReviewCount(text); ok {
		return models.Number(float64(count))
	}
	return models.Text(NormalizeText(text))
}

func stripSeparators(s string) string {
	return strings.NewReplacer(",", "", ".", "").Replace(s)
}

// ASINFromURL extracts the product identifier from a /dp/ or /gp/product/ link.
func ASINFromURL(link string) string {
	match := asinPattern.FindStringSubmatch(link)
	if match == nil {
		return ""
	}
	return match[1]
}
