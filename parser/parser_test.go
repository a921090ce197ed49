package parser

import (
	"testing"

	"github.com/aluiziolira/go-scrape-bestsellers/models"
)

func TestValidateProduct(t *testing.T) {
	tests := []struct {
		name    string
		product *models.Product
		wantErr bool
	}{
		{
			name: "valid product",
			product: &models.Product{
				Title:       "Widget",
				Price:       models.Text("$9.99"),
				Rating:      models.Number(4.5),
				ReviewCount: models.Number(120),
				ASIN:        "B000X",
			},
			wantErr: false,
		},
		{
			name: "textual rating and reviews",
			product: &models.Product{
				Title:       "Widget",
				Price:       models.Number(9.99),
				Rating:      models.Text("N/A"),
				ReviewCount: models.Text("no reviews yet"),
				ASIN:        "B000X",
			},
			wantErr: false,
		},
		{
			name:    "nil product",
			product: nil,
			wantErr: true,
		},
		{
			name: "missing title",
			product: &models.Product{
				Title: " ",
				ASIN:  "B000X",
			},
			wantErr: true,
		},
		{
			name: "missing asin",
			product: &models.Product{
				Title: "Widget",
			},
			wantErr: true,
		},
		{
			name: "rating out of range",
			product: &models.Product{
				Title:  "Widget",
				ASIN:   "B000X",
				Rating: models.Number(7),
			},
			wantErr: true,
		},
		{
			name: "negative reviews",
			product: &models.Product{
				Title:       "Widget",
				ASIN:        "B000X",
				ReviewCount: models.Number(-1),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProduct(tt.product)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateProduct() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "$9.99", expected: "$9.99"},
		{input: "  $9.99\n", expected: "$9.99"},
		{input: "$5.99 -\n   $9.99", expected: "$5.99 - $9.99"},
		{input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizePrice(tt.input); got != tt.expected {
				t.Errorf("NormalizePrice(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseRating(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		ok       bool
	}{
		{input: "4.5 out of 5 stars", expected: 4.5, ok: true},
		{input: "4,7 von 5 Sternen", expected: 4.7, ok: true},
		{input: "5 out of 5 stars", expected: 5, ok: true},
		{input: "", expected: 0, ok: false},
		{input: "no rating", expected: 0, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseRating(tt.input)
			if got != tt.expected || ok != tt.ok {
				t.Errorf("ParseRating(%q) = %v, %v, want %v, %v", tt.input, got, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestParseReviewCount(t *testing.T) {
	tests := []struct {
		input    string
		expected int
		ok       bool
	}{
		{input: "120", expected: 120, ok: true},
		{input: "1,234", expected: 1234, ok: true},
		{input: "(12.345)", expected: 12345, ok: true},
		{input: "1,234,567 ratings", expected: 1234567, ok: true},
		{input: "1.2K", expected: 1200, ok: true},
		{input: "3k ratings", expected: 3000, ok: true},
		{input: "2,5M", expected: 2500000, ok: true},
		{input: "", expected: 0, ok: false},
		{input: "no reviews", expected: 0, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseReviewCount(tt.input)
			if got != tt.expected || ok != tt.ok {
				t.Errorf("ParseReviewCount(%q) = %d, %v, want %d, %v", tt.input, got, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{input: "#1", expected: 1},
		{input: " #42 ", expected: 42},
		{input: "#1,234", expected: 1234},
		{input: "#1.234", expected: 1234},
		{input: "", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParsePosition(tt.input); got != tt.expected {
				t.Errorf("ParsePosition(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRatingAndReviewValues(t *testing.T) {
	if got := RatingValue("4.5 out of 5 stars"); got != models.Number(4.5) {
		t.Errorf("RatingValue numeric = %#v", got)
	}
	if got := RatingValue("  N/A "); got != models.Text("N/A") {
		t.Errorf("RatingValue text = %#v", got)
	}
	if got := RatingValue(""); !got.IsEmpty() {
		t.Errorf("RatingValue empty = %#v, want empty", got)
	}
	if got := ReviewCountValue("1.2K"); got != models.Number(1200) {
		t.Errorf("ReviewCountValue numeric = %#v", got)
	}
	if got := ReviewCountValue(""); !got.IsEmpty() {
		t.Errorf("ReviewCountValue empty = %#v, want empty", got)
	}
}

func TestNormalizeValue(t *testing.T) {
	if got := NormalizeValue(models.Text("  $5.99 -\n $9.99 ")); got != models.Text("$5.99 - $9.99") {
		t.Errorf("NormalizeValue text = %q", got.String())
	}
	if got := NormalizeValue(models.Number(9.99)); got != models.Number(9.99) {
		t.Errorf("NormalizeValue number = %#v", got)
	}
}

func TestASINFromURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "https://www.amazon.com/Echo-Dot/dp/B09B8V1LZ3/ref=zg_bs_electronics_1", expected: "B09B8V1LZ3"},
		{input: "https://www.amazon.com/gp/product/B07FZ8S74R?psc=1", expected: "B07FZ8S74R"},
		{input: "https://www.amazon.com/dp/B0000000AA", expected: "B0000000AA"},
		{input: "https://www.amazon.com/gp/bestsellers", expected: ""},
		{input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ASINFromURL(tt.input); got != tt.expected {
				t.Errorf("ASINFromURL(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
