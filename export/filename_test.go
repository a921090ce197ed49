package export

import (
	"strings"
	"testing"
	"time"
)

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "Tools/Hardware", expected: "Tools_Hardware"},
		{input: "Home & Kitchen", expected: "Home & Kitchen"},
		{input: `a<b>c:d"e/f\g|h?i*j`, expected: "a_b_c_d_e_f_g_h_i_j"},
		{input: "Electronics", expected: "Electronics"},
		{input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SanitizeLabel(tt.input); got != tt.expected {
				t.Errorf("SanitizeLabel(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSanitizeLabelRemovesEveryIllegalCharacter(t *testing.T) {
	const illegal = `<>:"/\|?*`
	for _, r := range illegal {
		label := "Books " + string(r) + " Music " + string(r)
		got := SanitizeLabel(label)
		if strings.ContainsAny(got, illegal) {
			t.Fatalf("SanitizeLabel(%q) = %q still contains illegal characters", label, got)
		}
		if len([]rune(got)) != len([]rune(label)) {
			t.Fatalf("SanitizeLabel(%q) changed length to %q", label, got)
		}
	}
}

func TestTimestampAndFilename(t *testing.T) {
	ts := Timestamp(time.Date(2026, 10, 16, 9, 30, 5, 0, time.UTC))
	if ts != "20261016_093005" {
		t.Fatalf("timestamp=%q, want 20261016_093005", ts)
	}
	if got := Filename("Tools_Hardware", ts, FormatXLSX); got != "Tools_Hardware_bestsellers_20261016_093005.xlsx" {
		t.Fatalf("filename=%q", got)
	}
	if got := Filename("Tools_Hardware", ts, FormatCSV); got != "Tools_Hardware_bestsellers_20261016_093005.csv" {
		t.Fatalf("filename=%q", got)
	}
}
