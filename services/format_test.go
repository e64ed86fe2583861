package services

import (
	"math"
	"testing"

	"pricewatch/models"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "₹0"},
		{999, "₹999"},
		{1000, "₹1,000"},
		{1234567, "₹12,34,567"},
		{1299.5, "₹1,300"},
		{-2500, "-₹2,500"},
		{math.NaN(), Placeholder},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.in); got != tt.want {
			t.Errorf("FormatAmount(%v): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPriceAbsentVersusZero(t *testing.T) {
	if got := FormatPrice(nil); got != Placeholder {
		t.Errorf("nil price: got %q, want placeholder", got)
	}
	if got := FormatPrice(models.Float(0)); got != "₹0" {
		t.Errorf("zero price: got %q, want ₹0", got)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{2000, "2,000"},
		{100000, "1,00,000"},
		{12.5, "12.5"},
		{0, "0"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%v): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatRating(t *testing.T) {
	if got := FormatRating(nil); got != Placeholder {
		t.Errorf("nil: got %q", got)
	}
	if got := FormatRating(models.Float(0)); got != Placeholder {
		t.Errorf("zero: got %q", got)
	}
	if got := FormatRating(models.Float(4.25)); got != "4.3" {
		t.Errorf("4.25: got %q, want 4.3", got)
	}
}

func TestFormatPercentAndCount(t *testing.T) {
	if got := FormatPercent(20); got != "20.0%" {
		t.Errorf("FormatPercent: got %q", got)
	}
	if got := FormatPercent(12.34); got != "12.3%" {
		t.Errorf("FormatPercent: got %q", got)
	}
	if got := FormatCount(1500); got != "1,500" {
		t.Errorf("FormatCount: got %q", got)
	}
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-03-05T14:07:00", "05 Mar, 14:07"},
		{"2024-03-05T14:07:00.123456", "05 Mar, 14:07"},
		{"2024-03-05T14:07:00Z", "05 Mar, 14:07"},
		{"", Placeholder},
		{"yesterday", "yesterday"},
	}
	for _, tt := range tests {
		if got := FormatDate(tt.in); got != tt.want {
			t.Errorf("FormatDate(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncateCountsRunes(t *testing.T) {
	if got := truncate("₹₹₹₹", 2); got != "₹₹" {
		t.Errorf("truncate: got %q", got)
	}
	if got := titleWords("quick analysis"); got != "Quick Analysis" {
		t.Errorf("titleWords: got %q", got)
	}
}
