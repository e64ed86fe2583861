package services

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Placeholder is rendered for any missing value.
const Placeholder = "—"

// round1 rounds half away from zero to one decimal place.
func round1(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}

// groupIndian renders a non-negative integer string with Indian digit
// grouping: the last three digits, then pairs (12,34,567).
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]

	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(append(parts, tail), ",")
}

// FormatNumber renders v with Indian grouping and up to three fraction digits.
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Placeholder
	}
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}

	s := decimal.NewFromFloat(v).Round(3).String()
	intPart, frac, _ := strings.Cut(s, ".")
	out := sign + groupIndian(intPart)
	if frac != "" {
		out += "." + frac
	}
	return out
}

// FormatPrice renders a price in whole rupees, or the placeholder when absent.
func FormatPrice(p *float64) string {
	if p == nil {
		return Placeholder
	}
	return FormatAmount(*p)
}

// FormatAmount renders a present amount in whole rupees.
func FormatAmount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Placeholder
	}
	rounded := decimal.NewFromFloat(v).Round(0)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	return sign + "₹" + groupIndian(rounded.String())
}

// FormatCount renders an integer count with Indian grouping.
func FormatCount(n int) string {
	if n < 0 {
		return "-" + groupIndian(strconv.Itoa(-n))
	}
	return groupIndian(strconv.Itoa(n))
}

// FormatRating renders a rating with one decimal. Absent and zero ratings
// both render the placeholder since zero means "not rated" upstream.
func FormatRating(r *float64) string {
	if r == nil || *r == 0 {
		return Placeholder
	}
	return strconv.FormatFloat(round1(*r), 'f', 1, 64)
}

// FormatPercent renders a percentage with one decimal and a trailing %.
func FormatPercent(v float64) string {
	return strconv.FormatFloat(round1(v), 'f', 1, 64) + "%"
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC1123,
}

// FormatDate renders a backend timestamp as "02 Jan, 15:04". Unparseable
// input is returned as-is, empty input renders the placeholder.
func FormatDate(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("02 Jan, 15:04")
		}
	}
	return s
}

// truncate cuts s to at most max runes.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// orUnknown returns "?" for an empty string.
func orUnknown(s string) string {
	if s == "" {
		return "?"
	}
	return s
}

// titleWords upper-cases the first letter of every word.
func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
