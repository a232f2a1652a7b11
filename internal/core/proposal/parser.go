package proposal

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// The lazy name stops at the first colon that is directly followed by a ₹ amount,
// so a line with several amounts yields only its first.
var lineItemPattern = regexp.MustCompile(`^(.+?):[\s\p{Zs}]*₹([\d,]+)`)

// Format normalises raw generator output. Only surrounding whitespace is removed.
func Format(raw string) string {
	return strings.TrimSpace(raw)
}

// Parse extracts "Name: ₹1,50,000" line items in line order. Lines that don't match
// are ignored, as are amounts that are all commas or overflow int64. It never fails.
// RawContent is left empty for the caller to fill.
func Parse(formatted string) QuotationResult {
	result := QuotationResult{Services: []LineItem{}}

	for _, line := range strings.Split(formatted, "\n") {
		line = strings.TrimSuffix(line, "\r")

		m := lineItemPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		digits := strings.ReplaceAll(m[2], ",", "")
		if digits == "" {
			continue
		}
		cost, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			continue
		}
		if result.TotalCost > math.MaxInt64-cost {
			continue
		}

		result.Services = append(result.Services, LineItem{
			Name: strings.TrimSpace(m[1]),
			Cost: cost,
		})
		result.TotalCost += cost
	}

	return result
}
