package booking

import (
	"regexp"
	"strconv"
	"strings"
)

// HeuristicVersion pins the guest-name/amount extraction heuristics. Bump it
// whenever the boilerplate list or the amount patterns change, so downstream
// consumers can tell extractions apart.
const HeuristicVersion = 1

// boilerplatePrefixes are platform prefixes stripped from event summaries
// before treating the remainder as a guest name.
var boilerplatePrefixes = []string{
	"reserved -",
	"reserved:",
	"reservation -",
	"reservation:",
	"booked -",
	"booked:",
	"booking -",
	"booking:",
	"guest:",
}

// platformSuffix strips trailing platform attributions like "(Airbnb)".
var platformSuffix = regexp.MustCompile(`(?i)\s*\((?:airbnb|booking(?:\.com)?|vrbo|expedia|homeaway|tripadvisor)\)\s*$`)

// amountPatterns match currency-labeled amounts in free text, symbol-first
// and symbol-last. Best-effort enrichment only, never the sole source of
// truth for financial records.
var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:€|\$|£|EUR|USD|GBP)\s*([0-9]+(?:[.,][0-9]{1,2})?)`),
	regexp.MustCompile(`(?i)([0-9]+(?:[.,][0-9]{1,2})?)\s*(?:€|EUR|USD|GBP)`),
	regexp.MustCompile(`(?i)(?:total|payout|amount|price)\s*[:\-]?\s*([0-9]+(?:[.,][0-9]{1,2})?)`),
}

// ExtractGuestName derives a guest name from an event summary by stripping
// platform boilerplate. It returns "" when no real name remains.
func ExtractGuestName(summary string) string {
	name := strings.TrimSpace(summary)

	for _, prefix := range boilerplatePrefixes {
		if len(name) >= len(prefix) && strings.EqualFold(name[:len(prefix)], prefix) {
			name = strings.TrimSpace(name[len(prefix):])
			break
		}
	}
	name = platformSuffix.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)

	if !HasRealGuest(name) {
		return ""
	}
	return name
}

// ExtractAmount finds the first currency-labeled amount in the text and
// returns it, or zero when none matches.
func ExtractAmount(text string) float64 {
	for _, pattern := range amountPatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		value := strings.ReplaceAll(m[1], ",", ".")
		amount, err := strconv.ParseFloat(value, 64)
		if err == nil && amount > 0 {
			return amount
		}
	}
	return 0
}
