package nid

import (
	"regexp"
	"strings"
)

// maxAddressParts bounds address accumulation to a reasonable number of lines.
const maxAddressParts = 10

var (
	longDigitRun      = regexp.MustCompile(`\d{10,}`)
	repeatedCommas    = regexp.MustCompile(`,\s*,+`)
	bloodGroupPattern = regexp.MustCompile(`(?i)\b(AB|A|B|O)[+-]`)
)

// consolidateAddress merges multi-line, multi-script address fragments into a
// single normalized line. Accumulation starts at the first anchor item (a
// Latin address keyword or Bengali-script text) and ends at a stop word, an
// unrelated label that terminates the address block. Absence is returned when
// no anchor is found: for this field a false positive is worse than missing
// data.
func (p *Parser) consolidateAddress(texts []string) string {
	var parts []string
	inSection := false

	for _, text := range texts {
		lower := strings.ToLower(text)

		if inSection && containsAny(lower, p.cfg.AddressStopWords) {
			break
		}

		anchor := containsAny(lower, p.cfg.AddressKeywords) || hasBengali(text)
		if !inSection {
			if !anchor {
				continue
			}
			inSection = true
		}

		// Long digit runs on the back are the NID number, not address content.
		if longDigitRun.MatchString(text) {
			continue
		}
		if len(text) < 2 {
			continue
		}

		// A bare label ("Address:") opens the section without contributing text.
		if anchor && isBareLabel(text) {
			continue
		}

		// Anchors, short alphanumeric fragments (house/road/ward numbers) and
		// plain continuation lines all accumulate until a stop word appears.
		parts = append(parts, text)
		if len(parts) >= maxAddressParts {
			break
		}
	}

	if len(parts) == 0 {
		return ""
	}

	address := strings.Join(parts, ", ")
	address = repeatedCommas.ReplaceAllString(address, ",")
	address = strings.Join(strings.Fields(address), " ")
	return strings.TrimSuffix(strings.TrimSpace(address), ",")
}

// isBareLabel reports whether a keyword line carries no content of its own
// (nothing after its colon, or nothing but the label word).
func isBareLabel(text string) bool {
	if idx := strings.Index(text, ":"); idx >= 0 {
		return strings.TrimSpace(text[idx+1:]) == ""
	}
	return len(strings.Fields(text)) == 1
}

// extractBloodGroup returns the blood group printed next to a blood label on
// the back side, or empty when absent.
func extractBloodGroup(texts []string) string {
	for _, text := range texts {
		lower := strings.ToLower(text)
		if !strings.Contains(lower, "blood") && !strings.Contains(text, "রক্ত") {
			continue
		}
		if match := bloodGroupPattern.FindString(text); match != "" {
			return strings.ToUpper(match)
		}
	}
	return ""
}
