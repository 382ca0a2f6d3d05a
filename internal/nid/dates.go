package nid

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dateMatcher is one entry in the ordered list of date pattern matchers.
// The first matcher to succeed on a candidate string wins.
type dateMatcher struct {
	name  string
	re    *regexp.Regexp
	valid func(groups []string) bool
}

var dateMatchers = []dateMatcher{
	{
		// DD/MM/YYYY, DD-MM-YYYY or DD.MM.YYYY
		name:  "numeric-dmy",
		re:    regexp.MustCompile(`\b(\d{2})[/\-.](\d{2})[/\-.](\d{4})\b`),
		valid: validNumericDMY,
	},
	{
		// DD Mon YYYY, e.g. "30 Dec 1996"
		name:  "day-month-year",
		re:    regexp.MustCompile(`(?i)\b(\d{2})\s+(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+(\d{4})\b`),
		valid: validDayMonthYear,
	},
	{
		// Mon DD, YYYY, e.g. "Dec 30, 1996"
		name:  "month-day-year",
		re:    regexp.MustCompile(`(?i)\b(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+(\d{2}),?\s+(\d{4})\b`),
		valid: validMonthDayYear,
	},
}

// findDate returns the first calendar-plausible date found in the candidate
// strings, trying matchers in priority order per candidate.
func findDate(candidates []string) string {
	for _, candidate := range candidates {
		for _, matcher := range dateMatchers {
			groups := matcher.re.FindStringSubmatch(candidate)
			if groups == nil {
				continue
			}
			if matcher.valid(groups[1:]) {
				return groups[0]
			}
		}
	}
	return ""
}

func validNumericDMY(groups []string) bool {
	day, _ := strconv.Atoi(groups[0])
	month, _ := strconv.Atoi(groups[1])
	return day >= 1 && day <= 31 && month >= 1 && month <= 12 && plausibleBirthYear(groups[2])
}

func validDayMonthYear(groups []string) bool {
	day, _ := strconv.Atoi(groups[0])
	_, known := monthNumbers[strings.ToLower(groups[1])]
	return day >= 1 && day <= 31 && known && plausibleBirthYear(groups[2])
}

func validMonthDayYear(groups []string) bool {
	_, known := monthNumbers[strings.ToLower(groups[0])]
	day, _ := strconv.Atoi(groups[1])
	return day >= 1 && day <= 31 && known && plausibleBirthYear(groups[2])
}

func plausibleBirthYear(yearStr string) bool {
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return false
	}
	return year >= 1900 && year <= time.Now().Year()
}
