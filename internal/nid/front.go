package nid

import (
	"regexp"
	"strings"
	"unicode"
)

// rule is one entry in a priority-ordered extraction table. Rules are
// evaluated in order; the first rule producing a non-empty value wins.
type rule struct {
	name    string
	extract func(p *Parser, texts []string) string
}

var nidNumberRules = []rule{
	{name: "labelled-digit-run", extract: (*Parser).nidNearLabel},
	{name: "spaced-digit-groups", extract: (*Parser).nidSpacedGroups},
	{name: "bare-digit-run", extract: (*Parser).nidBareRun},
}

var dateOfBirthRules = []rule{
	{name: "labelled-date", extract: (*Parser).dobNearLabel},
	{name: "any-item-date", extract: (*Parser).dobAnyItem},
	{name: "windowed-date", extract: (*Parser).dobWindowed},
}

var nameRules = []rule{
	{name: "labelled-name", extract: (*Parser).nameNearLabel},
	{name: "uppercase-shape", extract: (*Parser).nameUppercaseShape},
}

func (p *Parser) apply(rules []rule, texts []string) string {
	for _, r := range rules {
		if value := r.extract(p, texts); value != "" {
			return value
		}
	}
	return ""
}

func (p *Parser) extractNIDNumber(texts []string) string {
	return p.apply(nidNumberRules, texts)
}

func (p *Parser) extractDateOfBirth(texts []string) string {
	return p.apply(dateOfBirthRules, texts)
}

func (p *Parser) extractName(texts []string) string {
	return p.apply(nameRules, texts)
}

// --- NID number ---

var (
	digitRunPattern    = regexp.MustCompile(`\d+`)
	nonDigitSpace      = regexp.MustCompile(`[^0-9\s]`)
	spacedGroupPattern = regexp.MustCompile(`\d+(?:\s+\d+)+`)
)

// nidNearLabel looks for a 10-17 digit run in the labelled item or the three
// items following it. Space-separated digit groups (e.g. "600 124 4158") are
// normalized by removing the spaces.
func (p *Parser) nidNearLabel(texts []string) string {
	for i, text := range texts {
		if !containsAny(strings.ToLower(text), nidKeywords) {
			continue
		}
		end := min(i+4, len(texts))
		for _, candidate := range texts[i:end] {
			for _, run := range digitRunPattern.FindAllString(candidate, -1) {
				if len(run) >= 10 && len(run) <= 17 {
					return run
				}
			}
			if joined := joinSpacedDigits(candidate); len(joined) >= 10 && len(joined) <= 17 {
				return joined
			}
		}
	}
	return ""
}

// nidSpacedGroups accepts space-separated digit groups anywhere, requiring one
// of the known NID lengths since no label vouches for the candidate.
func (p *Parser) nidSpacedGroups(texts []string) string {
	for _, text := range texts {
		if joined := joinSpacedDigits(text); isNIDLength(len(joined)) {
			return joined
		}
	}
	return ""
}

// nidBareRun accepts a contiguous digit run of a known NID length anywhere.
func (p *Parser) nidBareRun(texts []string) string {
	for _, text := range texts {
		for _, run := range digitRunPattern.FindAllString(text, -1) {
			if isNIDLength(len(run)) {
				return run
			}
		}
	}
	return ""
}

func joinSpacedDigits(text string) string {
	cleaned := nonDigitSpace.ReplaceAllString(text, "")
	group := spacedGroupPattern.FindString(cleaned)
	if group == "" {
		return ""
	}
	return strings.Join(strings.Fields(group), "")
}

// NID numbers come in 10 (smart card), 13 and 17 digit formats.
func isNIDLength(n int) bool {
	return n == 10 || n == 13 || n == 17
}

// --- Date of birth ---

// dobNearLabel matches dates in a labelled item and in concatenations of the
// labelled item with up to five following items, recovering dates split
// across recognition fragments.
func (p *Parser) dobNearLabel(texts []string) string {
	for i, text := range texts {
		if !containsAny(strings.ToLower(text), dobKeywords) {
			continue
		}
		candidates := []string{text}
		combined := text
		for offset := 1; offset <= 5 && i+offset < len(texts); offset++ {
			combined += " " + texts[i+offset]
			candidates = append(candidates, combined)
		}
		if date := findDate(candidates); date != "" {
			return date
		}
	}
	return ""
}

// dobAnyItem accepts the first date found in any single item; the label
// increases priority (rule above) but is not required.
func (p *Parser) dobAnyItem(texts []string) string {
	return findDate(texts)
}

// dobWindowed concatenates adjacent items (windows of 2..5) to recover dates
// whose label and digits were recognized as separate fragments.
func (p *Parser) dobWindowed(texts []string) string {
	for window := 2; window <= 5; window++ {
		for i := 0; i+window <= len(texts); i++ {
			candidate := strings.Join(texts[i:i+window], " ")
			if date := findDate([]string{candidate}); date != "" {
				return date
			}
		}
	}
	return ""
}

// --- Name ---

// nameNearLabel extracts the name from a labelled item: the text after the
// colon when present, otherwise the following items are aggregated while they
// remain plausible name lines, up to the configured limit.
func (p *Parser) nameNearLabel(texts []string) string {
	for i, text := range texts {
		if !containsAny(strings.ToLower(text), nameKeywords) {
			continue
		}
		if idx := strings.Index(text, ":"); idx >= 0 {
			if remainder := strings.TrimSpace(text[idx+1:]); len(remainder) > 2 {
				return remainder
			}
		}
		if collected := p.collectNameLines(texts, i+1); len(collected) > 2 {
			return collected
		}
	}
	return ""
}

// collectNameLines aggregates consecutive plausible name lines starting at
// index start, joined with single spaces.
func (p *Parser) collectNameLines(texts []string, start int) string {
	var parts []string
	for i := start; i < len(texts) && len(parts) < p.cfg.MaxNameLines; i++ {
		if !isPlausibleNameLine(texts[i]) {
			break
		}
		parts = append(parts, texts[i])
	}
	return strings.Join(parts, " ")
}

// nameUppercaseShape falls back to the first leading item shaped like a
// printed name: multiple capitalized words, no digits. Consecutive all-caps
// lines are combined to recover names split across lines.
func (p *Parser) nameUppercaseShape(texts []string) string {
	limit := min(len(texts), 10)
	for i := 0; i < limit; i++ {
		text := texts[i]
		if !isAllUpperWords(text) || len(strings.Fields(text)) < 2 || len(text) <= 5 {
			continue
		}
		parts := []string{text}
		for j := i + 1; j < len(texts) && len(parts) < p.cfg.MaxNameLines; j++ {
			if !isAllUpperWords(texts[j]) {
				break
			}
			parts = append(parts, texts[j])
		}
		return strings.Join(parts, " ")
	}
	return ""
}

// isPlausibleNameLine reports whether a line can continue a multi-line name:
// predominantly upper-case alphabetic, a handful of words, no digits, and not
// the label of another document field.
func isPlausibleNameLine(text string) bool {
	if hasDigit(text) || len(strings.Fields(text)) > 5 {
		return false
	}
	lower := strings.ToLower(text)
	if containsAny(lower, dobKeywords) || containsAny(lower, nidKeywords) {
		return false
	}
	letters, uppers := 0, 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				uppers++
			}
		}
	}
	return letters > 0 && uppers*10 >= letters*6
}

func isAllUpperWords(text string) bool {
	if hasDigit(text) || strings.TrimSpace(text) == "" {
		return false
	}
	hasLetter := false
	for _, r := range text {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}
