// Package nid extracts structured fields from OCR text recognized on
// Bangladeshi National ID cards.
//
// The front side yields name, date of birth and NID number; the back side
// yields a consolidated single-line address. Extraction is heuristic and
// best-effort: a field that cannot be identified is reported as absent,
// never as an error. Parsers are pure functions of their input and
// configuration, so results are deterministic for a fixed item sequence.
package nid

import (
	"regexp"
	"strings"
	"unicode"

	"nidextract/internal/ocr"
	"nidextract/pkg/models"
)

// Config holds the tunable extraction heuristics. Keyword dictionaries are
// data, not code, so they can be extended without touching extraction logic.
type Config struct {
	// ConfidenceThreshold drops items below this recognition confidence from
	// field classification. Dropped items are still reported in raw text.
	ConfidenceThreshold float64

	// MaxNameLines bounds multi-line name aggregation after a name label.
	MaxNameLines int

	// AddressKeywords anchor address accumulation (Latin script; Bengali
	// script is matched by Unicode range, tolerating OCR noise).
	AddressKeywords []string

	// AddressStopWords terminate address accumulation when matched.
	AddressStopWords []string
}

// DefaultConfig returns the extraction defaults tuned for NID cards.
func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: 0.3,
		MaxNameLines:        3,
		AddressKeywords:     defaultAddressKeywords(),
		AddressStopWords:    defaultAddressStopWords(),
	}
}

// Parser classifies OCR text items into NID fields.
type Parser struct {
	cfg Config
}

// NewParser creates a parser with the given configuration. Zero values fall
// back to defaults.
func NewParser(cfg Config) *Parser {
	def := DefaultConfig()
	if cfg.MaxNameLines <= 0 {
		cfg.MaxNameLines = def.MaxNameLines
	}
	if len(cfg.AddressKeywords) == 0 {
		cfg.AddressKeywords = def.AddressKeywords
	}
	if len(cfg.AddressStopWords) == 0 {
		cfg.AddressStopWords = def.AddressStopWords
	}
	return &Parser{cfg: cfg}
}

// ParseFront extracts name, date of birth and NID number from front-side items.
func (p *Parser) ParseFront(items []ocr.TextItem) *models.FrontData {
	raw := cleanAll(items)
	texts := p.retained(items)

	return &models.FrontData{
		Name:        p.extractName(texts),
		DateOfBirth: p.extractDateOfBirth(texts),
		NIDNumber:   p.extractNIDNumber(texts),
		RawText:     raw,
	}
}

// ParseBack extracts the consolidated address (and blood group, when present)
// from back-side items.
func (p *Parser) ParseBack(items []ocr.TextItem) *models.BackData {
	raw := cleanAll(items)
	texts := p.retained(items)

	return &models.BackData{
		Address:    p.consolidateAddress(texts),
		BloodGroup: extractBloodGroup(texts),
		RawText:    raw,
	}
}

// retained returns cleaned texts of items at or above the confidence threshold.
func (p *Parser) retained(items []ocr.TextItem) []string {
	texts := make([]string, 0, len(items))
	for _, item := range items {
		if item.Confidence < p.cfg.ConfidenceThreshold {
			continue
		}
		if cleaned := cleanText(item.Text); cleaned != "" {
			texts = append(texts, cleaned)
		}
	}
	return texts
}

func cleanAll(items []ocr.TextItem) []string {
	texts := make([]string, 0, len(items))
	for _, item := range items {
		if cleaned := cleanText(item.Text); cleaned != "" {
			texts = append(texts, cleaned)
		}
	}
	return texts
}

// stripPattern removes characters outside letters, combining marks, digits,
// whitespace and the punctuation that carries meaning on ID cards. Marks must
// be kept: Bengali vowel signs are category Mn, not letters.
var stripPattern = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s\-/.,:]`)

// cleanText collapses whitespace and strips recognition artifacts.
func cleanText(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	text = stripPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

func containsAny(textLower string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(textLower, keyword) {
			return true
		}
	}
	return false
}

func hasDigit(text string) bool {
	return strings.IndexFunc(text, unicode.IsDigit) >= 0
}

// hasBengali reports whether text contains code points in the Bengali block
// (U+0980-U+09FF). Matching by range tolerates OCR noise in label words.
func hasBengali(text string) bool {
	for _, r := range text {
		if r >= 0x0980 && r <= 0x09FF {
			return true
		}
	}
	return false
}
