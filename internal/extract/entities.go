package extract

import (
	"regexp"
	"strings"

	"github.com/ppiankov/clauserisk/internal/model"
)

// EntityExtractor finds parties, dates and money amounts with surface patterns
type EntityExtractor struct {
	parties []*regexp.Regexp
	dates   []*regexp.Regexp
	amounts []*regexp.Regexp
}

const months = `(?:January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)\.?`

// NewEntityExtractor creates a new entity extractor
func NewEntityExtractor() *EntityExtractor {
	return &EntityExtractor{
		parties: []*regexp.Regexp{
			// Capitalized name followed by a legal-form suffix
			regexp.MustCompile(`\b(?:[A-Z][\w&'-]*\s+){1,5}(?:Inc\.?|LLC|L\.L\.C\.|Ltd\.?|Limited|Corp\.?|Corporation|Company|Co\.|LLP|GmbH|AG|S\.A\.|PLC|Pvt\.? Ltd\.?|Private Limited)(?:\W|$)`),
		},
		dates: []*regexp.Regexp{
			regexp.MustCompile(`\b` + months + `\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}\b`),
			regexp.MustCompile(`\b\d{1,2}(?:st|nd|rd|th)?\s+(?:day\s+of\s+)?` + months + `,?\s+\d{4}\b`),
			regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
			regexp.MustCompile(`\b\d{1,2}[/.]\d{1,2}[/.]\d{2,4}\b`),
			regexp.MustCompile(`(?i)\b\d+\s+(?:business\s+|calendar\s+)?(?:days|weeks|months|years)\b`),
		},
		amounts: []*regexp.Regexp{
			regexp.MustCompile(`[$€£₹¥]\s?\d[\d,]*(?:\.\d+)?(?:\s?(?:million|billion|thousand|k|m)\b)?`),
			regexp.MustCompile(`\b(?:USD|EUR|GBP|INR|JPY|Rs\.?)\s?\d[\d,]*(?:\.\d+)?`),
			regexp.MustCompile(`\b\d[\d,]*(?:\.\d+)?\s?(?:dollars|euros|pounds|rupees)\b`),
		},
	}
}

// Extract returns deduplicated entities in first-seen order
func (e *EntityExtractor) Extract(text string) model.Entities {
	return model.Entities{
		Parties: findAll(e.parties, text, cleanParty),
		Dates:   findAll(e.dates, text, trimPunct),
		Amounts: findAll(e.amounts, text, trimPunct),
	}
}

// cleanParty keeps abbreviation periods ("Inc.") and drops bare legal forms
// such as "Company" left over after removing a leading article
func cleanParty(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, ",;:)(\"'")
	for _, leading := range []string{"The ", "And ", "Between ", "By "} {
		s = strings.TrimPrefix(s, leading)
	}
	s = strings.TrimSpace(s)
	if !strings.Contains(s, " ") {
		return ""
	}
	return s
}

func trimPunct(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), ",.;:")
}

type match struct {
	start int
	text  string
}

// findAll runs every pattern and orders hits by position, dropping duplicates
func findAll(patterns []*regexp.Regexp, text string, clean func(string) string) []string {
	var hits []match
	for _, re := range patterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			hits = append(hits, match{start: loc[0], text: clean(text[loc[0]:loc[1]])})
		}
	}

	sortMatches(hits)

	seen := make(map[string]bool)
	out := []string{}
	for _, h := range hits {
		key := strings.ToLower(h.text)
		if h.text == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, h.text)
	}
	return out
}

func sortMatches(hits []match) {
	// insertion sort keeps equal positions in pattern order
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].start < hits[j-1].start; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
}
