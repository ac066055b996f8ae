package pipeline

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/ppiankov/clauserisk/internal/model"
)

const (
	LangEnglish = "en"
	LangHindi   = "hi"
)

// hindiTerms are substituted in order
var hindiTerms = []struct{ from, to string }{
	{"समाप्त", "terminate"},
	{"स्वतः नवीनीकरण", "automatically renew"},
	{"क्षतिपूर्ति", "indemnity"},
	{"गोपनीय", "confidential"},
	{"अधिकार", "rights"},
}

// devanagariShare is the minimum share of Devanagari letters for "hi"
const devanagariShare = 0.5

// DetectLanguage returns "hi" when most letters are Devanagari, else "en"
func DetectLanguage(text string) string {
	var letters, deva int
	for _, r := range text {
		if !unicode.IsLetter(r) && !unicode.IsMark(r) {
			continue
		}
		letters++
		if unicode.Is(unicode.Devanagari, r) {
			deva++
		}
	}
	if letters == 0 {
		return LangEnglish
	}
	if float64(deva)/float64(letters) >= devanagariShare {
		return LangHindi
	}
	return LangEnglish
}

// Normalize prepares raw document text for analysis.
// Hindi documents get NFC normalization and key-term substitution so
// the English rule tables can match them. It never fails.
func Normalize(text, source string) model.Document {
	doc := model.Document{Text: text, Language: LangEnglish, Source: source}

	if DetectLanguage(text) != LangHindi {
		return doc
	}

	out := norm.NFC.String(text)
	for _, t := range hindiTerms {
		out = strings.ReplaceAll(out, t.from, t.to)
	}

	doc.Text = out
	doc.Language = LangHindi
	return doc
}
