package classify

import "strings"

// Ambiguities returns the vague phrases present in the clause, in list order.
// Plain substring matching: "etc" also fires inside longer words.
func Ambiguities(text string) []string {
	lower := strings.ToLower(text)

	var found []string
	for _, phrase := range vaguePhrases {
		if strings.Contains(lower, phrase) {
			found = append(found, phrase)
		}
	}
	return found
}
