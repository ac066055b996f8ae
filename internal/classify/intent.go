package classify

import (
	"strings"

	"github.com/ppiankov/clauserisk/internal/model"
)

type intentRule struct {
	match  func(lower string) bool
	intent model.Intent
}

// intentRules is first-match-wins. Prohibitions come before obligations so
// "shall not" never reads as "shall".
var intentRules = []intentRule{
	{containsAny("shall not", "must not", "prohibited"), model.IntentProhibition},
	{containsAny("shall", "must"), model.IntentObligation},
	{containsAny("may", "entitled to"), model.IntentRight},
}

// Intent labels the modal force of a clause
func Intent(text string) model.Intent {
	lower := strings.ToLower(text)
	for _, rule := range intentRules {
		if rule.match(lower) {
			return rule.intent
		}
	}
	return model.IntentNeutral
}
