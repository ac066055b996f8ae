// Package classify holds the clause-level rule engine: intent, risk
// categories, vague drafting and contract type. Every classifier is a total
// function over its input; the lookup tables below are never mutated.
package classify

import "github.com/ppiankov/clauserisk/internal/model"

// riskRule flags a category when match reports true for the case-folded text
type riskRule struct {
	category model.RiskCategory
	match    func(lower string) bool
}

// riskRules is evaluated in full for every clause; its order is the output order.
var riskRules = []riskRule{
	{model.RiskIndemnity, containsAny("indemn")},
	{model.RiskPenalty, containsAny("penalty", "fine")},
	{model.RiskUnilateralTermination, containsAny("terminate at any time", "without cause")},
	{model.RiskArbitrationJurisdiction, containsAny("arbitration", "jurisdiction")},
	{model.RiskAutoRenewal, containsAny("automatically renew")},
	{model.RiskNonCompete, containsAny("non-compete")},
	{model.RiskIPTransfer, containsAll("intellectual property", "assign")},
	{model.RiskLockInPeriod, containsAny("lock-in", "cannot terminate before")},
}

var explanations = map[model.RiskCategory]string{
	model.RiskIndemnity:               "You must cover losses of the other party.",
	model.RiskPenalty:                 "Financial punishment if terms are broken.",
	model.RiskUnilateralTermination:   "Other side can end contract anytime.",
	model.RiskArbitrationJurisdiction: "Disputes forced to specific court.",
	model.RiskAutoRenewal:             "Renews automatically if not stopped.",
	model.RiskNonCompete:              "You cannot work with competitors.",
	model.RiskIPTransfer:              "You lose ownership of your work.",
	model.RiskLockInPeriod:            "You cannot exit before fixed time.",
}

var saferAlternatives = map[model.RiskCategory]string{
	model.RiskIndemnity:               "Limit only to direct proven damages.",
	model.RiskPenalty:                 "Add reasonable cap on penalties.",
	model.RiskUnilateralTermination:   "Require equal notice from both sides.",
	model.RiskArbitrationJurisdiction: "Use mutually agreed neutral venue.",
	model.RiskAutoRenewal:             "Require written consent before renewal.",
	model.RiskNonCompete:              "Limit scope and duration.",
	model.RiskIPTransfer:              "Use license instead of ownership transfer.",
	model.RiskLockInPeriod:            "Allow early exit with fair notice.",
}

// vaguePhrases is reported in this order
var vaguePhrases = []string{
	"reasonable",
	"as soon as possible",
	"etc",
	"as appropriate",
	"from time to time",
}

// Taxonomy returns the risk categories in detection order
func Taxonomy() []model.RiskCategory {
	cats := make([]model.RiskCategory, len(riskRules))
	for i, r := range riskRules {
		cats[i] = r.category
	}
	return cats
}

// Explain returns the plain-language explanation for a category ("" if unknown)
func Explain(c model.RiskCategory) string {
	return explanations[c]
}

// SaferAlternative returns the suggested rewrite for a category ("" if unknown)
func SaferAlternative(c model.RiskCategory) string {
	return saferAlternatives[c]
}

// VaguePhrases returns a copy of the ambiguity marker list
func VaguePhrases() []string {
	return append([]string(nil), vaguePhrases...)
}
