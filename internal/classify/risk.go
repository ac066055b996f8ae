package classify

import (
	"strings"

	"github.com/ppiankov/clauserisk/internal/model"
)

// Risks tests the clause against every taxonomy rule and returns the matches
// in taxonomy order, each with its explanation and safer alternative.
func Risks(text string) []model.RiskFinding {
	lower := strings.ToLower(text)

	findings := []model.RiskFinding{}
	for _, rule := range riskRules {
		if rule.match(lower) {
			findings = append(findings, model.RiskFinding{
				Category:         rule.category,
				Explanation:      Explain(rule.category),
				SaferAlternative: SaferAlternative(rule.category),
			})
		}
	}
	return findings
}
