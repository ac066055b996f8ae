package classify

import "strings"

// Contract type labels
const (
	TypeEmployment  = "Employment Agreement"
	TypeLease       = "Lease Agreement"
	TypeVendor      = "Vendor Contract"
	TypePartnership = "Partnership Agreement"
	TypeService     = "Service Agreement"
)

var contractTypeRules = []struct {
	match func(lower string) bool
	label string
}{
	{containsAny("employee", "salary"), TypeEmployment},
	{containsAny("lease", "rent"), TypeLease},
	{containsAny("vendor", "supply"), TypeVendor},
	{containsAny("partner"), TypePartnership},
}

// ContractType classifies the whole document; first matching rule wins
func ContractType(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range contractTypeRules {
		if rule.match(lower) {
			return rule.label
		}
	}
	return TypeService
}
