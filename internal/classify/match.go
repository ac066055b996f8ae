package classify

import "strings"

func containsAny(needles ...string) func(string) bool {
	return func(s string) bool {
		for _, n := range needles {
			if strings.Contains(s, n) {
				return true
			}
		}
		return false
	}
}

func containsAll(needles ...string) func(string) bool {
	return func(s string) bool {
		for _, n := range needles {
			if !strings.Contains(s, n) {
				return false
			}
		}
		return true
	}
}
