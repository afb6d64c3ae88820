package service

import "strings"

const CategoryOther = "Other"

type categoryRule struct {
	label    string
	keywords []string
}

// Order matters: a vendor matching several groups gets the first one.
var categoryRules = []categoryRule{
	{"Hardware & Construction", []string{"warehouse", "builders", "construction", "hardware"}},
	{"Utilities", []string{"energy", "electric", "gas", "utility"}},
	{"Security Services", []string{"security", "fire", "alarm"}},
	{"Office Supplies", []string{"office", "supplies", "stationery"}},
	{"Technology", []string{"software", "tech", "computer", "it"}},
	{"Logistics", []string{"logistics", "shipping", "transport"}},
	{"Professional Services", []string{"consulting", "services", "professional"}},
	{"Maintenance", []string{"cleaning", "maintenance"}},
}

// Categories lists every label Classify can return, Other last.
func Categories() []string {
	labels := make([]string, 0, len(categoryRules)+1)
	for _, rule := range categoryRules {
		labels = append(labels, rule.label)
	}
	return append(labels, CategoryOther)
}

// Classify maps a vendor name to a category by case-insensitive substring match.
// Keywords are matched anywhere in the name, so "it" also hits "Digital".
func Classify(vendor string) string {
	name := strings.ToLower(vendor)
	if name == "" {
		return CategoryOther
	}

	for _, rule := range categoryRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(name, keyword) {
				return rule.label
			}
		}
	}
	return CategoryOther
}

// canonicalCategory maps label to its canonical spelling when it names one of
// Categories, ignoring case and surrounding space.
func canonicalCategory(label string) (string, bool) {
	label = strings.TrimSpace(label)
	for _, c := range Categories() {
		if strings.EqualFold(c, label) {
			return c, true
		}
	}
	return "", false
}
