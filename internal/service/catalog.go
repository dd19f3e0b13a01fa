package service

import "strings"

// PredefinedCategory is an entry in the fixed catalog of allowed expense
// categories. Only labels present here may be auto-created; anything else
// stays Uncategorized, which keeps typos and model hallucinations from
// spawning new categories.
type PredefinedCategory struct {
	Label    string `json:"label"`
	IconName string `json:"icon_name"`
}

// DefaultCategoryColor is applied to auto-created categories.
const DefaultCategoryColor = "#E8EAF6"

var predefinedCategories = []PredefinedCategory{
	{Label: "Groceries", IconName: "cart"},
	{Label: "Dining", IconName: "restaurant"},
	{Label: "Transport", IconName: "bus"},
	{Label: "Fuel", IconName: "gas-pump"},
	{Label: "Utilities", IconName: "bolt"},
	{Label: "Rent", IconName: "home"},
	{Label: "Healthcare", IconName: "heart-pulse"},
	{Label: "Pharmacy", IconName: "pills"},
	{Label: "Shopping", IconName: "bag"},
	{Label: "Clothing", IconName: "shirt"},
	{Label: "Entertainment", IconName: "film"},
	{Label: "Subscriptions", IconName: "repeat"},
	{Label: "Education", IconName: "book"},
	{Label: "Travel", IconName: "plane"},
	{Label: "Personal Care", IconName: "scissors"},
	{Label: "Gifts", IconName: "gift"},
	{Label: "Insurance", IconName: "shield"},
	{Label: "Taxes", IconName: "landmark"},
	{Label: "Pets", IconName: "paw"},
	{Label: "Other", IconName: "ellipsis"},
}

// PredefinedCategories returns a copy of the catalog.
func PredefinedCategories() []PredefinedCategory {
	out := make([]PredefinedCategory, len(predefinedCategories))
	copy(out, predefinedCategories)
	return out
}

// lookupPredefined finds a catalog entry by case-insensitive trimmed label.
func lookupPredefined(label string) (PredefinedCategory, bool) {
	norm := strings.TrimSpace(label)
	for _, pc := range predefinedCategories {
		if strings.EqualFold(pc.Label, norm) {
			return pc, true
		}
	}
	return PredefinedCategory{}, false
}
