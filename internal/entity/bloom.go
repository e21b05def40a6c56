package entity

import "strings"

// BloomCategory classifies the cognitive demand of a question.
type BloomCategory string

const (
	BloomUnspecified  BloomCategory = ""
	BloomRecall       BloomCategory = "recall"
	BloomReframe      BloomCategory = "reframe"
	BloomApply        BloomCategory = "apply"
	BloomContrast     BloomCategory = "contrast"
	BloomCritique     BloomCategory = "critique"
	BloomWhyImportant BloomCategory = "why_important"
	BloomWhenUse      BloomCategory = "when_use"
	BloomHowWield     BloomCategory = "how_wield"
)

// AllBloomCategories lists every category that counts toward idea coverage.
var AllBloomCategories = []BloomCategory{
	BloomRecall,
	BloomReframe,
	BloomApply,
	BloomContrast,
	BloomCritique,
	BloomWhyImportant,
	BloomWhenUse,
	BloomHowWield,
}

// Code returns the raw category code.
func (b BloomCategory) Code() string {
	return strings.TrimSpace(string(b))
}

// Valid reports whether the category is one of the eight coverage categories.
func (b BloomCategory) Valid() bool {
	switch b {
	case BloomRecall, BloomReframe, BloomApply, BloomContrast,
		BloomCritique, BloomWhyImportant, BloomWhenUse, BloomHowWield:
		return true
	default:
		return false
	}
}

// ParseBloomCategory converts an arbitrary string into a BloomCategory.
func ParseBloomCategory(code string) BloomCategory {
	b := BloomCategory(strings.ToLower(strings.TrimSpace(code)))
	if b.Valid() {
		return b
	}
	return BloomUnspecified
}
