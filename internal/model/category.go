package model

// Category groups movements. Movements and rules only reference it.
type Category struct {
	ID   int64
	Name string
}

// SuggestionRule maps a regular expression over movement descriptions to a category.
type SuggestionRule struct {
	ID         int64
	Expression string
	CategoryID int64
}
