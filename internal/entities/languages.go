package entities

// LanguageCount is one bucket of a language facet.
type LanguageCount struct {
	Language string `json:"language"`
	Count    int64  `json:"count"`
}
