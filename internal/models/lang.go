package models

// Lang is one of the two supported locales.
type Lang string

const (
	LangEnglish Lang = "en"
	LangArabic  Lang = "ar"
)

// Valid reports whether l is a supported locale.
func (l Lang) Valid() bool {
	return l == LangEnglish || l == LangArabic
}
