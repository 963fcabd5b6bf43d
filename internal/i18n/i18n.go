// Package i18n implements the two-locale toggle used across the storefront.
package i18n

import (
	"strings"

	"ayah/internal/models"

	"golang.org/x/text/language"
)

// Default is used when no preference was saved and the request expresses none.
const Default = models.LangEnglish

var matcher = language.NewMatcher([]language.Tag{language.English, language.Arabic})

// Parse accepts "en" or "ar" in any case. Anything else is reported as not ok.
func Parse(s string) (models.Lang, bool) {
	l := models.Lang(strings.ToLower(strings.TrimSpace(s)))
	return l, l.Valid()
}

// Toggle switches between the two locales.
func Toggle(l models.Lang) models.Lang {
	if l == models.LangArabic {
		return models.LangEnglish
	}
	return models.LangArabic
}

// Dir is the text direction for l.
func Dir(l models.Lang) string {
	if l == models.LangArabic {
		return "rtl"
	}
	return "ltr"
}

// T picks the English or Arabic string.
func T(l models.Lang, en, ar string) string {
	if l == models.LangArabic {
		return ar
	}
	return en
}

// Negotiate maps an Accept-Language header onto a supported locale.
func Negotiate(acceptLanguage string) models.Lang {
	if acceptLanguage == "" {
		return Default
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default
	}
	if idx == 1 {
		return models.LangArabic
	}
	return models.LangEnglish
}
