package models

// Lesson is a catalog entry. The catalog is static configuration and is never written at runtime.
type Lesson struct {
	ID            string   `json:"id" gorm:"primaryKey;type:varchar(64)"`
	TitleEn       string   `json:"titleEn"`
	TitleAr       string   `json:"titleAr"`
	DescriptionEn string   `json:"descriptionEn"`
	DescriptionAr string   `json:"descriptionAr"`
	Price         float64  `json:"price"`
	Duration      string   `json:"duration,omitempty"`
	Level         string   `json:"level,omitempty"`
	Materials     []string `json:"materials,omitempty" gorm:"serializer:json"`
}

// Title returns the title for the given language.
func (l Lesson) Title(lang Lang) string {
	if lang == LangArabic {
		return l.TitleAr
	}
	return l.TitleEn
}

// Description returns the description for the given language.
func (l Lesson) Description(lang Lang) string {
	if lang == LangArabic {
		return l.DescriptionAr
	}
	return l.DescriptionEn
}
