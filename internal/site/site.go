// Package site is the static configuration of the storefront: SEO text, contact channels,
// social links, feature flags and the lesson catalog.
package site

import (
	"strings"

	"ayah/internal/models"
)

type SEO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Favicon     string `json:"favicon"`
}

type Features struct {
	ShowMaterials bool `json:"showMaterials"`
}

type Contacts struct {
	Email    string `json:"email"`
	WhatsApp string `json:"whatsapp"`
}

type Socials struct {
	Instagram string `json:"instagram"`
	LinkedIn  string `json:"linkedin"`
}

type Assets struct {
	Logo string `json:"logo"`
}

// Config is the whole site configuration as served to clients.
type Config struct {
	SEO      SEO             `json:"seo"`
	Features Features        `json:"features"`
	Contacts Contacts        `json:"contacts"`
	Socials  Socials         `json:"socials"`
	Assets   Assets          `json:"assets"`
	Lessons  []models.Lesson `json:"lessons"`
}

const logoAsset = "https://cdn.builder.io/api/v1/image/assets%2Fde2d2a0044c74319b934a0376ae98173%2Fb977a262e49d4b6c974a5d7da7bc7863?format=webp"

// Lessons is the catalog on sale.
func Lessons() []models.Lesson {
	return []models.Lesson{
		{
			ID:            "juz-amma",
			TitleEn:       "Juz' Amma",
			TitleAr:       "جزء عمّ",
			DescriptionEn: "Complete memorization and understanding of Juz' Amma (the last chapter of the Quran). Learn proper recitation, tajweed, and the meanings of each Surah.",
			DescriptionAr: "الحفظ الكامل والفهم العميق لجزء عمّ (الجزء الأخير من القرآن). تعلم التلاوة الصحيحة والتجويد ومعاني كل سورة.",
			Price:         60,
			Duration:      "12 weeks",
			Level:         "Beginner to Intermediate",
		},
	}
}

// Default returns the site configuration. Each call returns a fresh copy.
func Default() Config {
	return Config{
		SEO: SEO{
			Title:       "Ayah Qur’an Tutor — Islamic Online Tutors",
			Description: "Small-group Qur’an tutoring for children and women. Gentle, structured lessons to build tajwīd, memorization, and love for the Qur’an.",
			Favicon:     logoAsset + "&width=256",
		},
		Features: Features{ShowMaterials: false},
		Contacts: Contacts{
			Email:    "ayahqurantutor@gmail.com",
			WhatsApp: "https://chat.whatsapp.com/C0FI3jlqcaUFTu8nmtF3Bk",
		},
		Socials: Socials{
			Instagram: "https://www.instagram.com/ayah_quran_tutor/?igsh=NG9pYTdsc2cxcXI%3D&utm_source=qr",
			LinkedIn:  "https://www.linkedin.com/company/ayah-quran-tutor",
		},
		Assets:  Assets{Logo: logoAsset + "&width=800"},
		Lessons: Lessons(),
	}
}

// WhatsAppLink turns a configured contact into a link: URLs are kept as is, anything else is
// treated as a phone number for wa.me.
func WhatsAppLink(contact string) string {
	contact = strings.TrimSpace(contact)
	if contact == "" {
		return ""
	}
	if strings.HasPrefix(contact, "http") {
		return contact
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, contact)
	return "https://wa.me/" + digits
}

// MailtoLink links to the contact email.
func MailtoLink(email string) string {
	return "mailto:" + email
}
