package site_test

import (
	"testing"

	"ayah/internal/site"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := site.Default()
	assert.Equal(t, "ayahqurantutor@gmail.com", cfg.Contacts.Email)
	assert.False(t, cfg.Features.ShowMaterials)
	require.Len(t, cfg.Lessons, 1)

	juz := cfg.Lessons[0]
	assert.Equal(t, "juz-amma", juz.ID)
	assert.Equal(t, 60.0, juz.Price)
	assert.Equal(t, "12 weeks", juz.Duration)
	assert.Equal(t, "Beginner to Intermediate", juz.Level)
	assert.Equal(t, "جزء عمّ", juz.TitleAr)

	// callers may mutate their copy freely
	cfg.Lessons[0].Price = 1
	assert.Equal(t, 60.0, site.Default().Lessons[0].Price)
}

func TestWhatsAppLink(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://chat.whatsapp.com/C0FI3jlqcaUFTu8nmtF3Bk", "https://chat.whatsapp.com/C0FI3jlqcaUFTu8nmtF3Bk"},
		{"+971 50-123 4567", "https://wa.me/971501234567"},
		{"  ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, site.WhatsAppLink(tt.in))
		})
	}
}
