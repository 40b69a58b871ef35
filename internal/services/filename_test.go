package services

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var safeKey = regexp.MustCompile(`^[a-z0-9._-]+$`)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"accents and spaces", "Diplôme Été 2024.pdf", "diplome_ete_2024.pdf"},
		{"already clean", "cv.pdf", "cv.pdf"},
		{"repeated separators", "Acte  de   naissance!!.PDF", "acte_de_naissance_.pdf"},
		{"german umlauts", "Zeugnis Müller.pdf", "zeugnis_muller.pdf"},
		{"cyrillic", "Диплом.pdf", "diplom.pdf"},
		{"path components", "C:\\Users\\awa\\relevé.pdf", "releve.pdf"},
		{"unix path", "../../etc/passwd", "passwd"},
		{"only symbols", "%%%.pdf", "pdf"},
		{"empty", "", "document.pdf"},
		{"dots only", "..", "document.pdf"},
		{"keeps dashes", "contrat-travail_v2.pdf", "contrat-travail_v2.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFileName(tt.input))
		})
	}
}

func TestSanitizeFileNameProducesSafeKeys(t *testing.T) {
	inputs := []string{
		"Diplôme Été 2024.pdf",
		"Relevé de notes — 2ème année.pdf",
		"  __passeport__ .pdf",
		"日本語.pdf",
		"Œuvre & Cœur.pdf",
	}
	for _, in := range inputs {
		got := SanitizeFileName(in)
		assert.Regexp(t, safeKey, got, in)
		assert.NotContains(t, got, "__", in)
		assert.Equal(t, strings.ToLower(got), got)
	}
}

func TestOriginalKey(t *testing.T) {
	ts := time.UnixMilli(1718000000123)
	assert.Equal(t, "originals/1718000000123_diplome_ete_2024.pdf", OriginalKey(ts, "Diplôme Été 2024.pdf"))
}

func TestTranslatedKey(t *testing.T) {
	id := uuid.MustParse("11111111-2222-4333-8444-555555555555")
	ts := time.UnixMilli(42)
	assert.Equal(t, "translated/11111111-2222-4333-8444-555555555555/42_cv_en.pdf", TranslatedKey(id, ts, "CV EN.pdf"))
}

func TestUniqueNames(t *testing.T) {
	got := uniqueNames([]string{"CV.pdf", "cv.pdf", "Lettre.pdf", "CV.PDF"})
	assert.Equal(t, []string{"cv.pdf", "cv_2.pdf", "lettre.pdf", "cv_3.pdf"}, got)
}

func TestUniqueNamesSkipsNamesAlreadyIssued(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{[]string{"a.pdf", "A.pdf", "a_2.pdf"}, []string{"a.pdf", "a_2.pdf", "a_2_2.pdf"}},
		{[]string{"a_2.pdf", "a.pdf", "a.pdf"}, []string{"a_2.pdf", "a.pdf", "a_3.pdf"}},
		{[]string{"a.pdf", "a_2.pdf", "a.pdf", "a.pdf"}, []string{"a.pdf", "a_2.pdf", "a_3.pdf", "a_4.pdf"}},
	}
	for _, tt := range tests {
		got := uniqueNames(tt.in)
		assert.Equal(t, tt.want, got, tt.in)

		set := make(map[string]struct{}, len(got))
		for _, n := range got {
			set[n] = struct{}{}
		}
		assert.Len(t, set, len(tt.in), tt.in)
	}
}
