package services

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const fallbackFileName = "document.pdf"

var (
	// unsafeKeyChars matches everything a storage key segment may not contain
	unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
	repeatedUnders = regexp.MustCompile(`_{2,}`)
)

// SanitizeFileName turns a user supplied file name into a safe storage key
// segment: accents stripped, other scripts transliterated, anything outside
// [a-z0-9._-] replaced by "_", repeated underscores collapsed, lower-cased.
func SanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, name)
	if err != nil {
		result = name
	}

	result = unidecode.Unidecode(result)
	result = unsafeKeyChars.ReplaceAllString(result, "_")
	result = repeatedUnders.ReplaceAllString(result, "_")
	result = strings.ToLower(strings.TrimRight(strings.TrimLeft(result, "._"), "_"))

	if result == "" {
		return fallbackFileName
	}
	return result
}

// OriginalKey builds the storage key of a client-submitted source file.
func OriginalKey(submittedAt time.Time, name string) string {
	return fmt.Sprintf("originals/%d_%s", submittedAt.UnixMilli(), SanitizeFileName(name))
}

// TranslatedKey builds the storage key of a translated document.
func TranslatedKey(orderID uuid.UUID, uploadedAt time.Time, name string) string {
	return fmt.Sprintf("translated/%s/%d_%s", orderID, uploadedAt.UnixMilli(), SanitizeFileName(name))
}

// uniqueNames sanitizes names and disambiguates collisions with a numeric
// suffix placed before the extension. A suffixed name is never one already
// issued, including a submitted name that happens to carry a suffix.
func uniqueNames(names []string) []string {
	issued := make(map[string]struct{}, len(names))
	out := make([]string, len(names))
	for i, n := range names {
		clean := SanitizeFileName(n)
		candidate := clean
		if _, taken := issued[candidate]; taken {
			ext := path.Ext(clean)
			base := strings.TrimSuffix(clean, ext)
			for suffix := 2; ; suffix++ {
				candidate = fmt.Sprintf("%s_%d%s", base, suffix, ext)
				if _, taken := issued[candidate]; !taken {
					break
				}
			}
		}
		issued[candidate] = struct{}{}
		out[i] = candidate
	}
	return out
}
