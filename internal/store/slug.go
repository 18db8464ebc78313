package store

import (
	"strings"
	"unicode"
)

// maxSlugRunes bounds derived field ids.
const maxSlugRunes = 48

// slugify derives a stable field id from a display name: lowercased, with
// runs of anything that is not a letter, digit or CJK character collapsed to
// a single dash. Returns "" when nothing usable remains; the caller falls
// back to a random id in that case.
func slugify(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if isSlugRune(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}

	runes := []rune(b.String())
	if len(runes) > maxSlugRunes {
		runes = runes[:maxSlugRunes]
	}
	return strings.TrimRight(string(runes), "-")
}

func isSlugRune(r rune) bool {
	if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
		return true
	}
	// CJK names are kept verbatim so ids stay readable for those users.
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r)
}
