package scripting

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var slugReplacer = strings.NewReplacer(
	" ", "_",
	"-", "",
	".", "_",
	"!", "",
	"+", "",
	"]", "",
	"[", "",
	"}", "",
	"{", "",
	"/", "_",
	"\\", "_",
	"'", "",
)

// Slugify turns a display name into the identifier fragment used in
// script function names: "Mr. O'Brien" becomes "Mr__OBrien". Accents are
// dropped so "Café" resolves to interact_Cafe.
func Slugify(name string) string {
	// transformers carry state, build one per call
	strip := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(strip, name)
	if err != nil {
		plain = name
	}
	return slugReplacer.Replace(plain)
}
