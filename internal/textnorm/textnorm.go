// Package textnorm folds free-text place names for comparison.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold strips diacritics, case-folds and collapses whitespace,
// so "  Parque  La CAROLINA " and "parque la carolina" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = cases.Fold().String(out)
	return strings.Join(strings.Fields(out), " ")
}

// EqualFold compares two category tags: case-insensitive, exact otherwise.
func EqualFold(a, b string) bool {
	c := cases.Fold()
	return c.String(strings.TrimSpace(a)) == c.String(strings.TrimSpace(b))
}

// Tokens folds s and splits it into words, dropping punctuation.
func Tokens(s string) []string {
	return strings.FieldsFunc(Fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// ContainsPhrase reports whether the words of phrase occur as a contiguous
// run of whole words in text. "Tena" does not match "Calle Atenas".
func ContainsPhrase(text, phrase string) bool {
	p := Tokens(phrase)
	if len(p) == 0 {
		return false
	}
	t := Tokens(text)
	for i := 0; i+len(p) <= len(t); i++ {
		match := true
		for j := range p {
			if t[i+j] != p[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// words that never qualify a place on their own
var stopWords = map[string]bool{
	"el": true, "la": true, "los": true, "las": true, "un": true, "una": true,
	"unos": true, "unas": true, "lo": true, "de": true, "del": true, "en": true,
	"al": true, "cerca": true, "junto": true, "y": true,
	"the": true, "a": true, "an": true, "of": true, "in": true, "near": true, "and": true,
}

// generic location nouns, folded, singular and plural
var genericPlaces = map[string]bool{
	"parque": true, "parques": true, "iglesia": true, "iglesias": true,
	"catedral": true, "centro": true, "playa": true, "playas": true,
	"museo": true, "museos": true, "plaza": true, "plazas": true,
	"mercado": true, "mercados": true, "aeropuerto": true, "estadio": true,
	"universidad": true, "hospital": true, "montana": true, "montanas": true,
	"volcan": true, "volcanes": true, "lago": true, "lagos": true, "rio": true,
	"malecon": true, "terminal": true, "basilica": true, "mirador": true,
	"barrio": true, "barrios": true, "zona": true, "zonas": true,
	"calle": true, "calles": true, "avenida": true, "avenidas": true,
	"ciudad": true, "ciudades": true, "pueblo": true, "pueblos": true,
	"sector": true, "sectores": true, "casco": true, "costa": true,
	"park": true, "parks": true, "church": true, "churches": true, "cathedral": true,
	"downtown": true, "beach": true, "beaches": true, "museum": true, "museums": true,
	"square": true, "market": true, "airport": true, "stadium": true,
	"university": true, "mountain": true, "mountains": true, "volcano": true,
	"lake": true, "river": true, "centre": true, "center": true,
	"neighborhood": true, "neighbourhood": true, "district": true, "area": true,
	"street": true, "avenue": true, "city": true, "town": true, "village": true,
	"coast": true,
}

// words that only narrow a generic place ("zona norte", "old town")
var placeQualifiers = map[string]bool{
	"norte": true, "sur": true, "este": true, "oeste": true,
	"historico": true, "colonial": true, "antiguo": true, "viejo": true, "principal": true,
	"north": true, "south": true, "east": true, "west": true,
	"historic": true, "old": true, "main": true,
}

// ContentWords returns the folded words of phrase without articles and
// connectors.
func ContentWords(phrase string) []string {
	var kept []string
	for _, w := range Tokens(phrase) {
		if !stopWords[w] {
			kept = append(kept, w)
		}
	}
	return kept
}

// IsGenericPlace reports whether phrase names no specific place: it has no
// content words ("la"), or only kinds of places and their qualifiers
// ("parque", "la iglesia", "zona norte", "centro de la ciudad").
func IsGenericPlace(phrase string) bool {
	for _, w := range ContentWords(phrase) {
		if !genericPlaces[w] && !placeQualifiers[w] {
			return false
		}
	}
	return true
}
