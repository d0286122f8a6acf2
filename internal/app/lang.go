package app

import (
	"strings"

	"golang.org/x/text/language"
)

// SourceLang is the language listings are stored in.
const SourceLang = "es"

// NormalizeLang reduces a BCP 47 tag ("en-US", "PT_br") to its base
// language; empty or unparsable input yields SourceLang.
func NormalizeLang(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", "-")
	if s == "" {
		return SourceLang
	}
	tag, err := language.Parse(s)
	if err != nil {
		return SourceLang
	}
	base, _ := tag.Base()
	return base.String()
}
