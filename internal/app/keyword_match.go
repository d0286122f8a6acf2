package app

import (
	"context"

	"hoteldir/internal/domain"
	"hoteldir/internal/textnorm"
)

// KeywordMatcher is a deterministic domain.MatchService: a listing matches
// when the phrase occurs as whole words in one of its place fields. It
// serves when no language model is configured.
type KeywordMatcher struct{}

func (KeywordMatcher) Match(_ context.Context, phrase string, candidates []domain.Listing) []string {
	if textnorm.IsGenericPlace(phrase) {
		return []string{}
	}
	out := []string{}
	for _, l := range candidates {
		if mentions(l, phrase) {
			out = append(out, l.ID)
		}
	}
	return out
}

func mentions(l domain.Listing, phrase string) bool {
	fields := append([]string{l.City, l.Region, l.Location, l.Address}, l.Surroundings...)
	for _, f := range fields {
		if textnorm.ContainsPhrase(f, phrase) {
			return true
		}
	}
	return false
}
