package domain

import (
	"context"
	"io"
)

type ListingRepository interface {
	// Write paths
	CreateListing(ctx context.Context, l Listing) error
	UpdateListing(ctx context.Context, id string, p ListingPatch) (Listing, error)
	DeleteListing(ctx context.Context, id string) (Listing, error)

	// Read paths
	GetListing(ctx context.Context, id string) (Listing, error)
	ListListings(ctx context.Context, f ListingFilter) ([]Listing, error)
	ListEligible(ctx context.Context) ([]Listing, error)
}

type ConversationRepository interface {
	// AppendTurns creates the session on first use and appends the turns
	// atomically, preserving their order.
	AppendTurns(ctx context.Context, sessionID string, turns []Turn) error
	GetConversation(ctx context.Context, sessionID string) (Conversation, error)
}

// MatchService returns the subset of candidate IDs located near phrase.
// Implementations never return IDs outside candidates and never fail:
// upstream trouble yields an empty result.
type MatchService interface {
	Match(ctx context.Context, phrase string, candidates []Listing) []string
}

// TextTranslator translates a single text from source to target language.
type TextTranslator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

type ImageStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (url string, err error)
	Delete(ctx context.Context, key string) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
