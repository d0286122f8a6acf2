package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"hoteldir/internal/adapters/observability"
	"hoteldir/internal/domain"
)

const translationTTL = 7 * 24 * time.Hour

// TranslationService translates listings field by field. A failed field keeps
// its original text; listings are never dropped or reordered.
type TranslationService struct {
	tr    domain.TextTranslator
	cache domain.Cache
	limit int
}

// NewTranslationService accepts a nil translator, in which case every
// translation is the identity.
func NewTranslationService(tr domain.TextTranslator, c domain.Cache, concurrency int) *TranslationService {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &TranslationService{tr: tr, cache: c, limit: concurrency}
}

func (s *TranslationService) TranslateListings(ctx context.Context, in []domain.Listing, lang string) []domain.Listing {
	lang = NormalizeLang(lang)
	if lang == SourceLang || s.tr == nil {
		return in
	}

	out := make([]domain.Listing, len(in))
	var g errgroup.Group
	g.SetLimit(s.limit)
	for i := range in {
		out[i] = in[i]
		out[i].Surroundings = append([]string(nil), in[i].Surroundings...)
		l := &out[i]

		fields := []*string{&l.Name, &l.Description, &l.Location, &l.Address, &l.RecreationAreas}
		for j := range l.Surroundings {
			fields = append(fields, &l.Surroundings[j])
		}
		for _, f := range fields {
			if strings.TrimSpace(*f) == "" {
				continue
			}
			g.Go(func() error {
				*f = s.Text(ctx, *f, lang)
				return nil
			})
		}
	}
	_ = g.Wait()
	return out
}

// Text translates one string from SourceLang, falling back to the input.
func (s *TranslationService) Text(ctx context.Context, text, lang string) string {
	lang = NormalizeLang(lang)
	if lang == SourceLang || s.tr == nil || strings.TrimSpace(text) == "" {
		return text
	}

	key := translationKey(lang, text)
	if s.cache != nil {
		var hit string
		if ok, _ := s.cache.Get(ctx, key, &hit); ok {
			return hit
		}
	}

	got, err := s.tr.Translate(ctx, text, SourceLang, lang)
	if err != nil || strings.TrimSpace(got) == "" {
		observability.ObserveTranslationFallback()
		log.Warn().Err(err).Str("lang", lang).Int("len", len(text)).Msg("translation failed; keeping original")
		return text
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, got, int(translationTTL.Seconds())); err != nil {
			log.Debug().Err(err).Msg("translation cache set failed")
		}
	}
	return got
}

func translationKey(lang, text string) string {
	sum := sha1.Sum([]byte(text))
	return "tr:" + lang + ":" + hex.EncodeToString(sum[:])
}
