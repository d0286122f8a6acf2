package app

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"hoteldir/internal/domain"
)

// location line: a line starting with "Ubicación: <phrase>", accent optional, any case
var locationLine = regexp.MustCompile(`(?im)^[ \t]*ubicaci[oó]n[ \t]*:[ \t]*([^\r\n]*)`)

// MaxSessionIDLen matches the width of the stored session key.
const MaxSessionIDLen = 128

// ParseLocation extracts the phrase of the first line that starts with
// "Ubicación:", up to the end of that line.
func ParseLocation(message string) string {
	m := locationLine.FindStringSubmatch(message)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

type ChatRequest struct {
	Message    string   `json:"message"`
	SessionID  string   `json:"sessionId"`
	Lang       string   `json:"lang,omitempty"`
	HotelTypes []string `json:"hotelTypes,omitempty"`
}

type ChatReply struct {
	Message   string           `json:"message"`
	Hotels    []domain.Listing `json:"hotels"`
	Timestamp time.Time        `json:"timestamp"`
}

type ChatService struct {
	catalog *CatalogService
	tr      *TranslationService
	convo   *ConversationService
	now     func() time.Time
}

func NewChatService(c *CatalogService, t *TranslationService, cv *ConversationService) *ChatService {
	return &ChatService{catalog: c, tr: t, convo: cv, now: time.Now}
}

func (s *ChatService) Chat(ctx context.Context, req ChatRequest) (ChatReply, error) {
	if strings.TrimSpace(req.Message) == "" {
		return ChatReply{}, fmt.Errorf("%w: message is required", domain.ErrValidation)
	}
	if strings.TrimSpace(req.SessionID) == "" {
		return ChatReply{}, fmt.Errorf("%w: sessionId is required", domain.ErrValidation)
	}
	if len(strings.TrimSpace(req.SessionID)) > MaxSessionIDLen {
		return ChatReply{}, fmt.Errorf("%w: sessionId exceeds %d bytes", domain.ErrValidation, MaxSessionIDLen)
	}
	lang := NormalizeLang(req.Lang)
	q := domain.SearchQuery{Lang: lang, Location: ParseLocation(req.Message), Types: req.HotelTypes}

	hotels := s.catalog.Search(ctx, q)
	hotels = s.tr.TranslateListings(ctx, hotels, lang)

	text := s.tr.Text(ctx, summarize(len(hotels), q.Location), lang)

	if err := s.convo.Record(ctx, req.SessionID, req.Message, text); err != nil {
		log.Warn().Err(err).Str("session", req.SessionID).Msg("chat: conversation log append failed")
	}

	return ChatReply{Message: text, Hotels: hotels, Timestamp: s.now().UTC()}, nil
}

// summarize builds the reply in the storage language; it is translated like
// any listing field.
func summarize(n int, location string) string {
	switch {
	case n == 0 && location != "":
		return fmt.Sprintf("No encontré hoteles en %s con los criterios indicados. Prueba con otra ubicación o tipo de hotel.", location)
	case n == 0:
		return "No encontré hoteles con los criterios indicados. Prueba con otra ubicación o tipo de hotel."
	case n == 1 && location != "":
		return fmt.Sprintf("Encontré 1 hotel en %s.", location)
	case n == 1:
		return "Encontré 1 hotel disponible."
	case location != "":
		return fmt.Sprintf("Encontré %d hoteles en %s.", n, location)
	default:
		return fmt.Sprintf("Encontré %d hoteles disponibles.", n)
	}
}
