package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hoteldir/internal/domain"
)

type ConversationService struct {
	repo domain.ConversationRepository
	now  func() time.Time
}

func NewConversationService(r domain.ConversationRepository) *ConversationService {
	return &ConversationService{repo: r, now: time.Now}
}

// Record appends the caller's message and the reply to the session log,
// creating the log on first use.
func (s *ConversationService) Record(ctx context.Context, sessionID, message, reply string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return fmt.Errorf("%w: sessionId is required", domain.ErrValidation)
	}
	ts := s.now().UTC()
	return s.repo.AppendTurns(ctx, sessionID, []domain.Turn{
		{Role: domain.RoleUser, Text: message, Timestamp: ts},
		{Role: domain.RoleAssistant, Text: reply, Timestamp: ts},
	})
}

func (s *ConversationService) History(ctx context.Context, sessionID string) (domain.Conversation, error) {
	return s.repo.GetConversation(ctx, strings.TrimSpace(sessionID))
}
