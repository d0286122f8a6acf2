package app_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"hoteldir/internal/app"
	"hoteldir/internal/domain"
)

func TestRecord_CreatesThenAppends(t *testing.T) {
	convs := &fakeConversations{}
	svc := app.NewConversationService(convs)
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, "s1", "hola", "¿en qué ciudad?"))
	require.NoError(t, svc.Record(ctx, "s1", "Ubicación: Quito", "Encontré 2 hoteles en Quito."))

	conv, err := svc.History(ctx, "s1")
	require.NoError(t, err)
	var texts []string
	for _, tr := range conv.Turns {
		texts = append(texts, tr.Role+":"+tr.Text)
	}
	require.Equal(t, []string{
		"user:hola", "assistant:¿en qué ciudad?",
		"user:Ubicación: Quito", "assistant:Encontré 2 hoteles en Quito.",
	}, texts)
}

func TestRecord_RequiresSession(t *testing.T) {
	svc := app.NewConversationService(&fakeConversations{})
	require.ErrorIs(t, svc.Record(context.Background(), "  ", "a", "b"), domain.ErrValidation)
}

func TestRecord_ConcurrentPairsStayAdjacent(t *testing.T) {
	convs := &fakeConversations{}
	svc := app.NewConversationService(convs)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = svc.Record(ctx, "same", fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
		}(i)
	}
	wg.Wait()

	conv, err := svc.History(ctx, "same")
	require.NoError(t, err)
	require.Len(t, conv.Turns, 40)
	for i := 0; i < len(conv.Turns); i += 2 {
		q, a := conv.Turns[i], conv.Turns[i+1]
		require.Equal(t, domain.RoleUser, q.Role)
		require.Equal(t, "a"+q.Text[1:], a.Text)
	}
}
