// Package mistral matches free-text locations to listings with a chat
// completion model served through an OpenAI-compatible API.
package mistral

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"hoteldir/internal/adapters/observability"
	"hoteldir/internal/domain"
	"hoteldir/internal/textnorm"
)

type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
	rl      *rate.Limiter
}

func New(base, key, model string, timeout time.Duration, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if rps <= 0 {
		rps = 5
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	cfg := openai.DefaultConfig(key)
	if base != "" {
		cfg.BaseURL = strings.TrimRight(base, "/")
	}
	return &Client{
		api:     openai.NewClientWithConfig(cfg),
		model:   model,
		timeout: timeout,
		rl:      rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// Match implements domain.MatchService. The result is always a subset of the
// candidate IDs, in candidate order; any failure yields an empty result.
func (c *Client) Match(ctx context.Context, phrase string, candidates []domain.Listing) []string {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" || len(candidates) == 0 || textnorm.IsGenericPlace(phrase) {
		observability.ObserveMatch(0)
		return []string{}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	text, err := c.complete(ctx, phrase, candidates)
	if err != nil {
		log.Warn().Err(err).Str("phrase", phrase).Int("candidates", len(candidates)).Msg("location match failed")
		observability.ObserveMatch(0)
		return []string{}
	}

	ids := restrict(extractIDs(text), candidates)
	observability.ObserveMatch(len(ids))
	log.Debug().Str("phrase", phrase).Int("candidates", len(candidates)).Int("matched", len(ids)).Msg("location match")
	return ids
}

func (c *Client) complete(ctx context.Context, phrase string, candidates []domain.Listing) (string, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return "", err
	}
	prompt, err := userPrompt(phrase, candidates)
	if err != nil {
		return "", err
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	observability.ObserveExternal("mistral", "chat.completions", err, time.Since(start))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// restrict keeps IDs present among candidates, de-duplicated, in candidate order.
func restrict(got []string, candidates []domain.Listing) []string {
	want := make(map[string]bool, len(got))
	for _, id := range got {
		want[strings.TrimSpace(id)] = true
	}
	out := []string{}
	for _, l := range candidates {
		if want[l.ID] {
			out = append(out, l.ID)
			delete(want, l.ID)
		}
	}
	return out
}

// extractIDs decodes the first well-formed JSON array found in text.
// Elements may be strings, numbers or objects carrying an "id".
func extractIDs(text string) []string {
	for i := strings.IndexByte(text, '['); i >= 0; {
		dec := json.NewDecoder(strings.NewReader(text[i:]))
		dec.UseNumber()
		var arr []any
		if err := dec.Decode(&arr); err == nil {
			return idStrings(arr)
		}
		next := strings.IndexByte(text[i+1:], '[')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return nil
}

func idStrings(arr []any) []string {
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		switch t := v.(type) {
		case string:
			out = append(out, t)
		case json.Number:
			out = append(out, t.String())
		case map[string]any:
			if id, ok := t["id"]; ok {
				out = append(out, fmt.Sprint(id))
			}
		}
	}
	return out
}
