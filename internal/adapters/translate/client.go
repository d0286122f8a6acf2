// internal/adapters/translate/client.go
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"hoteldir/internal/adapters/observability"
)

// Client talks to a Cloud Translation v2 style REST endpoint.
type Client struct {
	base    string
	hc      *http.Client
	key     string
	rl      *rate.Limiter
	timeout time.Duration
}

func New(base, key string, timeout time.Duration, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if rps <= 0 {
		rps = 20
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base:    strings.TrimRight(base, "/"),
		hc:      &http.Client{Timeout: timeout + time.Second},
		key:     key,
		rl:      rate.NewLimiter(rate.Limit(rps), rps),
		timeout: timeout,
	}, nil
}

var (
	ErrUnauthorized = errors.New("translate: unauthorized")
	ErrQuota        = errors.New("translate: quota exceeded")
	ErrEmpty        = errors.New("translate: empty response")
)

type request struct {
	Q      string `json:"q"`
	Source string `json:"source,omitempty"`
	Target string `json:"target"`
	Format string `json:"format"`
}

type response struct {
	Data struct {
		Translations []struct {
			TranslatedText string `json:"translatedText"`
		} `json:"translations"`
	} `json:"data"`
}

// Translate implements domain.TextTranslator. It makes exactly one attempt.
func (c *Client) Translate(ctx context.Context, text, source, target string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.rl.Wait(ctx); err != nil {
		return "", err
	}

	start := time.Now()
	out, err := c.post(ctx, request{Q: text, Source: source, Target: target, Format: "text"})
	observability.ObserveExternal("translate", "v2", err, time.Since(start))
	return out, err
}

func (c *Client) post(ctx context.Context, body request) (string, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"?key="+url.QueryEscape(c.key), bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "hoteldir/1.0")

	resp, err := c.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var out response
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return "", fmt.Errorf("decode translation: %w", err)
		}
		if len(out.Data.Translations) == 0 {
			return "", ErrEmpty
		}
		// format=text should not escape, but some proxies still return entities
		return html.UnescapeString(out.Data.Translations[0].TranslatedText), nil

	case http.StatusUnauthorized, http.StatusForbidden:
		return "", ErrUnauthorized

	case http.StatusTooManyRequests:
		return "", ErrQuota

	default:
		// read a small error body for diagnostics
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
}
