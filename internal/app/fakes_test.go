package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"hoteldir/internal/domain"
)

// ---- fakes ----

type fakeListings struct {
	mu       sync.Mutex
	items    map[string]domain.Listing
	eligible int // ListEligible calls
	err      error
}

func newFakeListings(ls ...domain.Listing) *fakeListings {
	f := &fakeListings{items: map[string]domain.Listing{}}
	for _, l := range ls {
		f.items[l.ID] = l
	}
	return f
}

func (f *fakeListings) CreateListing(ctx context.Context, l domain.Listing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.items[l.ID] = l
	return nil
}

func (f *fakeListings) UpdateListing(ctx context.Context, id string, p domain.ListingPatch) (domain.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.items[id]
	if !ok {
		return domain.Listing{}, domain.ErrNotFound
	}
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Status != nil {
		l.Status = *p.Status
	}
	if p.Paid != nil {
		l.Paid = *p.Paid
	}
	if p.Price != nil {
		l.Price = p.Price
	}
	if p.ApprovedAt != nil {
		l.ApprovedAt = p.ApprovedAt
	}
	if p.Surroundings != nil {
		l.Surroundings = *p.Surroundings
	}
	f.items[id] = l
	return l, nil
}

func (f *fakeListings) DeleteListing(ctx context.Context, id string) (domain.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.items[id]
	if !ok {
		return domain.Listing{}, domain.ErrNotFound
	}
	delete(f.items, id)
	return l, nil
}

func (f *fakeListings) GetListing(ctx context.Context, id string) (domain.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.items[id]
	if !ok {
		return domain.Listing{}, domain.ErrNotFound
	}
	return l, nil
}

func (f *fakeListings) ListListings(ctx context.Context, flt domain.ListingFilter) ([]domain.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Listing
	for _, l := range f.items {
		if flt.Status != nil && l.Status != *flt.Status {
			continue
		}
		if flt.City != "" && l.City != flt.City {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ListEligible deliberately returns every row in ID order; the catalog must
// apply the approved and paid rule itself.
func (f *fakeListings) ListEligible(ctx context.Context) ([]domain.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.eligible++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.Listing, 0, len(f.items))
	for _, l := range f.items {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	c.dels = append(c.dels, key)
	return nil
}

type fakeMatcher struct {
	mu     sync.Mutex
	calls  int
	phrase string
	seen   []string
	ids    []string
}

func (m *fakeMatcher) Match(ctx context.Context, phrase string, candidates []domain.Listing) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.phrase = phrase
	m.seen = m.seen[:0]
	for _, c := range candidates {
		m.seen = append(m.seen, c.ID)
	}
	return m.ids
}

// fakeTranslator prefixes the target language and fails on texts containing "FAIL".
type fakeTranslator struct {
	mu    sync.Mutex
	calls int
}

func (t *fakeTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	t.mu.Lock()
	t.calls++
	t.mu.Unlock()
	if strings.Contains(text, "FAIL") {
		return "", errors.New("upstream 503")
	}
	return "[" + target + "] " + text, nil
}

type fakeConversations struct {
	mu    sync.Mutex
	convs map[string]*domain.Conversation
	err   error
}

func (f *fakeConversations) AppendTurns(ctx context.Context, sessionID string, turns []domain.Turn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.convs == nil {
		f.convs = map[string]*domain.Conversation{}
	}
	c, ok := f.convs[sessionID]
	if !ok {
		c = &domain.Conversation{SessionID: sessionID, CreatedAt: turns[0].Timestamp}
		f.convs[sessionID] = c
	}
	c.Turns = append(c.Turns, turns...)
	c.UpdatedAt = turns[len(turns)-1].Timestamp
	return nil
}

func (f *fakeConversations) GetConversation(ctx context.Context, sessionID string) (domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.convs[sessionID]
	if !ok {
		return domain.Conversation{}, domain.ErrNotFound
	}
	return *c, nil
}

type fakeImages struct {
	mu      sync.Mutex
	put     map[string][]byte
	deleted []string
}

func (f *fakeImages) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return "", err
	}
	if f.put == nil {
		f.put = map[string][]byte{}
	}
	f.put[key] = buf.Bytes()
	return "https://cdn.example.test/" + key, nil
}

func (f *fakeImages) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return nil
}

// ---- helpers ----

func listing(id, typ string, status domain.Status, paid bool) domain.Listing {
	return domain.Listing{
		ID: id, Name: "Hotel " + id, Region: "Pichincha", City: "Quito",
		Description: "Descripción " + id, Location: "Norte de Quito", Address: "Av. Amazonas " + id,
		Type: typ, Status: status, Paid: paid, CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func ids(ls []domain.Listing) []string {
	out := make([]string, 0, len(ls))
	for _, l := range ls {
		out = append(out, l.ID)
	}
	return out
}

func sortedIDs(ls []domain.Listing) []string {
	out := ids(ls)
	sort.Strings(out)
	return out
}

func noShuffle([]domain.Listing) {}

func ptr[T any](v T) *T { return &v }
