//go:build integration || !unit

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"hoteldir/internal/adapters/auth"
	server "hoteldir/internal/adapters/http_server"
	redisad "hoteldir/internal/adapters/redis"
	"hoteldir/internal/app"
	"hoteldir/internal/domain"
	mysqlrepo "hoteldir/internal/storage/mysql"
	"hoteldir/internal/testutil/mysqltest"
)

// ---------- helpers ----------
func postJSON(t *testing.T, client *http.Client, url string, v any) *http.Response {
	t.Helper()
	b, _ := json.Marshal(v)
	res, err := client.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return res
}

func patchJSON(t *testing.T, client *http.Client, url string, v any) *http.Response {
	t.Helper()
	b, _ := json.Marshal(v)
	req, _ := http.NewRequest(http.MethodPatch, url, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("PATCH %s: %v", url, err)
	}
	return res
}

// ---------- the test ----------
// Submit -> approve -> chat finds the listing, against real MySQL and a
// miniredis cache.
func TestHTTP_EndToEnd_SubmitApproveChat(t *testing.T) {
	db := mysqltest.Start(t)

	mr := miniredis.RunT(t)
	cache := redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	repo := mysqlrepo.New(db)
	authn, err := auth.New(auth.Options{Username: "admin", Password: "pw", Secret: "e2e"})
	if err != nil {
		t.Fatalf("auth: %v", err)
	}
	catalog := app.NewCatalogService(repo, cache, app.KeywordMatcher{}, time.Minute)
	convo := app.NewConversationService(repo)

	srv := server.New()
	srv.MountHandlers(&server.Handlers{
		Chat:     app.NewChatService(catalog, app.NewTranslationService(nil, cache, 4), convo),
		Listings: app.NewModerationService(repo, nil, cache, 1<<20),
		Convo:    convo,
		Auth:     authn,
		MaxImage: 1 << 20,
	})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()
	client := ts.Client()

	// 1) public submission
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range map[string]string{
		"name": "Hotel Carolina", "region": "Pichincha", "city": "Quito",
		"description": "Vista al parque", "location": "Quito norte", "address": "Av. Amazonas",
		"type": "Hotel / Resort / 5* o 4*", "surroundings": "Parque La Carolina",
	} {
		_ = mw.WriteField(k, v)
	}
	_ = mw.Close()
	res, err := client.Post(ts.URL+"/listings", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("POST /listings: %v", err)
	}
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d", res.StatusCode)
	}
	var created struct{ Listing domain.Listing }
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	res.Body.Close()

	chat := func() app.ChatReply {
		res := postJSON(t, client, ts.URL+"/chat", map[string]any{
			"message":   "Ubicación: Parque La Carolina",
			"sessionId": "e2e-session",
		})
		defer res.Body.Close()
		if res.StatusCode != http.StatusOK {
			t.Fatalf("chat status %d", res.StatusCode)
		}
		var r app.ChatReply
		if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
			t.Fatalf("decode chat: %v", err)
		}
		return r
	}

	// 2) pending listings are invisible to the assistant (and prime the cache)
	if got := chat(); len(got.Hotels) != 0 {
		t.Fatalf("pending listing leaked into chat: %+v", got.Hotels)
	}

	// 3) admin login and approval
	res = postJSON(t, client, ts.URL+"/login", map[string]string{"username": "admin", "password": "pw"})
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("login status %d", res.StatusCode)
	}
	var session *http.Cookie
	for _, c := range res.Cookies() {
		if c.Name == auth.CookieName {
			session = c
		}
	}
	if session == nil {
		t.Fatalf("no session cookie")
	}

	req, _ := http.NewRequest(http.MethodPatch, ts.URL+"/listings/"+created.Listing.ID,
		bytes.NewReader([]byte(`{"status":"approved","paid":true,"price":150}`)))
	req.AddCookie(session)
	res, err = client.Do(req)
	if err != nil {
		t.Fatalf("PATCH: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("patch status %d", res.StatusCode)
	}

	// unauthenticated patch is refused
	if res := patchJSON(t, client, ts.URL+"/listings/"+created.Listing.ID, map[string]any{"name": "x"}); res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous patch status %d", res.StatusCode)
	}

	// 4) the approval evicted the cached catalog, so chat now sees it
	got := chat()
	if len(got.Hotels) != 1 || got.Hotels[0].ID != created.Listing.ID {
		t.Fatalf("unexpected chat hotels: %+v", got.Hotels)
	}

	conv, err := repo.GetConversation(context.Background(), "e2e-session")
	if err != nil {
		t.Fatalf("GetConversation: %v", err)
	}
	if len(conv.Turns) != 4 {
		t.Fatalf("want 4 logged turns, got %d", len(conv.Turns))
	}
}
