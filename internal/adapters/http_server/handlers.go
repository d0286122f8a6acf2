package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"

	"hoteldir/internal/adapters/auth"
	"hoteldir/internal/app"
	"hoteldir/internal/domain"
)

// multipart memory budget on top of the image limit
const formOverhead = 1 << 20

type Handlers struct {
	Chat     *app.ChatService
	Listings *app.ModerationService
	Convo    *app.ConversationService
	Auth     *auth.Authenticator // nil disables admin login

	SecureCookie bool
	MaxImage     int64
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Post("/chat", h.chat)
	s.mux.Post("/listings", h.createListing)

	s.mux.Post("/login", h.login)
	s.mux.Post("/logout", h.logout)
	s.mux.Get("/verify-session", h.verifySession)

	s.mux.Group(func(r chi.Router) {
		r.Use(RequireAdmin(h.Auth))
		r.Get("/listings", h.listListings)
		r.Patch("/listings/{id}", h.patchListing)
		r.Delete("/listings/{id}", h.deleteListing)
		r.Get("/conversations/{sessionId}", h.getConversation)
	})
}

// selectLang picks the first language of an Accept-Language header, or ""
// when the header is absent or unparsable.
func selectLang(al string) string {
	tags, _, err := language.ParseAcceptLanguage(al)
	if err != nil || len(tags) == 0 {
		return ""
	}
	base, _ := tags[0].Base()
	return base.String()
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain errors onto problem responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeProblem(w, http.StatusBadRequest, "Bad Request", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "resource not found")
	default:
		log.Error().Err(err).Str("route", routeOf(r)).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCached writes v with a weak ETag and honours If-None-Match.
func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write body")
	}
}

// ---- chat ----

func (h *Handlers) chat(w http.ResponseWriter, r *http.Request) {
	var req app.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "body must be JSON")
		return
	}
	if req.Lang == "" {
		req.Lang = selectLang(r.Header.Get("Accept-Language"))
	}
	reply, err := h.Chat.Chat(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Language", app.NormalizeLang(req.Lang))
	writeJSON(w, http.StatusOK, reply)
}

// ---- listings ----

func (h *Handlers) createListing(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.MaxImage + formOverhead); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "invalid form body")
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	in := app.NewListing{
		Name:            r.FormValue("name"),
		Region:          r.FormValue("region"),
		City:            r.FormValue("city"),
		Description:     r.FormValue("description"),
		Location:        r.FormValue("location"),
		Address:         r.FormValue("address"),
		Surroundings:    formList(r, "surroundings"),
		RecreationAreas: r.FormValue("recreationAreas"),
		Type:            r.FormValue("type"),
		ContactName:     r.FormValue("contactName"),
		Email:           r.FormValue("email"),
		Phone:           r.FormValue("phone"),
		Website:         r.FormValue("website"),
	}

	var img *app.ImageUpload
	file, hdr, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		img = &app.ImageUpload{Filename: hdr.Filename, Body: file}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		writeProblem(w, http.StatusBadRequest, "Bad Request", "invalid image field")
		return
	}

	l, err := h.Listings.Submit(r.Context(), in, img)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"listing": l})
}

// formList accepts both repeated fields and comma-separated values.
func formList(r *http.Request, key string) []string {
	var vals []string
	if r.MultipartForm != nil {
		vals = r.MultipartForm.Value[key]
	}
	if len(vals) == 0 {
		vals = r.Form[key]
	}
	var out []string
	for _, v := range vals {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func (h *Handlers) listListings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := domain.ListingFilter{Region: q.Get("region"), City: q.Get("city")}
	if s := q.Get("status"); s != "" {
		st, ok := domain.ParseStatus(s)
		if !ok {
			writeProblem(w, http.StatusBadRequest, "Invalid status", "status must be pending, approved or rejected")
			return
		}
		f.Status = &st
	}
	out, err := h.Listings.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, map[string]any{"listings": out})
}

type patchRequest struct {
	Name            *string   `json:"name"`
	Region          *string   `json:"region"`
	City            *string   `json:"city"`
	Description     *string   `json:"description"`
	Location        *string   `json:"location"`
	Address         *string   `json:"address"`
	Surroundings    *[]string `json:"surroundings"`
	RecreationAreas *string   `json:"recreationAreas"`
	Type            *string   `json:"type"`
	Status          *string   `json:"status"`
	Paid            *bool     `json:"paid"`
	Price           *float64  `json:"price"`
}

func (p patchRequest) toPatch() (domain.ListingPatch, error) {
	out := domain.ListingPatch{
		Name: p.Name, Region: p.Region, City: p.City,
		Description: p.Description, Location: p.Location, Address: p.Address,
		Surroundings: p.Surroundings, RecreationAreas: p.RecreationAreas, Type: p.Type,
		Paid: p.Paid, Price: p.Price,
	}
	if p.Status != nil {
		st, ok := domain.ParseStatus(*p.Status)
		if !ok {
			return out, errInvalidStatus
		}
		out.Status = &st
	}
	return out, nil
}

var errInvalidStatus = errors.New("status must be pending, approved or rejected")

func (h *Handlers) patchListing(w http.ResponseWriter, r *http.Request) {
	var body patchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "body must be JSON")
		return
	}
	p, err := body.toPatch()
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid status", err.Error())
		return
	}
	l, err := h.Listings.Update(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	admin, _ := AdminFrom(r.Context())
	log.Info().Str("admin", admin).Str("id", l.ID).Str("status", string(l.Status)).Bool("paid", l.Paid).Msg("listing updated")
	writeJSON(w, http.StatusOK, map[string]any{"listing": l})
}

func (h *Handlers) deleteListing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Listings.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	admin, _ := AdminFrom(r.Context())
	log.Info().Str("admin", admin).Str("id", id).Msg("listing deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) getConversation(w http.ResponseWriter, r *http.Request) {
	c, err := h.Convo.History(r.Context(), chi.URLParam(r, "sessionId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, c)
}

// ---- session ----

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	if h.Auth == nil {
		writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "admin login is not configured")
		return
	}
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "body must be JSON")
		return
	}
	token, exp, err := h.Auth.Login(req.Username, req.Password)
	if err != nil {
		log.Warn().Str("remote", remoteIP(r)).Msg("admin login rejected")
		writeError(w, r, err)
		return
	}
	http.SetCookie(w, h.sessionCookie(token, exp))
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": req.Username})
}

func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	c := h.sessionCookie("", time.Unix(0, 0))
	c.MaxAge = -1
	http.SetCookie(w, c)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handlers) verifySession(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(h.Auth, r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"authenticated": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"authenticated": true, "user": user})
}

func (h *Handlers) sessionCookie(value string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     auth.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}
