// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/otms-go/internal/auth"
	"github.com/olegiv/otms-go/internal/cache"
	"github.com/olegiv/otms-go/internal/catalog"
	"github.com/olegiv/otms-go/internal/config"
	"github.com/olegiv/otms-go/internal/model"
	"github.com/olegiv/otms-go/internal/service"
	"github.com/olegiv/otms-go/internal/store"
	"github.com/olegiv/otms-go/internal/testutil"
	"github.com/olegiv/otms-go/internal/transfer"
	"github.com/olegiv/otms-go/internal/ts"
	"github.com/olegiv/otms-go/internal/webhook"
)

const adminToken = "admin-token-0123456789abcdef"

const csCatalog = `<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE TS>
<TS version="2.0" language="cs" sourcelanguage="en">
<context>
    <name>FlickrUploader</name>
    <message>
        <location filename="../photini/flickr.py" line="317"/>
        <source>Connect</source>
        <translation>Připojit</translation>
    </message>
    <message numerus="yes">
        <location filename="../photini/flickr.py" line="405"/>
        <source>Upload %n photo(s)</source>
        <translation>
            <numerusform>Nahrát %n fotografii</numerusform>
            <numerusform>Nahrát %n fotografie</numerusform>
            <numerusform>Nahrát %n fotografií</numerusform>
        </translation>
    </message>
</context>
</TS>
`

const frCatalog = `<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE TS>
<TS version="2.0" language="fr" sourcelanguage="en">
<context>
    <name>FlickrUploader</name>
    <message>
        <source>Connect</source>
        <translation>Connecter</translation>
    </message>
</context>
</TS>
`

type testEnv struct {
	t       *testing.T
	mux     *chi.Mux
	queries *store.Queries
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	dir := t.TempDir()
	path := filepath.Join(dir, "photini.cs.ts")
	if err := os.WriteFile(path, []byte(csCatalog), 0644); err != nil {
		t.Fatal(err)
	}

	logger := testutil.TestLoggerSilent()
	catalogs := service.NewCatalogService(db, logger)
	if _, err := catalogs.ImportFile(context.Background(), path); err != nil {
		t.Fatalf("ImportFile: %v", err)
	}

	cat := catalog.New("en", logger)
	if err := cat.Load(dir); err != nil {
		t.Fatalf("Load: %v", err)
	}

	hash, err := auth.HashToken(adminToken)
	if err != nil {
		t.Fatalf("HashToken: %v", err)
	}
	cfg := &config.Config{
		DefaultLang:    "en",
		CatalogDir:     dir,
		CacheTTL:       60,
		CacheMaxSize:   100,
		AdminTokenHash: hash,
	}

	trCache := cache.NewTranslationCacheWithBackend(cache.NewMemoryCache(time.Minute, 100), time.Minute)
	exporter := transfer.NewExporter(db, catalogs, logger)
	importer := transfer.NewImporter(catalogs, logger)
	dispatcher := webhook.NewDispatcher(db, logger, webhook.DefaultConfig())

	h := NewHandler(db, cfg, cat, catalogs, trCache, exporter, importer, dispatcher, logger)
	mux := chi.NewRouter()
	h.Routes(mux)

	return &testEnv{t: t, mux: mux, queries: store.New(db)}
}

// key mints an API key with the given permissions JSON and returns the raw key.
func (e *testEnv) key(permissions string) string {
	e.t.Helper()
	raw, prefix, err := model.GenerateAPIKey()
	if err != nil {
		e.t.Fatalf("GenerateAPIKey: %v", err)
	}
	_, err = e.queries.CreateAPIKey(context.Background(), store.CreateAPIKeyParams{
		Name:        "test",
		KeyHash:     model.HashAPIKey(raw),
		KeyPrefix:   prefix,
		Permissions: permissions,
	})
	if err != nil {
		e.t.Fatalf("CreateAPIKey: %v", err)
	}
	return raw
}

func (e *testEnv) do(method, target, bearer, contentType string, body io.Reader) *httptest.ResponseRecorder {
	e.t.Helper()
	req := httptest.NewRequest(method, target, body)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) (T, *Meta) {
	t.Helper()
	var resp struct {
		Data T     `json:"data"`
		Meta *Meta `json:"meta"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v\nbody: %s", err, rec.Body.String())
	}
	return resp.Data, resp.Meta
}

func TestTranslate(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/translate?lang=cs&context=FlickrUploader&source=Connect", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	got, _ := decodeData[TranslateResponse](t, rec)
	if got.Translation != "Připojit" {
		t.Errorf("translation = %q, want Připojit", got.Translation)
	}
	if got.Language != "cs" {
		t.Errorf("language = %q, want cs", got.Language)
	}
	if got.Cached {
		t.Error("first lookup reported as cached")
	}

	// Second identical lookup is served from the cache.
	rec = env.do(http.MethodGet, "/translate?lang=cs&context=FlickrUploader&source=Connect", "", "", nil)
	got, _ = decodeData[TranslateResponse](t, rec)
	if !got.Cached {
		t.Error("second lookup not served from cache")
	}
	if got.Translation != "Připojit" {
		t.Errorf("cached translation = %q, want Připojit", got.Translation)
	}
}

func TestTranslate_NumerusCount(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet,
		"/translate?lang=cs&context=FlickrUploader&source=Upload+%25n+photo(s)&n=5", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	got, _ := decodeData[TranslateResponse](t, rec)
	if got.Translation != "Nahrát 5 fotografií" {
		t.Errorf("translation = %q, want Nahrát 5 fotografií", got.Translation)
	}
	if got.Count == nil || *got.Count != 5 {
		t.Errorf("count = %v, want 5", got.Count)
	}
}

func TestTranslate_NegativeCountDistinctFromNoCount(t *testing.T) {
	env := newTestEnv(t)

	// Prime the cache with an n=-1 numerus lookup (magnitude selects the
	// singular form), then look the same string up without a count.
	rec := env.do(http.MethodGet,
		"/translate?lang=cs&context=FlickrUploader&source=Upload+%25n+photo(s)&n=-1", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	numerus, _ := decodeData[TranslateResponse](t, rec)

	rec = env.do(http.MethodGet,
		"/translate?lang=cs&context=FlickrUploader&source=Upload+%25n+photo(s)", "", "", nil)
	plain, _ := decodeData[TranslateResponse](t, rec)

	if plain.Count != nil {
		t.Errorf("count-less lookup echoed count %d", *plain.Count)
	}
	if plain.Translation == numerus.Translation {
		t.Errorf("count-less lookup served the n=-1 result %q", plain.Translation)
	}
	if plain.Translation != "Upload %n photo(s)" {
		t.Errorf("translation = %q, want source fallback for a count-less numerus lookup", plain.Translation)
	}
}

func TestTranslate_SourceFallback(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/translate?lang=cs&context=FlickrUploader&source=Disconnect", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for unknown string", rec.Code)
	}
	got, _ := decodeData[TranslateResponse](t, rec)
	if got.Translation != "Disconnect" {
		t.Errorf("translation = %q, want fallback to source", got.Translation)
	}
}

func TestTranslate_BadRequests(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		target string
	}{
		{"missing source", "/translate?context=FlickrUploader"},
		{"missing context", "/translate?source=Connect"},
		{"non-integer count", "/translate?context=FlickrUploader&source=Connect&n=many"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodGet, tt.target, "", "", nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			var errResp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
				t.Fatalf("decoding error response: %v", err)
			}
			if errResp.Error.Code != "bad_request" {
				t.Errorf("error code = %q, want bad_request", errResp.Error.Code)
			}
		})
	}
}

func TestListLanguages(t *testing.T) {
	env := newTestEnv(t)
	key := env.key(`["catalogs:read"]`)

	rec := env.do(http.MethodGet, "/languages", key, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	languages, meta := decodeData[[]model.Language](t, rec)
	if len(languages) != 1 || languages[0].Code != "cs" {
		t.Errorf("languages = %+v, want [cs]", languages)
	}
	if meta == nil || meta.Total != 1 {
		t.Errorf("meta = %+v, want total 1", meta)
	}
}

func TestListLanguages_Unauthorized(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/languages", "", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 without key", rec.Code)
	}
}

func TestListContexts_UnknownLanguage(t *testing.T) {
	env := newTestEnv(t)
	key := env.key(`["catalogs:read"]`)

	rec := env.do(http.MethodGet, "/languages/xx/contexts", key, "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestListMessages_Paged(t *testing.T) {
	env := newTestEnv(t)
	key := env.key(`["catalogs:read"]`)

	rec := env.do(http.MethodGet,
		"/languages/cs/contexts/flickr-uploader/messages?per_page=1&page=2", key, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	msgs, meta := decodeData[[]model.Message](t, rec)
	if len(msgs) != 1 {
		t.Fatalf("page size = %d, want 1", len(msgs))
	}
	if meta == nil || meta.Total != 2 || meta.Pages != 2 || meta.Page != 2 {
		t.Errorf("meta = %+v, want total 2 across 2 pages", meta)
	}
}

func TestExportTS(t *testing.T) {
	env := newTestEnv(t)
	key := env.key(`["catalogs:read"]`)

	rec := env.do(http.MethodGet, "/languages/cs/export.ts", key, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/xml") {
		t.Errorf("content type = %q", ct)
	}

	file, err := ts.Parse(rec.Body)
	if err != nil {
		t.Fatalf("exported catalog does not parse: %v", err)
	}
	if file.Language != "cs" || file.MessageCount() != 2 {
		t.Errorf("exported %s with %d messages, want cs with 2", file.Language, file.MessageCount())
	}
}

func TestLintEndpoint(t *testing.T) {
	env := newTestEnv(t)
	key := env.key(`["lint:read"]`)

	rec := env.do(http.MethodGet, "/languages/cs/lint", key, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	report, _ := decodeData[LintReport](t, rec)
	if report.Language != "cs" {
		t.Errorf("report language = %q, want cs", report.Language)
	}

	// The read-only key must not reach lint.
	readKey := env.key(`["catalogs:read"]`)
	rec = env.do(http.MethodGet, "/languages/cs/lint", readKey, "", nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status with catalogs:read key = %d, want 403", rec.Code)
	}
}

func TestImportTS(t *testing.T) {
	env := newTestEnv(t)
	writeKey := env.key(`["catalogs:write"]`)
	readKey := env.key(`["catalogs:read"]`)

	rec := env.do(http.MethodPost, "/import", writeKey, "application/xml", strings.NewReader(frCatalog))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	result, _ := decodeData[service.ImportResult](t, rec)
	if result.Language != "fr" || result.Messages != 1 {
		t.Errorf("result = %+v, want fr with 1 message", result)
	}

	rec = env.do(http.MethodGet, "/languages", readKey, "", nil)
	languages, _ := decodeData[[]model.Language](t, rec)
	if len(languages) != 2 {
		t.Errorf("languages after import = %d, want 2", len(languages))
	}
}

func TestImport_RejectsGarbage(t *testing.T) {
	env := newTestEnv(t)
	writeKey := env.key(`["catalogs:write"]`)

	rec := env.do(http.MethodPost, "/import", writeKey, "application/xml", strings.NewReader("not xml"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateWebhook_Validation(t *testing.T) {
	env := newTestEnv(t)
	key := env.key(`["webhooks:write"]`)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"valid", `{"name":"ci","url":"https://example.com/hook","events":["catalog.imported"]}`, http.StatusCreated},
		{"missing name", `{"url":"https://example.com/hook","events":["catalog.imported"]}`, http.StatusBadRequest},
		{"bad url", `{"name":"ci","url":"ftp://example.com","events":["catalog.imported"]}`, http.StatusBadRequest},
		{"no events", `{"name":"ci","url":"https://example.com/hook","events":[]}`, http.StatusBadRequest},
		{"unknown event", `{"name":"ci","url":"https://example.com/hook","events":["catalog.deleted"]}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodPost, "/webhooks", key, "application/json", strings.NewReader(tt.body))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestCreateAPIKey_AdminFlow(t *testing.T) {
	env := newTestEnv(t)

	body := `{"name":"reader","permissions":["catalogs:read"],"expires_in":"720h"}`
	rec := env.do(http.MethodPost, "/admin/keys", adminToken, "application/json", strings.NewReader(body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	created, _ := decodeData[CreateAPIKeyResponse](t, rec)
	if created.Key == "" {
		t.Fatal("raw key missing from response")
	}

	// The minted key immediately works against read endpoints.
	rec = env.do(http.MethodGet, "/languages", created.Key, "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("minted key rejected: status = %d", rec.Code)
	}
}

func TestCreateAPIKey_RejectsUnknownPermission(t *testing.T) {
	env := newTestEnv(t)

	body := `{"name":"reader","permissions":["catalogs:admin"]}`
	rec := env.do(http.MethodPost, "/admin/keys", adminToken, "application/json", strings.NewReader(body))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
