package webapp

import (
	"context"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"

	"github.com/ts4z/brochure/assets"
	"github.com/ts4z/brochure/bakery"
	"github.com/ts4z/brochure/features"
	"github.com/ts4z/brochure/i18n"
	"github.com/ts4z/brochure/model"
	"github.com/ts4z/brochure/state"
)

type testApp struct {
	app     *App
	storage *state.BuiltinStorage
}

func newTestApp(t *testing.T, mutate func(*Config)) *testApp {
	t.Helper()
	clock := clockwork.NewRealClock()
	storage, err := state.NewBuiltinStorage(assets.FeaturesYAML, clock.Now())
	if err != nil {
		t.Fatalf("NewBuiltinStorage: %v", err)
	}
	sc, _ := storage.FetchSiteConfig(context.Background())
	sc.AllowedOriginDomains = []string{"example.com"}
	if err := storage.SaveSiteConfig(context.Background(), sc); err != nil {
		t.Fatalf("SaveSiteConfig: %v", err)
	}
	sub, err := fs.Sub(assets.FS, "fs")
	if err != nil {
		t.Fatalf("fs.Sub: %v", err)
	}
	conf := &Config{
		FeatureStorage: storage,
		SiteStorage:    storage,
		BakeryFactory:  bakery.NewFactory(clock, storage, bakery.Options{}),
		SubFS:          sub,
		Clock:          clock,
		SendDelay:      time.Millisecond,
		StatusDuration: time.Hour,
	}
	if mutate != nil {
		mutate(conf)
	}
	app, err := New(context.Background(), conf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &testApp{app: app, storage: storage}
}

func (ta *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ta.app.Handler().ServeHTTP(rec, req)
	return rec
}

func parse(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	if err != nil {
		t.Fatalf("can't parse response: %v", err)
	}
	return doc
}

func cardTitles(doc *goquery.Document) []string {
	return doc.Find("#features .feature-card h3").Map(func(_ int, s *goquery.Selection) string {
		return s.Text()
	})
}

func postForm(path string, v url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(v.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestIndexRendersStoredFeatures(t *testing.T) {
	ta := newTestApp(t, nil)
	rec := ta.do(httptest.NewRequest(http.MethodGet, "/", nil))
	doc := parse(t, rec)

	want, _ := ta.storage.FetchFeatures(context.Background(), "en")
	wantTitles := []string{}
	for _, it := range want {
		wantTitles = append(wantTitles, it.Title)
	}
	if diff := cmp.Diff(wantTitles, cardTitles(doc)); diff != "" {
		t.Errorf("feature cards mismatch (-want +got):\n%s", diff)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q", got)
	}
	if got := rec.Header().Get("Accept-CH"); got != ColorSchemeHint {
		t.Errorf("Accept-CH = %q", got)
	}
	if doc.Find("html").HasClass("dark") {
		t.Errorf("page is dark without a preference or hint")
	}
}

func TestSpanishPage(t *testing.T) {
	ta := newTestApp(t, nil)
	doc := parse(t, ta.do(httptest.NewRequest(http.MethodGet, "/es/", nil)))
	if lang, _ := doc.Find("html").Attr("lang"); lang != "es" {
		t.Errorf("lang = %q, want es", lang)
	}
	if doc.Find(`#contact-form [name="nombre"]`).Length() != 1 {
		t.Errorf("spanish form has no nombre input")
	}
}

func TestColorSchemeHint(t *testing.T) {
	ta := newTestApp(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(ColorSchemeHint, "dark")
	doc := parse(t, ta.do(req))
	if !doc.Find("html").HasClass("dark") {
		t.Errorf("dark hint not applied")
	}
	if v, _ := doc.Find("#theme-toggle").Attr("aria-pressed"); v != "true" {
		t.Errorf("theme toggle aria-pressed = %q", v)
	}
}

func TestThemeToggleSticks(t *testing.T) {
	ta := newTestApp(t, nil)
	rec := ta.do(postForm("/theme", url.Values{"return": {"/es/"}}))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/es/" {
		t.Errorf("Location = %q, want /es/", got)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %+v, want one", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/es/", nil)
	req.AddCookie(cookies[0])
	doc := parse(t, ta.do(req))
	if !doc.Find("html").HasClass("dark") {
		t.Errorf("stored dark theme not applied")
	}

	// And back again.
	req = postForm("/theme", url.Values{"return": {"/es/"}})
	req.AddCookie(cookies[0])
	rec = ta.do(req)
	req = httptest.NewRequest(http.MethodGet, "/es/", nil)
	req.AddCookie(rec.Result().Cookies()[0])
	doc = parse(t, ta.do(req))
	if doc.Find("html").HasClass("dark") {
		t.Errorf("second toggle left the page dark")
	}
}

func TestThemeReturnOnlyToSitePages(t *testing.T) {
	ta := newTestApp(t, nil)
	for _, ret := range []string{"https://evil.example/", "//evil.example/", "", "/nope"} {
		rec := ta.do(postForm("/theme", url.Values{"return": {ret}}))
		if got := rec.Header().Get("Location"); got != "/" {
			t.Errorf("return %q: Location = %q, want /", ret, got)
		}
	}
}

func TestMenuOpenQuery(t *testing.T) {
	ta := newTestApp(t, nil)
	doc := parse(t, ta.do(httptest.NewRequest(http.MethodGet, "/?menu=open", nil)))
	toggle := doc.Find("#menu-toggle")
	if v, _ := toggle.Attr("aria-expanded"); v != "true" {
		t.Errorf("aria-expanded = %q, want true", v)
	}
	if v, _ := toggle.Attr("href"); v != "/" {
		t.Errorf("href = %q, want /", v)
	}
	if !doc.Find("#site-nav").HasClass("open") {
		t.Errorf("nav not open")
	}
}

func TestContactInvalid(t *testing.T) {
	ta := newTestApp(t, nil)
	doc := parse(t, ta.do(postForm("/", url.Values{
		"name":    {""},
		"email":   {"bad"},
		"message": {"short"},
	})))
	if n := doc.Find("#contact-form .field-error").Length(); n != 3 {
		t.Errorf("%d field errors, want 3", n)
	}
	if got := doc.Find(".form-feedback").Text(); got != i18n.Lookup("en").Contact.FixErrors {
		t.Errorf("feedback = %q", got)
	}
	// The user's input survives so it can be fixed.
	if v, _ := doc.Find(`[name="email"]`).Attr("value"); v != "bad" {
		t.Errorf("email value = %q, want bad", v)
	}
}

func TestContactSent(t *testing.T) {
	ta := newTestApp(t, nil)
	doc := parse(t, ta.do(postForm("/es/", url.Values{
		"nombre":  {"Ana"},
		"email":   {"ana@example.com"},
		"mensaje": {"Hola, quiero saber más."},
	})))
	if got := doc.Find(".form-feedback").Text(); got != i18n.Lookup("es").Contact.Sent {
		t.Errorf("feedback = %q", got)
	}
	if v, _ := doc.Find(`[name="nombre"]`).Attr("value"); v != "" {
		t.Errorf("nombre not cleared: %q", v)
	}
	if doc.Find(`#contact-form button[type="submit"]`).Is("[disabled]") {
		t.Errorf("submit still disabled")
	}
}

func TestFeaturesJSON(t *testing.T) {
	ta := newTestApp(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/es/features.json", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := ta.do(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	var got []model.FeatureItem
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want, _ := ta.storage.FetchFeatures(context.Background(), "es")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("features mismatch (-want +got):\n%s", diff)
	}

	req = httptest.NewRequest(http.MethodGet, "/features.json", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	rec = ta.do(req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("disallowed origin got Access-Control-Allow-Origin %q", got)
	}
}

func TestRemoteFeaturesFallBack(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer remote.Close()

	ta := newTestApp(t, func(c *Config) {
		c.FeaturesURL = remote.URL
		c.HTTPClient = remote.Client()
	})
	doc := parse(t, ta.do(httptest.NewRequest(http.MethodGet, "/", nil)))
	want := []string{}
	for _, it := range features.Fallback() {
		want = append(want, it.Title)
	}
	if diff := cmp.Diff(want, cardTitles(doc)); diff != "" {
		t.Errorf("fallback cards mismatch (-want +got):\n%s", diff)
	}
}

func TestRemoteFeatures(t *testing.T) {
	asked := make(chan string, 1)
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		asked <- r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"title":"Remote","desc":"from afar"}]`))
	}))
	defer remote.Close()

	ta := newTestApp(t, func(c *Config) {
		c.FeaturesURL = remote.URL
		c.HTTPClient = remote.Client()
	})
	doc := parse(t, ta.do(httptest.NewRequest(http.MethodGet, "/es/", nil)))
	if got := <-asked; got != "/es/features.json" {
		t.Errorf("fetched %q, want /es/features.json", got)
	}
	if diff := cmp.Diff([]string{"Remote"}, cardTitles(doc)); diff != "" {
		t.Errorf("cards mismatch (-want +got):\n%s", diff)
	}
}

func TestAncillaryRoutes(t *testing.T) {
	ta := newTestApp(t, nil)
	tests := []struct {
		path     string
		wantCode int
		wantBody string
	}{
		{"/healthz", http.StatusOK, "ok"},
		{"/robots.txt", http.StatusOK, "Disallow: /theme"},
		{"/fs/site.css", http.StatusOK, "html.dark"},
		{"/debug/vars", http.StatusOK, "pagesRendered"},
		{"/nowhere", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		rec := ta.do(httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rec.Code != tt.wantCode {
			t.Errorf("GET %s = %d, want %d", tt.path, rec.Code, tt.wantCode)
			continue
		}
		if !strings.Contains(rec.Body.String(), tt.wantBody) {
			t.Errorf("GET %s body lacks %q", tt.path, tt.wantBody)
		}
	}
}

type failingPinger struct{}

func (failingPinger) PingContext(context.Context) error { return context.DeadlineExceeded }

func TestHealthzUnhealthy(t *testing.T) {
	ta := newTestApp(t, func(c *Config) {
		c.Pingers = append(c.Pingers, failingPinger{})
	})
	rec := ta.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestAllowedOrigins(t *testing.T) {
	got := allowedOrigins(&model.SiteConfig{
		AllowedOriginDomains: []string{"example.com"},
		BonusHTTPPorts:       []int{80, 8080},
		BonusHTTPSPorts:      []int{443, 8443},
	})
	want := []string{
		"https://example.com",
		"http://example.com",
		"http://example.com:8080",
		"https://example.com:8443",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("allowedOrigins mismatch (-want +got):\n%s", diff)
	}
}
