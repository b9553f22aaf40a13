package webapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"

	"github.com/ts4z/brochure/app/handlers"
	"github.com/ts4z/brochure/contact"
	"github.com/ts4z/brochure/dep"
	"github.com/ts4z/brochure/dom"
	"github.com/ts4z/brochure/features"
	"github.com/ts4z/brochure/he"
	"github.com/ts4z/brochure/i18n"
	"github.com/ts4z/brochure/menu"
	"github.com/ts4z/brochure/middleware"
	"github.com/ts4z/brochure/middleware/prefs"
	"github.com/ts4z/brochure/model"
	"github.com/ts4z/brochure/settings"
	"github.com/ts4z/brochure/site"
	"github.com/ts4z/brochure/state"
	"github.com/ts4z/brochure/theme"
	"github.com/ts4z/brochure/varz"
)

var (
	pagesRendered     = varz.NewInt("pagesRendered")
	contactsSent      = varz.NewInt("contactsSent")
	contactsRejected  = varz.NewInt("contactsRejected")
	themesToggled     = varz.NewInt("themesToggled")
	pagesNotSettled   = varz.NewInt("pagesNotSettled")
	featureJSONServed = varz.NewInt("featureJSONServed")
)

// ColorSchemeHint is the client hint carrying the OS color scheme.
const ColorSchemeHint = "Sec-CH-Prefers-Color-Scheme"

// settleTimeout bounds how long a page waits on its feature fetch and a
// contact send before rendering whatever it has.
const settleTimeout = 10 * time.Second

// Config holds the configuration for creating a new App.
type Config struct {
	FeatureStorage state.FeatureStorage
	SiteStorage    state.SiteStorage
	BakeryFactory  prefs.BakeryFactory
	SubFS          fs.FS
	Clock          clockwork.Clock

	// FeaturesURL, if set, is the base URL pages fetch features.json
	// from instead of reading storage directly.
	FeaturesURL string
	HTTPClient  *http.Client

	SendDelay      time.Duration
	StatusDuration time.Duration
	Caching        bool

	// Pingers are checked by /healthz.
	Pingers []handlers.Pinger
}

// App is the web application.
type App struct {
	subFS fs.FS

	// dependencies
	featureStorage state.FeatureStorage
	siteStorage    state.SiteStorage
	bakeryFactory  prefs.BakeryFactory
	clock          clockwork.Clock
	httpClient     *http.Client
	pingers        []handlers.Pinger

	featuresURL    string
	sendDelay      time.Duration
	statusDuration time.Duration
	caching        bool

	// internals
	router  chi.Router
	cors    *cors.Cors
	handler http.Handler
}

func allowedOrigins(sc *model.SiteConfig) []string {
	r := []string{}
	add := func(origin string) {
		r = append(r, origin)
	}
	for _, origin := range sc.AllowedOriginDomains {
		add(fmt.Sprintf("https://%s", origin))
		add(fmt.Sprintf("http://%s", origin))
		for _, port := range sc.BonusHTTPPorts {
			if port == 80 {
				continue
			}
			add(fmt.Sprintf("http://%s:%d", origin, port))
		}
		for _, port := range sc.BonusHTTPSPorts {
			if port == 443 {
				continue
			}
			add(fmt.Sprintf("https://%s:%d", origin, port))
		}
	}
	for _, origin := range r {
		log.Printf("CORS allowing origin %s", origin)
	}
	return r
}

// New creates a new App with the given configuration.
func New(ctx context.Context, config *Config) (*App, error) {
	// Prime this so we can check for errors.
	sc, err := dep.Required(config.SiteStorage).FetchSiteConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("can't get SiteConfig: %w", err)
	}
	if _, err = dep.Required(config.BakeryFactory).Bakery(ctx); err != nil {
		return nil, fmt.Errorf("can't create bakery: %w", err)
	}

	client := config.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: settleTimeout}
	}

	app := &App{
		subFS:          dep.Required(config.SubFS),
		featureStorage: dep.Required(config.FeatureStorage),
		siteStorage:    config.SiteStorage,
		bakeryFactory:  config.BakeryFactory,
		clock:          dep.Required(config.Clock),
		httpClient:     client,
		pingers:        config.Pingers,
		featuresURL:    config.FeaturesURL,
		sendDelay:      config.SendDelay,
		statusDuration: config.StatusDuration,
		caching:        config.Caching,
		router:         chi.NewRouter(),
	}

	app.cors = cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins(sc),
		AllowedMethods:   []string{http.MethodGet},
		AllowCredentials: false,
	})

	// Stack the handlers together.
	withPrefs := prefs.Handler(&prefs.Config{
		BakeryFactory: app.bakeryFactory,
		Next:          app.router,
	})
	csp := http.NewCrossOriginProtection()
	app.handler = middleware.NewRequestLogger(csp.Handler(withPrefs), app.clock)

	app.InstallHandlers()

	return app, nil
}

// Handler returns the configured HTTP handler.
func (app *App) Handler() http.Handler {
	return app.handler
}

func (app *App) handleFunc(method, pattern string, handler func(context.Context, http.ResponseWriter, *http.Request), mws ...func(http.Handler) http.Handler) {
	app.router.With(mws...).MethodFunc(method, pattern, func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		handler(ctx, w, r)
	})
}

// fetcher picks where a page's feature list comes from.
func (app *App) fetcher(cat *i18n.Catalog) features.Fetcher {
	if app.featuresURL == "" {
		return &features.StorageFetcher{Storage: app.featureStorage, Lang: cat.Lang}
	}
	u, err := url.JoinPath(app.featuresURL, cat.Path, "features.json")
	if err != nil {
		return features.FetcherFunc(func(context.Context) ([]model.FeatureItem, error) {
			return nil, fmt.Errorf("can't build features url from %q: %w", app.featuresURL, err)
		})
	}
	return &features.HTTPFetcher{Client: app.httpClient, URL: u}
}

func (app *App) logSubmission(sub model.ContactSubmission) {
	contactsSent.Add(1)
	log.Printf("contact: message from %s (%d bytes)", contact.Digest(sub.Email), len(sub.Message))
}

// requestURL is the absolute URL the browser asked for, for the Window.
func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	u := url.URL{Scheme: scheme, Host: r.Host, Path: r.URL.Path, RawQuery: r.URL.RawQuery}
	return u.String()
}

// newWindow builds a Window for r, answering the dark-mode media query from
// the client hint when the browser sent one.
func newWindow(w http.ResponseWriter, r *http.Request) (*dom.Window, error) {
	w.Header().Set("Accept-CH", ColorSchemeHint)
	w.Header().Add("Vary", ColorSchemeHint)
	win, err := dom.NewWindow(requestURL(r))
	if err != nil {
		return nil, he.New(http.StatusBadRequest, err)
	}
	win.SetMedia(dom.PrefersDark, r.Header.Get(ColorSchemeHint) == "dark")
	return win, nil
}

// submissionFromForm reads the posted contact fields, accepting any
// language's input names.
func submissionFromForm(r *http.Request) model.ContactSubmission {
	get := func(field string) string {
		for _, name := range i18n.FieldAliases(field) {
			if v := r.PostForm.Get(name); v != "" {
				return v
			}
		}
		return ""
	}
	return model.ContactSubmission{
		Name:    get(model.FieldName),
		Email:   get(model.FieldEmail),
		Message: get(model.FieldMessage),
	}
}

// renderPage runs the page's behaviors for this request and writes the
// result.  A GET shows the page as it is after load; a POST also submits
// the contact form with the posted values.
func (app *App) renderPage(lang string) func(context.Context, http.ResponseWriter, *http.Request) {
	cat := i18n.Lookup(lang)
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		doc, err := site.NewDocument(cat)
		if err != nil {
			he.SendErrorToHTTPClient(w, "build page", err)
			return
		}
		win, err := newWindow(w, r)
		if err != nil {
			he.SendErrorToHTTPClient(w, "build window", err)
			return
		}

		// Timers still pending when the response is written die with it.
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		page := site.Init(ctx, doc, &site.Config{
			Lang:           cat.Lang,
			Store:          settings.FromContext(ctx),
			Window:         win,
			Clock:          app.clock,
			SendDelay:      app.sendDelay,
			StatusDuration: app.statusDuration,
			OnSent:         app.logSubmission,
			Features:       app.fetcher(cat),
		})

		if r.URL.Query().Get("menu") == "open" && page.Menu != nil {
			doc.Click(doc.GetElementByID(menu.DefaultToggleID))
			doc.Update(func() {
				// Without script the same link closes it again.
				doc.GetElementByID(menu.DefaultToggleID).SetAttr("href", cat.Path)
			})
		}

		if r.Method == http.MethodPost && page.Contact != nil {
			if err := r.ParseForm(); err != nil {
				he.SendErrorToHTTPClient(w, "parse contact form", he.New(http.StatusBadRequest, err))
				return
			}
			doc.Update(func() { page.Contact.Fill(submissionFromForm(r)) })
			doc.Submit(doc.GetElementByID(contact.DefaultFormID))
			if page.Contact.State() == contact.Invalid {
				contactsRejected.Add(1)
			}
		}

		sctx, scancel := context.WithTimeout(ctx, settleTimeout)
		defer scancel()
		if err := page.Settle(sctx); err != nil {
			pagesNotSettled.Add(1)
			log.Printf("page %s didn't settle: %v", cat.Path, err)
		}

		var buf bytes.Buffer
		doc.Update(func() { err = doc.Render(&buf) })
		if err != nil {
			he.SendErrorToHTTPClient(w, "render page", err)
			return
		}
		pagesRendered.Add(1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := buf.WriteTo(w); err != nil {
			log.Printf("error writing page: %v", err)
		}
	}
}

// returnCatalog picks the page a theme toggle goes back to.  Only the site's
// own pages are allowed.
func returnCatalog(path string) *i18n.Catalog {
	for _, l := range i18n.Languages() {
		if c := i18n.Lookup(l); c.Path == path {
			return c
		}
	}
	return i18n.Lookup(i18n.DefaultLang)
}

// handleTheme flips the theme the same way the page's toggle does, then
// sends the browser back to the page.
func (app *App) handleTheme(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		he.SendErrorToHTTPClient(w, "parse theme form", he.New(http.StatusBadRequest, err))
		return
	}
	cat := returnCatalog(r.PostForm.Get("return"))
	doc, err := site.NewDocument(cat)
	if err != nil {
		he.SendErrorToHTTPClient(w, "build page", err)
		return
	}
	win, err := newWindow(w, r)
	if err != nil {
		he.SendErrorToHTTPClient(w, "build window", err)
		return
	}
	var sw *theme.Switch
	doc.Update(func() {
		sw = theme.Wire(doc, theme.Config{Store: settings.FromContext(ctx), Media: win})
	})
	if !sw.HasControl() {
		he.SendErrorToHTTPClient(w, "toggle theme", he.HTTPCodedErrorf(http.StatusInternalServerError, "page has no theme control"))
		return
	}
	doc.Click(doc.GetElementByID(theme.DefaultToggleID))
	themesToggled.Add(1)
	http.Redirect(w, r, cat.Path, http.StatusSeeOther)
}

func (app *App) serveFeatures(lang string) func(context.Context, http.ResponseWriter, *http.Request) {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		items, err := app.featureStorage.FetchFeatures(ctx, lang)
		if err != nil {
			he.SendErrorToHTTPClient(w, "fetch features", err)
			return
		}
		featureJSONServed.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(items); err != nil {
			log.Printf("error encoding features: %v", err)
		}
	}
}

// InstallHandlers registers all HTTP routes.
func (app *App) InstallHandlers() {
	for _, l := range i18n.Languages() {
		cat := i18n.Lookup(l)
		app.handleFunc(http.MethodGet, cat.Path, app.renderPage(l), middleware.NoStore)
		app.handleFunc(http.MethodPost, cat.Path, app.renderPage(l), middleware.NoStore)

		jsonPath, err := url.JoinPath(cat.Path, "features.json")
		if err != nil {
			log.Fatalf("bad features path for %s: %v", l, err)
		}
		app.handleFunc(http.MethodGet, jsonPath, app.serveFeatures(l), app.cors.Handler)
		app.router.Options(jsonPath, app.cors.HandlerFunc)
	}

	app.handleFunc(http.MethodPost, "/theme", app.handleTheme)

	app.router.Get("/robots.txt", handlers.HandleRobotsTXT)
	app.router.Get("/healthz", handlers.Healthz(app.pingers...))
	app.router.Handle("/debug/vars", varz.Handler())

	// anything in fs is a file trivially shared
	app.router.Handle("/fs/*", middleware.NewCacheHeaderAdder(&middleware.CacheHeaderAdderConfig{
		Enabled: app.caching,
		Next:    http.StripPrefix("/fs/", http.FileServer(http.FS(app.subFS))),
		MaxAge:  24 * time.Hour,
	}))
}

// Wrapper to just return the input context.
func contextualizer(ctx context.Context) func(net.Listener) context.Context {
	return func(_ net.Listener) context.Context {
		return ctx
	}
}

// Serve starts the HTTP server on the given listen address.  It returns when
// the server exits or ctx is cancelled.
func (app *App) Serve(ctx context.Context, listenAddress string) error {
	wg := sync.WaitGroup{}

	type result struct {
		name string
		err  error
	}

	ch := make(chan *result)

	server := &http.Server{
		Addr:         listenAddress,
		Handler:      app.handler,
		BaseContext:  contextualizer(ctx),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * settleTimeout,
		IdleTimeout:  2 * time.Minute,
	}

	wg.Add(1)
	go func() {
		ch <- &result{"http", server.ListenAndServe()}
		wg.Done()
	}()

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(sctx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	go func() {
		wg.Wait()
		close(ch)
	}()

	errors := []error{}
	for res := range ch {
		if res.err != nil && res.err != http.ErrServerClosed {
			log.Printf("server %s exited: %v", res.name, res.err)
			errors = append(errors, res.err)
		}
	}

	if len(errors) == 0 {
		return nil
	}
	return fmt.Errorf("servers exited: %v", errors)
}
