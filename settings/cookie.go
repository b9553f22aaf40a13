package settings

import (
	"errors"
	"log"
	"net/http"
	"sync"
)

// CookiePrefix is prepended to keys to form cookie names.
const CookiePrefix = "brochure-"

// Baker is the part of bakery.Bakery that CookieStore needs.
type Baker interface {
	Read(r *http.Request, name string, dst any) error
	Bake(w http.ResponseWriter, name string, value any) error
}

// CookieStore keeps settings in signed cookies for the span of one request.
// Reads see writes made earlier in the same request.
type CookieStore struct {
	baker Baker
	r     *http.Request
	w     http.ResponseWriter

	mu      sync.Mutex
	written map[string]string
}

var _ Store = (*CookieStore)(nil)

func NewCookieStore(baker Baker, w http.ResponseWriter, r *http.Request) *CookieStore {
	return &CookieStore{
		baker:   baker,
		r:       r,
		w:       w,
		written: map[string]string{},
	}
}

func (cs *CookieStore) Get(key string) (string, bool) {
	cs.mu.Lock()
	if v, ok := cs.written[key]; ok {
		cs.mu.Unlock()
		return v, true
	}
	cs.mu.Unlock()

	var v string
	if err := cs.baker.Read(cs.r, CookiePrefix+key, &v); err != nil {
		if !errors.Is(err, http.ErrNoCookie) {
			// Probably doesn't need to log, but a stale key shows up here.
			log.Printf("settings: ignoring cookie for %q: %v", key, err)
		}
		return "", false
	}
	return v, true
}

func (cs *CookieStore) Set(key, value string) error {
	if err := cs.baker.Bake(cs.w, CookiePrefix+key, value); err != nil {
		return err
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.written[key] = value
	return nil
}
