/*
Package bakery signs and encrypts the site's cookies.

Keys come from the site config and rotate: each key mints cookies inside its
mint window and is still honored for reading until HonorUntil.  Factory
rebuilds the Bakery whenever the site config it was made from changes.
*/
package bakery

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"

	"github.com/ts4z/brochure/model"
)

type Clock interface {
	Now() time.Time
}

type cookieBaker struct {
	v  model.CookieKeyValidity
	sc *securecookie.SecureCookie
}

func (cb *cookieBaker) honorable(now time.Time) bool {
	return !now.Before(cb.v.MintFrom) && now.Before(cb.v.HonorUntil)
}

func (cb *cookieBaker) mintable(now time.Time) bool {
	return !now.Before(cb.v.MintFrom) && now.Before(cb.v.MintUntil)
}

// Options are the cookie attributes used when baking.
type Options struct {
	Domain string
	Secure bool
	MaxAge time.Duration
}

type Bakery struct {
	clock  Clock
	opts   Options
	bakers []*cookieBaker
}

var ErrNoKeys = errors.New("no valid cookie keys")

// New builds a Bakery from the keys in conf.  Expired or undecodable keys are
// skipped with a log line; a Bakery with no keys can still read nothing and
// mint nothing.
func New(clock Clock, conf *model.SiteConfig, opts Options) *Bakery {
	now := clock.Now()
	bakers := []*cookieBaker{}
	for i, inputKey := range conf.CookieKeys {
		if inputKey.Validity.HonorUntil.Before(now) {
			log.Printf("disregarding key conf.CookieKeys[%d] since it is expired", i)
			continue
		}
		hashKey, err := base64.StdEncoding.DecodeString(inputKey.HashKey64)
		if err != nil {
			log.Printf("disregarding key conf.CookieKeys[%d] due to bad HashKey64: %v", i, err)
			continue
		}
		blockKey, err := base64.StdEncoding.DecodeString(inputKey.BlockKey64)
		if err != nil {
			log.Printf("disregarding key conf.CookieKeys[%d] due to bad BlockKey64: %v", i, err)
			continue
		}
		sc := securecookie.New(hashKey, blockKey)
		if opts.MaxAge > 0 {
			sc.MaxAge(int(opts.MaxAge.Seconds()))
		}
		bakers = append(bakers, &cookieBaker{sc: sc, v: inputKey.Validity})
	}
	if opts.Domain == "" {
		opts.Domain = conf.CookieDomain
	}

	log.Printf("bakery: %d valid keys", len(bakers))

	return &Bakery{clock: clock, opts: opts, bakers: bakers}
}

// Read decodes the named cookie into dst with the first honorable key that
// accepts it.
func (b *Bakery) Read(r *http.Request, name string, dst any) error {
	cookie, err := r.Cookie(name)
	if err != nil {
		return fmt.Errorf("can't get cookie: %w", err)
	}

	now := b.clock.Now()
	errs := []error{}
	for _, baker := range b.bakers {
		if !baker.honorable(now) {
			continue
		}
		err := baker.sc.Decode(name, cookie.Value, dst)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return ErrNoKeys
	}
	return fmt.Errorf("can't validate cookie (%d decoders): %w", len(errs), errs[0])
}

func (b *Bakery) bestKeyForMinting(now time.Time) (*cookieBaker, error) {
	var best *cookieBaker
	for _, key := range b.bakers {
		if !key.mintable(now) {
			continue
		}
		// Pick the key that is valid for the longest amount of time.
		if best == nil || best.v.HonorUntil.Before(key.v.HonorUntil) {
			best = key
		}
	}
	if best == nil {
		return nil, ErrNoKeys
	}
	return best, nil
}

// Bake encodes value and sets it as the named cookie.  Preference cookies
// are readable by scripts on purpose, so HttpOnly is left off.
func (b *Bakery) Bake(w http.ResponseWriter, name string, value any) error {
	bb, err := b.bestKeyForMinting(b.clock.Now())
	if err != nil {
		return fmt.Errorf("can't find key for minting: %w", err)
	}

	encoded, err := bb.sc.Encode(name, value)
	if err != nil {
		return fmt.Errorf("can't encode cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    encoded,
		Path:     "/",
		Domain:   b.opts.Domain,
		MaxAge:   int(b.opts.MaxAge.Seconds()),
		Secure:   b.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires the named cookie.
func (b *Bakery) Clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:    name,
		Value:   "",
		Path:    "/",
		Domain:  b.opts.Domain,
		Expires: time.Unix(1, 0),
		MaxAge:  -1,
	})
}

// KeyStatus describes where now falls in a key's validity windows.
func KeyStatus(now time.Time, v model.CookieKeyValidity) string {
	if now.Before(v.MintFrom) {
		return "not yet active"
	}
	if now.After(v.HonorUntil) {
		return "expired"
	}
	if now.After(v.MintUntil) {
		// it's an older code, but it checks out
		return "obsolete"
	}
	return "active"
}
