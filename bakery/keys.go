package bakery

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/ts4z/brochure/model"
)

const (
	// these sizes are recommended by the gorilla/securecookie package
	// https://pkg.go.dev/github.com/gorilla/securecookie#New
	hashKeySize  = 32
	blockKeySize = 16
)

func generateKey(sz int) ([]byte, error) {
	key := make([]byte, sz)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generating random key: %w", err)
	}
	return key, nil
}

// Rotation describes the windows of a freshly minted key, relative to now.
type Rotation struct {
	StartOffset  time.Duration
	MintDuration time.Duration
	HonorOffset  time.Duration
}

var DefaultRotation = Rotation{
	MintDuration: 180 * 24 * time.Hour,
	HonorOffset:  180 * 24 * time.Hour,
}

// NewKeyPair makes random keys valid per rot.
func NewKeyPair(now time.Time, rot Rotation) (model.CookieKeyPair, error) {
	hashKey, err := generateKey(hashKeySize)
	if err != nil {
		return model.CookieKeyPair{}, fmt.Errorf("generating hash key: %w", err)
	}
	blockKey, err := generateKey(blockKeySize)
	if err != nil {
		return model.CookieKeyPair{}, fmt.Errorf("generating block key: %w", err)
	}

	mintFrom := now.Add(rot.StartOffset)
	mintUntil := mintFrom.Add(rot.MintDuration)
	return model.CookieKeyPair{
		Validity: model.CookieKeyValidity{
			MintFrom:   mintFrom,
			MintUntil:  mintUntil,
			HonorUntil: mintUntil.Add(rot.HonorOffset),
		},
		HashKey64:  base64.StdEncoding.EncodeToString(hashKey),
		BlockKey64: base64.StdEncoding.EncodeToString(blockKey),
	}, nil
}

// Rotate drops expired keys from conf and appends a new one.
func Rotate(conf *model.SiteConfig, now time.Time, rot Rotation) (model.CookieKeyPair, error) {
	key, err := NewKeyPair(now, rot)
	if err != nil {
		return key, err
	}
	valid := []model.CookieKeyPair{}
	for _, k := range conf.CookieKeys {
		if now.Before(k.Validity.HonorUntil) {
			valid = append(valid, k)
		}
	}
	conf.CookieKeys = append(valid, key)
	return key, nil
}
