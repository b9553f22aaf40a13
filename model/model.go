package model

import (
	"fmt"
	"strings"
	"time"
)

// Theme is the visual theme applied to the page.
type Theme int

const (
	ThemeLight Theme = iota
	ThemeDark
)

func (t Theme) String() string {
	if t == ThemeDark {
		return "dark"
	}
	return "light"
}

// Opposite returns the theme a toggle switches to.
func (t Theme) Opposite() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// ParseTheme accepts exactly "light" or "dark".
func ParseTheme(s string) (Theme, error) {
	switch s {
	case "light":
		return ThemeLight, nil
	case "dark":
		return ThemeDark, nil
	default:
		return ThemeLight, fmt.Errorf("unknown theme %q", s)
	}
}

// FeatureItem is one marketing card.  The JSON names are what the page
// fetches from features.json.
type FeatureItem struct {
	Title string `json:"title" yaml:"title"`
	Desc  string `json:"desc" yaml:"desc"`
}

// CloneFeatures copies a feature list so cached copies can't be mutated by
// callers.
func CloneFeatures(in []FeatureItem) []FeatureItem {
	if in == nil {
		return nil
	}
	out := make([]FeatureItem, len(in))
	copy(out, in)
	return out
}

// Canonical contact form field names.  Localized pages may use other input
// names; see i18n.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldMessage = "message"
)

// ContactFields lists the canonical fields in validation order.
var ContactFields = []string{FieldName, FieldEmail, FieldMessage}

// FieldErrors maps a canonical field name to a human-readable message.
type FieldErrors map[string]string

func (fe FieldErrors) HasErrors() bool {
	return len(fe) > 0
}

func (fe FieldErrors) Error() string {
	parts := []string{}
	for _, f := range ContactFields {
		if msg, ok := fe[f]; ok {
			parts = append(parts, fmt.Sprintf("%s: %s", f, msg))
		}
	}
	return strings.Join(parts, "; ")
}

// ContactSubmission is what the contact form collects.
type ContactSubmission struct {
	Name    string
	Email   string
	Message string
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (cs ContactSubmission) Trimmed() ContactSubmission {
	return ContactSubmission{
		Name:    strings.TrimSpace(cs.Name),
		Email:   strings.TrimSpace(cs.Email),
		Message: strings.TrimSpace(cs.Message),
	}
}

// Value returns a field by canonical name.
func (cs ContactSubmission) Value(field string) string {
	switch field {
	case FieldName:
		return cs.Name
	case FieldEmail:
		return cs.Email
	case FieldMessage:
		return cs.Message
	}
	return ""
}

// CookieKeyValidity says when a key may be used.  Keys mint new cookies
// between MintFrom and MintUntil, and are honored when decoding until
// HonorUntil.
type CookieKeyValidity struct {
	MintFrom   time.Time
	MintUntil  time.Time
	HonorUntil time.Time
}

// CookieKeyPair holds base64 securecookie keys.
type CookieKeyPair struct {
	Validity   CookieKeyValidity
	HashKey64  string
	BlockKey64 string
}

// SiteConfig is configuration that lives in storage rather than in the
// config file, since the admin tool rotates it.
type SiteConfig struct {
	Name                 string
	CookieDomain         string
	AllowedOriginDomains []string
	BonusHTTPPorts       []int
	BonusHTTPSPorts      []int
	CookieKeys           []CookieKeyPair
}
