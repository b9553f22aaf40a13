// Package i18n holds the copy for each language the site is published in.
package i18n

import (
	"slices"

	"github.com/ts4z/brochure/model"
)

// ContactMessages are the strings the contact form shows.
type ContactMessages struct {
	NameRequired    string
	EmailRequired   string
	EmailInvalid    string
	MessageRequired string
	MessageTooShort string
	FixErrors       string
	Sending         string
	Sent            string
}

// PageCopy is the static text of the landing page.
type PageCopy struct {
	Title           string
	Tagline         string
	MenuLabel       string
	NavFeatures     string
	NavContact      string
	ThemeLabel      string
	FeaturesHeading string
	FeaturesLoading string
	ContactHeading  string
	NameLabel       string
	EmailLabel      string
	MessageLabel    string
	SendLabel       string
	OtherLanguage   string
}

type Catalog struct {
	Lang string
	// Path is the page's URL path; features.json is fetched relative to it.
	Path string
	// Fields maps canonical contact fields to this page's input names.
	Fields  map[string]string
	Page    PageCopy
	Contact ContactMessages
	// Other is the language the page links to.
	Other string
}

// DefaultLang is served at "/".
const DefaultLang = "en"

var catalogs = map[string]*Catalog{
	"en": {
		Lang: "en",
		Path: "/",
		Fields: map[string]string{
			model.FieldName:    "name",
			model.FieldEmail:   "email",
			model.FieldMessage: "message",
		},
		Page: PageCopy{
			Title:           "Brochure",
			Tagline:         "A small site that does a few things well.",
			MenuLabel:       "Menu",
			NavFeatures:     "Features",
			NavContact:      "Contact",
			ThemeLabel:      "Dark mode",
			FeaturesHeading: "Features",
			FeaturesLoading: "Loading features…",
			ContactHeading:  "Get in touch",
			NameLabel:       "Name",
			EmailLabel:      "Email",
			MessageLabel:    "Message",
			SendLabel:       "Send",
			OtherLanguage:   "Español",
		},
		Contact: ContactMessages{
			NameRequired:    "Please enter your name.",
			EmailRequired:   "Please enter your email.",
			EmailInvalid:    "Please enter a valid email address.",
			MessageRequired: "Please write a message.",
			MessageTooShort: "Your message must be at least 10 characters.",
			FixErrors:       "Please fix the errors above.",
			Sending:         "Sending…",
			Sent:            "Thanks! Your message has been sent.",
		},
		Other: "es",
	},
	"es": {
		Lang: "es",
		Path: "/es/",
		Fields: map[string]string{
			model.FieldName:    "nombre",
			model.FieldEmail:   "email",
			model.FieldMessage: "mensaje",
		},
		Page: PageCopy{
			Title:           "Brochure",
			Tagline:         "Un sitio pequeño que hace pocas cosas, y bien.",
			MenuLabel:       "Menú",
			NavFeatures:     "Características",
			NavContact:      "Contacto",
			ThemeLabel:      "Modo oscuro",
			FeaturesHeading: "Características",
			FeaturesLoading: "Cargando características…",
			ContactHeading:  "Escríbenos",
			NameLabel:       "Nombre",
			EmailLabel:      "Correo electrónico",
			MessageLabel:    "Mensaje",
			SendLabel:       "Enviar",
			OtherLanguage:   "English",
		},
		Contact: ContactMessages{
			NameRequired:    "Por favor, escribe tu nombre.",
			EmailRequired:   "Por favor, escribe tu correo.",
			EmailInvalid:    "Introduce un correo electrónico válido.",
			MessageRequired: "Por favor, escribe un mensaje.",
			MessageTooShort: "El mensaje debe tener al menos 10 caracteres.",
			FixErrors:       "Corrige los errores indicados.",
			Sending:         "Enviando…",
			Sent:            "¡Gracias! Tu mensaje ha sido enviado.",
		},
		Other: "en",
	},
}

// Lookup returns the catalog for lang, falling back to DefaultLang.
func Lookup(lang string) *Catalog {
	if c, ok := catalogs[lang]; ok {
		return c
	}
	return catalogs[DefaultLang]
}

// Supported reports whether lang has its own catalog.
func Supported(lang string) bool {
	_, ok := catalogs[lang]
	return ok
}

// Languages lists supported languages in a stable order.
func Languages() []string {
	out := make([]string, 0, len(catalogs))
	for l := range catalogs {
		out = append(out, l)
	}
	slices.Sort(out)
	return out
}

// FieldAliases lists every input name used for a canonical field across all
// languages, so one form handler accepts any page's markup.
func FieldAliases(field string) []string {
	out := []string{}
	for _, l := range Languages() {
		name := catalogs[l].Fields[field]
		if name != "" && !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}
