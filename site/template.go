package site

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/ts4z/brochure/assets"
	"github.com/ts4z/brochure/dom"
	"github.com/ts4z/brochure/i18n"
)

var pageTemplate = template.Must(template.ParseFS(assets.Templates, "templates/page.html.tmpl"))

type otherLang struct {
	Lang string
	Path string
}

type pageData struct {
	Lang   string
	Path   string
	Fields map[string]string
	Page   i18n.PageCopy
	Other  otherLang
}

// NewDocument renders the landing page markup for cat.  Nothing is wired
// yet; pass the result to Init.
func NewDocument(cat *i18n.Catalog) (*dom.Document, error) {
	other := i18n.Lookup(cat.Other)
	data := &pageData{
		Lang:   cat.Lang,
		Path:   cat.Path,
		Fields: cat.Fields,
		Page:   cat.Page,
		Other:  otherLang{Lang: other.Lang, Path: other.Path},
	}
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("can't execute page template: %w", err)
	}
	return dom.Parse(&buf)
}
