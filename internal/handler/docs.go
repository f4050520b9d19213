// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
)

//go:embed docs/*.md
var docsFS embed.FS

// DocsHandler renders the bundled API documentation as HTML.
type DocsHandler struct {
	md goldmark.Markdown
}

// NewDocsHandler creates a new DocsHandler.
func NewDocsHandler() *DocsHandler {
	return &DocsHandler{md: goldmark.New()}
}

var docsPage = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} - oTMS</title>
<style>body{font-family:sans-serif;max-width:52rem;margin:2rem auto;padding:0 1rem;line-height:1.5}
code,pre{background:#f4f4f4;padding:.1rem .3rem;border-radius:3px}pre{padding:.6rem;overflow-x:auto}</style>
</head>
<body>
<nav>{{range .Guides}}<a href="/docs/{{.}}">{{.}}</a> {{end}}</nav>
{{.Body}}
</body>
</html>`))

// Index lists the available guides.
func (h *DocsHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, "index")
}

// Guide renders one markdown guide by name.
func (h *DocsHandler) Guide(w http.ResponseWriter, r *http.Request) {
	h.render(w, chi.URLParam(r, "name"))
}

func (h *DocsHandler) render(w http.ResponseWriter, name string) {
	// Names come from the URL; restrict to the embedded flat directory.
	if strings.ContainsAny(name, "/\\.") {
		http.NotFound(w, nil)
		return
	}

	raw, err := docsFS.ReadFile("docs/" + name + ".md")
	if err != nil {
		http.NotFound(w, nil)
		return
	}

	var body bytes.Buffer
	if err := h.md.Convert(raw, &body); err != nil {
		http.Error(w, "rendering documentation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = docsPage.Execute(w, struct {
		Title  string
		Guides []string
		Body   template.HTML
	}{
		Title:  name,
		Guides: h.guides(),
		Body:   template.HTML(body.String()), //nolint:gosec // bundled docs, not user input
	})
}

// guides lists the embedded guide names.
func (h *DocsHandler) guides() []string {
	entries, err := docsFS.ReadDir("docs")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".md"))
	}
	sort.Strings(names)
	return names
}
