package httpapi

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
)

//go:embed web/templates/*.html web/static/*
var webFS embed.FS

type pages struct {
	tmpl *template.Template
}

type pageData struct {
	Title string
}

func loadPages() (*pages, error) {
	tmpl, err := template.ParseFS(webFS, "web/templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse page templates: %w", err)
	}
	return &pages{tmpl: tmpl}, nil
}

func staticFS() fs.FS {
	sub, err := fs.Sub(webFS, "web/static")
	if err != nil {
		panic(err) // embedded path is fixed at build time
	}
	return sub
}

func (p *pages) handleIndex(w http.ResponseWriter, _ *http.Request) {
	p.render(w, "index.html", pageData{Title: "Flashcards"})
}

func (p *pages) handleFlashcards(w http.ResponseWriter, _ *http.Request) {
	p.render(w, "flashcards.html", pageData{Title: "Study"})
}

func (p *pages) render(w http.ResponseWriter, name string, data pageData) {
	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("render page", "page", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
