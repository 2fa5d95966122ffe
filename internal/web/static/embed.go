package static

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed assets/*
var assetsFS embed.FS

// funcMap holds the helpers available to every page template.
var funcMap = template.FuncMap{
	// dataURL marks an already validated image data URL as safe for img src.
	"dataURL": func(s string) template.URL {
		return template.URL(s) //nolint:gosec // built from a sniffed image
	},
}

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	tmpl, err := template.New("pages").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

// GetFileSystem returns an http.FileSystem for the embedded assets directory.
func GetFileSystem() http.FileSystem {
	fsys, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		panic(err)
	}
	return http.FS(fsys)
}
