package handlers

import (
	"bytes"
	"html/template"
	"log"
	"net/http"

	"github.com/kozaktomas/facefinder/internal/backend"
	"github.com/kozaktomas/facefinder/internal/config"
	"github.com/kozaktomas/facefinder/internal/constants"
	"github.com/kozaktomas/facefinder/internal/flow"
)

// navLabels names the screens in the header, in display order.
var navLabels = []struct {
	Path  string
	Label string
}{
	{"/", "Home"},
	{"/register", "Register"},
	{"/find", "Find"},
	{"/list", "List"},
}

type navItem struct {
	Path  string
	Label string
}

// pageData is the root data passed to every page template.
type pageData struct {
	Title    string
	Path     string
	Backend  backend.Variant
	Variants []backend.Variant
	Nav      []navItem
	Links    []config.Link
	View     flow.View
	Name     string
	Image    string
	Error    string
	Hint     string
}

// PagesHandler renders the server-side screens.
type PagesHandler struct {
	config    *config.Config
	templates *template.Template
	backends  *BackendHandler
	register  *RegisterHandler
	find      *FindHandler
	faces     *FacesHandler
}

// NewPagesHandler creates a new pages handler.
func NewPagesHandler(cfg *config.Config, tmpl *template.Template, backends *BackendHandler,
	register *RegisterHandler, find *FindHandler, faces *FacesHandler,
) *PagesHandler {
	return &PagesHandler{
		config:    cfg,
		templates: tmpl,
		backends:  backends,
		register:  register,
		find:      find,
		faces:     faces,
	}
}

func (h *PagesHandler) newPage(title, path string) pageData {
	var nav []navItem
	for _, item := range navLabels {
		if h.config.Web.RouteEnabled(item.Path) {
			nav = append(nav, navItem{Path: item.Path, Label: item.Label})
		}
	}
	selector := h.backends.selector
	return pageData{
		Title:    title,
		Path:     path,
		Backend:  selector.Current(),
		Variants: selector.Registry().Variants(),
		Nav:      nav,
		Links:    h.config.Links,
		Hint:     constants.MaxImageFileSizeLabel,
	}
}

// render executes the template into a buffer so a failure never sends half a page.
func (h *PagesHandler) render(w http.ResponseWriter, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
		http.Error(w, "Error rendering template", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// Home renders the landing screen.
func (h *PagesHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "home.html", h.newPage("Home", "/"))
}

// RegisterForm renders the empty register screen.
func (h *PagesHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "register.html", h.newPage("Register", "/register"))
}

// RegisterSubmit runs the upload flow for the posted form and renders its outcome.
func (h *PagesHandler) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	data := h.newPage("Register", "/register")

	u, err := h.register.newUpload(w, r)
	if err != nil {
		data.Name = r.FormValue("name")
		data.Error = err.Error()
		h.render(w, statusForError(err), "register.html", data)
		return
	}
	defer u.Close()

	// The message already tells the user how it went.
	_ = u.Submit(r.Context())
	data.View = u.View()
	h.render(w, http.StatusOK, "register.html", data)
}

// FindForm renders the empty find screen.
func (h *PagesHandler) FindForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "find.html", h.newPage("Find", "/find"))
}

// FindSubmit runs the find flow for the posted image and renders its outcome.
func (h *PagesHandler) FindSubmit(w http.ResponseWriter, r *http.Request) {
	data := h.newPage("Find", "/find")

	img, err := parseImageForm(w, r)
	if err != nil {
		data.Error = err.Error()
		h.render(w, statusForError(err), "find.html", data)
		return
	}

	f := flow.NewFind(h.find.api, h.find.selector)
	f.SetMaxDimension(h.find.maxDimension)
	f.Select(img)
	defer f.Close()

	_ = f.Submit(r.Context())
	data.View = f.View()
	data.Image = img.DataURL()
	h.render(w, http.StatusOK, "find.html", data)
}

// List loads the registered faces and renders them as cards.
func (h *PagesHandler) List(w http.ResponseWriter, r *http.Request) {
	data := h.newPage("List", "/list")

	l := flow.NewList(h.faces.api, h.faces.selector)
	defer l.Close()

	_ = l.Load(r.Context())
	data.View = l.View()
	h.render(w, http.StatusOK, "list.html", data)
}

// SetBackend handles the header's backend switch and redirects back.
func (h *PagesHandler) SetBackend(w http.ResponseWriter, r *http.Request) {
	if _, err := h.backends.switchTo(r.FormValue("backend")); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	target := r.FormValue("redirect")
	if !h.config.Web.RouteEnabled(target) {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
