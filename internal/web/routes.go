package web

import (
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/facefinder/internal/web/handlers"
	"github.com/kozaktomas/facefinder/internal/web/middleware"
	"github.com/kozaktomas/facefinder/internal/web/static"
)

func (s *Server) setupRoutes(tmpl *template.Template) {
	// Create handlers
	backendHandler := handlers.NewBackendHandler(s.selector)
	registerHandler := handlers.NewRegisterHandler(s.api, s.selector)
	findHandler := handlers.NewFindHandler(s.api, s.selector, s.config.Find.MaxDimension)
	facesHandler := handlers.NewFacesHandler(s.api, s.selector)
	flowsHandler := handlers.NewFlowsHandler(registerHandler, findHandler, s.flowManager)
	pagesHandler := handlers.NewPagesHandler(s.config, tmpl, backendHandler, registerHandler, findHandler, facesHandler)

	// Health check
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Backend selection
		r.Get("/backend", backendHandler.Get)
		r.Put("/backend", backendHandler.Set)
		r.Get("/backends", backendHandler.List)

		// Synchronous flows
		r.Post("/register", registerHandler.Register)
		r.Post("/find", findHandler.Find)
		r.Get("/faces", facesHandler.List)

		// Background flows
		r.Post("/flows/register", flowsHandler.StartRegister)
		r.Post("/flows/find", flowsHandler.StartFind)
		r.Get("/flows/{flowId}", flowsHandler.Status)
		r.Get("/flows/{flowId}/events", flowsHandler.Events)
		r.Delete("/flows/{flowId}", flowsHandler.Cancel)
	})

	// Screens, only those enabled in the route configuration
	s.router.Group(func(r chi.Router) {
		r.Use(middleware.SecurityHeaders())

		if s.config.Web.RouteEnabled("/") {
			r.Get("/", pagesHandler.Home)
		}
		if s.config.Web.RouteEnabled("/register") {
			r.Get("/register", pagesHandler.RegisterForm)
			r.Post("/register", pagesHandler.RegisterSubmit)
		}
		if s.config.Web.RouteEnabled("/find") {
			r.Get("/find", pagesHandler.FindForm)
			r.Post("/find", pagesHandler.FindSubmit)
		}
		if s.config.Web.RouteEnabled("/list") {
			r.Get("/list", pagesHandler.List)
		}
		r.Post("/backend", pagesHandler.SetBackend)
	})

	// Stylesheet and other static assets
	s.router.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(static.GetFileSystem())))
}
