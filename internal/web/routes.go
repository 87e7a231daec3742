package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/facegate/facegate/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	registerHandler := handlers.NewRegisterHandler(s.svc)
	recognizeHandler := handlers.NewRecognizeHandler(s.svc)
	facesHandler := handlers.NewFacesHandler(s.svc)
	eventsHandler := handlers.NewEventsHandler(s.hub)

	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/register", registerHandler.Register)
		r.Post("/recognize", recognizeHandler.Recognize)

		r.Get("/faces", facesHandler.List)
		r.Delete("/faces/{name}", facesHandler.Delete)

		r.Get("/events", eventsHandler.Stream)
	})
}
