package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/kinfolk/internal/familyservice"
)

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events behind the same auth.
func NewRouter(svc *familyservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Route("/persons", func(r chi.Router) {
		r.Get("/", h.ListPersons)
		r.Post("/", h.CreatePerson)
		r.Get("/{id}", h.GetPerson)
		r.Put("/{id}", h.UpdatePerson)
		r.Delete("/{id}", h.DeletePerson)
	})

	r.Get("/relationships", h.ListRelationships)

	r.Get("/tree", h.Tree)
	r.Get("/tree/roots", h.Roots)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
