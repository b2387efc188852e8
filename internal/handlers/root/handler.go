package root

import (
	"hotel/shared/constant"
	"hotel/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler answers the unauthenticated service endpoints outside /api.
type Handler struct {
	ready func() bool
}

func New(ready func() bool) Handler {
	return Handler{ready: ready}
}

func (h *Handler) Router(r chi.Router) {
	r.Get("/", h.Welcome)
	r.Get("/health", h.Health)
}

// Welcome greets API clients
// @Summary Welcome message
// @Tags Root
// @Produce json
// @Success 200 {object} response.Envelope
// @Router / [get]
func (h *Handler) Welcome(w http.ResponseWriter, _ *http.Request) {
	response.WithMessage(w, http.StatusOK, constant.ResponseMessageWelcome)
}

// Health reports readiness. It fails once shutdown has begun so load balancers drain the instance.
// @Summary Readiness probe
// @Tags Root
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	if h.ready != nil && !h.ready() {
		response.WithPreparingShutdown(w)

		return
	}

	response.WithMessage(w, http.StatusOK, constant.ResponseMessageHealthy)
}

// NotFound answers unknown routes in the JSON envelope
func (h *Handler) NotFound(w http.ResponseWriter, _ *http.Request) {
	response.WithMessage(w, http.StatusNotFound, constant.ResponseErrorRouteNotFound)
}
