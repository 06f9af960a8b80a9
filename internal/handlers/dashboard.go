package handlers

import (
	"net/http"
	"time"

	"github.com/port-russell/marina/internal/services"
	"github.com/port-russell/marina/internal/views"
)

// DashboardHandler shows the signed-in user and current occupancy.
type DashboardHandler struct {
	reservationService *services.ReservationService
	responder          *Responder
	now                func() time.Time
}

func NewDashboardHandler(reservationService *services.ReservationService, responder *Responder) *DashboardHandler {
	return &DashboardHandler{reservationService: reservationService, responder: responder, now: time.Now}
}

func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	active, err := h.reservationService.ListActive(r.Context(), h.now())
	if err != nil {
		h.responder.fail(w, r, err, "")
		return
	}
	h.responder.render(w, r, http.StatusOK, views.PageDashboard, Page{
		Title:        "Tableau de bord",
		Reservations: active,
	})
}
