package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/port-russell/marina/internal/services"
	"github.com/port-russell/marina/internal/store"
	"github.com/port-russell/marina/internal/views"
	"github.com/port-russell/marina/types"
)

const reservationNotFound = "Réservation non trouvée"

var reservationFields = []string{"catwayNumber", "clientName", "boatName", "startDate", "endDate"}

// ReservationHandler serves the reservation ledger, either globally under
// /reservations or scoped to one catway under /catways/{number}/reservations.
type ReservationHandler struct {
	reservationService *services.ReservationService
	responder          *Responder
}

func NewReservationHandler(reservationService *services.ReservationService, responder *Responder) *ReservationHandler {
	return &ReservationHandler{reservationService: reservationService, responder: responder}
}

// ReservationRouter registers reservation routes on the given router.
func ReservationRouter(r chi.Router, handler *ReservationHandler) {
	r.Get("/", handler.ListReservations)
	r.Post("/", handler.CreateReservation)
	r.Get("/new", handler.NewReservation)
	r.Route("/{reservationID}", func(r chi.Router) {
		r.Get("/", handler.GetReservation)
		r.Put("/", handler.UpdateReservation)
		r.Delete("/", handler.DeleteReservation)
		r.Get("/edit", handler.EditReservation)
	})
}

// scope is the catway a request is nested under, zero for the global ledger.
type scope struct {
	catwayNumber int
}

func (s scope) basePath() string {
	if s.catwayNumber == 0 {
		return "/reservations"
	}
	return fmt.Sprintf("/catways/%d/reservations", s.catwayNumber)
}

func (s scope) title() string {
	if s.catwayNumber == 0 {
		return "Réservations"
	}
	return fmt.Sprintf("Réservations du catway %d", s.catwayNumber)
}

// contains reports whether reservation is visible in this scope.
func (s scope) contains(reservation types.Reservation) bool {
	return s.catwayNumber == 0 || reservation.CatwayNumber == s.catwayNumber
}

func resolveScope(r *http.Request) (scope, error) {
	raw := chi.URLParam(r, "number")
	if raw == "" {
		return scope{}, nil
	}
	number, err := parsePositiveInt(raw)
	if err != nil {
		return scope{}, store.ErrNotFound
	}
	return scope{catwayNumber: number}, nil
}

func (h *ReservationHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	sc, err := resolveScope(r)
	if err != nil {
		h.responder.fail(w, r, err, reservationNotFound)
		return
	}

	var reservations []types.Reservation
	if sc.catwayNumber == 0 {
		reservations, err = h.reservationService.List(r.Context())
	} else {
		reservations, err = h.reservationService.ListByCatway(r.Context(), sc.catwayNumber)
	}
	if err != nil {
		if wantsJSON(r) {
			h.responder.failJSON(w, r, err, reservationNotFound)
			return
		}
		h.responder.fail(w, r, err, reservationNotFound)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, reservations)
		return
	}
	h.responder.render(w, r, http.StatusOK, views.PageReservations, Page{
		Title:        sc.title(),
		BasePath:     sc.basePath(),
		CatwayNumber: sc.catwayNumber,
		Reservations: reservations,
	})
}

func (h *ReservationHandler) formPage(sc scope, title, action string, editing bool, form map[string]string) Page {
	return Page{
		Title:        title,
		Action:       action,
		Editing:      editing,
		Form:         form,
		BasePath:     sc.basePath(),
		CatwayNumber: sc.catwayNumber,
	}
}

func (h *ReservationHandler) NewReservation(w http.ResponseWriter, r *http.Request) {
	sc, err := resolveScope(r)
	if err != nil {
		h.responder.fail(w, r, err, reservationNotFound)
		return
	}
	page := h.formPage(sc, "Nouvelle réservation", sc.basePath(), false, nil)
	h.responder.render(w, r, http.StatusOK, views.PageReservationForm, page)
}

// bindReservation reads the reservation form. Unparsable numbers and dates
// are left zero so validation reports them per field.
func bindReservation(r *http.Request, sc scope) (types.Reservation, map[string]string) {
	form := formValues(r, reservationFields...)
	if sc.catwayNumber != 0 {
		form["catwayNumber"] = strconv.Itoa(sc.catwayNumber)
	}

	reservation := types.Reservation{
		ClientName: form["clientName"],
		BoatName:   form["boatName"],
	}
	reservation.CatwayNumber, _ = strconv.Atoi(form["catwayNumber"])
	reservation.StartDate, _ = parseDate(form["startDate"])
	reservation.EndDate, _ = parseDate(form["endDate"])
	return reservation, form
}

func (h *ReservationHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	sc, err := resolveScope(r)
	if err != nil {
		h.responder.fail(w, r, err, reservationNotFound)
		return
	}

	reservation, form := bindReservation(r, sc)
	if _, err := h.reservationService.Create(r.Context(), reservation); err != nil {
		page := h.formPage(sc, "Nouvelle réservation", sc.basePath(), false, form)
		h.responder.formError(w, r, err, reservationNotFound, views.PageReservationForm, page)
		return
	}

	h.responder.redirect(w, r, sc.basePath(), Flash{Type: FlashSuccess, Text: "Réservation enregistrée avec succès"})
}

// load fetches the reservation named in the URL, hiding reservations that
// belong to another catway than the scope.
func (h *ReservationHandler) load(r *http.Request) (scope, types.Reservation, error) {
	sc, err := resolveScope(r)
	if err != nil {
		return scope{}, types.Reservation{}, err
	}
	reservation, err := h.reservationService.Get(r.Context(), chi.URLParam(r, "reservationID"))
	if err != nil {
		return scope{}, types.Reservation{}, err
	}
	if !sc.contains(reservation) {
		return scope{}, types.Reservation{}, store.ErrNotFound
	}
	return sc, reservation, nil
}

// GetReservation returns one reservation as JSON.
func (h *ReservationHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	_, reservation, err := h.load(r)
	if err != nil {
		h.responder.failJSON(w, r, err, reservationNotFound)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

func (h *ReservationHandler) EditReservation(w http.ResponseWriter, r *http.Request) {
	sc, reservation, err := h.load(r)
	if err != nil {
		h.responder.fail(w, r, err, reservationNotFound)
		return
	}

	page := h.formPage(sc, "Modifier la réservation", sc.basePath()+"/"+reservation.ID, true, map[string]string{
		"catwayNumber": strconv.Itoa(reservation.CatwayNumber),
		"clientName":   reservation.ClientName,
		"boatName":     reservation.BoatName,
		"startDate":    reservation.StartDate.UTC().Format(dateLayout),
		"endDate":      reservation.EndDate.UTC().Format(dateLayout),
	})
	h.responder.render(w, r, http.StatusOK, views.PageReservationForm, page)
}

func (h *ReservationHandler) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	sc, existing, err := h.load(r)
	if err != nil {
		h.responder.fail(w, r, err, reservationNotFound)
		return
	}

	reservation, form := bindReservation(r, sc)
	reservation.ID = existing.ID
	if _, err := h.reservationService.Update(r.Context(), reservation); err != nil {
		page := h.formPage(sc, "Modifier la réservation", sc.basePath()+"/"+existing.ID, true, form)
		h.responder.formError(w, r, err, reservationNotFound, views.PageReservationForm, page)
		return
	}

	h.responder.redirect(w, r, sc.basePath(), Flash{Type: FlashSuccess, Text: "Réservation mise à jour"})
}

func (h *ReservationHandler) DeleteReservation(w http.ResponseWriter, r *http.Request) {
	sc, existing, err := h.load(r)
	if err != nil {
		h.responder.fail(w, r, err, reservationNotFound)
		return
	}

	if err := h.reservationService.Delete(r.Context(), existing.ID); err != nil {
		h.responder.fail(w, r, err, reservationNotFound)
		return
	}

	h.responder.redirect(w, r, sc.basePath(), Flash{Type: FlashDanger, Text: "Réservation supprimée"})
}
