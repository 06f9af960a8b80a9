package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/port-russell/marina/internal/services"
	"github.com/port-russell/marina/internal/views"
	"github.com/port-russell/marina/types"
)

const catwayNotFound = "Catway non trouvé"

var catwayFields = []string{"catwayNumber", "catwayType", "catwayState"}

// CatwayHandler provides HTTP handlers for the catway registry.
type CatwayHandler struct {
	catwayService *services.CatwayService
	responder     *Responder
}

func NewCatwayHandler(catwayService *services.CatwayService, responder *Responder) *CatwayHandler {
	return &CatwayHandler{catwayService: catwayService, responder: responder}
}

// CatwayRouter registers catway routes on the given router. reservations,
// when non-nil, is mounted under /{number}/reservations.
func CatwayRouter(r chi.Router, handler *CatwayHandler, reservations *ReservationHandler) {
	r.Get("/", handler.ListCatways)
	r.Post("/", handler.CreateCatway)
	r.Get("/new", handler.NewCatway)
	r.Route("/{number}", func(r chi.Router) {
		r.Get("/", handler.GetCatway)
		r.Put("/", handler.UpdateCatway)
		r.Delete("/", handler.DeleteCatway)
		r.Get("/edit", handler.EditCatway)
		if reservations != nil {
			r.Route("/reservations", func(r chi.Router) {
				ReservationRouter(r, reservations)
			})
		}
	})
}

func (h *CatwayHandler) ListCatways(w http.ResponseWriter, r *http.Request) {
	catways, err := h.catwayService.List(r.Context())
	if err != nil {
		if wantsJSON(r) {
			h.responder.failJSON(w, r, err, catwayNotFound)
			return
		}
		h.responder.fail(w, r, err, catwayNotFound)
		return
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, catways)
		return
	}
	h.responder.render(w, r, http.StatusOK, views.PageCatways, Page{Title: "Catways", Catways: catways})
}

func (h *CatwayHandler) formPage(title, action string, editing bool, form map[string]string) Page {
	return Page{
		Title:       title,
		Action:      action,
		Editing:     editing,
		Form:        form,
		CatwayTypes: []types.CatwayType{types.CatwayShort, types.CatwayLong},
	}
}

func (h *CatwayHandler) NewCatway(w http.ResponseWriter, r *http.Request) {
	page := h.formPage("Nouveau catway", "/catways", false, map[string]string{"catwayType": string(types.CatwayShort)})
	h.responder.render(w, r, http.StatusOK, views.PageCatwayForm, page)
}

func (h *CatwayHandler) CreateCatway(w http.ResponseWriter, r *http.Request) {
	form := formValues(r, catwayFields...)
	// An unparsable number is left at zero and reported by validation.
	number, _ := strconv.Atoi(form["catwayNumber"])

	created, err := h.catwayService.Create(r.Context(), types.Catway{
		Number: number,
		Type:   types.CatwayType(form["catwayType"]),
		State:  form["catwayState"],
	})
	if err != nil {
		h.responder.formError(w, r, err, catwayNotFound, views.PageCatwayForm, h.formPage("Nouveau catway", "/catways", false, form))
		return
	}

	h.responder.redirect(w, r, "/catways", Flash{
		Type: FlashSuccess,
		Text: fmt.Sprintf("Catway %d ajouté avec succès", created.Number),
	})
}

// GetCatway returns one catway as JSON.
func (h *CatwayHandler) GetCatway(w http.ResponseWriter, r *http.Request) {
	number, err := parsePositiveInt(chi.URLParam(r, "number"))
	if err != nil {
		writeError(w, http.StatusNotFound, catwayNotFound)
		return
	}

	catway, err := h.catwayService.Get(r.Context(), number)
	if err != nil {
		h.responder.failJSON(w, r, err, catwayNotFound)
		return
	}
	writeJSON(w, http.StatusOK, catway)
}

func (h *CatwayHandler) EditCatway(w http.ResponseWriter, r *http.Request) {
	number, err := parsePositiveInt(chi.URLParam(r, "number"))
	if err != nil {
		h.responder.renderError(w, r, http.StatusNotFound, catwayNotFound)
		return
	}

	catway, err := h.catwayService.Get(r.Context(), number)
	if err != nil {
		h.responder.fail(w, r, err, catwayNotFound)
		return
	}

	page := h.formPage(fmt.Sprintf("Modifier le catway %d", catway.Number), fmt.Sprintf("/catways/%d", catway.Number), true, map[string]string{
		"catwayNumber": strconv.Itoa(catway.Number),
		"catwayType":   string(catway.Type),
		"catwayState":  catway.State,
	})
	h.responder.render(w, r, http.StatusOK, views.PageCatwayForm, page)
}

func (h *CatwayHandler) UpdateCatway(w http.ResponseWriter, r *http.Request) {
	number, err := parsePositiveInt(chi.URLParam(r, "number"))
	if err != nil {
		h.responder.renderError(w, r, http.StatusNotFound, catwayNotFound)
		return
	}

	form := formValues(r, "catwayType", "catwayState")
	form["catwayNumber"] = strconv.Itoa(number)

	_, err = h.catwayService.Update(r.Context(), number, types.CatwayType(form["catwayType"]), form["catwayState"])
	if err != nil {
		page := h.formPage(fmt.Sprintf("Modifier le catway %d", number), fmt.Sprintf("/catways/%d", number), true, form)
		h.responder.formError(w, r, err, catwayNotFound, views.PageCatwayForm, page)
		return
	}

	h.responder.redirect(w, r, "/catways", Flash{
		Type: FlashSuccess,
		Text: fmt.Sprintf("Catway %d modifié avec succès", number),
	})
}

func (h *CatwayHandler) DeleteCatway(w http.ResponseWriter, r *http.Request) {
	number, err := parsePositiveInt(chi.URLParam(r, "number"))
	if err != nil {
		h.responder.renderError(w, r, http.StatusNotFound, catwayNotFound)
		return
	}

	if err := h.catwayService.Delete(r.Context(), number); err != nil {
		h.responder.fail(w, r, err, catwayNotFound)
		return
	}

	h.responder.redirect(w, r, "/catways", Flash{
		Type: FlashDanger,
		Text: fmt.Sprintf("Catway %d supprimé avec succès", number),
	})
}
