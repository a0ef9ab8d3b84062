package httpapi

import (
	"net/http"

	"github.com/Freeeeeet/coach_booking/internal/model"
)

func (h *Handler) listTemplates(w http.ResponseWriter, r *http.Request) {
	party := partyFrom(r.Context())

	view, err := h.availability.ListTemplates(r.Context(), party.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) createTemplate(w http.ResponseWriter, r *http.Request) {
	party := partyFrom(r.Context())

	var input model.TemplateInput
	if err := h.decode(w, r, &input); err != nil {
		h.writeError(w, r, err)
		return
	}

	tpl, err := h.availability.CreateTemplate(r.Context(), party.UserID, input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tpl)
}

func (h *Handler) updateTemplate(w http.ResponseWriter, r *http.Request) {
	party := partyFrom(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var input model.TemplateInput
	if err := h.decode(w, r, &input); err != nil {
		h.writeError(w, r, err)
		return
	}

	tpl, err := h.availability.UpdateTemplate(r.Context(), party.UserID, id, input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (h *Handler) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	party := partyFrom(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.availability.DeleteTemplate(r.Context(), party.UserID, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// bookableStarts свободные начала тренировок на следующей неделе
func (h *Handler) bookableStarts(w http.ResponseWriter, r *http.Request) {
	coachID, err := pathID(r, "coachID")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	duration, err := queryInt(r, "duration", 60)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	slots, err := h.availability.ComputeBookableStarts(r.Context(), coachID, duration)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, slots)
}
