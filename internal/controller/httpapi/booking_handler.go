package httpapi

import (
	"net/http"

	"github.com/Freeeeeet/coach_booking/internal/model"
)

// decisionInput ответ тренера на заявку
type decisionInput struct {
	Status model.RequestStatus `json:"status" validate:"required,oneof=accept reject"`
	Reply  string              `json:"reply" validate:"required,max=500"`
}

func (h *Handler) bookSession(w http.ResponseWriter, r *http.Request) {
	party := partyFrom(r.Context())

	var req model.BookingRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	booking, err := h.bookings.BookSession(r.Context(), party.UserID, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (h *Handler) decideBooking(w http.ResponseWriter, r *http.Request) {
	party := partyFrom(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var input decisionInput
	if err := h.decode(w, r, &input); err != nil {
		h.writeError(w, r, err)
		return
	}

	booking, err := h.bookings.CoachHandleRequest(r.Context(), party.UserID, id, input.Status, input.Reply)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *Handler) withdrawRequest(w http.ResponseWriter, r *http.Request) {
	party := partyFrom(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.bookings.WithdrawRequest(r.Context(), party.UserID, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) cancelBooking(w http.ResponseWriter, r *http.Request) {
	party := partyFrom(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	booking, err := h.bookings.CancelBooking(r.Context(), party.UserID, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *Handler) readBookingRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.bookings.ReadRequest(r.Context(), partyFrom(r.Context()), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) countUnreadBookings(w http.ResponseWriter, r *http.Request) {
	n, err := h.bookings.CountUnread(r.Context(), partyFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countBody{Count: n})
}

func (h *Handler) schedule(w http.ResponseWriter, r *http.Request) {
	sched, err := h.bookings.GetSchedule(r.Context(), partyFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sched)
}

func (h *Handler) bookingRequests(w http.ResponseWriter, r *http.Request) {
	page, size, statuses, err := pageQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.bookings.GetRequests(r.Context(), partyFrom(r.Context()), page, size, statuses)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) listUnrecorded(w http.ResponseWriter, r *http.Request) {
	page, size, _, err := pageQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.bookings.ListUnrecorded(r.Context(), partyFrom(r.Context()).UserID, page, size)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) countUnrecorded(w http.ResponseWriter, r *http.Request) {
	n, err := h.bookings.CountUnrecorded(r.Context(), partyFrom(r.Context()).UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countBody{Count: n})
}

func (h *Handler) markRecorded(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.bookings.MarkRecorded(r.Context(), partyFrom(r.Context()).UserID, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
