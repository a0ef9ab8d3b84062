package httpapi

import (
	"net/http"

	"github.com/Freeeeeet/coach_booking/internal/model"
)

type telegramChatInput struct {
	ChatID int64 `json:"chat_id" validate:"required"`
}

func (h *Handler) sendSubscription(w http.ResponseWriter, r *http.Request) {
	party := partyFrom(r.Context())

	var req model.SubscriptionRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	sub, err := h.subscriptions.SendRequest(r.Context(), party.UserID, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *Handler) decideSubscription(w http.ResponseWriter, r *http.Request) {
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

	sub, err := h.subscriptions.CoachHandleRequest(r.Context(), party.UserID, id, input.Status, input.Reply)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *Handler) readSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.subscriptions.ReadRequest(r.Context(), partyFrom(r.Context()), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) countUnreadSubscriptions(w http.ResponseWriter, r *http.Request) {
	n, err := h.subscriptions.CountUnread(r.Context(), partyFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countBody{Count: n})
}

func (h *Handler) listSubscriptions(w http.ResponseWriter, r *http.Request) {
	page, size, statuses, err := pageQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.subscriptions.List(r.Context(), partyFrom(r.Context()), page, size, statuses)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) cancelSubscription(w http.ResponseWriter, r *http.Request) {
	coachID, err := pathID(r, "coachID")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	sub, err := h.subscriptions.MemberCancelSubscription(r.Context(), partyFrom(r.Context()).UserID, coachID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *Handler) mySubscriptionCoaches(w http.ResponseWriter, r *http.Request) {
	coaches, err := h.subscriptions.MySubscriptionCoaches(r.Context(), partyFrom(r.Context()).UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if coaches == nil {
		coaches = []model.SubscribedCoach{}
	}
	writeJSON(w, http.StatusOK, coaches)
}

// setTelegramChat привязывает чат для уведомлений о заявках
func (h *Handler) setTelegramChat(w http.ResponseWriter, r *http.Request) {
	var input telegramChatInput
	if err := h.decode(w, r, &input); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.contacts.SetTelegramChatID(r.Context(), partyFrom(r.Context()).UserID, input.ChatID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
