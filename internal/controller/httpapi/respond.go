package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Freeeeeet/coach_booking/internal/model"
	"github.com/Freeeeeet/coach_booking/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 16

// errorBody тело ответа с ошибкой
type errorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// writeError переводит ошибку сервиса в HTTP статус.
// Внутренние ошибки логируются, клиент видит только общий текст.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	reqID := middleware.GetReqID(r.Context())

	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", reqID),
			zap.Error(err),
		)
		msg = "internal error"
	}

	writeJSON(w, status, errorBody{Error: msg, Code: code, RequestID: reqID})
}

func classify(err error) (int, string) {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrValidation), errors.As(err, &verrs), errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, service.ErrBusinessRule):
		return http.StatusConflict, "business_rule"
	case errors.Is(err, errUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, errForbidden):
		return http.StatusForbidden, "forbidden"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

var (
	errBadRequest   = errors.New("bad request")
	errUnauthorized = errors.New("missing identity")
	errForbidden    = errors.New("role not allowed")
)

// decode читает JSON тело и прогоняет его через validator
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: decode body: %s", errBadRequest, err.Error())
	}
	if err := h.validate.Struct(dst); err != nil {
		return err
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", errBadRequest, name, raw)
	}
	return id, nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", errBadRequest, name, raw)
	}
	return n, nil
}

// pageQuery разбирает page, size и status=pending,accept
func pageQuery(r *http.Request) (page, size int, statuses []model.RequestStatus, err error) {
	if page, err = queryInt(r, "page", 1); err != nil {
		return 0, 0, nil, err
	}
	if size, err = queryInt(r, "size", 20); err != nil {
		return 0, 0, nil, err
	}
	for _, raw := range strings.Split(r.URL.Query().Get("status"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		st, perr := model.ParseRequestStatus(raw)
		if perr != nil {
			return 0, 0, nil, fmt.Errorf("%w: %s", errBadRequest, perr.Error())
		}
		statuses = append(statuses, st)
	}
	return page, size, statuses, nil
}

type countBody struct {
	Count int `json:"count"`
}
