package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/Freeeeeet/coach_booking/internal/model"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

// Заголовки, которые выставляет шлюз после аутентификации
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

type partyKey struct{}

func withParty(ctx context.Context, p model.Party) context.Context {
	return context.WithValue(ctx, partyKey{}, p)
}

// partyFrom достаёт пользователя, проставленного requireIdentity
func partyFrom(ctx context.Context) model.Party {
	p, _ := ctx.Value(partyKey{}).(model.Party)
	return p
}

// requireIdentity пускает только запросы с валидными заголовками пользователя.
// Пустой role разрешает любую роль.
func (h *Handler) requireIdentity(role model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := strconv.ParseInt(r.Header.Get(HeaderUserID), 10, 64)
			if err != nil || userID <= 0 {
				h.writeError(w, r, errUnauthorized)
				return
			}

			party := model.Party{UserID: userID}
			if raw := r.Header.Get(HeaderUserRole); raw != "" {
				if party.Role, err = model.ParseRole(raw); err != nil {
					h.writeError(w, r, errUnauthorized)
					return
				}
			}
			if role != "" {
				if party.Role != role {
					h.writeError(w, r, errForbidden)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(withParty(r.Context(), party)))
		})
	}
}

// accessLog пишет строку лога на каждый запрос
func (h *Handler) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ww.Header().Set(middleware.RequestIDHeader, middleware.GetReqID(r.Context()))

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		}
		if status >= http.StatusInternalServerError {
			h.logger.Warn("HTTP request", fields...)
			return
		}
		h.logger.Debug("HTTP request", fields...)
	})
}

// creationLimiter ограничивает создание заявок одним пользователем
func (h *Handler) creationLimiter(perMinute int) func(http.Handler) http.Handler {
	return httprate.Limit(
		perMinute,
		time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			if p := partyFrom(r.Context()); p.UserID != 0 {
				return "user:" + strconv.FormatInt(p.UserID, 10), nil
			}
			return httprate.KeyByIP(r)
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusTooManyRequests, errorBody{
				Error:     "too many requests",
				Code:      "rate_limited",
				RequestID: middleware.GetReqID(r.Context()),
			})
		}),
	)
}
