package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/Freeeeeet/coach_booking/internal/model"
	"github.com/Freeeeeet/coach_booking/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ContactStore хранит Telegram чаты пользователей для уведомлений
type ContactStore interface {
	SetTelegramChatID(ctx context.Context, userID, chatID int64) error
}

// Options настройки HTTP слоя
type Options struct {
	RateLimitPerMinute int
	CORSOrigins        []string
	RequestTimeout     time.Duration
}

// Handler HTTP обработчики поверх сервисов записи
type Handler struct {
	availability  *service.AvailabilityService
	bookings      *service.BookingService
	subscriptions *service.SubscriptionService
	contacts      ContactStore
	validate      *validator.Validate
	logger        *zap.Logger
}

func NewHandler(
	availability *service.AvailabilityService,
	bookings *service.BookingService,
	subscriptions *service.SubscriptionService,
	contacts ContactStore,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		availability:  availability,
		bookings:      bookings,
		subscriptions: subscriptions,
		contacts:      contacts,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		logger:        logger,
	}
}

// Router собирает chi роутер со всеми маршрутами
func (h *Handler) Router(opts Options) http.Handler {
	if opts.RateLimitPerMinute <= 0 {
		opts.RateLimitPerMinute = 60
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 15 * time.Second
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", HeaderUserID, HeaderUserRole},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	limit := h.creationLimiter(opts.RateLimitPerMinute)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/member", func(r chi.Router) {
			r.Use(h.requireIdentity(model.RoleMember))
			h.attachMemberRoutes(r, limit)
		})
		r.Route("/coach", func(r chi.Router) {
			r.Use(h.requireIdentity(model.RoleCoach))
			h.attachCoachRoutes(r)
		})
		r.Route("/me", func(r chi.Router) {
			r.Use(h.requireIdentity(""))
			r.Put("/telegram", h.setTelegramChat)
		})
	})

	return r
}

func (h *Handler) attachMemberRoutes(r chi.Router, limit func(http.Handler) http.Handler) {
	r.Get("/coaches", h.mySubscriptionCoaches)
	r.Get("/coaches/{coachID}/bookable-starts", h.bookableStarts)
	r.Delete("/coaches/{coachID}/subscription", h.cancelSubscription)

	r.With(limit).Post("/bookings", h.bookSession)
	r.Post("/bookings/{id}/cancel", h.cancelBooking)
	r.Get("/bookings/schedule", h.schedule)
	r.Get("/bookings/requests", h.bookingRequests)
	r.Delete("/bookings/requests/{id}", h.withdrawRequest)
	r.Post("/bookings/requests/{id}/read", h.readBookingRequest)
	r.Get("/bookings/unread-count", h.countUnreadBookings)

	r.With(limit).Post("/subscriptions", h.sendSubscription)
	r.Get("/subscriptions", h.listSubscriptions)
	r.Post("/subscriptions/{id}/read", h.readSubscription)
	r.Get("/subscriptions/unread-count", h.countUnreadSubscriptions)
}

func (h *Handler) attachCoachRoutes(r chi.Router) {
	r.Get("/templates", h.listTemplates)
	r.Post("/templates", h.createTemplate)
	r.Put("/templates/{id}", h.updateTemplate)
	r.Delete("/templates/{id}", h.deleteTemplate)

	r.Get("/bookings/schedule", h.schedule)
	r.Get("/bookings/requests", h.bookingRequests)
	r.Post("/bookings/requests/{id}/decision", h.decideBooking)
	r.Post("/bookings/requests/{id}/read", h.readBookingRequest)
	r.Get("/bookings/unread-count", h.countUnreadBookings)
	r.Get("/bookings/unrecorded", h.listUnrecorded)
	r.Get("/bookings/unrecorded/count", h.countUnrecorded)
	r.Post("/bookings/{id}/recorded", h.markRecorded)

	r.Get("/subscriptions", h.listSubscriptions)
	r.Post("/subscriptions/{id}/decision", h.decideSubscription)
	r.Post("/subscriptions/{id}/read", h.readSubscription)
	r.Get("/subscriptions/unread-count", h.countUnreadSubscriptions)
}
