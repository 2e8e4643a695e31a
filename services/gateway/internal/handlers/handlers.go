package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/diagnosis/salon-bookings/internal/domain"
	"github.com/diagnosis/salon-bookings/internal/http/middleware"
	"github.com/diagnosis/salon-bookings/internal/http/response"
	"github.com/diagnosis/salon-bookings/pkg/logger"
	"github.com/diagnosis/salon-bookings/services/gateway/internal/service"
	"github.com/go-chi/chi/v5"
)

type Handlers struct {
	Auth          service.AuthService
	Catalog       service.CatalogService
	Appointments  service.AppointmentService
	Payments      service.PaymentService
	Reviews       service.ReviewService
	Notifications service.NotificationService

	JWTSecret string
	// AuthLimit throttles the public auth endpoints. Nil disables it.
	AuthLimit func(http.Handler) http.Handler
}

// Routes mounts the salon REST API. The caller decides the prefix.
func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/auth", func(r chi.Router) {
		if h.AuthLimit != nil {
			r.Use(h.AuthLimit)
		}
		r.Post("/login", h.login)
		r.Post("/signup", h.signUp)
	})

	r.Get("/services", h.listServices)
	r.Get("/services/{id}", h.getService)
	r.Get("/specialists", h.listSpecialists)
	r.Get("/specialists/{id}", h.getSpecialist)
	r.Get("/specialists/{id}/availability", h.availability)
	r.Get("/specialists/{id}/reviews", h.specialistReviews)
	r.Get("/reviews", h.listReviews)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireJWT(h.JWTSecret))

		r.Get("/appointments", h.listAppointments)
		r.Post("/appointments", h.createAppointment)
		r.Get("/appointments/{id}", h.getAppointment)
		r.Post("/appointments/{id}/cancel", h.cancelAppointment)

		r.Get("/payment-methods", h.listPaymentMethods)
		r.Post("/payment-methods", h.addPaymentMethod)
		r.Delete("/payment-methods/{id}", h.deletePaymentMethod)
		r.Post("/payment-methods/{id}/default", h.setDefaultPaymentMethod)
		r.Post("/payments", h.processPayment)

		r.Post("/reviews", h.createReview)

		r.Get("/notifications", h.listNotifications)
		r.Post("/notifications", h.createNotification)
		r.Post("/notifications/read-all", h.markAllRead)
		r.Post("/notifications/token", h.registerToken)
		r.Post("/notifications/{id}/read", h.markRead)

		r.Get("/chats", h.listChats)
	})
	return r
}

// fail maps service errors onto the JSON error contract.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		response.BadRequest(w, err.Error())
	case errors.Is(err, service.ErrBadCredentials):
		response.WriteError(w, http.StatusUnauthorized, err.Error(), response.CodeBadCredentials)
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(w, "not found")
	case errors.Is(err, service.ErrEmailExists):
		response.Conflict(w, err.Error(), response.CodeEmailExists)
	case errors.Is(err, service.ErrSlotTaken):
		response.Conflict(w, err.Error(), response.CodeSlotTaken)
	case errors.Is(err, service.ErrNotCancellable):
		response.Conflict(w, err.Error(), response.CodeNotCancellable)
	case errors.Is(err, service.ErrAlreadyReviewed):
		response.Conflict(w, err.Error(), response.CodeAlreadyReviewed)
	case errors.Is(err, service.ErrNoPaymentMethod):
		response.WriteError(w, http.StatusUnprocessableEntity, err.Error(), response.CodeNoPaymentMethods)
	default:
		logger.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
		response.InternalError(w, "internal server error")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return false
	}
	return true
}

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "invalid id")
		return 0, false
	}
	return id, true
}

func caller(r *http.Request) int64 {
	if c := middleware.Claims(r); c != nil {
		return c.Sub
	}
	return 0
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	resp, err := h.Auth.Login(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, resp)
}

func (h *Handlers) signUp(w http.ResponseWriter, r *http.Request) {
	var in domain.SignUpInput
	if !decode(w, r, &in) {
		return
	}
	resp, err := h.Auth.SignUp(r.Context(), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, resp)
}

func (h *Handlers) listServices(w http.ResponseWriter, r *http.Request) {
	list, err := h.Catalog.ListServices(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, list)
}

func (h *Handlers) getService(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	svc, err := h.Catalog.GetService(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, svc)
}

func (h *Handlers) listSpecialists(w http.ResponseWriter, r *http.Request) {
	list, err := h.Catalog.ListSpecialists(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, list)
}

func (h *Handlers) getSpecialist(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	sp, err := h.Catalog.GetSpecialist(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, sp)
}

func (h *Handlers) availability(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	slots, err := h.Catalog.Availability(r.Context(), id, r.URL.Query().Get("date"))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, slots)
}

func (h *Handlers) specialistReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	list, err := h.Reviews.ListForSpecialist(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, list)
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	list, err := h.Reviews.List(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, list)
}

func (h *Handlers) createReview(w http.ResponseWriter, r *http.Request) {
	var req domain.ReviewRequest
	if !decode(w, r, &req) {
		return
	}
	rev, err := h.Reviews.Create(r.Context(), caller(r), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, rev)
}

func (h *Handlers) listAppointments(w http.ResponseWriter, r *http.Request) {
	list, err := h.Appointments.List(r.Context(), caller(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, list)
}

func (h *Handlers) getAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	a, err := h.Appointments.Get(r.Context(), caller(r), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, a)
}

func (h *Handlers) createAppointment(w http.ResponseWriter, r *http.Request) {
	var req domain.BookingRequest
	if !decode(w, r, &req) {
		return
	}
	a, err := h.Appointments.Create(r.Context(), caller(r), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, a)
}

func (h *Handlers) cancelAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	a, err := h.Appointments.Cancel(r.Context(), caller(r), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, a)
}

func (h *Handlers) listPaymentMethods(w http.ResponseWriter, r *http.Request) {
	list, err := h.Payments.ListMethods(r.Context(), caller(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, list)
}

func (h *Handlers) addPaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req domain.AddCardRequest
	if !decode(w, r, &req) {
		return
	}
	m, err := h.Payments.AddMethod(r.Context(), caller(r), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, m)
}

func (h *Handlers) deletePaymentMethod(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.Payments.DeleteMethod(r.Context(), caller(r), id); err != nil {
		fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusNoContent, nil)
}

func (h *Handlers) setDefaultPaymentMethod(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.Payments.SetDefault(r.Context(), caller(r), id); err != nil {
		fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusNoContent, nil)
}

func (h *Handlers) processPayment(w http.ResponseWriter, r *http.Request) {
	var req domain.PaymentRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.Payments.Process(r.Context(), caller(r), req, r.Header.Get("Idempotency-Key"))
	if err != nil {
		fail(w, r, err)
		return
	}
	if p.Status == domain.PaymentFailed {
		response.WriteError(w, http.StatusPaymentRequired, "payment declined", response.CodePaymentDeclined)
		return
	}
	response.JSON(w, http.StatusCreated, p)
}

func (h *Handlers) listNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := h.Notifications.List(r.Context(), caller(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, list)
}

func (h *Handlers) createNotification(w http.ResponseWriter, r *http.Request) {
	var in service.NotificationInput
	if !decode(w, r, &in) {
		return
	}
	n, err := h.Notifications.Notify(r.Context(), caller(r), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, n)
}

func (h *Handlers) markRead(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.Notifications.MarkRead(r.Context(), caller(r), id); err != nil {
		fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusNoContent, nil)
}

func (h *Handlers) markAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.Notifications.MarkAllRead(r.Context(), caller(r)); err != nil {
		fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusNoContent, nil)
}

func (h *Handlers) registerToken(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Token string `json:"token"`
	}
	if !decode(w, r, &in) {
		return
	}
	if err := h.Notifications.RegisterToken(r.Context(), caller(r), in.Token); err != nil {
		fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusNoContent, nil)
}

func (h *Handlers) listChats(w http.ResponseWriter, r *http.Request) {
	list, err := h.Catalog.ListChats(r.Context(), caller(r), r.URL.Query().Get("q"))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, list)
}
