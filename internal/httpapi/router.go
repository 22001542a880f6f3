package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"booktime-be/internal/logger"
	"booktime-be/internal/metrics"
	"booktime-be/internal/middleware"
	"booktime-be/internal/utils"
)

func NewRouter(h *Handler) http.Handler {
	r := mux.NewRouter()

	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(middleware.AuthMiddleware)
	r.Use(middleware.RateLimitMiddleware)

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	r.HandleFunc("/auth/signup", h.Signup).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)

	r.HandleFunc("/products/tag/{slug}", h.ListProductsByTag).Methods(http.MethodGet)
	r.HandleFunc("/products/{slug}", h.GetProduct).Methods(http.MethodGet)

	r.HandleFunc("/basket", h.GetBasket).Methods(http.MethodGet)
	r.HandleFunc("/basket/add", h.AddToBasket).Methods(http.MethodPost)
	r.HandleFunc("/basket/lines", h.UpdateBasketLines).Methods(http.MethodPut)

	r.HandleFunc("/contact-us", h.ContactUs).Methods(http.MethodPost)

	authed := r.NewRoute().Subrouter()
	authed.Use(middleware.RequireAuth)
	authed.HandleFunc("/checkout", h.Checkout).Methods(http.MethodPost)
	authed.HandleFunc("/addresses", h.ListAddresses).Methods(http.MethodGet)
	authed.HandleFunc("/addresses", h.CreateAddress).Methods(http.MethodPost)
	authed.HandleFunc("/addresses/{id}", h.UpdateAddress).Methods(http.MethodPut)
	authed.HandleFunc("/addresses/{id}", h.DeleteAddress).Methods(http.MethodDelete)
	authed.HandleFunc("/orders/{id}", h.GetOrder).Methods(http.MethodGet)

	staff := r.PathPrefix("/dashboard").Subrouter()
	staff.Use(middleware.RequireStaff)
	staff.HandleFunc("/orders", h.DashboardOrders).Methods(http.MethodGet)
	staff.HandleFunc("/orders/{id}", h.DashboardOrderDetail).Methods(http.MethodGet)
	staff.HandleFunc("/orders/{id}/status", h.DashboardSetOrderStatus).Methods(http.MethodPut)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.RequireStaff)
	api.HandleFunc("/orders", h.PaidOrders).Methods(http.MethodGet)
	api.HandleFunc("/orderlines", h.PaidOrderLines).Methods(http.MethodGet)

	return r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, map[string]any{
		"status":           "ok",
		"baskets_created":  metrics.BasketsCreated.Load(),
		"orders_converted": metrics.OrdersConverted.Load(),
		"conflict_retries": metrics.ConflictRetries.Load(),
		"notify_failures":  metrics.NotifyFailures.Load(),
	}, http.StatusOK)
}
