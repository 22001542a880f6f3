package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"booktime-be/internal/order"
	"booktime-be/internal/utils"
)

type checkoutRequest struct {
	BillingAddressID  string `json:"billing_address_id"`
	ShippingAddressID string `json:"shipping_address_id"`
}

type orderLineResponse struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name,omitempty"`
	Quantity    int    `json:"quantity"`
	Price       int    `json:"price"`
}

type orderResponse struct {
	ID            uint                `json:"id"`
	Status        string              `json:"status"`
	Total         int                 `json:"total"`
	CustomerEmail *string             `json:"customer_email,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	Lines         []orderLineResponse `json:"lines,omitempty"`
}

func toOrderResponse(o *order.Order) orderResponse {
	resp := orderResponse{
		ID:            o.ID,
		Status:        string(o.Status),
		Total:         o.Total,
		CustomerEmail: o.CustomerEmail,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	for _, line := range o.Lines {
		resp.Lines = append(resp.Lines, orderLineResponse{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			Price:       line.Price,
		})
	}
	return resp
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	billingID, err := uuid.Parse(req.BillingAddressID)
	if err != nil {
		writeServiceError(w, order.ErrAddressOwnershipMismatch)
		return
	}
	shippingID, err := uuid.Parse(req.ShippingAddressID)
	if err != nil {
		writeServiceError(w, order.ErrAddressOwnershipMismatch)
		return
	}

	token := peekSessionToken(r)
	if token == "" {
		writeServiceError(w, order.ErrEmptyBasketCheckout)
		return
	}

	o, err := h.orders.Checkout(r.Context(), token, billingID, shippingID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteJSON(w, toOrderResponse(o), http.StatusCreated)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(r)
	if !ok {
		writeServiceError(w, order.ErrOrderNotFound)
		return
	}

	o, err := h.orders.GetOrderDetail(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteJSON(w, toOrderResponse(o), http.StatusOK)
}

// DashboardOrders lists orders for staff with the dashboard filters:
// customer email substring, status, and created/updated date ranges.
func (h *Handler) DashboardOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filter order.Filter
	if v := q.Get("email"); v != "" {
		filter.CustomerEmail = &v
	}
	if v := q.Get("status"); v != "" {
		status := order.Status(v)
		if !status.Valid() {
			writeServiceError(w, order.ErrInvalidStatus)
			return
		}
		filter.Status = &status
	}

	var parseErr error
	filter.CreatedFrom, parseErr = parseDateParam(q.Get("created_from"), parseErr)
	filter.CreatedTo, parseErr = parseDateParam(q.Get("created_to"), parseErr)
	filter.UpdatedFrom, parseErr = parseDateParam(q.Get("updated_from"), parseErr)
	filter.UpdatedTo, parseErr = parseDateParam(q.Get("updated_to"), parseErr)
	if parseErr != nil {
		utils.WriteJSONError(w, "dates must be in YYYY-MM-DD format", http.StatusBadRequest)
		return
	}

	limit := parseInt32Param(r, "limit")
	page := parseInt32Param(r, "page")

	orders, err := h.orders.ListOrders(r.Context(), &filter, limit, page)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}

	utils.WriteJSON(w, resp, http.StatusOK)
}

func (h *Handler) DashboardOrderDetail(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(r)
	if !ok {
		writeServiceError(w, order.ErrOrderNotFound)
		return
	}

	o, err := h.orders.GetOrderDetail(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteJSON(w, toOrderResponse(o), http.StatusOK)
}

type setStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) DashboardSetOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(r)
	if !ok {
		writeServiceError(w, order.ErrOrderNotFound)
		return
	}

	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.orders.SetStatus(r.Context(), orderID, order.Status(req.Status)); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) PaidOrders(w http.ResponseWriter, r *http.Request) {
	limit := parseInt32Param(r, "limit")
	page := parseInt32Param(r, "page")

	orders, err := h.orders.ListPaidOrders(r.Context(), limit, page)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}

	utils.WriteJSON(w, resp, http.StatusOK)
}

func (h *Handler) PaidOrderLines(w http.ResponseWriter, r *http.Request) {
	limit := parseInt32Param(r, "limit")
	page := parseInt32Param(r, "page")

	lines, err := h.orders.ListPaidOrderLines(r.Context(), limit, page)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := make([]orderLineResponse, 0, len(lines))
	for _, line := range lines {
		resp = append(resp, orderLineResponse{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			Price:       line.Price,
		})
	}

	utils.WriteJSON(w, resp, http.StatusOK)
}

func pathID(r *http.Request) (uint, bool) {
	raw := mux.Vars(r)["id"]
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(n), true
}

func parseInt32Param(r *http.Request, name string) *int32 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return nil
	}
	v := int32(n)
	return &v
}

func parseDateParam(raw string, prev error) (*time.Time, error) {
	if prev != nil {
		return nil, prev
	}
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
