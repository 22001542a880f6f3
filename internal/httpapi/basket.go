package httpapi

import (
	"encoding/json"
	"net/http"

	"booktime-be/internal/basket"
	"booktime-be/internal/utils"
)

type basketLineResponse struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	ProductSlug string `json:"product_slug"`
	Quantity    int    `json:"quantity"`
	Price       int    `json:"price"`
	Subtotal    int    `json:"subtotal"`
}

type basketResponse struct {
	ID     string               `json:"id,omitempty"`
	Status string               `json:"status,omitempty"`
	Lines  []basketLineResponse `json:"lines"`
	Total  int                  `json:"total"`
}

func toBasketResponse(b *basket.Basket) basketResponse {
	resp := basketResponse{Lines: []basketLineResponse{}}
	if b == nil {
		return resp
	}

	resp.ID = b.ID.String()
	resp.Status = string(b.Status)
	for _, line := range b.Lines {
		resp.Lines = append(resp.Lines, basketLineResponse{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			ProductSlug: line.ProductSlug,
			Quantity:    line.Quantity,
			Price:       line.Price,
			Subtotal:    line.Quantity * line.Price,
		})
		resp.Total += line.Quantity * line.Price
	}
	return resp
}

func (h *Handler) GetBasket(w http.ResponseWriter, r *http.Request) {
	token := peekSessionToken(r)
	if token == "" {
		utils.WriteJSON(w, toBasketResponse(nil), http.StatusOK)
		return
	}

	b, err := h.baskets.ResolveCurrent(r.Context(), token)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteJSON(w, toBasketResponse(b), http.StatusOK)
}

type addToBasketRequest struct {
	ProductID uint `json:"product_id"`
}

func (h *Handler) AddToBasket(w http.ResponseWriter, r *http.Request) {
	var req addToBasketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	token := h.sessionToken(w, r)

	b, err := h.baskets.AddItem(r.Context(), token, req.ProductID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteJSON(w, toBasketResponse(b), http.StatusOK)
}

type updateLinesRequest struct {
	Lines []struct {
		ProductID uint `json:"product_id"`
		Quantity  int  `json:"quantity"`
	} `json:"lines"`
}

func (h *Handler) UpdateBasketLines(w http.ResponseWriter, r *http.Request) {
	var req updateLinesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	token := peekSessionToken(r)
	if token == "" {
		writeServiceError(w, basket.ErrBasketNotFound)
		return
	}

	b, err := h.baskets.ResolveCurrent(r.Context(), token)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if b == nil {
		writeServiceError(w, basket.ErrBasketNotFound)
		return
	}

	edits := make(map[uint]int, len(req.Lines))
	for _, line := range req.Lines {
		edits[line.ProductID] = line.Quantity
	}

	if err := h.baskets.UpdateLines(r.Context(), b.ID, edits); err != nil {
		writeServiceError(w, err)
		return
	}

	updated, err := h.baskets.ResolveCurrent(r.Context(), token)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteJSON(w, toBasketResponse(updated), http.StatusOK)
}
