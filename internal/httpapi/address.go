package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"booktime-be/internal/address"
	"booktime-be/internal/utils"
)

type addressRequest struct {
	Name     string  `json:"name"`
	Address1 string  `json:"address1"`
	Address2 *string `json:"address2,omitempty"`
	ZipCode  string  `json:"zip_code"`
	City     string  `json:"city"`
	Country  string  `json:"country"`
}

type addressResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Address1 string  `json:"address1"`
	Address2 *string `json:"address2,omitempty"`
	ZipCode  string  `json:"zip_code"`
	City     string  `json:"city"`
	Country  string  `json:"country"`
}

func toAddressResponse(a *address.Address) addressResponse {
	return addressResponse{
		ID:       a.ID.String(),
		Name:     a.Name,
		Address1: a.Address1,
		Address2: a.Address2,
		ZipCode:  a.ZipCode,
		City:     a.City,
		Country:  a.Country,
	}
}

func (req *addressRequest) validate() string {
	switch {
	case req.Name == "":
		return "name is required"
	case req.Address1 == "":
		return "address1 is required"
	case req.ZipCode == "":
		return "zip_code is required"
	case req.City == "":
		return "city is required"
	case req.Country == "":
		return "country is required"
	}
	return ""
}

func (h *Handler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	addresses, err := h.addresses.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := make([]addressResponse, 0, len(addresses))
	for _, a := range addresses {
		resp = append(resp, toAddressResponse(a))
	}

	utils.WriteJSON(w, resp, http.StatusOK)
}

func (h *Handler) CreateAddress(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if msg := req.validate(); msg != "" {
		utils.WriteJSONError(w, msg, http.StatusBadRequest)
		return
	}

	a, err := h.addresses.Create(r.Context(), address.CreateAddressInput{
		Name:         req.Name,
		AddressLine1: req.Address1,
		AddressLine2: req.Address2,
		ZipCode:      req.ZipCode,
		City:         req.City,
		Country:      req.Country,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteJSON(w, toAddressResponse(a), http.StatusCreated)
}

func (h *Handler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if msg := req.validate(); msg != "" {
		utils.WriteJSONError(w, msg, http.StatusBadRequest)
		return
	}

	a, err := h.addresses.Update(r.Context(), address.UpdateAddressInput{
		AddressID:    mux.Vars(r)["id"],
		Name:         req.Name,
		AddressLine1: req.Address1,
		AddressLine2: req.Address2,
		ZipCode:      req.ZipCode,
		City:         req.City,
		Country:      req.Country,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteJSON(w, toAddressResponse(a), http.StatusOK)
}

func (h *Handler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, address.ErrInvalidAddressID)
		return
	}

	if err := h.addresses.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
