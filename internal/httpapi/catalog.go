package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"booktime-be/internal/catalog"
	"booktime-be/internal/utils"
)

type productResponse struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Description string   `json:"description,omitempty"`
	Price       int      `json:"price"`
	Tags        []string `json:"tags,omitempty"`
}

func toProductResponse(p *catalog.Product) productResponse {
	resp := productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price,
	}
	for _, tag := range p.Tags {
		resp.Tags = append(resp.Tags, tag.Slug)
	}
	return resp
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	p, err := h.catalog.GetProduct(r.Context(), slug)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteJSON(w, toProductResponse(p), http.StatusOK)
}

func (h *Handler) ListProductsByTag(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	limit := parsePageParam(r, "limit")
	page := parsePageParam(r, "page")

	products, err := h.catalog.ListByTag(r.Context(), slug, limit, page)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := make([]productResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductResponse(p))
	}

	utils.WriteJSON(w, resp, http.StatusOK)
}

func parsePageParam(r *http.Request, name string) *uint16 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseUint(raw, 10, 16)
	if err != nil {
		return nil
	}
	v := uint16(n)
	return &v
}
