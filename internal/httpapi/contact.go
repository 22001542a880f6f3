package httpapi

import (
	"encoding/json"
	"net/http"

	"booktime-be/internal/notification"
	"booktime-be/internal/utils"
)

type contactRequest struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// ContactUs forwards a visitor message to customer service. The
// response does not depend on delivery succeeding.
func (h *Handler) ContactUs(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		utils.WriteJSONError(w, "message is required", http.StatusBadRequest)
		return
	}
	if len(req.Message) > 600 {
		utils.WriteJSONError(w, "message must be at most 600 characters", http.StatusBadRequest)
		return
	}

	h.notifier.Notify(r.Context(), notification.EventContactMessage, notification.Payload{
		"name":    req.Name,
		"message": req.Message,
	})

	w.WriteHeader(http.StatusAccepted)
}
