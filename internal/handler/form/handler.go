package form

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	formservice "github.com/jinseok-oh/minwon-kiosk/internal/service/form"
	"github.com/jinseok-oh/minwon-kiosk/pkg/utils"
)

// Handler serves POST /form/process, the form-filling conversation.
type Handler struct {
	forms *formservice.Service
}

// New creates the form handler.
func New(forms *formservice.Service) *Handler {
	return &Handler{forms: forms}
}

// RegisterRoutes wires the form endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/form/process", h.handleProcess)
}

type request struct {
	SessionID string `json:"session_id,omitempty"`
	Text      string `json:"text"`
	Category  string `json:"category,omitempty"`
}

type response struct {
	SessionID       string                         `json:"session_id"`
	Category        string                         `json:"category"`
	Reply           string                         `json:"reply"`
	ExtractedFields map[string]string              `json:"extracted_fields"`
	UnfilledCount   int                            `json:"unfilled_count"`
	Completed       bool                           `json:"completed"`
	Documents       []formservice.DocumentSnapshot `json:"documents"`
}

func (h *Handler) handleProcess(w http.ResponseWriter, r *http.Request) {
	var payload request
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.forms.Process(r.Context(), payload.SessionID, payload.Text, payload.Category)
	if err != nil {
		switch {
		case errors.Is(err, formservice.ErrEmptyInput):
			utils.RespondError(w, http.StatusBadRequest, "text is required")
		case errors.Is(err, formservice.ErrCategoryRequired):
			utils.RespondError(w, http.StatusBadRequest, "a service category is required to start a form session")
		default:
			log.Printf("[form] processing failed: %v", err)
			utils.RespondError(w, http.StatusBadGateway, "form upstream unavailable")
		}
		return
	}

	utils.RespondJSON(w, http.StatusOK, response{
		SessionID:       result.SessionID,
		Category:        string(result.Category),
		Reply:           result.Reply,
		ExtractedFields: result.ExtractedFields,
		UnfilledCount:   result.UnfilledCount,
		Completed:       result.Completed,
		Documents:       result.Documents,
	})
}
