package inquiry

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jinseok-oh/minwon-kiosk/internal/model/category"
	inquirymodel "github.com/jinseok-oh/minwon-kiosk/internal/model/inquiry"
	"github.com/jinseok-oh/minwon-kiosk/internal/service/classifier"
	"github.com/jinseok-oh/minwon-kiosk/internal/service/guidance"
	"github.com/jinseok-oh/minwon-kiosk/internal/service/session"
	"github.com/jinseok-oh/minwon-kiosk/pkg/utils"
)

const (
	messageProcessed = "질문이 정상적으로 처리되었습니다."
	messageGuidance  = "질문이 정상적으로 처리되었습니다. 다른 서비스로 유도 중입니다."
)

// Handler serves POST /process: classify the question, then answer from the
// canned table or run the guided conversation for the catch-all category.
type Handler struct {
	classifier *classifier.Service
	guidance   *guidance.Service
	sessions   *session.Store
}

// New creates the inquiry handler.
func New(classifierSvc *classifier.Service, guidanceSvc *guidance.Service, sessions *session.Store) *Handler {
	return &Handler{
		classifier: classifierSvc,
		guidance:   guidanceSvc,
		sessions:   sessions,
	}
}

// RegisterRoutes wires the inquiry endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/process", h.handleProcess)
}

func (h *Handler) handleProcess(w http.ResponseWriter, r *http.Request) {
	var payload inquirymodel.Request
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	question := strings.TrimSpace(payload.Text)
	if question == "" {
		utils.RespondError(w, http.StatusBadRequest, "text is required")
		return
	}

	classification, err := h.classifier.Classify(r.Context(), question)
	if err != nil {
		if errors.Is(err, classifier.ErrEmptyQuestion) {
			utils.RespondError(w, http.StatusBadRequest, "text is required")
			return
		}
		log.Printf("[inquiry] classification failed: %v", err)
		utils.RespondError(w, http.StatusBadGateway, "classification upstream unavailable")
		return
	}

	if !classification.Category.IsGuidance() {
		utils.RespondJSON(w, http.StatusOK, inquirymodel.Response{
			Question:  question,
			Category:  string(classification.Category),
			Answer:    category.Answer(classification.Category),
			Message:   messageProcessed,
			Reason:    classification.Reason,
			SessionID: payload.SessionID,
		})
		return
	}

	sess := h.sessions.GetOrCreate(payload.SessionID)
	reply, err := h.guidance.Guide(r.Context(), sess, question)
	if err != nil {
		log.Printf("[inquiry] guidance failed for session=%s: %v", sess.ID(), err)
		utils.RespondError(w, http.StatusBadGateway, "guidance upstream unavailable")
		return
	}

	utils.RespondJSON(w, http.StatusOK, inquirymodel.Response{
		Question:   question,
		Category:   string(classification.Category),
		Answer:     reply,
		Message:    messageGuidance,
		Reason:     classification.Reason,
		SessionID:  sess.ID(),
		IsGuidance: true,
	})
}
