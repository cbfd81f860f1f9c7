package inquiry

import "github.com/jinseok-oh/minwon-kiosk/internal/model/category"

// Classification is the structured result of classifying one question.
// It is produced per request and never stored.
type Classification struct {
	Category category.Category `json:"category"`
	Reason   string            `json:"reason"`
}

// Request is the POST /process body sent by the kiosk's STT front-end.
type Request struct {
	Text      string `json:"text"`
	SessionID string `json:"session_id,omitempty"`
}

// Response is the POST /process reply.
// IsGuidance is present and true only when Category is the catch-all.
type Response struct {
	Question   string `json:"question"`
	Category   string `json:"category"`
	Answer     string `json:"answer"`
	Message    string `json:"message"`
	Reason     string `json:"reason"`
	SessionID  string `json:"session_id,omitempty"`
	IsGuidance bool   `json:"is_guidance,omitempty"`
}
