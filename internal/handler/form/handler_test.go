package form

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/go-chi/chi/v5"

	formservice "github.com/jinseok-oh/minwon-kiosk/internal/service/form"
)

type stubChatModel struct {
	reply string
	err   error
}

func (m *stubChatModel) Generate(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	if m.err != nil {
		return nil, m.err
	}
	return schema.AssistantMessage(m.reply, nil), nil
}

func (m *stubChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (m *stubChatModel) BindTools(_ []*schema.ToolInfo) error { return nil }

func setupRouter(t *testing.T, stub *stubChatModel) *chi.Mux {
	t.Helper()
	svc, err := formservice.NewService(context.Background(), stub, time.Second)
	if err != nil {
		t.Fatalf("form.NewService err: %v", err)
	}

	r := chi.NewRouter()
	New(svc).RegisterRoutes(r)
	return r
}

func postForm(t *testing.T, r http.Handler, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/form/process", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestFormProcessStartsSession(t *testing.T) {
	stub := &stubChatModel{reply: `{"reply": "성함을 알려주시겠어요?", "extracted_fields": {}}`}
	r := setupRouter(t, stub)

	resp := postForm(t, r, map[string]string{"text": "전입신고서를 작성하고 싶어요", "category": "전입신고"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		SessionID     string `json:"session_id"`
		Category      string `json:"category"`
		Reply         string `json:"reply"`
		UnfilledCount int    `json:"unfilled_count"`
		Completed     bool   `json:"completed"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.SessionID == "" {
		t.Fatal("expected a session id")
	}
	if body.Category != "전입신고" {
		t.Fatalf("unexpected category: %s", body.Category)
	}
	if body.Reply == "" || body.Completed || body.UnfilledCount == 0 {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestFormProcessMissingCategory(t *testing.T) {
	r := setupRouter(t, &stubChatModel{reply: `{"reply": "ok", "extracted_fields": {}}`})

	resp := postForm(t, r, map[string]string{"text": "서류를 작성하고 싶어요"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestFormProcessBlankText(t *testing.T) {
	r := setupRouter(t, &stubChatModel{reply: `{"reply": "ok", "extracted_fields": {}}`})

	resp := postForm(t, r, map[string]string{"text": "  ", "category": "전입신고"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestFormProcessUpstreamFailure(t *testing.T) {
	r := setupRouter(t, &stubChatModel{err: errors.New("connection reset")})

	resp := postForm(t, r, map[string]string{"text": "작성할게요", "category": "청년월세"})
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}
}
