package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/jinseok-oh/minwon-kiosk/internal/model/category"
	"github.com/jinseok-oh/minwon-kiosk/internal/model/inquiry"
)

var (
	// ErrEmptyQuestion is returned for blank input; no upstream call is made.
	ErrEmptyQuestion = errors.New("question text is empty")
	// ErrUnavailable is returned when the model fails, times out, or keeps
	// producing output that cannot be parsed.
	ErrUnavailable = errors.New("classification upstream unavailable")
)

// Service classifies kiosk questions into the fixed category set by
// delegating to the configured chat model. Classification is stateless per
// request; it never consults session history.
type Service struct {
	chain   compose.Runnable[map[string]any, *schema.Message]
	timeout time.Duration
}

// NewService compiles the classification chain on top of chatModel.
func NewService(ctx context.Context, chatModel model.ChatModel, timeout time.Duration) (*Service, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt()),
		schema.UserMessage("{question}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile classification chain: %w", err)
	}

	return &Service{chain: runnable, timeout: timeout}, nil
}

// Classify returns the category and rationale for a question. The returned
// category is always one of the six fixed labels: an unrecognized label from
// the model is coerced to etc rather than propagated.
func (s *Service) Classify(ctx context.Context, question string) (inquiry.Classification, error) {
	trimmed := strings.TrimSpace(question)
	if trimmed == "" {
		return inquiry.Classification{}, ErrEmptyQuestion
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	msg, err := s.chain.Invoke(ctx, map[string]any{"question": trimmed})
	if err != nil {
		return inquiry.Classification{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return inquiry.Classification{}, fmt.Errorf("%w: empty model output", ErrUnavailable)
	}

	payload, err := parseOutput(msg.Content)
	if err != nil {
		return inquiry.Classification{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	cat, ok := category.Parse(payload.Category)
	if !ok {
		log.Printf("[classifier] unrecognized label %q, coercing to etc", payload.Category)
		cat = category.Etc
	}

	return inquiry.Classification{
		Category: cat,
		Reason:   strings.TrimSpace(payload.Reason),
	}, nil
}

type classifierPayload struct {
	Category string `json:"category"`
	Reason   string `json:"reason"`
}

// parseOutput extracts the JSON object from the model reply, tolerating
// surrounding prose or code fences.
func parseOutput(content string) (*classifierPayload, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("missing json object")
	}

	payload := &classifierPayload{}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), payload); err != nil {
		return nil, err
	}
	if strings.TrimSpace(payload.Category) == "" {
		return nil, fmt.Errorf("missing category field")
	}
	return payload, nil
}

func systemPrompt() string {
	var builder strings.Builder
	builder.WriteString("답변은 반드시 한국어로 작성하세요. 당신은 행정복지센터 키오스크 상담원입니다. ")
	builder.WriteString("시민의 질문을 반드시 다음 6개 카테고리 중 하나로 분류하세요.\n\n카테고리 분류 규칙:\n")
	for i, c := range category.All() {
		builder.WriteString(fmt.Sprintf("%d. %s: %s\n", i+1, string(c), c.Description()))
	}
	builder.WriteString("\n중요: 모든 질문은 반드시 위 6개 카테고리 중 하나로 분류해야 합니다. ")
	builder.WriteString("관련 없는 질문이면 반드시 'etc'를 선택하세요. etc는 다른 카테고리로 분류할 수 없을 때만 선택하세요.\n\n")
	builder.WriteString("출력 요구: 다른 텍스트 없이 JSON 객체 하나만 반환하세요. ")
	builder.WriteString(`필드는 category (위 6개 라벨 중 하나)와 reason (분류 근거, 100자 이내 한국어)입니다.`)
	return builder.String()
}
