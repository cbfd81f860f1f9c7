package guidance

import (
	"context"
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
	"github.com/jinseok-oh/minwon-kiosk/internal/model/conversation"
	"github.com/jinseok-oh/minwon-kiosk/internal/service/session"
)

// ErrUnavailable is returned when the model fails or times out. The session
// history is left untouched in that case.
var ErrUnavailable = errors.New("guidance upstream unavailable")

const (
	// replyRuneLimit caps guidance replies, matching the kiosk display budget.
	replyRuneLimit = 300
	historyLimit   = 10
)

// Service produces redirecting replies for questions that fall into the
// catch-all category, steering the user toward one of the five services
// while keeping the conversation history per session.
type Service struct {
	chain   compose.Runnable[map[string]any, *schema.Message]
	timeout time.Duration
}

// NewService compiles the guidance chain on top of chatModel.
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
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{question}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile guidance chain: %w", err)
	}

	return &Service{chain: runnable, timeout: timeout}, nil
}

// Guide generates a redirecting reply for the question using the session's
// accumulated history, then appends the user turn and the reply turn in that
// order. The whole read-generate-append sequence runs under the session lock;
// on failure nothing is appended.
func (s *Service) Guide(ctx context.Context, sess *session.Session, question string) (string, error) {
	trimmed := strings.TrimSpace(question)
	if trimmed == "" {
		return "", fmt.Errorf("question text is empty")
	}

	var reply string
	err := sess.Exchange(func(history []conversation.Turn) ([]conversation.Turn, error) {
		invokeCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		msg, err := s.chain.Invoke(invokeCtx, map[string]any{
			"history":  historyMessages(history),
			"question": trimmed,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if msg == nil || strings.TrimSpace(msg.Content) == "" {
			return nil, fmt.Errorf("%w: empty model output", ErrUnavailable)
		}

		reply = truncate(strings.TrimSpace(msg.Content), replyRuneLimit)
		return []conversation.Turn{
			{Role: conversation.RoleUser, Content: trimmed},
			{Role: conversation.RoleAssistant, Content: reply},
		}, nil
	})
	if err != nil {
		return "", err
	}

	log.Printf("[guidance] generated reply for session=%s, length=%d", sess.ID(), len(reply))
	return reply, nil
}

// historyMessages converts the most recent turns into model messages.
func historyMessages(turns []conversation.Turn) []*schema.Message {
	if len(turns) == 0 {
		return nil
	}

	startIdx := 0
	if len(turns) > historyLimit {
		startIdx = len(turns) - historyLimit
	}

	history := make([]*schema.Message, 0, len(turns)-startIdx)
	for _, turn := range turns[startIdx:] {
		switch turn.Role {
		case conversation.RoleUser:
			history = append(history, schema.UserMessage(turn.Content))
		case conversation.RoleAssistant:
			history = append(history, schema.AssistantMessage(turn.Content, nil))
		}
	}

	return history
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func systemPrompt() string {
	var builder strings.Builder
	builder.WriteString("당신은 행정복지센터 키오스크 상담원입니다. ")
	builder.WriteString("사용자가 etc 카테고리(일반 대화, 인사 등)로 분류된 질문을 하고 있습니다. ")
	builder.WriteString("이전 대화 히스토리를 참고하여, 사용자를 자연스럽게 다음 5개 서비스 중 하나로 유도하세요:\n\n")
	for i, c := range category.Services() {
		builder.WriteString(fmt.Sprintf("%d. %s: %s\n", i+1, string(c), c.Description()))
	}
	builder.WriteString("\n대화 유도 원칙:\n")
	builder.WriteString("- 이전 대화 맥락을 고려하여 자연스럽게 관련 서비스를 제안하세요\n")
	builder.WriteString("- 강압적이지 않게, 친절하고 자연스럽게 유도하세요. 카테고리가 확정된 것처럼 단정하지 마세요\n")
	builder.WriteString("- 사용자의 상황(나이, 주거 상황 등)을 파악하여 적절한 서비스를 추천하세요\n")
	builder.WriteString("- 간결하되 문장이 자연스럽게 이어지도록 답변하세요 (300자 이내)\n")
	builder.WriteString("- 답변 끝에는 '도와드릴까요?', '필요하신가요?', '궁금하신가요?' 같은 의문 뉘앙스로 자연스럽게 끝내세요")
	return builder.String()
}
