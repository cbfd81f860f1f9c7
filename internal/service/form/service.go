package form

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/jinseok-oh/minwon-kiosk/internal/model/category"
	"github.com/jinseok-oh/minwon-kiosk/internal/model/conversation"
	formmodel "github.com/jinseok-oh/minwon-kiosk/internal/model/form"
)

var (
	// ErrEmptyInput is returned for blank user input.
	ErrEmptyInput = errors.New("form input text is empty")
	// ErrCategoryRequired is returned when a new form session is started
	// without a usable service category.
	ErrCategoryRequired = errors.New("category is required to start a form session")
	// ErrUnavailable is returned when the model fails or times out. The form
	// session is left untouched in that case.
	ErrUnavailable = errors.New("form upstream unavailable")
)

const historyLimit = 10

// state is one in-flight form-filling conversation.
type state struct {
	id       string
	category category.Category

	mu        sync.Mutex
	documents []documentState
	turns     []conversation.Turn
}

type documentState struct {
	template formmodel.Document
	values   map[string]string
}

// DocumentSnapshot reports the fill progress of one document.
type DocumentSnapshot struct {
	Name        string            `json:"name"`
	Title       string            `json:"title"`
	Fields      map[string]string `json:"fields"`
	FilledCount int               `json:"filledCount"`
	TotalCount  int               `json:"totalCount"`
}

// Result is the outcome of one form conversation turn.
type Result struct {
	SessionID       string
	Category        category.Category
	Reply           string
	ExtractedFields map[string]string
	UnfilledCount   int
	Completed       bool
	Documents       []DocumentSnapshot
}

// Service drives the form-filling conversation: it extracts field values from
// free-text answers via the chat model and tracks per-document progress.
type Service struct {
	chain   compose.Runnable[map[string]any, *schema.Message]
	timeout time.Duration

	mu       sync.RWMutex
	sessions map[string]*state
}

// NewService compiles the extraction chain on top of chatModel.
func NewService(ctx context.Context, chatModel model.ChatModel, timeout time.Duration) (*Service, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(extractionSystemPrompt),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage(extractionUserPrompt),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile form extraction chain: %w", err)
	}

	return &Service{
		chain:    runnable,
		timeout:  timeout,
		sessions: make(map[string]*state),
	}, nil
}

// Process handles one form conversation turn. A new session requires a
// service category with document templates; an existing session keeps the
// category it was started with. On model failure the session state is left
// unchanged.
func (s *Service) Process(ctx context.Context, sessionID, userInput, rawCategory string) (Result, error) {
	trimmed := strings.TrimSpace(userInput)
	if trimmed == "" {
		return Result{}, ErrEmptyInput
	}

	sess, err := s.getOrCreate(sessionID, rawCategory)
	if err != nil {
		return Result{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	invokeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	msg, err := s.chain.Invoke(invokeCtx, map[string]any{
		"documents": describeDocuments(sess.documents),
		"history":   historyMessages(sess.turns),
		"input":     trimmed,
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return Result{}, fmt.Errorf("%w: empty model output", ErrUnavailable)
	}

	payload, err := parseExtraction(msg.Content)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	// Merge only fields the templates actually declare.
	accepted := make(map[string]string)
	for name, value := range payload.ExtractedFields {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		for i := range sess.documents {
			if hasField(sess.documents[i].template, name) {
				sess.documents[i].values[name] = value
				accepted[name] = value
			}
		}
	}

	reply := strings.TrimSpace(payload.Reply)
	sess.turns = append(sess.turns,
		conversation.Turn{Role: conversation.RoleUser, Content: trimmed, CreatedAt: time.Now().UTC()},
		conversation.Turn{Role: conversation.RoleAssistant, Content: reply, CreatedAt: time.Now().UTC()},
	)

	unfilled := countUnfilled(sess.documents)
	if len(accepted) > 0 {
		log.Printf("[form] session=%s accepted %d field(s), %d unfilled", sess.id, len(accepted), unfilled)
	}

	return Result{
		SessionID:       sess.id,
		Category:        sess.category,
		Reply:           reply,
		ExtractedFields: accepted,
		UnfilledCount:   unfilled,
		Completed:       unfilled == 0,
		Documents:       snapshotDocuments(sess.documents),
	}, nil
}

func (s *Service) getOrCreate(sessionID, rawCategory string) (*state, error) {
	if sessionID != "" {
		s.mu.RLock()
		existing, ok := s.sessions[sessionID]
		s.mu.RUnlock()
		if ok {
			return existing, nil
		}
	}

	cat, ok := category.Parse(rawCategory)
	if !ok || cat.IsGuidance() {
		return nil, ErrCategoryRequired
	}
	templates := formmodel.Templates(cat)
	if len(templates) == 0 {
		return nil, ErrCategoryRequired
	}

	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	documents := make([]documentState, 0, len(templates))
	for _, tmpl := range templates {
		documents = append(documents, documentState{
			template: tmpl,
			values:   make(map[string]string, len(tmpl.Fields)),
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[sessionID]; ok {
		return existing, nil
	}
	created := &state{id: sessionID, category: cat, documents: documents}
	s.sessions[sessionID] = created
	return created, nil
}

func hasField(doc formmodel.Document, name string) bool {
	for _, field := range doc.Fields {
		if field.Name == name {
			return true
		}
	}
	return false
}

func countUnfilled(documents []documentState) int {
	count := 0
	for _, doc := range documents {
		for _, field := range doc.template.Fields {
			if doc.values[field.Name] == "" {
				count++
			}
		}
	}
	return count
}

func snapshotDocuments(documents []documentState) []DocumentSnapshot {
	snapshots := make([]DocumentSnapshot, 0, len(documents))
	for _, doc := range documents {
		fields := make(map[string]string, len(doc.template.Fields))
		filled := 0
		for _, field := range doc.template.Fields {
			value := doc.values[field.Name]
			fields[field.Name] = value
			if value != "" {
				filled++
			}
		}
		snapshots = append(snapshots, DocumentSnapshot{
			Name:        doc.template.Name,
			Title:       doc.template.Title,
			Fields:      fields,
			FilledCount: filled,
			TotalCount:  len(doc.template.Fields),
		})
	}
	return snapshots
}

// describeDocuments renders the templates and current values for the prompt.
func describeDocuments(documents []documentState) string {
	var builder strings.Builder
	for _, doc := range documents {
		builder.WriteString(fmt.Sprintf("문서: %s (%s)\n", doc.template.Title, doc.template.Name))
		for _, field := range doc.template.Fields {
			value := doc.values[field.Name]
			if value == "" {
				value = "(미작성)"
			}
			builder.WriteString(fmt.Sprintf("- %s [%s]", field.Name, field.Label))
			if field.Description != "" {
				builder.WriteString(": " + field.Description)
			}
			builder.WriteString(" = " + value + "\n")
		}
	}
	return builder.String()
}

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

type extractionPayload struct {
	Reply           string            `json:"reply"`
	ExtractedFields map[string]string `json:"extracted_fields"`
}

func parseExtraction(content string) (*extractionPayload, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("missing json object")
	}

	payload := &extractionPayload{}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), payload); err != nil {
		return nil, err
	}
	if strings.TrimSpace(payload.Reply) == "" {
		return nil, fmt.Errorf("missing reply field")
	}
	return payload, nil
}

const extractionSystemPrompt = "당신은 행정복지센터 키오스크 상담원입니다. 사용자와 대화하며 민원 서류의 필드를 채워나갑니다.\n" +
	"제공된 문서 필드 목록과 현재 값을 참고하여, 사용자의 답변에서 채울 수 있는 필드 값을 추출하세요.\n" +
	"출력 요구: 다른 텍스트 없이 JSON 객체 하나만 반환하세요. 필드는 reply (다음으로 필요한 정보를 자연스럽게 묻거나, 모두 채워졌으면 완료를 안내하는 한국어 문장)와 " +
	"extracted_fields (필드 이름을 키로, 추출한 값을 값으로 하는 객체, 추출할 것이 없으면 빈 객체)입니다.\n" +
	"추출 원칙:\n" +
	"- 사용자가 명시적으로 말한 정보만 추출하세요. 추측하지 마세요\n" +
	"- 필드 이름은 문서 필드 목록에 있는 이름을 그대로 사용하세요\n" +
	"- reply는 간결하고 친절하게, 한 번에 한두 개의 정보만 물어보세요"

const extractionUserPrompt = "문서 필드 목록과 현재 값:\n{documents}\n\n사용자 답변:\n{input}"
